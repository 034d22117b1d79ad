package metadata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
	"github.com/surf-rdm/surfmeta/pkg/cmp"
	"github.com/surf-rdm/surfmeta/pkg/metadata"
)

func TestDetectSystem(t *testing.T) {
	type When struct {
		hostname string
	}
	type Then struct {
		systemName string
		server     string
		protocols  []string
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			sys := metadata.DetectSystem(when.hostname)
			if sys.SystemName != then.systemName {
				t.Errorf("system_name: got %q, want %q", sys.SystemName, then.systemName)
			}
			if sys.Server != then.server {
				t.Errorf("server: got %q, want %q", sys.Server, then.server)
			}
			if !cmp.SliceEq(sys.Protocols, then.protocols) {
				t.Errorf("protocols: got %v, want %v", sys.Protocols, then.protocols)
			}
		}
	}

	t.Run("snellius login node", theory(
		When{"int4.snellius.surf.nl"},
		Then{"snellius", "snellius.surf.nl", []string{"ssh", "rsync"}},
	))

	t.Run("spider worker", theory(
		When{"ui-01.spider.surfsara.nl"},
		Then{"spider", "spider.surfsara.nl", []string{"ssh", "rsync"}},
	))

	t.Run("research cloud keeps its own hostname as server", theory(
		When{"workspace-3.src-surf-hosted-nl"},
		Then{"researchcloud", "workspace-3.src-surf-hosted-nl", []string{"ssh", "rsync"}},
	))

	t.Run("anything else falls back to local", theory(
		When{"my-laptop"},
		Then{"local", "local", nil},
	))
}

func TestSystemMetaExtras(t *testing.T) {
	t.Run("all fields are rendered in fixed order", func(t *testing.T) {
		sys := metadata.SystemMeta{
			SystemName: "spider",
			Server:     "spider.surfsara.nl",
			Protocols:  []string{"ssh"},
			Checksum:   &metadata.Checksum{Algorithm: "md5", Digest: "15f8deadbeef"},
			Location:   "/project/data/set1",
		}

		expected := []ckan.Extra{
			{Key: "system_name", Value: "spider"},
			{Key: "server", Value: "spider.surfsara.nl"},
			{Key: "protocols", Value: `["ssh"]`},
			{Key: "checksum", Value: `["md5","15f8deadbeef"]`},
			{Key: "location", Value: "/project/data/set1"},
		}
		if !cmp.SliceEqWith(sys.Extras(), expected, ckan.Extra.Equal) {
			t.Errorf("unmatch:\n got:  %v\n want: %v", sys.Extras(), expected)
		}
	})

	t.Run("zero value renders no extras", func(t *testing.T) {
		if extras := (metadata.SystemMeta{}).Extras(); len(extras) != 0 {
			t.Errorf("got %v", extras)
		}
	})
}

func TestFileChecksum(t *testing.T) {
	t.Run("md5 of a known payload", func(t *testing.T) {
		fp := filepath.Join(t.TempDir(), "data.txt")
		if err := os.WriteFile(fp, []byte("The quick brown fox jumps over the lazy dog"), 0600); err != nil {
			t.Fatal(err)
		}

		digest, err := metadata.FileChecksum(fp, "md5")
		if err != nil {
			t.Fatal(err)
		}
		if digest != "9e107d9d372bb6826bd81d3542a419d6" {
			t.Errorf("got %s", digest)
		}
	})

	t.Run("unsupported algorithm is rejected", func(t *testing.T) {
		fp := filepath.Join(t.TempDir(), "data.txt")
		if err := os.WriteFile(fp, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := metadata.FileChecksum(fp, "crc32"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("AttachFile records checksum and location", func(t *testing.T) {
		fp := filepath.Join(t.TempDir(), "data.txt")
		if err := os.WriteFile(fp, []byte("content"), 0600); err != nil {
			t.Fatal(err)
		}

		sys := metadata.SystemMeta{SystemName: "local", Server: "local"}
		if err := sys.AttachFile(fp, "sha256"); err != nil {
			t.Fatal(err)
		}
		if sys.Checksum == nil || sys.Checksum.Algorithm != "sha256" || sys.Checksum.Digest == "" {
			t.Errorf("checksum: got %+v", sys.Checksum)
		}
		if sys.Location != fp {
			t.Errorf("location: got %q", sys.Location)
		}
	})
}
