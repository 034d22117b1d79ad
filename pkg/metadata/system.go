package metadata

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
)

var ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

// Checksum is an algorithm + hex digest pair. On the wire it is stored as
// the JSON array [algorithm, digest].
type Checksum struct {
	Algorithm string
	Digest    string
}

// SystemMeta is metadata detected about the system holding the data.
type SystemMeta struct {
	SystemName string
	Server     string
	Protocols  []string
	Checksum   *Checksum
	Location   string
}

// Extras renders the system metadata as CKAN extras, in a fixed order.
// Empty fields are skipped.
func (s SystemMeta) Extras() []ckan.Extra {
	extras := []ckan.Extra{}
	if s.SystemName != "" {
		extras = append(extras, ckan.Extra{Key: ckan.KeySystemName, Value: s.SystemName})
	}
	if s.Server != "" {
		extras = append(extras, ckan.Extra{Key: ckan.KeyServer, Value: s.Server})
	}
	if len(s.Protocols) != 0 {
		buf, _ := json.Marshal(s.Protocols)
		extras = append(extras, ckan.Extra{Key: ckan.KeyProtocols, Value: string(buf)})
	}
	if s.Checksum != nil {
		buf, _ := json.Marshal([2]string{s.Checksum.Algorithm, s.Checksum.Digest})
		extras = append(extras, ckan.Extra{Key: ckan.KeyChecksum, Value: string(buf)})
	}
	if s.Location != "" {
		extras = append(extras, ckan.Extra{Key: ckan.KeyLocation, Value: s.Location})
	}
	return extras
}

// Known compute systems, matched as substrings of the local hostname.
var knownSystems = []string{"snellius", "spider", "src-surf-hosted-nl", "src.surf-hosted.nl"}

// DetectSystem maps a hostname onto the static registry of known systems,
// falling back to local metadata when nothing matches.
func DetectSystem(hostname string) SystemMeta {
	matched := ""
	for _, name := range knownSystems {
		if strings.Contains(hostname, name) {
			matched = name
			break
		}
	}

	switch matched {
	case "snellius":
		return SystemMeta{
			SystemName: "snellius",
			Server:     "snellius.surf.nl",
			Protocols:  []string{"ssh", "rsync"},
		}
	case "spider":
		return SystemMeta{
			SystemName: "spider",
			Server:     "spider.surfsara.nl",
			Protocols:  []string{"ssh", "rsync"},
		}
	case "src-surf-hosted-nl", "src.surf-hosted.nl":
		return SystemMeta{
			SystemName: "researchcloud",
			Server:     hostname,
			Protocols:  []string{"ssh", "rsync"},
		}
	default:
		return SystemMeta{SystemName: "local", Server: "local"}
	}
}

// LocalSystem detects system metadata for the executing host.
func LocalSystem() SystemMeta {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}
	return DetectSystem(hostname)
}

func newHasher(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "md5":
		return md5.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
}

// FileChecksum computes the hex digest of a local file.
func FileChecksum(path string, algorithm string) (string, error) {
	hasher, err := newHasher(algorithm)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// AttachFile records the checksum and location of a local file into the
// system metadata.
func (s *SystemMeta) AttachFile(path string, algorithm string) error {
	digest, err := FileChecksum(path, algorithm)
	if err != nil {
		return err
	}
	s.Checksum = &Checksum{Algorithm: algorithm, Digest: digest}
	s.Location = path
	return nil
}
