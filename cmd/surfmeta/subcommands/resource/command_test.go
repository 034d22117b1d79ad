package resource_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest/mock"
	intcl "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/internal/commandline"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/logger"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/resource"
	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
	"github.com/youta-t/flarc"
)

func TestResourceTask(t *testing.T) {
	const id = "5e0e7eab-3a59-4f1f-9e8c-0f07a5f2e001"

	t.Run("the file content is streamed to CKAN", func(t *testing.T) {
		fp := filepath.Join(t.TempDir(), "data.txt")
		payload := []byte("The quick brown fox jumps over the lazy dog")
		if err := os.WriteFile(fp, payload, 0600); err != nil {
			t.Fatal(err)
		}

		uploaded := []byte{}
		client := mock.New(t)
		client.Impl.AddResource = func(
			_ context.Context, _ string, _ string, src io.Reader,
		) (ckan.Resource, error) {
			buf, err := io.ReadAll(src)
			if err != nil {
				return ckan.Resource{}, err
			}
			uploaded = buf
			return ckan.Resource{Id: "res-1", Name: "data.txt"}, nil
		}

		cl := intcl.MockCommandline[struct{}]{
			Fullname_: "surfmeta resource",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Args_: map[string][]string{
				resource.ARG_UUID: {id},
				resource.ARG_FILE: {fp},
			},
		}

		if err := resource.Task(
			context.Background(), logger.Null(), env.Env{}, client, cl, nil,
		); err != nil {
			t.Fatal(err)
		}

		if len(client.Calls.AddResource) != 1 {
			t.Fatalf("AddResource called %d times", len(client.Calls.AddResource))
		}
		call := client.Calls.AddResource[0]
		if call.Id != id || call.Filename != "data.txt" {
			t.Errorf("AddResource args: %+v", call)
		}
		if !bytes.Equal(uploaded, payload) {
			t.Errorf("uploaded %q", string(uploaded))
		}
	})

	t.Run("a directory is a usage error", func(t *testing.T) {
		client := mock.New(t)

		cl := intcl.MockCommandline[struct{}]{
			Fullname_: "surfmeta resource",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Args_: map[string][]string{
				resource.ARG_UUID: {id},
				resource.ARG_FILE: {t.TempDir()},
			},
		}

		err := resource.Task(
			context.Background(), logger.Null(), env.Env{}, client, cl, nil,
		)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("expected usage error, got %v", err)
		}
		if len(client.Calls.AddResource) != 0 {
			t.Errorf("AddResource should not be called, got %v", client.Calls.AddResource)
		}
	})
}
