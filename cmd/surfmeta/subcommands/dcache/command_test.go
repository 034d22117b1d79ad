package dcache_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/config/conf"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest/mock"
	subdcache "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/dcache"
	intcl "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/internal/commandline"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/logger"
	"github.com/surf-rdm/surfmeta/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func newConf(t *testing.T) *conf.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ckan.json")
	return try.To(conf.Load(path, nil)).OrFatal(t)
}

func TestAuthTask(t *testing.T) {
	t.Run("both auth flags at once is a usage error", func(t *testing.T) {
		cl := intcl.MockCommandline[subdcache.AuthFlag]{
			Fullname_: "surfmeta dcache auth",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Flags_: subdcache.AuthFlag{
				Macaroon: "macaroon.conf",
				Netrc:    ".netrc",
			},
			Args_: map[string][]string{},
		}

		err := subdcache.AuthTask(
			context.Background(), logger.Null(), newConf(t), env.Env{}, cl, nil,
		)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("expected usage error, got %v", err)
		}
	})

	t.Run("no auth flag at all is a usage error", func(t *testing.T) {
		cl := intcl.MockCommandline[subdcache.AuthFlag]{
			Fullname_: "surfmeta dcache auth",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Flags_:    subdcache.AuthFlag{},
			Args_:     map[string][]string{},
		}

		err := subdcache.AuthTask(
			context.Background(), logger.Null(), newConf(t), env.Env{}, cl, nil,
		)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("expected usage error, got %v", err)
		}
	})
}

func TestListenTask(t *testing.T) {
	t.Run("no PATH and no --local is a usage error", func(t *testing.T) {
		cl := intcl.MockCommandline[subdcache.ListenFlag]{
			Fullname_: "surfmeta dcache listen",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Flags_:    subdcache.ListenFlag{},
			Args_:     map[string][]string{"PATH": {}},
		}

		err := subdcache.ListenTask(
			context.Background(), logger.Null(), newConf(t), env.Env{},
			mock.New(t), cl, nil,
		)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("expected usage error, got %v", err)
		}
	})

	t.Run("--local reconciles events from a local directory", func(t *testing.T) {
		// WatchLocal runs until its context ends; cancelling immediately
		// still exercises the full local setup path.
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cl := intcl.MockCommandline[subdcache.ListenFlag]{
			Fullname_: "surfmeta dcache listen",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Flags_:    subdcache.ListenFlag{Local: t.TempDir()},
			Args_:     map[string][]string{"PATH": {}},
		}

		if err := subdcache.ListenTask(
			ctx, logger.Null(), newConf(t), env.Env{}, mock.New(t), cl, nil,
		); err != nil {
			t.Errorf("cancellation should end listening cleanly, got %v", err)
		}
	})
}
