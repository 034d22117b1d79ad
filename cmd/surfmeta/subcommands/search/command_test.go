package search_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest/mock"
	intcl "github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/internal/commandline"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/logger"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/search"
	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
	kflag "github.com/surf-rdm/surfmeta/pkg/commandline/flag"
	"github.com/youta-t/flarc"
)

func TestSearchTask(t *testing.T) {
	datasets := []ckan.Dataset{
		{
			Name:         "d1",
			Title:        "Fox telemetry",
			Organization: &ckan.Organization{Name: "aperture"},
			Extras:       []ckan.Extra{{Key: "system_name", Value: "spider"}},
		},
		{
			Name:  "d2",
			Title: "Weather model runs",
			Extras: []ckan.Extra{
				{Key: "project", Value: "fox"},
			},
		},
	}

	t.Run("matching datasets are printed name, org and title", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.ListAll = func(context.Context, bool) ([]ckan.Dataset, error) {
			return datasets, nil
		}

		stdout := new(bytes.Buffer)
		cl := intcl.MockCommandline[search.Flag]{
			Fullname_: "surfmeta search",
			Stdout_:   stdout,
			Stderr_:   new(bytes.Buffer),
			Flags_: search.Flag{
				Keyword: &kflag.Argslice{"fox"},
			},
			Args_: map[string][]string{},
		}

		if err := search.Task(
			context.Background(), logger.Null(), env.Env{}, client, cl, nil,
		); err != nil {
			t.Fatal(err)
		}

		expected := "d1\taperture\tFox telemetry\nd2\t-\tWeather model runs\n"
		if stdout.String() != expected {
			t.Errorf("output:\n%s\nexpected:\n%s", stdout.String(), expected)
		}
		if len(client.Calls.ListAll) != 1 || !client.Calls.ListAll[0] {
			t.Errorf("ListAll calls: %v", client.Calls.ListAll)
		}
	})

	t.Run("criteria are ANDed", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.ListAll = func(context.Context, bool) ([]ckan.Dataset, error) {
			return datasets, nil
		}

		stdout := new(bytes.Buffer)
		cl := intcl.MockCommandline[search.Flag]{
			Fullname_: "surfmeta search",
			Stdout_:   stdout,
			Stderr_:   new(bytes.Buffer),
			Flags_: search.Flag{
				Keyword: &kflag.Argslice{"fox"},
				System:  "spider",
			},
			Args_: map[string][]string{},
		}

		if err := search.Task(
			context.Background(), logger.Null(), env.Env{}, client, cl, nil,
		); err != nil {
			t.Fatal(err)
		}

		if stdout.String() != "d1\taperture\tFox telemetry\n" {
			t.Errorf("output: %q", stdout.String())
		}
	})

	t.Run("no criterion at all is a usage error", func(t *testing.T) {
		client := mock.New(t)

		cl := intcl.MockCommandline[search.Flag]{
			Fullname_: "surfmeta search",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Flags_: search.Flag{
				Keyword: &kflag.Argslice{},
			},
			Args_: map[string][]string{},
		}

		err := search.Task(
			context.Background(), logger.Null(), env.Env{}, client, cl, nil,
		)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("expected usage error, got %v", err)
		}
		if len(client.Calls.ListAll) != 0 {
			t.Errorf("ListAll should not be called, got %v", client.Calls.ListAll)
		}
	})
}
