package search

import (
	"context"
	"fmt"
	"log"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	kflag "github.com/surf-rdm/surfmeta/pkg/commandline/flag"
	"github.com/surf-rdm/surfmeta/pkg/metadata"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Keyword *kflag.Argslice `flag:"keyword" alias:"k" metavar:"WORD" help:"match against titles, names and extras. Repeatable; any match counts."`
	Org     string          `flag:"org" alias:"o" metavar:"NAME" help:"match the owning organization exactly."`
	Group   string          `flag:"group" alias:"g" metavar:"NAME" help:"match datasets belonging to this group."`
	System  string          `flag:"system" alias:"s" metavar:"NAME" help:"match the recorded system_name. Datasets without one match \"local\"."`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Search datasets by keyword, organization, group or system.",
		Flag{
			Keyword: &kflag.Argslice{},
		},
		flarc.Args{},
		common.NewTask(Task),
		flarc.WithDescription(`
Search datasets in the current CKAN. All given criteria must hold; at least
one is required.
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	_ env.Env,
	client rest.Client,
	cl flarc.Commandline[Flag],
	_ []any,
) error {
	flags := cl.Flags()
	query := metadata.Query{
		Org:    flags.Org,
		Group:  flags.Group,
		System: flags.System,
	}
	if flags.Keyword != nil {
		query.Keywords = *flags.Keyword
	}

	if query.IsZero() {
		return fmt.Errorf("%w: give at least one search criterion", flarc.ErrUsage)
	}

	datasets, err := client.ListAll(ctx, true)
	if err != nil {
		return err
	}

	found := metadata.Search(datasets, query)
	logger.Printf("%d of %d datasets match", len(found), len(datasets))

	out := cl.Stdout()
	for _, ds := range found {
		org := "-"
		if ds.Organization != nil {
			org = ds.Organization.Name
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", ds.Name, org, ds.Title)
	}
	return nil
}
