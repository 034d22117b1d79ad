package ckan

import (
	"context"
	"fmt"
	"log"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/youta-t/flarc"
)

type GroupsFlag struct {
	Full bool `flag:"full" help:"fetch per-group detail, not just names"`
}

func Groups() (flarc.Command, error) {
	return flarc.NewCommand(
		"List groups on the current CKAN.",
		GroupsFlag{},
		flarc.Args{},
		common.NewTask(GroupsTask),
	)
}

func GroupsTask(
	ctx context.Context,
	_ *log.Logger,
	_ env.Env,
	client rest.Client,
	cl flarc.Commandline[GroupsFlag],
	_ []any,
) error {
	groups, err := client.ListGroups(ctx, cl.Flags().Full)
	if err != nil {
		return err
	}

	out := cl.Stdout()
	for _, g := range groups {
		if g.Title != "" {
			fmt.Fprintf(out, "%s\t%s\n", g.Name, g.Title)
			continue
		}
		fmt.Fprintln(out, g.Name)
	}
	return nil
}
