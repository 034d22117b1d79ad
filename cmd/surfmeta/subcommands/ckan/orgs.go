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

type OrgsFlag struct {
	Full bool `flag:"full" help:"fetch per-organization detail, not just names"`
}

func Orgs() (flarc.Command, error) {
	return flarc.NewCommand(
		"List organizations on the current CKAN.",
		OrgsFlag{},
		flarc.Args{},
		common.NewTask(OrgsTask),
	)
}

func OrgsTask(
	ctx context.Context,
	_ *log.Logger,
	_ env.Env,
	client rest.Client,
	cl flarc.Commandline[OrgsFlag],
	_ []any,
) error {
	orgs, err := client.ListOrganizations(ctx, cl.Flags().Full)
	if err != nil {
		return err
	}

	out := cl.Stdout()
	for _, org := range orgs {
		if org.Title != "" {
			fmt.Fprintf(out, "%s\t%s\n", org.Name, org.Title)
			continue
		}
		fmt.Fprintln(out, org.Name)
	}
	return nil
}
