package list

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	apickan "github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
	"github.com/surf-rdm/surfmeta/pkg/dcache"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Sys  bool `flag:"sys" help:"show only system-written extras"`
	User bool `flag:"user" help:"show only user-supplied extras"`
}

const ARG_UUID = "UUID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"List datasets, or show one dataset's metadata.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_UUID, Required: false,
				Help: "dataset to show. Without it, all datasets are listed.",
			},
		},
		common.NewTask(Task),
	)
}

func Task(
	ctx context.Context,
	_ *log.Logger,
	_ env.Env,
	client rest.Client,
	cl flarc.Commandline[Flag],
	_ []any,
) error {
	flags := cl.Flags()
	if flags.Sys && flags.User {
		return fmt.Errorf("%w: --sys and --user exclude each other", flarc.ErrUsage)
	}

	args := cl.Args()[ARG_UUID]
	if len(args) == 0 {
		return listAll(ctx, client, cl)
	}
	return showOne(ctx, client, cl, args[0])
}

func listAll(ctx context.Context, client rest.Client, cl flarc.Commandline[Flag]) error {
	datasets, err := client.ListAll(ctx, true)
	if err != nil {
		return err
	}

	out := cl.Stdout()
	for _, ds := range datasets {
		org := "-"
		if ds.Organization != nil {
			org = ds.Organization.Name
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", ds.Name, org, ds.Title)
	}
	return nil
}

func showOne(ctx context.Context, client rest.Client, cl flarc.Commandline[Flag], id string) error {
	ds, err := client.Get(ctx, id)
	if err != nil {
		return err
	}

	flags := cl.Flags()
	out := cl.Stdout()
	fmt.Fprintf(out, "%s\t%s\n", ds.Name, ds.Title)
	for _, e := range ds.Extras {
		if flags.Sys && !isSystemKey(e.Key) {
			continue
		}
		if flags.User && isSystemKey(e.Key) {
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", e.Key, e.Value)
	}
	return nil
}

func isSystemKey(key string) bool {
	switch key {
	case apickan.KeyUUID, apickan.KeySystemName, apickan.KeyServer,
		apickan.KeyProtocols, apickan.KeyChecksum, apickan.KeyLocation:
		return true
	}
	return strings.HasPrefix(key, dcache.DeletedWarningPrefix)
}
