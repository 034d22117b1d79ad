package get

import (
	"context"
	"fmt"
	"log"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/surf-rdm/surfmeta/pkg/metadata"
	"github.com/youta-t/flarc"
)

type Flag struct {
	User string `flag:"user" alias:"u" metavar:"NAME" help:"remote username to put into the commands"`
	Dest string `flag:"dest" alias:"d" metavar:"DIR" help:"local destination directory"`
}

const ARG_UUID = "UUID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show how to download a dataset's data.",
		Flag{
			Dest: ".",
		},
		flarc.Args{
			{
				Name: ARG_UUID, Required: true,
				Help: "dataset whose data to fetch.",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Derive ready-to-paste download commands (scp, rsync, curl/wget for webdav)
from a dataset's server, protocols and location metadata. Datasets stored
locally have nothing to download.
`),
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
	ds, err := client.Get(ctx, cl.Args()[ARG_UUID][0])
	if err != nil {
		return err
	}

	out := cl.Stdout()
	for _, tc := range metadata.TransferCommands(ds, flags.User, flags.Dest) {
		fmt.Fprintf(out, "%s:\n    %s\n", tc.Method, tc.Command)
	}
	return nil
}
