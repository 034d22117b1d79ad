package update

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/surf-rdm/surfmeta/pkg/metadata"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Metafile string `flag:"metafile" alias:"m" metavar:"FILE" help:"flat JSON file with the extras to set"`
}

const ARG_UUID = "UUID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Update a dataset's extras from a metafile.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_UUID, Required: true,
				Help: "dataset to update.",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Update a dataset's extras key-by-key from a metafile. Keys in the file
overwrite existing values; other extras are left alone.
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
	if flags.Metafile == "" {
		return fmt.Errorf("%w: --metafile is required", flarc.ErrUsage)
	}

	extras, err := metadata.LoadFlatJSON(flags.Metafile)
	if err != nil {
		return err
	}

	id := cl.Args()[ARG_UUID][0]
	ds, err := client.Get(ctx, id)
	if err != nil {
		return err
	}

	updated, err := client.Update(ctx, metadata.Merge(ds, metadata.SystemMeta{}, extras))
	if err != nil {
		return err
	}
	logger.Printf("dataset %s updated", updated.Name)

	buf, err := json.MarshalIndent(updated, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cl.Stdout(), string(buf))
	return nil
}
