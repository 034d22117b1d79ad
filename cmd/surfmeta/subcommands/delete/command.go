package delete

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Yes bool   `flag:"yes" alias:"y" help:"do not ask for confirmation"`
	Key string `flag:"key" alias:"k" metavar:"KEY" help:"delete only this extras key, keeping the dataset"`
}

const ARG_UUID = "UUID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Delete a dataset, or one of its extras.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_UUID, Required: true,
				Help: "dataset to delete.",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Delete a whole dataset, purging it from CKAN irreversibly, or with --key
remove a single extras entry.
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
	id := cl.Args()[ARG_UUID][0]

	if flags.Key != "" {
		if _, err := client.DeleteExtra(ctx, id, flags.Key); err != nil {
			return err
		}
		logger.Printf("removed extra %q from dataset %s", flags.Key, id)
		return nil
	}

	if !flags.Yes {
		prompt := common.NewPrompter(cl.Stdin(), cl.Stdout())
		answer, err := prompt.Ask(
			fmt.Sprintf("purge dataset %s irreversibly? [y/N]", id), "N",
		)
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") {
			logger.Println("aborted.")
			return nil
		}
	}

	if err := client.Delete(ctx, id); err != nil {
		return err
	}
	logger.Printf("dataset %s is purged", id)
	return nil
}
