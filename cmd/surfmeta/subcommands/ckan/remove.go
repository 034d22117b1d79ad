package ckan

import (
	"context"
	"fmt"
	"log"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/config/conf"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/youta-t/flarc"
)

func Remove() (flarc.Command, error) {
	return flarc.NewCommand(
		"Remove a CKAN endpoint from the config.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_CKAN, Required: true,
				Help: "URL or alias of the CKAN endpoint to forget. The default endpoint only loses its alias.",
			},
		},
		common.NewConfigTask(RemoveTask),
	)
}

func RemoveTask(
	_ context.Context,
	logger *log.Logger,
	cfg *conf.Config,
	_ env.Env,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	target := cl.Args()[ARG_CKAN][0]
	if err := cfg.Remove(target); err != nil {
		return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
	}
	logger.Printf("removed %s. current CKAN is %s", target, cfg.Current)
	return nil
}
