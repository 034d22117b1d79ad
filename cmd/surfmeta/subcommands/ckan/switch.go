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

const ARG_CKAN = "CKAN"

func Switch() (flarc.Command, error) {
	return flarc.NewCommand(
		"Switch the current CKAN endpoint.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_CKAN, Required: true,
				Help: "URL or alias of the CKAN endpoint to switch to. A new URL is registered on the fly.",
			},
		},
		common.NewConfigTask(SwitchTask),
	)
}

func SwitchTask(
	_ context.Context,
	logger *log.Logger,
	cfg *conf.Config,
	_ env.Env,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	target := cl.Args()[ARG_CKAN][0]
	if err := cfg.Use(target); err != nil {
		return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
	}
	logger.Printf("current CKAN is now %s", cfg.Current)
	return nil
}
