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

const (
	ARG_ALIAS = "ALIAS"
	ARG_URL   = "URL"
)

func Alias() (flarc.Command, error) {
	return flarc.NewCommand(
		"Give a CKAN endpoint a short alias.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_ALIAS, Required: true,
				Help: "alias to assign. Must not be in use yet.",
			},
			{
				Name: ARG_URL, Required: true,
				Help: "URL of the CKAN endpoint. Registered on the fly when unknown.",
			},
		},
		common.NewConfigTask(AliasTask),
	)
}

func AliasTask(
	_ context.Context,
	logger *log.Logger,
	cfg *conf.Config,
	_ env.Env,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	args := cl.Args()
	alias := args[ARG_ALIAS][0]
	url := args[ARG_URL][0]

	if err := cfg.SetAlias(alias, url); err != nil {
		return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
	}
	logger.Printf("%s is now aliased %q", url, alias)
	return nil
}
