package ckan

import (
	"context"
	"fmt"
	"log"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/config/conf"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/youta-t/flarc"
)

type ClientFactory func(url string, token string) (rest.Client, error)

func Init() (flarc.Command, error) {
	return flarc.NewCommand(
		"Store and verify an API token for a CKAN endpoint.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_CKAN, Required: false,
				Help: "URL or alias of the CKAN endpoint. Defaults to the current one.",
			},
		},
		common.NewConfigTask(InitTask(rest.NewClient)),
		flarc.WithDescription(`
Store an API token for a CKAN endpoint, verifying it against the instance
before saving. The endpoint becomes the current one.

The token is read from stdin. Ask your CKAN admin for a token, or create one
on your CKAN user page.
`),
	)
}

func InitTask(newClient ClientFactory) common.ConfigTask[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cfg *conf.Config,
		_ env.Env,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		target := ""
		if args := cl.Args()[ARG_CKAN]; 0 < len(args) {
			target = args[0]
		}

		if target != "" {
			if err := cfg.Use(target); err != nil {
				return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
			}
		}
		u, _, err := cfg.GetEntry("")
		if err != nil {
			return err
		}

		prompt := common.NewPrompter(cl.Stdin(), cl.Stdout())
		token, err := prompt.AskRequired(fmt.Sprintf("API token for %s", u))
		if err != nil {
			return err
		}

		client, err := newClient(u, token)
		if err != nil {
			return err
		}
		user, err := client.CheckAuth(ctx)
		if err != nil {
			return fmt.Errorf("%w: token rejected by %s", err, u)
		}

		if err := cfg.SetToken(u, token); err != nil {
			return err
		}
		logger.Printf("token for %s verified: you are %s", u, user.Name)
		return nil
	}
}
