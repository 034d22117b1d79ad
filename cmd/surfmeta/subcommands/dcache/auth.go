package dcache

import (
	"context"
	"fmt"
	"log"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/config/conf"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/surf-rdm/surfmeta/pkg/dcache"
	"github.com/youta-t/flarc"
)

type AuthFlag struct {
	Macaroon string `flag:"macaroon" metavar:"FILE" help:"authenticate ada with this macaroon token file"`
	Netrc    string `flag:"netrc" metavar:"FILE" help:"authenticate ada with this netrc file"`
}

func Auth() (flarc.Command, error) {
	return flarc.NewCommand(
		"Configure how ada authenticates against dCache.",
		AuthFlag{},
		flarc.Args{},
		common.NewConfigTask(AuthTask),
		flarc.WithDescription(`
Configure dCache authentication for the external ada tool and store it in
the surfmeta config. The credentials are verified with a directory listing
before saving.
`),
	)
}

func AuthTask(
	ctx context.Context,
	logger *log.Logger,
	cfg *conf.Config,
	_ env.Env,
	cl flarc.Commandline[AuthFlag],
	_ []any,
) error {
	flags := cl.Flags()

	auth := dcache.Auth{}
	switch {
	case flags.Macaroon != "" && flags.Netrc != "":
		return fmt.Errorf("%w: --macaroon and --netrc exclude each other", flarc.ErrUsage)
	case flags.Macaroon != "":
		auth = dcache.Auth{Method: dcache.MethodMacaroon, File: flags.Macaroon}
	case flags.Netrc != "":
		auth = dcache.Auth{Method: dcache.MethodNetrc, File: flags.Netrc}
	default:
		return fmt.Errorf("%w: either --macaroon or --netrc is required", flarc.ErrUsage)
	}

	if err := dcache.RequiredTools(); err != nil {
		return err
	}
	ada, err := dcache.NewAda(auth)
	if err != nil {
		return err
	}
	if _, err := ada.List(ctx, "."); err != nil {
		return fmt.Errorf("%w: credentials rejected by dCache", err)
	}

	if err := cfg.SetDCacheAuth(auth.Method, auth.File); err != nil {
		return err
	}
	logger.Printf("dCache auth stored: %s via %s", auth.Method, auth.File)
	return nil
}
