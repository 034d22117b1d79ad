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

func Checksum() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show the checksum dCache records for a file.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_PATH, Required: true,
				Help: "file on dCache.",
			},
		},
		common.NewConfigTask(ChecksumTask),
	)
}

func ChecksumTask(
	ctx context.Context,
	_ *log.Logger,
	cfg *conf.Config,
	_ env.Env,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	path := cl.Args()[ARG_PATH][0]

	if err := dcache.RequiredTools(); err != nil {
		return err
	}
	ada, err := dcache.NewAda(dcache.Auth{Method: cfg.DCache.Method, File: cfg.DCache.File})
	if err != nil {
		return err
	}

	sum, err := ada.Checksum(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cl.Stdout(), "%s=%s\n", sum.Type, sum.Value)
	return nil
}
