package dcache

import (
	"context"
	"log"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/config/conf"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/surf-rdm/surfmeta/pkg/dcache"
	"github.com/youta-t/flarc"
)

const (
	ARG_PATH  = "PATH"
	ARG_LABEL = "LABEL"
)

func AddLabel() (flarc.Command, error) {
	return flarc.NewCommand(
		"Attach the tracking label to a file on dCache.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_PATH, Required: true,
				Help: "file on dCache to label.",
			},
			{
				Name: ARG_LABEL, Required: false,
				Help: "label to attach. Defaults to the surfmeta.yaml label, or " + dcache.DefaultLabel + ".",
			},
		},
		common.NewConfigTask(AddLabelTask),
		flarc.WithDescription(`
Attach the tracking label to a file on dCache. Only labelled files have
their dataset locations followed by `+"`surfmeta dcache listen`"+`.
`),
	)
}

func AddLabelTask(
	ctx context.Context,
	logger *log.Logger,
	cfg *conf.Config,
	e env.Env,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	args := cl.Args()
	path := args[ARG_PATH][0]

	label := dcache.DefaultLabel
	if e.Label != "" {
		label = e.Label
	}
	if given := args[ARG_LABEL]; 0 < len(given) {
		label = given[0]
	}

	if err := dcache.RequiredTools(); err != nil {
		return err
	}
	ada, err := dcache.NewAda(dcache.Auth{Method: cfg.DCache.Method, File: cfg.DCache.File})
	if err != nil {
		return err
	}

	if err := ada.SetLabel(ctx, path, label); err != nil {
		return err
	}
	logger.Printf("label %q set on %s", label, path)
	return nil
}
