package dcache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/config/conf"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/subcommands/common"
	"github.com/surf-rdm/surfmeta/pkg/dcache"
	"github.com/youta-t/flarc"
)

type ListenFlag struct {
	Label   string `flag:"label" metavar:"LABEL" help:"tracking label to follow. Defaults to the surfmeta.yaml label, or test-ckan"`
	Channel string `flag:"channel" metavar:"CHANNEL" help:"dCache event channel to subscribe to"`
	Local   string `flag:"local" metavar:"DIR" help:"watch a local directory instead of dCache"`
}

func Listen() (flarc.Command, error) {
	return flarc.NewCommand(
		"Follow storage events and keep dataset locations in sync.",
		ListenFlag{},
		flarc.Args{
			{
				Name: ARG_PATH, Required: false,
				Help: "directory on dCache to watch. Required unless --local is given.",
			},
		},
		common.NewConnectedTask(ListenTask),
		flarc.WithDescription(`
Subscribe to storage events and reconcile the CKAN catalog with them.

When a labelled file is moved, datasets pointing at its old location are
rewritten to the new one. When a file is deleted, a warning is attached to
the datasets referring to it. Unlabelled files are ignored for moves.

Runs until interrupted. With --local DIR a local directory is watched with
inotify instead of dCache, and every file is treated as labelled.
`),
	)
}

func ListenTask(
	ctx context.Context,
	logger *log.Logger,
	cfg *conf.Config,
	e env.Env,
	client rest.Client,
	cl flarc.Commandline[ListenFlag],
	_ []any,
) error {
	flags := cl.Flags()

	label := dcache.DefaultLabel
	if e.Label != "" {
		label = e.Label
	}
	if flags.Label != "" {
		label = flags.Label
	}

	if flags.Local != "" {
		rec := dcache.NewReconciler(client, dcache.AlwaysLabeled(label), label, logger)
		logger.Printf("watching local directory %s", flags.Local)
		err := dcache.WatchLocal(ctx, flags.Local, func(ev dcache.Event) {
			rec.Handle(ctx, ev)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	path := cl.Args()[ARG_PATH]
	if len(path) == 0 {
		return fmt.Errorf("%w: PATH is required unless --local is given", flarc.ErrUsage)
	}

	if err := dcache.RequiredTools(); err != nil {
		return err
	}
	ada, err := dcache.NewAda(dcache.Auth{Method: cfg.DCache.Method, File: cfg.DCache.File})
	if err != nil {
		return err
	}

	channel := dcache.DefaultChannel
	if e.Channel != "" {
		channel = e.Channel
	}
	if flags.Channel != "" {
		channel = flags.Channel
	}

	defer func() {
		// the listening ctx is gone by now, so give cleanup its own deadline.
		cctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := ada.DeleteChannel(cctx, channel); err != nil {
			logger.Printf("could not release channel %s: %s", channel, err)
		}
	}()

	rec := dcache.NewReconciler(client, ada, label, logger)
	logger.Printf("listening on channel %s for %s (label %q)", channel, path[0], label)

	err = ada.Events(ctx, channel, path[0], func(ev dcache.Event) {
		rec.Handle(ctx, ev)
	})
	if errors.Is(err, dcache.ErrChannelInUse) {
		return fmt.Errorf("%w. See `surfmeta dcache ada-help` for freeing channels", err)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
