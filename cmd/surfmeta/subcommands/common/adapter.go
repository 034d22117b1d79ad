package common

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/surf-rdm/surfmeta/cmd/surfmeta/config/conf"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/env"
	"github.com/surf-rdm/surfmeta/cmd/surfmeta/rest"
	"github.com/youta-t/flarc"
)

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		return task(
			ctx,
			logger,
			commonFlag,
			cl,
			newpos,
		)
	}
}

// ConfigTask is a task needing the local configuration and project
// defaults, but no CKAN connection.
type ConfigTask[T any] func(
	ctx context.Context,
	logger *log.Logger,
	cfg *conf.Config,
	e env.Env,
	cl flarc.Commandline[T],
	params []any,
) error

func NewConfigTask[T any](task ConfigTask[T]) flarc.Task[T] {
	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		cfg, err := conf.Load(commonFlag.Config, logger.Printf)
		if err != nil {
			return fmt.Errorf("%w: failed to load config (%s)", err, commonFlag.Config)
		}

		e, err := env.Load(commonFlag.Env)
		if err != nil {
			return fmt.Errorf("%w: failed to load %s", err, commonFlag.Env)
		}

		return task(ctx, logger, cfg, *e, cl, params)
	})
}

// ConnectedTask is a task talking to the current CKAN endpoint.
type ConnectedTask[T any] func(
	ctx context.Context,
	logger *log.Logger,
	cfg *conf.Config,
	e env.Env,
	client rest.Client,
	cl flarc.Commandline[T],
	params []any,
) error

func NewConnectedTask[T any](task ConnectedTask[T]) flarc.Task[T] {
	return NewConfigTask(func(
		ctx context.Context,
		logger *log.Logger,
		cfg *conf.Config,
		e env.Env,
		cl flarc.Commandline[T],
		params []any,
	) error {
		url, token, err := cfg.CurrentEndpoint()
		if err != nil {
			if errors.Is(err, conf.ErrNoToken) {
				return fmt.Errorf(
					"%w. Please try `surfmeta ckan init` to store a token for %s",
					err, cfg.Current,
				)
			}
			return err
		}

		client, err := rest.NewClient(url, token)
		if err != nil {
			return fmt.Errorf("%w: cannot reach CKAN at %s", err, url)
		}

		return task(ctx, logger, cfg, e, client, cl, params)
	})
}

// Task is a ConnectedTask not caring about the configuration itself.
type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	e env.Env,
	client rest.Client,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTask[T any](task Task[T]) flarc.Task[T] {
	return NewConnectedTask(func(
		ctx context.Context,
		logger *log.Logger,
		_ *conf.Config,
		e env.Env,
		client rest.Client,
		cl flarc.Commandline[T],
		params []any,
	) error {
		return task(ctx, logger, e, client, cl, params)
	})
}
