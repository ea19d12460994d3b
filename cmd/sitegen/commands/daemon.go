package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/build"
	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/schedule"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Interval time.Duration `help:"Rebuild interval (overrides schedule.interval), e.g. 15m"`
}

func (d *DaemonCmd) Run(ctx context.Context, root *CLI) error {
	cfg := root.cfg
	if d.Interval > 0 {
		cfg.Schedule.Interval = d.Interval
	}

	r, closeSinks, err := root.runner()
	if err != nil {
		return err
	}
	defer closeSinks()

	logger := root.Logger()
	s, err := schedule.New(logger)
	if err != nil {
		return err
	}
	_, err = s.Every(ctx, "site-build", cfg.Schedule.Interval, func(ctx context.Context) {
		rep, err := r.Run(ctx, build.AllPasses()...)
		if rep != nil {
			_, _ = fmt.Fprintln(root.out(), rep.Summary())
		}
		if err != nil && ctx.Err() == nil {
			logger.Error("Scheduled build failed", logfields.Error(err))
		}
	})
	if err != nil {
		_ = s.Stop()
		return err
	}

	s.Start()
	logger.Info("Daemon started, waiting for shutdown signal", "interval", cfg.Schedule.Interval.String())
	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping daemon")
	if err := s.Stop(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to stop scheduler").Build()
	}
	logger.Info("Daemon stopped")
	return nil
}
