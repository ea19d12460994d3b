package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/plugin"
	"git.home.luguber.info/inful/sitegen/internal/tmpl"
	"git.home.luguber.info/inful/sitegen/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce time.Duration `help:"Quiet period before a rebuild (overrides watch.debounce), e.g. 250ms"`
}

func (w *WatchCmd) Run(ctx context.Context, root *CLI) error {
	cfg := root.cfg
	if w.Debounce > 0 {
		cfg.Watch.Debounce = w.Debounce
	}

	r, closeSinks, err := root.runner()
	if err != nil {
		return err
	}
	defer closeSinks()

	logger := root.Logger()
	rebuild := func(ctx context.Context, passes []build.Pass) {
		rep, err := r.Run(ctx, passes...)
		if rep != nil {
			_, _ = fmt.Fprintln(root.out(), rep.Summary())
		}
		if err != nil && ctx.Err() == nil {
			logger.Error("Rebuild failed", logfields.Error(err))
		}
	}
	rebuild(ctx, build.AllPasses())

	watcher := watch.New(logger, watchDirs(cfg.TemplateDir, cfg.DataFile, cfg.FeedFile)...)
	watcher.Debounce = cfg.Watch.Debounce
	outputs := []string{cfg.Output.Pages, cfg.Output.ListingsIndex, cfg.Output.ListingDetails}
	watcher.Ignore = func(p string) bool {
		return filepath.Base(p) == tmpl.FilledMasterTemplateFile || watch.Under(p, outputs...)
	}

	logger.Info("Watching for changes", slog.Any("outputs", outputs))
	return watcher.Run(ctx, func(ctx context.Context, changed []string) {
		plan := build.Plan(cfg, changed)
		logger.Info("Rebuilding", slog.String("reason", plan.Reason), logfields.Count(len(changed)))
		rebuild(ctx, plan.Passes)
	})
}

// watchDirs lists the template directory, its content and scripts
// directories, and the directories holding the data files, without
// duplicates.
func watchDirs(templateDir string, files ...string) []string {
	dirs := []string{
		templateDir,
		filepath.Join(templateDir, pages.ContentDir),
		filepath.Join(templateDir, plugin.ScriptsDir),
	}
	for _, f := range files {
		if f != "" {
			dirs = append(dirs, filepath.Dir(f))
		}
	}
	seen := make(map[string]bool, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		c := filepath.Clean(d)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
