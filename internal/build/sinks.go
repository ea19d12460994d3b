package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/history"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/notify"
	"git.home.luguber.info/inful/sitegen/internal/publish"
)

// TextfileWriter exports collected metrics to a file.
type TextfileWriter interface {
	WriteTextfile(path string) error
}

// HistoryAppender records namespace passes.
type HistoryAppender interface {
	Append(ctx context.Context, e history.Entry) (int64, error)
}

// OpenSinks attaches the sinks enabled in the runner's configuration. An
// unreachable NATS server only disables notifications; a history database
// that cannot be opened is an error. The returned function releases all
// sinks.
func (r *Runner) OpenSinks() (func(), error) {
	cfg := r.Config
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Metrics.Textfile != "" {
		rec := metrics.NewPrometheusRecorder(prom.NewRegistry())
		r.Recorder, r.Textfile = rec, rec
	}

	if cfg.History.Database != "" {
		store, err := history.Open(cfg.History.Database)
		if err != nil {
			return closeAll, err
		}
		r.History = store
		closers = append(closers, func() { _ = store.Close() })
	}

	if cfg.Notify.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			r.Logger.Warn("Notifications disabled", slog.String("url", cfg.Notify.NATSURL), logfields.Error(err))
		} else {
			r.Notifier = pub
			closers = append(closers, pub.Close)
		}
	}

	if cfg.Publish.Git {
		r.Committer = &publish.Committer{AuthorName: cfg.Publish.AuthorName, AuthorEmail: cfg.Publish.AuthorEmail}
	}
	return closeAll, nil
}

func (r *Runner) runSinks(ctx context.Context, logger *slog.Logger, rep *Report) {
	r.Recorder.IncBuildOutcome(string(rep.Outcome))
	r.Recorder.ObserveBuildDuration(rep.Duration())
	for _, p := range rep.Passes {
		r.Recorder.AddFiles(string(p.Pass), p.Changed, len(p.Pruned))
		r.Recorder.AddIssues(string(p.Pass), p.Warnings())
	}

	warn := func(sink string, err error) {
		logger.Warn("Build sink failed", slog.String("sink", sink), logfields.Error(err))
		rep.Warnings = append(rep.Warnings, err)
	}

	if r.Textfile != nil && r.Config.Metrics.Textfile != "" {
		if err := r.Textfile.WriteTextfile(r.Config.Metrics.Textfile); err != nil {
			warn("metrics", err)
		}
	}

	if rep.Outcome == OutcomeFailed || rep.Outcome == OutcomeCanceled {
		return
	}

	if r.History != nil {
		for _, p := range rep.Passes {
			_, err := r.History.Append(ctx, history.Entry{
				BuildID:   rep.BuildID,
				Namespace: string(p.Pass),
				Outcome:   string(rep.Outcome),
				Written:   p.Changed,
				Pruned:    len(p.Pruned),
				Warnings:  p.Warnings(),
				Failed:    len(p.Failed),
				StartedAt: rep.Start,
				Duration:  p.Duration,
			})
			if err != nil {
				warn("history", err)
				break
			}
		}
	}

	if r.Notifier != nil {
		if err := r.Notifier.Publish(ctx, Event(rep)); err != nil {
			warn("notify", err)
		}
	}

	if r.Committer != nil {
		written, pruned := 0, 0
		for _, p := range rep.Passes {
			written += p.Changed
			pruned += len(p.Pruned)
		}
		msg := publish.Message(rep.BuildID, written, pruned)
		for _, dir := range publishRoots(rep) {
			hash, committed, err := r.Committer.Commit(dir, msg, rep.End)
			if err != nil {
				warn("publish", err)
				continue
			}
			if committed {
				logger.Info("Committed site output", logfields.Path(dir), slog.String("commit", hash))
			}
		}
	}
}

// Event converts a report into a notification.
func Event(rep *Report) notify.Event {
	ev := notify.Event{
		BuildID:    rep.BuildID,
		Outcome:    string(rep.Outcome),
		StartedAt:  rep.Start,
		DurationMS: rep.Duration().Milliseconds(),
	}
	for _, p := range rep.Passes {
		ev.Namespaces = append(ev.Namespaces, notify.NamespaceSum{
			Name:     string(p.Pass),
			Dir:      p.Dir,
			Written:  p.Changed,
			Pruned:   len(p.Pruned),
			Warnings: p.Warnings(),
			Failed:   len(p.Failed),
		})
	}
	return ev
}

// publishRoots returns the namespace directories written by rep, dropping
// any directory nested inside another one.
func publishRoots(rep *Report) []string {
	var dirs []string
	for _, p := range rep.Passes {
		if p.Pass == PassMaster || p.Dir == "" {
			continue
		}
		dirs = append(dirs, absPath(p.Dir))
	}
	var roots []string
	for _, d := range dirs {
		nested := false
		for _, other := range dirs {
			if other != d && within(d, other) {
				nested = true
				break
			}
		}
		if !nested && !slices.Contains(roots, d) {
			roots = append(roots, d)
		}
	}
	return roots
}

func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
