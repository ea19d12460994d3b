package build

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/detail"
	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/index"
	"git.home.luguber.info/inful/sitegen/internal/inline"
	"git.home.luguber.info/inful/sitegen/internal/listing"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/master"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/notify"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/plugin"
	"git.home.luguber.info/inful/sitegen/internal/plugin/builtin"
	"git.home.luguber.info/inful/sitegen/internal/publish"
	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

// Runner executes builds for one configuration. Runs must not overlap.
type Runner struct {
	Config *config.Config

	Recorder  metrics.Recorder
	Textfile  TextfileWriter
	History   HistoryAppender
	Notifier  notify.Publisher
	Committer *publish.Committer

	// Evaluator overrides the subprocess evaluator for inline blocks.
	Evaluator inline.UnsafeEvaluator

	Now    func() time.Time
	NewID  func() string
	Logger *slog.Logger
}

// NewRunner creates a runner without sinks.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		Config:   cfg,
		Recorder: metrics.NoopRecorder{},
		Now:      time.Now,
		NewID:    uuid.NewString,
		Logger:   logger,
	}
}

// Run executes passes in order. It stops at the first fatal pass error; in
// that case nothing is reconciled. The report is always returned.
func (r *Runner) Run(ctx context.Context, passes ...Pass) (*Report, error) {
	rep := &Report{BuildID: r.NewID(), Start: r.Now()}
	logger := r.Logger.With(logfields.BuildID(rep.BuildID))

	if r.Config == nil {
		rep.Err = ferrors.ConfigError("config required").Fatal().Build()
		rep.End = r.Now()
		rep.deriveOutcome(false)
		r.Recorder.IncBuildOutcome(string(rep.Outcome))
		return rep, rep.Err
	}

	logger.Info("Starting build", logfields.Count(len(passes)))

	writers := make(map[Pass]*output.Writer, len(passes))
	canceled := false
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			rep.Err, canceled = err, true
			break
		}
		plog := logger.With(logfields.Stage(string(p)))
		pr, w := r.runPass(ctx, plog, p)
		rep.Passes = append(rep.Passes, pr)
		r.Recorder.ObserveStageDuration(string(p), pr.Duration)

		if pr.Err != nil {
			canceled = errors.Is(pr.Err, context.Canceled) || errors.Is(pr.Err, context.DeadlineExceeded)
			if canceled {
				r.Recorder.IncStageResult(string(p), metrics.ResultCanceled)
			} else {
				r.Recorder.IncStageResult(string(p), metrics.ResultFatal)
			}
			plog.Error("Build pass failed", logfields.Error(pr.Err))
			rep.Err = pr.Err
			break
		}
		if pr.Warnings() > 0 {
			r.Recorder.IncStageResult(string(p), metrics.ResultWarning)
		} else {
			r.Recorder.IncStageResult(string(p), metrics.ResultSuccess)
		}
		if w != nil {
			writers[p] = w
		}
	}

	if rep.Err == nil {
		r.reconcile(logger, rep, writers)
	}

	rep.End = r.Now()
	rep.deriveOutcome(canceled)
	r.runSinks(ctx, logger, rep)

	logger.Info("Build finished",
		slog.String("outcome", string(rep.Outcome)),
		logfields.DurationMS(float64(rep.Duration().Milliseconds())))
	return rep, rep.Err
}

func (r *Runner) runPass(ctx context.Context, logger *slog.Logger, p Pass) (*PassReport, *output.Writer) {
	start := time.Now()
	pr := &PassReport{Pass: p}
	cfg := r.Config

	var w *output.Writer
	switch p {
	case PassMaster:
		pr.Dir = cfg.TemplateDir
		changed, err := master.FillFromFile(cfg.TemplateDir, cfg.DataFile, r.Now())
		pr.Err = err
		if err == nil {
			pr.Produced = []string{tmpl.FilledMasterTemplateFile}
			if changed {
				pr.Changed = 1
			}
		}
	case PassPages:
		w = output.NewWriter(cfg.Output.Pages)
		pr.Err = r.pagesPass(ctx, logger, w, pr)
	case PassIndex:
		w = output.NewWriter(cfg.Output.ListingsIndex)
		pr.Err = r.indexPass(ctx, logger, w)
	case PassListings:
		w = output.NewWriter(cfg.Output.ListingDetails)
		pr.Err = r.listingsPass(ctx, logger, w)
	default:
		pr.Err = ferrors.BuildError("unknown build pass").WithContext("pass", string(p)).Build()
	}

	if w != nil {
		pr.Dir = w.Dir()
		pr.Produced = w.Set().Names()
		pr.Changed = w.Changed()
	}
	pr.Duration = time.Since(start)
	if pr.Err == nil {
		logger.Info("Build pass complete",
			logfields.Path(pr.Dir),
			logfields.Count(len(pr.Produced)),
			slog.Int("changed", pr.Changed),
			logfields.DurationMS(float64(pr.Duration.Milliseconds())))
	}
	if pr.Err != nil || w == nil {
		return pr, nil
	}
	return pr, w
}

func (r *Runner) pagesPass(ctx context.Context, logger *slog.Logger, w *output.Writer, pr *PassReport) error {
	cfg := r.Config
	reg, err := r.Registry(logger)
	if err != nil {
		return err
	}

	var runner *inline.Runner
	if cfg.Inline.IsEnabled() {
		ev := r.Evaluator
		if ev == nil {
			ev = inline.SubprocessEvaluator{Interpreter: cfg.Inline.Interpreter, Timeout: cfg.Plugins.Timeout}
		}
		runner = inline.NewRunner(ev, cfg.TemplateDir, logger)
		runner.Begin, runner.End = cfg.Inline.BeginMarker, cfg.Inline.EndMarker
	}

	orch, err := pages.New(cfg.TemplateDir, runner, plugin.NewExpander(reg, cfg.TemplateDir, logger), logger)
	if err != nil {
		return err
	}
	orch.Now = r.Now

	res, err := orch.Build(ctx, w)
	if err != nil {
		return err
	}
	pr.Failed, pr.Skipped, pr.Issues = res.Failed, res.Skipped, res.Issues
	return nil
}

// Registry builds the plugin registry for the configured template directory.
// Script units are registered before the built-in generators so a script can
// replace a built-in of the same name.
func (r *Runner) Registry(logger *slog.Logger) (*plugin.Registry, error) {
	cfg := r.Config
	reg := plugin.NewRegistry()
	opts := plugin.ScriptOptions{
		Interpreters: cfg.Plugins.Interpreters,
		Python:       cfg.Plugins.Interpreters[".py"],
		Timeout:      cfg.Plugins.Timeout,
	}
	n, err := plugin.RegisterScripts(reg, cfg.TemplateDir, opts, logger)
	if err != nil {
		return nil, err
	}
	files := builtin.Files{SiteData: absPath(cfg.DataFile), Feed: absPath(cfg.FeedFile)}
	if err := builtin.Register(reg, files, logger); err != nil {
		return nil, err
	}
	logger.Debug("Plugin registry ready", logfields.Count(n), slog.Any("plugins", reg.Names()))
	return reg, nil
}

func (r *Runner) indexPass(ctx context.Context, logger *slog.Logger, w *output.Writer) error {
	cfg := r.Config
	t, err := index.LoadTemplates(cfg.TemplateDir)
	if err != nil {
		return err
	}
	records, err := listing.LoadFeed(cfg.FeedFile)
	if err != nil {
		return err
	}
	b := index.NewBuilder(t, logger)
	b.PageSize = cfg.Index.PageSize
	_, err = b.Build(ctx, records, w)
	return err
}

func (r *Runner) listingsPass(ctx context.Context, logger *slog.Logger, w *output.Writer) error {
	cfg := r.Config
	t, err := detail.LoadTemplates(cfg.TemplateDir)
	if err != nil {
		return err
	}
	records, err := listing.LoadFeed(cfg.FeedFile)
	if err != nil {
		return err
	}
	b := detail.NewBuilder(t, logger)
	b.Now = r.Now
	_, err = b.Build(ctx, records, w)
	return err
}

// reconcile prunes every namespace written by this build. A failure marks the
// build failed but does not stop the remaining namespaces.
func (r *Runner) reconcile(logger *slog.Logger, rep *Report, writers map[Pass]*output.Writer) {
	var errs []error
	for _, pr := range rep.Passes {
		w, ok := writers[pr.Pass]
		if !ok {
			continue
		}
		pruned, err := w.Reconcile()
		pr.Pruned = pruned
		if err != nil {
			logger.Error("Failed to reconcile output", logfields.Namespace(string(pr.Pass)), logfields.Error(err))
			errs = append(errs, err)
			continue
		}
		if len(pruned) > 0 {
			logger.Info("Pruned stale output files",
				logfields.Namespace(string(pr.Pass)), logfields.Path(pr.Dir), logfields.Count(len(pruned)))
		}
	}
	if len(errs) > 0 {
		rep.Err = errors.Join(errs...)
	}
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
