// Package inline expands inline script blocks embedded in page content.
//
// A block is the text between a begin and an end marker, by default
// "<!--python" and "python-->". The enclosed source is handed to an
// UnsafeEvaluator and the block is replaced by everything the evaluation
// printed. This executes arbitrary code from content files: only build sites
// whose content authors are trusted.
package inline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Default block markers.
const (
	DefaultBeginMarker = "<!--python"
	DefaultEndMarker   = "python-->"
)

var (
	// ErrScriptFailed reports a block that ran but exited unsuccessfully. Its
	// output is still substituted.
	ErrScriptFailed = ferrors.ScriptError("inline script failed").Build()
	// ErrEvaluatorUnavailable reports that the evaluator could not run at all.
	ErrEvaluatorUnavailable = ferrors.ScriptError("inline evaluator unavailable").Fatal().Build()
)

// UnsafeEvaluator executes inline source with the privileges of the build.
// Output is the combined stdout and stderr of the evaluation. An error
// matching ErrScriptFailed may accompany valid output.
type UnsafeEvaluator interface {
	Evaluate(ctx context.Context, source, root string) (string, error)
}

// Block is one delimited inline script found in content.
type Block struct {
	// Start and End are byte offsets of the whole block including markers.
	Start, End int
	Source     string
}

// Runner finds and evaluates inline script blocks.
type Runner struct {
	Evaluator UnsafeEvaluator
	Begin     string
	End       string
	// Root is passed to the evaluator as the working directory.
	Root   string
	Logger *slog.Logger
}

// NewRunner creates a runner with the default markers.
func NewRunner(ev UnsafeEvaluator, root string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Evaluator: ev, Begin: DefaultBeginMarker, End: DefaultEndMarker, Root: root, Logger: logger}
}

// Find returns the blocks in content scanning left to right. The first end
// marker after a begin marker closes the block, so blocks never nest. A begin
// marker without a matching end is left as text.
func (r *Runner) Find(content string) []Block {
	begin, end := r.markers()
	var blocks []Block
	offset := 0
	for {
		i := strings.Index(content[offset:], begin)
		if i < 0 {
			break
		}
		start := offset + i
		srcStart := start + len(begin)
		j := strings.Index(content[srcStart:], end)
		if j < 0 {
			break
		}
		stop := srcStart + j + len(end)
		blocks = append(blocks, Block{Start: start, End: stop, Source: content[srcStart : srcStart+j]})
		offset = stop
	}
	return blocks
}

// Expand replaces every block in content with its evaluation output. Blocks
// whose script exits unsuccessfully keep their output and are reported as
// issues. An evaluator that cannot run aborts the expansion with an error.
func (r *Runner) Expand(ctx context.Context, file, content string) (string, []error, error) {
	blocks := r.Find(content)
	if len(blocks) == 0 {
		return content, nil, nil
	}

	var (
		b      strings.Builder
		issues []error
		last   int
	)
	for _, blk := range blocks {
		b.WriteString(content[last:blk.Start])
		out, err := r.Evaluator.Evaluate(ctx, blk.Source, r.Root)
		if err != nil {
			if !errors.Is(err, ErrScriptFailed) {
				return "", issues, err
			}
			r.Logger.Warn("Inline script failed", logfields.File(file), logfields.Error(err))
			issues = append(issues, err)
		}
		b.WriteString(out)
		last = blk.End
	}
	b.WriteString(content[last:])
	return b.String(), issues, nil
}

func (r *Runner) markers() (string, string) {
	begin, end := r.Begin, r.End
	if begin == "" {
		begin = DefaultBeginMarker
	}
	if end == "" {
		end = DefaultEndMarker
	}
	return begin, end
}
