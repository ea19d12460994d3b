package inline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// DefaultInterpreter runs inline blocks when none is configured.
const DefaultInterpreter = "python3"

// SubprocessEvaluator runs each block in a fresh interpreter process that
// reads the source from stdin.
type SubprocessEvaluator struct {
	// Interpreter is the command line, split on whitespace.
	Interpreter string
	Timeout     time.Duration
}

// Evaluate implements UnsafeEvaluator.
func (e SubprocessEvaluator) Evaluate(ctx context.Context, source, root string) (string, error) {
	argv := strings.Fields(e.Interpreter)
	if len(argv) == 0 {
		argv = []string{DefaultInterpreter}
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	// #nosec G204 -- the interpreter is operator configuration
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "SITEGEN_ROOT="+root)
	cmd.Stdin = strings.NewReader(source)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if err == nil {
		return out.String(), nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.String(), ferrors.ScriptError(ErrScriptFailed.Message()).
			WithContext("exit_code", exitErr.ExitCode()).
			WithCause(err).
			Build()
	}
	return "", ferrors.ScriptError(ErrEvaluatorUnavailable.Message()).
		Fatal().
		WithContext("interpreter", argv[0]).
		WithCause(err).
		Build()
}
