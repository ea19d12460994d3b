package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// contractExitCode is the exit status a script unit uses to signal that it
// has no generate entry point.
const contractExitCode = 3

// pythonShim loads a .py unit and calls its generate_content(params) entry
// point with the JSON object read from stdin.
const pythonShim = `import importlib.util, json, sys
spec = importlib.util.spec_from_file_location("sitegen_plugin", sys.argv[1])
mod = importlib.util.module_from_spec(spec)
spec.loader.exec_module(mod)
fn = getattr(mod, "generate_content", None)
if not callable(fn):
    sys.stderr.write("generate_content not defined\n")
    sys.exit(3)
out = fn(json.load(sys.stdin))
sys.stdout.write("" if out is None else str(out))
`

// ScriptOptions controls how script units are discovered and run.
type ScriptOptions struct {
	// Interpreters maps a file extension (".sh") to the program that runs it.
	Interpreters map[string]string
	// Python runs ".py" units through the generate_content shim.
	Python string
	// Timeout bounds a single invocation. Zero means no limit.
	Timeout time.Duration
}

// ScriptUnit runs an external program as a generator. Params are written to
// stdin as a JSON object and stdout is the generated HTML.
type ScriptUnit struct {
	Name    string
	Path    string
	command []string
	timeout time.Duration
}

// Generate runs the script.
func (s *ScriptUnit) Generate(ctx context.Context, req Request) (string, error) {
	if len(s.command) == 0 {
		return "", contractError(s.Name, fmt.Sprintf("%s has no interpreter and is not executable", s.Path))
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(req.Params)
	if err != nil {
		return "", err
	}

	// #nosec G204 -- script paths come from the site's own scripts directory
	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Dir = req.Root
	cmd.Env = append(os.Environ(), "SITEGEN_ROOT="+req.Root, "SITEGEN_PLUGIN="+s.Name)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == contractExitCode {
			return "", contractError(s.Name, strings.TrimSpace(stderr.String()))
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return stdout.String(), nil
}

// LoadScripts discovers script units in {root}/scripts. A file's stem is its
// plugin name; names starting with '_' and stems that are not identifiers are
// skipped. When two files share a stem the first in lexical order wins.
// A missing scripts directory yields no units.
func LoadScripts(root string, opts ScriptOptions, logger *slog.Logger) ([]*ScriptUnit, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Join(root, ScriptsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read scripts directory").
			WithContext("path", dir).
			Build()
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	seen := make(map[string]string)
	var units []*ScriptUnit
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		ext := filepath.Ext(fileName)
		stem := strings.TrimSuffix(fileName, ext)
		if strings.HasPrefix(stem, "_") || !namePattern.MatchString(stem) {
			continue
		}
		if first, dup := seen[stem]; dup {
			logger.Warn("Duplicate script unit ignored",
				logfields.Plugin(stem), logfields.File(fileName), slog.String("kept", first))
			continue
		}
		seen[stem] = fileName

		path := filepath.Join(absDir, fileName)
		units = append(units, &ScriptUnit{
			Name:    stem,
			Path:    path,
			command: scriptCommand(path, ext, entry, opts),
			timeout: opts.Timeout,
		})
	}
	return units, nil
}

func scriptCommand(path, ext string, entry os.DirEntry, opts ScriptOptions) []string {
	if ext == ".py" {
		python := opts.Python
		if python == "" {
			python = "python3"
		}
		return []string{python, "-c", pythonShim, path}
	}
	if interp, ok := opts.Interpreters[ext]; ok && interp != "" {
		return append(strings.Fields(interp), path)
	}
	if info, err := entry.Info(); err == nil && info.Mode().Perm()&0o111 != 0 {
		return []string{path}
	}
	return nil
}

// RegisterScripts loads script units and registers each one. Units with a
// name already present in the registry are skipped with a warning.
func RegisterScripts(reg *Registry, root string, opts ScriptOptions, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	units, err := LoadScripts(root, opts, logger)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range units {
		if reg.Has(u.Name) {
			logger.Warn("Script unit shadowed by existing plugin", logfields.Plugin(u.Name))
			continue
		}
		if err := reg.Register(u.Name, u); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
