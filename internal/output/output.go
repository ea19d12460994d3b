// Package output writes generated files into namespace directories and prunes
// what a pass did not produce.
//
// A namespace directory is owned by exactly one builder. Files are tracked in
// a GeneratedFileSet as they are written; once the whole pass succeeded the set
// is reconciled against the directory and every other regular file is deleted.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/util/sets"
)

// GeneratedFileSet records the file names written into one namespace
// directory during a pass.
type GeneratedFileSet struct {
	Dir   string
	files sets.Set[string]
}

// NewGeneratedFileSet creates an empty set for dir.
func NewGeneratedFileSet(dir string) *GeneratedFileSet {
	return &GeneratedFileSet{Dir: dir, files: sets.New[string]()}
}

// Add records name as produced by this pass.
func (g *GeneratedFileSet) Add(name string) { g.files.Add(name) }

// Has reports whether name was produced by this pass.
func (g *GeneratedFileSet) Has(name string) bool { return g.files.Has(name) }

// Len returns the number of recorded files.
func (g *GeneratedFileSet) Len() int { return g.files.Len() }

// Names returns the recorded file names in sorted order.
func (g *GeneratedFileSet) Names() []string { return sets.Sorted(g.files) }

// Writer writes files into a namespace directory and records them.
type Writer struct {
	set     *GeneratedFileSet
	changed int
}

// NewWriter creates a writer for dir. The directory is created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{set: NewGeneratedFileSet(dir)}
}

// Dir returns the namespace directory.
func (w *Writer) Dir() string { return w.set.Dir }

// Set returns the files written so far.
func (w *Writer) Set() *GeneratedFileSet { return w.set }

// Changed returns how many writes actually touched the disk.
func (w *Writer) Changed() int { return w.changed }

// Write stores content under name unless the existing file already has the
// same content fingerprint. The name is recorded either way. It reports
// whether the file on disk changed.
func (w *Writer) Write(name, content string) (bool, error) {
	if err := ValidName(name); err != nil {
		return false, err
	}
	path := filepath.Join(w.set.Dir, name)

	// #nosec G304 -- path is a plain file name inside the namespace directory.
	if existing, err := os.ReadFile(path); err == nil && sameContent(existing, content) {
		w.set.Add(name)
		return false, nil
	}

	if err := os.MkdirAll(w.set.Dir, 0o750); err != nil {
		return false, ferrors.FileSystemError("create output directory").WithCause(err).WithContext("path", w.set.Dir).Build()
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return false, ferrors.FileSystemError("write output file").WithCause(err).WithContext("path", path).Build()
	}
	w.set.Add(name)
	w.changed++
	return true, nil
}

// Keep records name without writing it, so reconciliation preserves the
// file from an earlier pass. Used when a page failed to build.
func (w *Writer) Keep(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	w.set.Add(name)
	return nil
}

// Reconcile prunes the namespace directory against the files written so far.
func (w *Writer) Reconcile() ([]string, error) {
	return Reconcile(w.set.Dir, w.set)
}

func sameContent(existing []byte, content string) bool {
	if len(existing) != len(content) {
		return false
	}
	if Fingerprint(string(existing)) != Fingerprint(content) {
		return false
	}
	return bytes.Equal(existing, []byte(content))
}

// Fingerprint returns the content fingerprint used to skip unchanged writes.
func Fingerprint(content string) string {
	return mdfp.CalculateFingerprintFromParts("", content)
}

// ValidName reports whether name can be written directly inside a namespace.
func ValidName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return ferrors.ValidationError("output name must be a plain file name").WithContext("name", name).Build()
	}
	return nil
}

// Reconcile deletes every regular file directly inside dir whose name is not
// in written. Subdirectories and other non-regular entries are never touched.
// A missing directory is not an error. It returns the deleted names.
func Reconcile(dir string, written *GeneratedFileSet) ([]string, error) {
	if written == nil {
		return nil, errors.New("reconcile requires a generated file set")
	}
	if written.Dir != "" && filepath.Clean(written.Dir) != filepath.Clean(dir) {
		return nil, ferrors.InternalError("generated file set belongs to another directory").
			WithContext("path", dir).WithContext("set_dir", written.Dir).Build()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ferrors.FileSystemError("read output directory").WithCause(err).WithContext("path", dir).Build()
	}

	var pruned []string
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() || written.Has(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", entry.Name(), err))
			continue
		}
		pruned = append(pruned, entry.Name())
	}
	if len(errs) > 0 {
		return pruned, ferrors.FileSystemError("prune output directory").WithCause(errors.Join(errs...)).WithContext("path", dir).Build()
	}
	return pruned, nil
}
