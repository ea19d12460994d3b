// Package publish commits a generated site tree to a local git repository so
// every successful build is versioned.
package publish

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// Committer records site snapshots.
type Committer struct {
	AuthorName  string
	AuthorEmail string
}

// Commit stages every change under dir, including deletions, and commits it.
// The repository is initialized on first use. A clean worktree yields no
// commit; committed is false and hash is empty.
func (c Committer) Commit(dir, message string, when time.Time) (hash string, committed bool, err error) {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return "", false, wrap(err, "failed to open site repository", dir)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", false, wrap(err, "failed to get git worktree", dir)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", false, wrap(err, "failed to stage site changes", dir)
	}
	status, err := wt.Status()
	if err != nil {
		return "", false, wrap(err, "failed to get git status", dir)
	}
	if status.IsClean() {
		return "", false, nil
	}

	h, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: c.AuthorName, Email: c.AuthorEmail, When: when},
	})
	if err != nil {
		return "", false, wrap(err, "failed to commit site changes", dir)
	}
	return h.String(), true, nil
}

// Message builds the commit message for a build.
func Message(buildID string, written, pruned int) string {
	return fmt.Sprintf("sitegen build %s\n\nwritten: %d\npruned: %d\n", buildID, written, pruned)
}

func wrap(err error, msg, dir string) error {
	return ferrors.WrapError(err, ferrors.CategoryRuntime, msg).WithContext("path", dir).Build()
}
