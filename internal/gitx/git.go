package gitx

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo wraps the local working repository the filemap lives in.
type Repo struct {
	repo *git.Repository
	root string
}

// Open discovers the repository containing path, walking up to the
// toplevel the way `git rev-parse --show-toplevel` does.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository at %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("resolve worktree: %w", err)
	}
	return &Repo{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the worktree toplevel; filemap paths are relative to it.
func (r *Repo) Root() string {
	return r.root
}

func (r *Repo) HasUncommittedChanges() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	return !status.IsClean(), nil
}

type HeadInfo struct {
	Branch        string
	SHA           string
	CommitMessage string
}

func (r *Repo) Head() (*HeadInfo, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	branch := "HEAD"
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}
	return &HeadInfo{
		Branch:        branch,
		SHA:           head.Hash().String(),
		CommitMessage: strings.TrimSpace(commit.Message),
	}, nil
}

// CreateAnnotatedTag tags HEAD with the given message, e.g. the push
// response JSON.
func (r *Repo) CreateAnnotatedTag(name, message, tagger string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	if tagger == "" {
		tagger = "gitdocsync"
	}
	_, err = r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  tagger,
			Email: tagger + "@gitdocsync.local",
			When:  time.Now(),
		},
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("create tag %s: %w", name, err)
	}
	return nil
}
