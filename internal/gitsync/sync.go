// Package gitsync brings local working copies in line with their remotes:
// a full clone when the directory is absent, a fast-forward pull otherwise.
package gitsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// ErrNotFastForward reports a local working copy whose history has diverged
// from the remote default branch. The copy is left untouched; resolving the
// divergence is up to the operator.
var ErrNotFastForward = errors.New("local history has diverged from remote (not fast-forward)")

// Outcome describes what CloneOrUpdate did to the working copy.
type Outcome string

const (
	OutcomeCloned   Outcome = "cloned"
	OutcomeUpdated  Outcome = "updated"
	OutcomeUpToDate Outcome = "up-to-date"
)

// Service performs clone and fast-forward update operations. A Service is
// safe for concurrent use: each call operates on a disjoint directory.
type Service struct {
	auth transport.AuthMethod
}

// New returns a Service. A non-empty token authenticates HTTPS remotes the
// way GitHub expects for token access.
func New(token string) *Service {
	s := &Service{}
	if token != "" {
		s.auth = &githttp.BasicAuth{Username: "x-access-token", Password: token}
	}
	return s
}

// CloneOrUpdate makes dir mirror the remote default branch: a full clone if
// dir does not exist, otherwise a fast-forward pull. Returns ErrNotFastForward
// (wrapped) when the local history has diverged.
func (s *Service) CloneOrUpdate(ctx context.Context, remoteURL, dir string) (Outcome, error) {
	_, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s.clone(ctx, remoteURL, dir)
	case err != nil:
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}
	return s.update(ctx, dir)
}

func (s *Service) clone(ctx context.Context, remoteURL, dir string) (Outcome, error) {
	if remoteURL == "" {
		return "", fmt.Errorf("clone %s: no remote URL", dir)
	}
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  remoteURL,
		Auth: s.authFor(remoteURL),
	})
	if err != nil {
		// A failed clone can leave a partial directory behind; remove it so
		// the next attempt starts from "does not exist".
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("clone %s: %w", remoteURL, err)
	}
	return OutcomeCloned, nil
}

func (s *Service) update(ctx context.Context, dir string) (Outcome, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", dir, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree %s: %w", dir, err)
	}

	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName: git.DefaultRemoteName,
		Auth:       s.remoteAuth(repo),
	})
	switch {
	case err == nil:
		return OutcomeUpdated, nil
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		return OutcomeUpToDate, nil
	case errors.Is(err, git.ErrNonFastForwardUpdate):
		return "", fmt.Errorf("pull %s: %w", dir, ErrNotFastForward)
	default:
		return "", fmt.Errorf("pull %s: %w", dir, err)
	}
}

func (s *Service) remoteAuth(repo *git.Repository) transport.AuthMethod {
	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil || len(remote.Config().URLs) == 0 {
		return nil
	}
	return s.authFor(remote.Config().URLs[0])
}

// authFor returns the token auth for HTTPS remotes; other transports (ssh,
// local paths) carry their own credentials.
func (s *Service) authFor(remoteURL string) transport.AuthMethod {
	if s.auth == nil {
		return nil
	}
	if !strings.HasPrefix(remoteURL, "http://") && !strings.HasPrefix(remoteURL, "https://") {
		return nil
	}
	return s.auth
}
