package gitsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func commitFile(t *testing.T, dir, name, content, message string) {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("open %s: %v", dir, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := worktree.Add(name); err != nil {
		t.Fatal(err)
	}
	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
}

// newUpstream initializes a repository with one commit and returns its path.
func newUpstream(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "upstream")
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatalf("init: %v", err)
	}
	commitFile(t, dir, "README.md", "# hw1\n", "initial")
	return dir
}

func TestCloneOrUpdate_ClonesWhenAbsent(t *testing.T) {
	upstream := newUpstream(t)
	dir := filepath.Join(t.TempDir(), "hw1-ada")

	outcome, err := New("").CloneOrUpdate(context.Background(), upstream, dir)
	if err != nil {
		t.Fatalf("CloneOrUpdate: %v", err)
	}
	if outcome != OutcomeCloned {
		t.Fatalf("want %q, got %q", OutcomeCloned, outcome)
	}
	if _, err := os.Stat(filepath.Join(dir, "README.md")); err != nil {
		t.Fatalf("cloned content missing: %v", err)
	}
}

func TestCloneOrUpdate_UpToDate(t *testing.T) {
	upstream := newUpstream(t)
	dir := filepath.Join(t.TempDir(), "hw1-ada")
	svc := New("")

	if _, err := svc.CloneOrUpdate(context.Background(), upstream, dir); err != nil {
		t.Fatalf("clone: %v", err)
	}

	outcome, err := svc.CloneOrUpdate(context.Background(), upstream, dir)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if outcome != OutcomeUpToDate {
		t.Fatalf("want %q, got %q", OutcomeUpToDate, outcome)
	}
}

func TestCloneOrUpdate_FastForwards(t *testing.T) {
	upstream := newUpstream(t)
	dir := filepath.Join(t.TempDir(), "hw1-ada")
	svc := New("")

	if _, err := svc.CloneOrUpdate(context.Background(), upstream, dir); err != nil {
		t.Fatalf("clone: %v", err)
	}
	commitFile(t, upstream, "hw.py", "print('hi')\n", "add submission")

	outcome, err := svc.CloneOrUpdate(context.Background(), upstream, dir)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Fatalf("want %q, got %q", OutcomeUpdated, outcome)
	}
	if _, err := os.Stat(filepath.Join(dir, "hw.py")); err != nil {
		t.Fatalf("pulled content missing: %v", err)
	}
}

func TestCloneOrUpdate_DivergedHistory(t *testing.T) {
	upstream := newUpstream(t)
	dir := filepath.Join(t.TempDir(), "hw1-ada")
	svc := New("")

	if _, err := svc.CloneOrUpdate(context.Background(), upstream, dir); err != nil {
		t.Fatalf("clone: %v", err)
	}
	commitFile(t, dir, "local.txt", "local edit\n", "local change")
	commitFile(t, upstream, "remote.txt", "remote edit\n", "remote change")

	_, err := svc.CloneOrUpdate(context.Background(), upstream, dir)
	if !errors.Is(err, ErrNotFastForward) {
		t.Fatalf("want ErrNotFastForward, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "local.txt")); statErr != nil {
		t.Fatalf("diverged working copy must be left untouched: %v", statErr)
	}
}

func TestCloneOrUpdate_FailedCloneLeavesNoDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hw1-ada")

	_, err := New("").CloneOrUpdate(context.Background(), filepath.Join(t.TempDir(), "no-such-remote"), dir)
	if err == nil {
		t.Fatal("clone from a missing remote must fail")
	}
	if _, statErr := os.Stat(dir); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("partial clone directory must be removed, stat: %v", statErr)
	}
}

func TestCloneOrUpdate_EmptyRemoteURL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hw1-ada")
	if _, err := New("").CloneOrUpdate(context.Background(), "", dir); err == nil {
		t.Fatal("clone without a remote URL must fail")
	}
}

func TestAuthFor_OnlyHTTPRemotes(t *testing.T) {
	svc := New("secret-token")
	if svc.authFor("https://github.com/course/hw1-ada.git") == nil {
		t.Fatal("https remotes must carry token auth")
	}
	if svc.authFor("git@github.com:course/hw1-ada.git") != nil {
		t.Fatal("ssh remotes must not carry token auth")
	}
	if New("").authFor("https://github.com/course/hw1-ada.git") != nil {
		t.Fatal("no token means no auth")
	}
}
