package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"cohort/internal/gitsync"
)

// Syncer is the clone-or-update collaborator for KindSync requests.
type Syncer interface {
	CloneOrUpdate(ctx context.Context, remoteURL, dir string) (gitsync.Outcome, error)
}

// Runner executes a single request against a single target.
type Runner struct {
	syncer Syncer
}

// NewRunner returns a Runner. syncer may be nil if the runner will never see
// KindSync requests.
func NewRunner(syncer Syncer) *Runner {
	return &Runner{syncer: syncer}
}

// Execute runs one request against one target. It never returns an error:
// every outcome, including faults, is encoded on the Result, and Duration is
// populated even when the operation failed partway through.
func (r *Runner) Execute(ctx context.Context, target Target, req Request) Result {
	start := time.Now()
	res := Result{Target: target.Name}

	switch req.Kind {
	case KindRunCommand:
		r.runCommand(ctx, target, req, &res)
	case KindCopyFile:
		r.copyFile(target, req, &res)
	case KindReadFile:
		r.readFile(target, req, &res)
	case KindSync:
		r.sync(ctx, target, &res)
	default:
		res.fail(ErrorInternal, fmt.Errorf("unknown request kind %q", req.Kind))
	}

	res.Duration = time.Since(start)
	return res
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

func (r *Runner) runCommand(ctx context.Context, target Target, req Request, res *Result) {
	cmd := shellCommand(ctx, req.Command)
	cmd.Dir = target.Dir
	// Give a killed process a moment to flush, then collect whatever output
	// made it out before the interruption.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err == nil {
		code := 0
		res.ExitCode = &code
		res.Succeeded = true
		return
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		// Non-zero exit is an expected outcome, not a fault.
		code := exitErr.ExitCode()
		res.ExitCode = &code
		return
	}
	if ctx.Err() != nil {
		res.fail(ErrorCanceled, ctx.Err())
		return
	}
	if errors.Is(err, fs.ErrNotExist) {
		res.fail(ErrorNotFound, fmt.Errorf("%s: %w", target.Dir, err))
		return
	}
	res.fail(ErrorFileSystem, err)
}

func (r *Runner) copyFile(target Target, req Request, res *Result) {
	dst := filepath.Join(target.Dir, req.Path)

	if sameFile(req.Source, dst) {
		res.Stdout = "unchanged"
		res.Succeeded = true
		return
	}

	src, err := os.Open(req.Source)
	if err != nil {
		res.fail(fsErrorKind(err), err)
		return
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		res.fail(ErrorFileSystem, err)
		return
	}

	// The destination directory must already exist; a missing directory is a
	// per-target failure, not something to paper over with MkdirAll.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		res.fail(ErrorFileSystem, err)
		return
	}

	_, copyErr := io.Copy(out, src)
	closeErr := out.Close()
	if copyErr != nil {
		res.fail(ErrorFileSystem, copyErr)
		return
	}
	if closeErr != nil {
		res.fail(ErrorFileSystem, closeErr)
		return
	}
	res.Succeeded = true
}

func (r *Runner) readFile(target Target, req Request, res *Result) {
	b, err := os.ReadFile(filepath.Join(target.Dir, req.Path))
	if err != nil {
		res.fail(fsErrorKind(err), err)
		return
	}
	res.Stdout = string(b)
	res.Succeeded = true
}

func (r *Runner) sync(ctx context.Context, target Target, res *Result) {
	if r.syncer == nil {
		res.fail(ErrorInternal, errors.New("no sync collaborator configured"))
		return
	}
	outcome, err := r.syncer.CloneOrUpdate(ctx, target.RemoteURL, target.Dir)
	if err != nil {
		switch {
		case errors.Is(err, gitsync.ErrNotFastForward):
			res.fail(ErrorSyncConflict, err)
		case ctx.Err() != nil:
			res.fail(ErrorCanceled, err)
		default:
			res.fail(ErrorTransport, err)
		}
		return
	}
	res.Stdout = string(outcome)
	res.Succeeded = true
}

func fsErrorKind(err error) ErrorKind {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrorNotFound
	}
	return ErrorFileSystem
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
