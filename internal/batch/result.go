package batch

import (
	"encoding/json"
	"time"
)

// ErrorKind classifies a per-target failure. A non-zero command exit is an
// expected outcome, not a failure, and carries no kind.
type ErrorKind string

const (
	// ErrorFileSystem covers copy/read failures other than a missing file,
	// e.g. a destination directory that does not exist or is not writable.
	ErrorFileSystem ErrorKind = "filesystem"

	// ErrorNotFound reports a file (or target directory) that does not exist.
	ErrorNotFound ErrorKind = "not-found"

	// ErrorSyncConflict reports a local history that cannot be fast-forwarded.
	ErrorSyncConflict ErrorKind = "sync-conflict"

	// ErrorTransport covers clone/fetch failures (network, auth, bad remote).
	ErrorTransport ErrorKind = "transport"

	// ErrorCanceled marks work interrupted by batch cancellation or timeout.
	ErrorCanceled ErrorKind = "canceled"

	// ErrorInternal marks unexpected faults, including recovered panics.
	ErrorInternal ErrorKind = "internal"
)

// Result is the outcome of executing one request against one target. It is
// created once per (target, request) pair and immutable after creation.
//
// Duration is populated even when the operation failed partway through, and
// any output captured before a failure is preserved.
type Result struct {
	Target    string        `json:"target"`
	Succeeded bool          `json:"succeeded"`
	ExitCode  *int          `json:"exit_code,omitempty"`
	Stdout    string        `json:"stdout,omitempty"`
	Stderr    string        `json:"stderr,omitempty"`
	Duration  time.Duration `json:"-"`
	Error     string        `json:"error,omitempty"`
	ErrorKind ErrorKind     `json:"error_kind,omitempty"`

	// index is the target's position in resolution order, stamped by the
	// executor so completion-order streams can be reassembled.
	index int
}

func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		plain
		DurationSeconds float64 `json:"duration_seconds"`
	}{plain(r), r.Duration.Seconds()})
}

// Failed reports whether the result is a failure of any sort, including an
// expected non-zero command exit.
func (r Result) Failed() bool {
	return !r.Succeeded
}

func (r *Result) fail(kind ErrorKind, err error) {
	r.Succeeded = false
	r.ErrorKind = kind
	if err != nil {
		r.Error = err.Error()
	}
}
