package batch

import "fmt"

// Kind selects the operation a Request performs against each target.
type Kind string

const (
	// KindSync clones the target if its directory is absent, otherwise
	// fast-forwards it to the remote default branch.
	KindSync Kind = "sync"

	// KindRunCommand runs a shell command with the target directory as the
	// working directory.
	KindRunCommand Kind = "run-command"

	// KindCopyFile copies a caller-supplied file into the target directory.
	KindCopyFile Kind = "copy-file"

	// KindReadFile reads a file from the target directory.
	KindReadFile Kind = "read-file"
)

// Request is one unit of work applied to every target in a batch. It is
// immutable and shared read-only across all concurrent target executions.
//
// Command strings are handed to the platform shell verbatim: this tool trusts
// its operator and does not sandbox.
type Request struct {
	Kind Kind

	// Command is the shell command for KindRunCommand.
	Command string

	// Source is the file to copy for KindCopyFile.
	Source string

	// Path is the destination (KindCopyFile) or subject (KindReadFile) path,
	// relative to the target directory.
	Path string
}

func SyncRequest() Request {
	return Request{Kind: KindSync}
}

func CommandRequest(command string) Request {
	return Request{Kind: KindRunCommand, Command: command}
}

func CopyFileRequest(source, path string) Request {
	return Request{Kind: KindCopyFile, Source: source, Path: path}
}

func ReadFileRequest(path string) Request {
	return Request{Kind: KindReadFile, Path: path}
}

// Describe returns a short human-readable label for reports.
func (r Request) Describe() string {
	switch r.Kind {
	case KindSync:
		return "sync"
	case KindRunCommand:
		return r.Command
	case KindCopyFile:
		return fmt.Sprintf("copy %s -> %s", r.Source, r.Path)
	case KindReadFile:
		return fmt.Sprintf("show %s", r.Path)
	default:
		return string(r.Kind)
	}
}
