package output

import "cohort/internal/batch"

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line):
// - run.started
// - target.result
// - run.finished
//
// JSON mode remains an aggregate array of target results.
type Event struct {
	Type     string        `json:"type"`
	Target   string        `json:"target,omitempty"`
	Result   *batch.Result `json:"result,omitempty"`
	Command  string        `json:"command,omitempty"`
	Targets  int           `json:"targets,omitempty"`
	Passing  int           `json:"passing,omitempty"`
	Failing  int           `json:"failing,omitempty"`
	ExitCode int           `json:"exit_code,omitempty"`
}

func eventFromResult(r batch.Result) Event {
	return Event{Type: "target.result", Target: r.Target, Result: &r}
}

// RunStarted announces a batch: how many targets, and what is being run.
func RunStarted(command string, targets int) Event {
	return Event{Type: "run.started", Command: command, Targets: targets}
}

// RunFinished closes a batch with its counts and the process exit code.
func RunFinished(rep batch.Report, exitCode int) Event {
	return Event{
		Type:     "run.finished",
		Passing:  rep.Passing,
		Failing:  rep.Failing,
		ExitCode: exitCode,
	}
}
