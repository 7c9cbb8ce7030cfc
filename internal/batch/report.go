package batch

import "time"

// Report aggregates a completed batch: per-target results in resolution
// order plus pass/fail counts and timing statistics. It is recomputed fresh
// for each invocation and never persisted.
type Report struct {
	// Description labels the batch, e.g. the command that was run.
	Description string

	// Results holds one entry per target in resolution order.
	Results []Result

	Passing int
	Failing int

	// Timing statistics are computed over all results regardless of success,
	// since duration reflects elapsed attempt time.
	MinTime     time.Duration
	MaxTime     time.Duration
	AverageTime time.Duration
}

// Summarize reduces an ordered result collection to a Report.
func Summarize(description string, results []Result) Report {
	rep := Report{
		Description: description,
		Results:     results,
	}

	var total time.Duration
	for i, res := range results {
		if res.Succeeded {
			rep.Passing++
		} else {
			rep.Failing++
		}
		if i == 0 || res.Duration < rep.MinTime {
			rep.MinTime = res.Duration
		}
		if res.Duration > rep.MaxTime {
			rep.MaxTime = res.Duration
		}
		total += res.Duration
	}
	if len(results) > 0 {
		rep.AverageTime = total / time.Duration(len(results))
	}
	return rep
}

// AnyFailed reports whether at least one target failed. The process exit code
// reflects this bit, never the count.
func (r Report) AnyFailed() bool {
	return r.Failing > 0
}
