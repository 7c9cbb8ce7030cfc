package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"cohort/internal/batch"
)

// Filter restricts which target results a console sink renders.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterFailed Filter = "failed"
	FilterPassed Filter = "passed"
)

const headerWidth = 72

// ConsoleSink renders batch output for humans.
//
// Formats:
//   - blocks: one labeled block per target result, original output preserved
//   - summary: ignores individual results, renders the final Report as a
//     table plus statistics
//   - json: aggregates results and writes a single JSON array on Close
//   - ndjson: streams Events (one JSON object per line)
type ConsoleSink struct {
	writer  io.Writer
	format  string
	filter  Filter
	mu      sync.Mutex
	results []batch.Result
}

func NewConsoleSink(w io.Writer, format string, filter Filter) (*ConsoleSink, error) {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "blocks"
	}
	switch format {
	case "blocks", "summary", "json", "ndjson":
	default:
		return nil, fmt.Errorf("unsupported console format: %s", format)
	}
	if filter == "" {
		filter = FilterAll
	}
	return &ConsoleSink{writer: w, format: format, filter: filter}, nil
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := v.(batch.Result); ok && !s.allowed(r) {
		return nil
	}

	switch s.format {
	case "json":
		if r, ok := v.(batch.Result); ok {
			s.results = append(s.results, r)
		}
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case batch.Result:
			if err := encoder.Encode(eventFromResult(t)); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "blocks":
		r, ok := v.(batch.Result)
		if !ok {
			// Lifecycle events and reports are not rendered in blocks mode.
			return nil
		}
		if err := s.writeBlock(r); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case "summary":
		rep, ok := v.(batch.Report)
		if !ok {
			return nil
		}
		if err := RenderReport(s.writer, rep); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) allowed(r batch.Result) bool {
	switch s.filter {
	case FilterFailed:
		return !r.Succeeded
	case FilterPassed:
		return r.Succeeded
	default:
		return true
	}
}

func (s *ConsoleSink) writeBlock(r batch.Result) error {
	title := r.Target
	if !r.Succeeded {
		title = color.New(color.FgRed).Sprint(r.Target)
	} else {
		title = color.New(color.Bold).Sprint(r.Target)
	}

	if _, err := fmt.Fprintln(s.writer, blockHeader(title, len(r.Target))); err != nil {
		return err
	}
	// Match the original presentation: stderr first, then stdout, verbatim.
	if r.Stderr != "" {
		if err := writeChunk(s.writer, r.Stderr); err != nil {
			return err
		}
	}
	if r.Stdout != "" {
		if err := writeChunk(s.writer, r.Stdout); err != nil {
			return err
		}
	}
	if r.Error != "" {
		line := color.New(color.FgRed).Sprintf("error (%s): %s", r.ErrorKind, r.Error)
		if _, err := fmt.Fprintln(s.writer, line); err != nil {
			return err
		}
	}
	return nil
}

// blockHeader draws "── name ──────": visibleLen is the printable width of
// the (possibly color-wrapped) title.
func blockHeader(title string, visibleLen int) string {
	pad := headerWidth - visibleLen - 4
	if pad < 2 {
		pad = 2
	}
	return fmt.Sprintf("── %s %s", title, strings.Repeat("─", pad))
}

func writeChunk(w io.Writer, chunk string) error {
	if !strings.HasSuffix(chunk, "\n") {
		chunk += "\n"
	}
	_, err := io.WriteString(w, chunk)
	return err
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.results); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	return nil
}
