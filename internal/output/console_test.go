package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"cohort/internal/batch"
)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestConsoleSink_Blocks(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer

	sink, err := NewConsoleSink(&buf, "blocks", FilterAll)
	if err != nil {
		t.Fatalf("NewConsoleSink: %v", err)
	}

	zero := 0
	if err := sink.Write(batch.Result{
		Target:    "hw1-ada",
		Succeeded: true,
		ExitCode:  &zero,
		Stdout:    "2 passed\n",
		Stderr:    "warning: deprecated\n",
	}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "── hw1-ada ") {
		t.Fatalf("missing block header:\n%s", out)
	}
	stderrAt := strings.Index(out, "warning: deprecated")
	stdoutAt := strings.Index(out, "2 passed")
	if stderrAt < 0 || stdoutAt < 0 {
		t.Fatalf("captured output missing:\n%s", out)
	}
	if stderrAt > stdoutAt {
		t.Fatalf("stderr must precede stdout:\n%s", out)
	}
}

func TestConsoleSink_BlocksRendersFailure(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer

	sink, _ := NewConsoleSink(&buf, "blocks", FilterAll)
	_ = sink.Write(batch.Result{
		Target:    "hw1-ghost",
		Succeeded: false,
		Error:     "no such directory",
		ErrorKind: batch.ErrorNotFound,
	})

	out := buf.String()
	if !strings.Contains(out, "error (not-found): no such directory") {
		t.Fatalf("failure line missing:\n%s", out)
	}
}

func TestConsoleSink_Filters(t *testing.T) {
	disableColor(t)

	results := []batch.Result{
		{Target: "hw1-pass", Succeeded: true, Stdout: "ok\n"},
		{Target: "hw1-fail", Succeeded: false, Error: "boom", ErrorKind: batch.ErrorInternal},
	}

	cases := []struct {
		filter Filter
		want   []string
		skip   []string
	}{
		{FilterAll, []string{"hw1-pass", "hw1-fail"}, nil},
		{FilterFailed, []string{"hw1-fail"}, []string{"hw1-pass"}},
		{FilterPassed, []string{"hw1-pass"}, []string{"hw1-fail"}},
	}

	for _, tc := range cases {
		t.Run(string(tc.filter), func(t *testing.T) {
			var buf bytes.Buffer
			sink, err := NewConsoleSink(&buf, "blocks", tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			for _, r := range results {
				if err := sink.Write(r); err != nil {
					t.Fatal(err)
				}
			}
			out := buf.String()
			for _, name := range tc.want {
				if !strings.Contains(out, name) {
					t.Fatalf("want %s rendered:\n%s", name, out)
				}
			}
			for _, name := range tc.skip {
				if strings.Contains(out, name) {
					t.Fatalf("want %s filtered out:\n%s", name, out)
				}
			}
		})
	}
}

func TestConsoleSink_Summary(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer

	sink, err := NewConsoleSink(&buf, "summary", FilterAll)
	if err != nil {
		t.Fatal(err)
	}

	rep := batch.Summarize("pytest -q", []batch.Result{
		{Target: "hw1-ada", Succeeded: true, Duration: 1200 * time.Millisecond},
		{Target: "hw1-bob", Succeeded: false, Duration: 800 * time.Millisecond},
	})

	// Individual results are ignored in summary mode.
	if err := sink.Write(rep.Results[0]); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("summary mode must not render individual results:\n%s", buf.String())
	}

	if err := sink.Write(rep); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"hw1-ada", "hw1-bob",
		"pytest -q",
		"Total Passing", "Total Failing",
		"Min Time", "Max Time", "Average Time",
		"1.200s", "0.800s",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleSink_NDJSON(t *testing.T) {
	var buf bytes.Buffer

	sink, err := NewConsoleSink(&buf, "ndjson", FilterAll)
	if err != nil {
		t.Fatal(err)
	}

	_ = sink.Write(RunStarted("pytest -q", 2))
	_ = sink.Write(batch.Result{Target: "hw1-ada", Succeeded: true, Duration: time.Second})
	_ = sink.Write(RunFinished(batch.Report{Passing: 1, Failing: 1}, 1))

	scanner := bufio.NewScanner(&buf)
	var types []string
	for scanner.Scan() {
		var ev struct {
			Type   string `json:"type"`
			Target string `json:"target"`
			Result *struct {
				Succeeded       bool    `json:"succeeded"`
				DurationSeconds float64 `json:"duration_seconds"`
			} `json:"result"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line is not JSON: %v\n%s", err, scanner.Text())
		}
		types = append(types, ev.Type)
		if ev.Type == "target.result" {
			if ev.Target != "hw1-ada" || ev.Result == nil || !ev.Result.Succeeded {
				t.Fatalf("bad result event: %s", scanner.Text())
			}
			if ev.Result.DurationSeconds != 1.0 {
				t.Fatalf("duration_seconds: %v", ev.Result.DurationSeconds)
			}
		}
	}

	want := []string{"run.started", "target.result", "run.finished"}
	if len(types) != len(want) {
		t.Fatalf("want %d lines, got %v", len(want), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("line %d: want %s, got %s", i, want[i], types[i])
		}
	}
}

func TestConsoleSink_JSONAggregatesOnClose(t *testing.T) {
	var buf bytes.Buffer

	sink, err := NewConsoleSink(&buf, "json", FilterAll)
	if err != nil {
		t.Fatal(err)
	}

	_ = sink.Write(batch.Result{Target: "hw1-ada", Succeeded: true})
	_ = sink.Write(batch.Result{Target: "hw1-bob", Succeeded: false, ErrorKind: batch.ErrorNotFound})

	if buf.Len() != 0 {
		t.Fatalf("json mode must buffer until Close:\n%s", buf.String())
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 {
		t.Fatalf("want 2 results, got %d", len(decoded))
	}
	if decoded[0]["target"] != "hw1-ada" || decoded[1]["error_kind"] != "not-found" {
		t.Fatalf("unexpected aggregate: %+v", decoded)
	}
}

func TestNewConsoleSink_RejectsUnknownFormat(t *testing.T) {
	if _, err := NewConsoleSink(&bytes.Buffer{}, "xml", FilterAll); err == nil {
		t.Fatal("unknown format must be rejected")
	}
}
