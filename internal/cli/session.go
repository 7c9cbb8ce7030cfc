package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cohort/internal/batch"
	"cohort/internal/config"
	"cohort/internal/flags"
	gh "cohort/internal/github"
	"cohort/internal/output"
)

// session bundles what every batch command needs: the persisted settings and
// the resolved working directory.
type session struct {
	settings *config.Settings
	workPath string
}

func newSession() (*session, error) {
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	workPath, err := settings.WorkingPath()
	if err != nil {
		return nil, err
	}
	return &session{settings: settings, workPath: workPath}, nil
}

func (s *session) selector(assignment string) batch.Selector {
	return batch.Selector{
		Organization: s.settings.Organization,
		Assignment:   assignment,
		WorkingDir:   s.workPath,
	}
}

// localTargets resolves against the working copies already on disk, so local
// operations work offline.
func (s *session) localTargets(ctx context.Context, assignment, student string) ([]batch.Target, error) {
	var students []string
	if student != "" {
		students = []string{student}
	}
	return batch.Resolve(ctx, s.selector(assignment), students, batch.NewDirLister(s.workPath))
}

// githubClient resolves a token and builds the API client. The token may be
// empty; public organizations still list.
func (s *session) githubClient(ctx context.Context) (*gh.Client, string, error) {
	token, _, err := gh.ResolveToken(ctx, s.settings.Token)
	if err != nil {
		return nil, "", fmt.Errorf("resolve GitHub token: %w", err)
	}
	client, err := gh.NewClient(ctx, token, rt.Verbose)
	if err != nil {
		return nil, "", err
	}
	return client, token, nil
}

// remoteLister adapts the GitHub client to the batch resolution interface.
type remoteLister struct {
	client *gh.Client
	org    string
}

func (l remoteLister) ListAssignment(ctx context.Context, assignment string) ([]batch.RepoListing, error) {
	repos, err := l.client.ListAssignmentRepos(ctx, l.org, assignment)
	if err != nil {
		return nil, err
	}
	out := make([]batch.RepoListing, 0, len(repos))
	for _, repo := range repos {
		out = append(out, batch.RepoListing{Name: repo.Name, CloneURL: repo.CloneURL})
	}
	return out, nil
}

func newExecutor(runner batch.TargetRunner) (*batch.Executor, error) {
	return batch.NewExecutor(runner, rt.Concurrency)
}

// batchContext bounds the whole batch with the runtime timeout on top of the
// process signal context.
func batchContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, rt.Timeout)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitFatal)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(exitFatal)
}

func exitCodeFor(rep batch.Report) int {
	// Whether anything failed, never how much.
	if rep.AnyFailed() {
		return exitSomeFailed
	}
	return exitOK
}

// outputFlags are the structured-output knobs shared by run and check.
type outputFlags struct {
	emit      []string
	out       string
	outFormat string
	noConsole bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.emit, flags.FlagEmit, nil, "Emit a structured stream to stdout: json|ndjson (repeatable)")
	cmd.Flags().StringVar(&f.out, flags.FlagOut, "", "Write structured output to this path")
	cmd.Flags().StringVar(&f.outFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from extension)")
	cmd.Flags().BoolVar(&f.noConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out)")
}

// manager builds the sink set: a console sink unless suppressed, plus any
// emit and file sinks.
func (f *outputFlags) manager(consoleFormat string, filter output.Filter) (*output.Manager, error) {
	mgr := output.NewManager()

	if !f.noConsole {
		cs, err := output.NewConsoleSink(os.Stdout, consoleFormat, filter)
		if err != nil {
			mgr.Close()
			return nil, err
		}
		if err := mgr.AddSink(cs); err != nil {
			mgr.Close()
			return nil, err
		}
	}

	for _, emit := range f.emit {
		es, err := output.NewEmitSink(os.Stdout, emit)
		if err != nil {
			mgr.Close()
			return nil, err
		}
		if err := mgr.AddSink(es); err != nil {
			mgr.Close()
			return nil, err
		}
	}

	if f.out != "" {
		fs, err := output.NewFileSink(f.out, f.outFormat)
		if err != nil {
			mgr.Close()
			return nil, err
		}
		if err := mgr.AddSink(fs); err != nil {
			mgr.Close()
			return nil, err
		}
	}

	return mgr, nil
}
