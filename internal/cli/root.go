package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cohort/internal/config"
	"cohort/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rt = config.DefaultRuntime()

var rootCmd = &cobra.Command{
	Use:   "cohort",
	Short: "Batch operations across per-student assignment repositories",
	Long: `cohort applies one operation to every student copy of an assignment:
clone or fast-forward the working copies, run a shell command in each,
aggregate pass/fail results, copy a file into each, or view a file from each.

Repositories are named {assignment}-{student} under one GitHub organization,
and working copies live under a configured working directory.

Examples:
	# One-time setup (org, working directory, token)
	cohort configure

	# Fetch every student copy of hw3
	cohort checkout hw3 --all

	# Run the tests in every working copy and show a pass/fail table
	cohort check hw3 "pytest -q"

	# See the diff for a single student
	cohort run hw3 "git diff main" ada

Exit codes:
	0 = every target succeeded
	1 = at least one target failed
	2 = fatal error (the batch did not run)`,
}

const (
	exitOK         = 0
	exitSomeFailed = 1
	exitFatal      = 2
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&rt.Concurrency, flags.FlagConcurrency, rt.Concurrency, "Concurrent target operations")
	pf.DurationVar(&rt.Timeout, flags.FlagTimeout, rt.Timeout, "Overall batch timeout")
	pf.BoolVar(&rt.Verbose, flags.FlagVerbose, false, "Log every GitHub API call to stderr")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}
}
