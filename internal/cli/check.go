package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cohort/internal/batch"
	"cohort/internal/output"
)

var checkOutput outputFlags

var checkCmd = &cobra.Command{
	Use:   "check <assignment> <command>",
	Short: "Run a shell command in every working copy and aggregate the results",
	Long: `Run a shell command in every student working copy and reduce the
outcomes to a table (student, success, time) plus a statistics block with
pass/fail totals and min/max/average times.

Success means the command exited zero. Use this for grading-style sweeps:

  cohort check hw3 "pytest -q"
  cohort check hw3 "go test ./..."

The process exits nonzero when at least one target failed.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		sess, err := newSession()
		if err != nil {
			fatal(err)
		}
		ctx, cancel := batchContext(cmd)
		defer cancel()

		targets, err := sess.localTargets(ctx, args[0], "")
		if err != nil {
			fatal(err)
		}

		mgr, err := checkOutput.manager("summary", output.FilterAll)
		if err != nil {
			fatal(err)
		}

		req := batch.CommandRequest(args[1])
		exec, err := newExecutor(batch.NewRunner(nil))
		if err != nil {
			fatal(err)
		}

		if !checkOutput.noConsole {
			fmt.Fprintf(os.Stderr, "Running %q in %d repositories...\n", args[1], len(targets))
		}
		_ = mgr.Write(output.RunStarted(req.Describe(), len(targets)))

		results := make([]batch.Result, 0, len(targets))
		for res := range batch.InOrder(exec.Execute(ctx, targets, req), len(targets)) {
			_ = mgr.Write(res)
			results = append(results, res)
		}

		rep := batch.Summarize(req.Describe(), results)
		_ = mgr.Write(rep)
		code := exitCodeFor(rep)
		_ = mgr.Write(output.RunFinished(rep, code))
		_ = mgr.Close()
		os.Exit(code)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkOutput.register(checkCmd)
}
