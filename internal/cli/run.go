package cli

import (
	"os"

	"github.com/spf13/cobra"

	"cohort/internal/batch"
	"cohort/internal/flags"
	"cohort/internal/output"
)

var (
	runErrorsOnly  bool
	runSuccessOnly bool
	runOutput      outputFlags
)

var runCmd = &cobra.Command{
	Use:   "run <assignment> <command> [student]",
	Short: "Run a shell command in every student working copy",
	Long: `Run a shell command with each student working copy as the working
directory, and print one labeled block of output per repository.

The command string is handed to the platform shell verbatim; this tool trusts
its operator and does not sandbox.

Blocks appear in repository order even though execution is concurrent.

Examples:
  cohort run hw3 "git log --oneline -5"
  cohort run hw3 "git status" ada
  cohort run hw3 "make lint" --errors-only`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		if runErrorsOnly && runSuccessOnly {
			fatalf("--%s and --%s are mutually exclusive", flags.FlagErrorsOnly, flags.FlagSuccessOnly)
		}
		filter := output.FilterAll
		if runErrorsOnly {
			filter = output.FilterFailed
		}
		if runSuccessOnly {
			filter = output.FilterPassed
		}

		sess, err := newSession()
		if err != nil {
			fatal(err)
		}
		ctx, cancel := batchContext(cmd)
		defer cancel()

		student := ""
		if len(args) == 3 {
			student = args[2]
		}
		targets, err := sess.localTargets(ctx, args[0], student)
		if err != nil {
			fatal(err)
		}

		mgr, err := runOutput.manager("blocks", filter)
		if err != nil {
			fatal(err)
		}

		req := batch.CommandRequest(colorizedCommand(args[1]))
		exec, err := newExecutor(batch.NewRunner(nil))
		if err != nil {
			fatal(err)
		}

		_ = mgr.Write(output.RunStarted(req.Describe(), len(targets)))

		results := make([]batch.Result, 0, len(targets))
		for res := range batch.InOrder(exec.Execute(ctx, targets, req), len(targets)) {
			_ = mgr.Write(res)
			results = append(results, res)
		}

		rep := batch.Summarize(req.Describe(), results)
		code := exitCodeFor(rep)
		_ = mgr.Write(output.RunFinished(rep, code))
		_ = mgr.Close()
		os.Exit(code)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runErrorsOnly, flags.FlagErrorsOnly, false, "Only show output for failing targets")
	runCmd.Flags().BoolVar(&runSuccessOnly, flags.FlagSuccessOnly, false, "Only show output for passing targets")
	runOutput.register(runCmd)
}
