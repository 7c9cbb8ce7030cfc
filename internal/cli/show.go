package cli

import (
	"os"

	"github.com/spf13/cobra"

	"cohort/internal/batch"
	"cohort/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show <assignment> <file> [student]",
	Short: "View a file from every student working copy",
	Long: `Print the given file from each student working copy, one labeled
block per repository. A missing file is reported as that repository's
failure; the rest of the batch still prints.

Examples:
  cohort show hw3 README.md
  cohort show hw3 solution.py ada`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
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

		cs, err := output.NewConsoleSink(os.Stdout, "blocks", output.FilterAll)
		if err != nil {
			fatal(err)
		}
		mgr := output.NewManager()
		if err := mgr.AddSink(cs); err != nil {
			fatal(err)
		}

		req := batch.ReadFileRequest(args[1])
		exec, err := newExecutor(batch.NewRunner(nil))
		if err != nil {
			fatal(err)
		}

		results := make([]batch.Result, 0, len(targets))
		for res := range batch.InOrder(exec.Execute(ctx, targets, req), len(targets)) {
			_ = mgr.Write(res)
			results = append(results, res)
		}
		_ = mgr.Close()

		os.Exit(exitCodeFor(batch.Summarize(req.Describe(), results)))
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
