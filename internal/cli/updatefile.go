package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cohort/internal/batch"
)

var updateFileCmd = &cobra.Command{
	Use:   "update-file <assignment> <source> <dest>",
	Short: "Copy a file into every student working copy",
	Long: `Copy a local file into each student working copy at the given
relative destination path, overwriting what is there. A repository whose
destination directory does not exist is reported as a failure; the rest of
the batch continues.

Example:
  cohort update-file hw3 ./fixed_tests.py tests/test_hw3.py`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		assignment, source, dest := args[0], args[1], args[2]

		// A missing source breaks every target identically; fail before the
		// batch starts.
		absSource, err := filepath.Abs(source)
		if err != nil {
			fatal(err)
		}
		if _, err := os.Stat(absSource); err != nil {
			fatal(err)
		}

		sess, err := newSession()
		if err != nil {
			fatal(err)
		}
		ctx, cancel := batchContext(cmd)
		defer cancel()

		targets, err := sess.localTargets(ctx, assignment, "")
		if err != nil {
			fatal(err)
		}

		exec, err := newExecutor(batch.NewRunner(nil))
		if err != nil {
			fatal(err)
		}

		fmt.Printf("copying %s to:\n", source)
		req := batch.CopyFileRequest(absSource, dest)
		results := exec.Run(ctx, targets, req)

		red := color.New(color.FgRed)
		for _, res := range results {
			path := filepath.Join(res.Target, dest)
			switch {
			case !res.Succeeded:
				red.Printf("    %s: %s\n", path, res.Error)
			case res.Stdout == "unchanged":
				fmt.Printf("    %s (unchanged)\n", path)
			default:
				fmt.Printf("    %s\n", path)
			}
		}

		os.Exit(exitCodeFor(batch.Summarize(req.Describe(), results)))
	},
}

func init() {
	rootCmd.AddCommand(updateFileCmd)
}
