package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cohort/internal/batch"
	"cohort/internal/flags"
	"cohort/internal/gitsync"
)

var checkoutAll bool

var checkoutCmd = &cobra.Command{
	Use:   "checkout <assignment> [student]",
	Short: "Clone or fast-forward student repositories",
	Long: `Bring local working copies in line with the student repositories on
GitHub: clone the ones that are missing, fast-forward the ones that exist.

Pass a single student slug, or --all to sync every repository whose name
starts with "{assignment}-" in the configured organization.

A working copy whose history has diverged from the remote is reported as a
conflict and left untouched; the rest of the batch continues.

Examples:
  cohort checkout hw3 --all
  cohort checkout hw3 ada`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		student := ""
		if len(args) == 2 {
			student = args[1]
		}
		if student == "" && !checkoutAll {
			fatalf("provide either a student slug or --%s", flags.FlagAll)
		}
		if student != "" && checkoutAll {
			fatalf("a student slug and --%s are mutually exclusive", flags.FlagAll)
		}

		sess, err := newSession()
		if err != nil {
			fatal(err)
		}
		ctx, cancel := batchContext(cmd)
		defer cancel()

		client, token, err := sess.githubClient(ctx)
		if err != nil {
			fatal(err)
		}

		var targets []batch.Target
		if checkoutAll {
			lister := remoteLister{client: client, org: sess.settings.Organization}
			targets, err = batch.Resolve(ctx, sess.selector(args[0]), nil, lister)
		} else {
			targets, err = batch.Resolve(ctx, sess.selector(args[0]), []string{student}, nil)
		}
		if err != nil {
			fatal(err)
		}
		if len(targets) == 0 {
			fatalf("no repositories found for assignment %q", args[0])
		}

		exec, err := newExecutor(batch.NewRunner(gitsync.New(token)))
		if err != nil {
			fatal(err)
		}

		fmt.Fprintf(os.Stderr, "Syncing %d repositories...\n", len(targets))
		results := exec.Run(ctx, targets, batch.SyncRequest())

		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		counts := map[gitsync.Outcome]int{}
		failed := 0
		for _, res := range results {
			if !res.Succeeded {
				failed++
				red.Printf("✗ %s: %s\n", res.Target, res.Error)
				continue
			}
			outcome := gitsync.Outcome(res.Stdout)
			counts[outcome]++
			green.Printf("✓ %s (%s)\n", res.Target, outcome)
		}

		fmt.Printf("%d cloned, %d updated, %d up to date, %d failed\n",
			counts[gitsync.OutcomeCloned], counts[gitsync.OutcomeUpdated],
			counts[gitsync.OutcomeUpToDate], failed)

		if failed > 0 {
			os.Exit(exitSomeFailed)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
	checkoutCmd.Flags().BoolVar(&checkoutAll, flags.FlagAll, false, "Sync every repository for the assignment")
}
