package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cohort/internal/config"
	"cohort/internal/flags"
	gh "cohort/internal/github"
)

var configureReset bool

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Initial configuration",
	Long: `Interactively set up the organization, working directory, and GitHub
token, then verify organization access before writing the config file.

The token needs the 'repo' scope (read student repositories) and 'read:org'
(enumerate them). Leave the token prompt empty to rely on the GITHUB_TOKEN
environment variable or GitHub CLI authentication instead.

Pass --reset to overwrite an existing configuration.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path, err := config.Path()
		if err != nil {
			fatal(err)
		}
		if _, statErr := os.Stat(path); statErr == nil && !configureReset {
			fatalf("%s already exists, pass --%s to overwrite", path, flags.FlagReset)
		}

		in := bufio.NewReader(cmd.InOrStdin())

		workingDir := prompt(in, "Working directory", "~/cohort-workdir")
		org := prompt(in, "GitHub organization", "")
		if org == "" {
			fatalf("organization is required")
		}

		fmt.Println("Visit https://github.com/settings/tokens/new and obtain a personal access token.")
		color.Magenta("Be sure to select 'repo' scope!")
		token := promptSecret(in, "GitHub token (empty to use GITHUB_TOKEN or gh auth)")

		settings := &config.Settings{
			Organization: org,
			WorkingDir:   workingDir,
			Token:        token,
		}

		// Test the login before writing anything.
		ctx := cmd.Context()
		resolved, _, err := gh.ResolveToken(ctx, settings.Token)
		if err != nil {
			fatal(err)
		}
		client, err := gh.NewClient(ctx, resolved, rt.Verbose)
		if err != nil {
			fatal(err)
		}
		if err := client.VerifyOrgAccess(ctx, org); err != nil {
			fatal(err)
		}

		if err := config.SaveTo(path, settings); err != nil {
			fatal(err)
		}
		color.Green("Successfully configured, wrote %s", path)
	},
}

func prompt(in *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, _ := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// promptSecret reads without echo when stdin is a terminal, so the token
// never lands in scrollback.
func promptSecret(in *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.Flags().BoolVar(&configureReset, flags.FlagReset, false, "Overwrite an existing configuration")
}
