package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cohort/internal/cli"
)

// These variables are populated by the build via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Optional: a .env in the invocation directory may carry GITHUB_TOKEN.
	_ = godotenv.Load()

	// One interrupt cancels all in-flight target work; a second one kills the
	// process the default way.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBuildInfo(version, commit, date)
	cli.ExecuteContext(ctx)
}
