package flags

// Package flags defines canonical CLI flag names shared across commands.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Selection
	FlagAll = "all"

	// Output
	FlagErrorsOnly  = "errors-only"
	FlagSuccessOnly = "success-only"
	FlagEmit        = "emit"
	FlagOut         = "out"
	FlagOutFormat   = "out-format"
	FlagNoConsole   = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagVerbose     = "verbose"

	// Configure
	FlagReset = "reset"
)
