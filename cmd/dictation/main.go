package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-dictation/internal/apierr"
	"github.com/alnah/go-dictation/internal/audio"
	"github.com/alnah/go-dictation/internal/cli"
	"github.com/alnah/go-dictation/internal/config"
	"github.com/alnah/go-dictation/internal/draft"
	"github.com/alnah/go-dictation/internal/ffmpeg"
	"github.com/alnah/go-dictation/internal/interrupt"
	"github.com/alnah/go-dictation/internal/lang"
	"github.com/alnah/go-dictation/internal/segment"
	"github.com/alnah/go-dictation/internal/template"
	"github.com/alnah/go-dictation/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitTranscription = 5
	ExitInterrupt     = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels ctx, a second one within 2s exits.
	handler, ctx := interrupt.NewHandler(context.Background())

	env := cli.DefaultEnv()
	rootCmd := cli.RootCmd(env, fmt.Sprintf("%s (commit: %s)", version, commit))

	err := rootCmd.ExecuteContext(ctx)
	handler.Stop()
	_ = env.Logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(finalExitCode(err, handler.WasInterrupted()))
	}
}

// finalExitCode reports a failed run as interrupted once a signal arrived,
// since a killed ffmpeg surfaces as an exec error rather than context.Canceled.
func finalExitCode(err error, interrupted bool) int {
	if err != nil && interrupted {
		return ExitInterrupt
	}
	return exitCode(err)
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, transcribe.ErrAPIKeyMissing) ||
		errors.Is(err, cli.ErrInvalidProvider) || errors.Is(err, transcribe.ErrInvalidEndpoint) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrUnsupportedFormat) ||
		errors.Is(err, cli.ErrOutputDirMissing) || errors.Is(err, config.ErrInvalid) ||
		errors.Is(err, config.ErrUnknownKey) || errors.Is(err, config.ErrNotDirectory) ||
		errors.Is(err, config.ErrNotWritable) || errors.Is(err, segment.ErrInvalidConfig) ||
		errors.Is(err, audio.ErrDurationNotFound) || errors.Is(err, audio.ErrInvalidWAV) ||
		errors.Is(err, draft.ErrInvalidDraft) || errors.Is(err, template.ErrUnknown) ||
		errors.Is(err, lang.ErrInvalid) {
		return ExitValidation
	}

	// Transcription errors (ExitTranscription = 5).
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrBadRequest) || errors.Is(err, apierr.ErrServer) ||
		errors.Is(err, transcribe.ErrUnreachable) || errors.Is(err, transcribe.ErrMalformedResponse) ||
		errors.Is(err, transcribe.ErrFileTooLarge) {
		return ExitTranscription
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"unknown command",        // Subcommand doesn't exist
	"unknown flag",           // Flag doesn't exist
	"unknown shorthand",      // Short flag doesn't exist
	"flag needs an argument", // Flag provided without value
	"invalid argument",       // Invalid flag value type
	"accepts ",               // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",      // Too few arguments
	"requires at most",       // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
