package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for
// the imageforge CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var rec *ErrorRecord
	if stderrors.As(err, &rec) {
		return a.exitCodeFromRecord(rec)
	}

	return 1
}

// exitCodeFromRecord maps failure kinds to exit codes.
func (a *CLIErrorAdapter) exitCodeFromRecord(rec *ErrorRecord) int {
	switch rec.Kind {
	case KindArgument, KindValidation:
		return 2 // Invalid usage
	case KindConfigLoad:
		return 7 // Configuration error
	case KindNetwork, KindRegistry:
		return 8 // External system error
	case KindSecurity:
		return 9 // Security finding
	case KindBuild, KindDocker, KindManifest, KindTemplate, KindFileWrite:
		return 11 // Build error
	case KindTest:
		return 12 // Test failure
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-facing display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	var rec *ErrorRecord
	if stderrors.As(err, &rec) {
		if a.verbose {
			return rec.Error()
		}
		switch rec.Kind {
		case KindConfigLoad, KindValidation, KindArgument:
			return rec.Message
		default:
			return fmt.Sprintf("%s: %s", rec.Kind, rec.Message)
		}
	}

	return fmt.Sprintf("Error: %v", err)
}

// HandleError prints an error and exits the process with the matching code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(exitCode)
}

// shouldLog determines if an error should also be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	var rec *ErrorRecord
	if stderrors.As(err, &rec) {
		return rec.Kind == KindUnknown ||
			rec.Severity == SeverityHigh ||
			rec.Severity == SeverityCritical
	}

	return true
}

// logError logs an error with the level matching its severity.
func (a *CLIErrorAdapter) logError(err error) {
	var rec *ErrorRecord
	if stderrors.As(err, &rec) {
		attrs := []slog.Attr{
			slog.String("kind", string(rec.Kind)),
			slog.String("severity", string(rec.Severity)),
		}
		if rec.Code != "" {
			attrs = append(attrs, slog.String("code", rec.Code))
		}
		a.logger.LogAttrs(context.Background(), a.slogLevel(rec.Severity), rec.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevel converts record severity to an slog level.
func (a *CLIErrorAdapter) slogLevel(severity Severity) slog.Level {
	switch severity {
	case SeverityLow:
		return slog.LevelWarn
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
