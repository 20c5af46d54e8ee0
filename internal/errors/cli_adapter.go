package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		stderr:  os.Stderr,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if fe, ok := As(err); ok {
		return a.exitCodeFromFbox(fe)
	}

	if stderrors.Is(err, context.Canceled) {
		return 130
	}

	return 1
}

// exitCodeFromFbox maps FboxError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromFbox(err *FboxError) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryService:
		return 6 // Required local service down
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryProcess, CategoryGit:
		return 8 // External program error
	case CategoryInternal:
		return 10 // Internal error
	case CategoryFileSystem:
		return 11
	case CategoryRuntime:
		return 12
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if fe, ok := As(err); ok {
		return a.formatFbox(fe)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatFbox formats an FboxError for display.
func (a *CLIErrorAdapter) formatFbox(err *FboxError) string {
	if a.verbose {
		return err.Error()
	}

	switch err.Category {
	case CategoryConfig, CategoryValidation, CategoryRuntime, CategoryFileSystem:
		return err.Message
	case CategoryProcess:
		return fmt.Sprintf("%s: %s%s", err.Category, err.Message, formatContext(err.Context))
	default:
		return fmt.Sprintf("%s: %s", err.Category, err.Message)
	}
}

func formatContext(fields ContextFields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	_, _ = fmt.Fprintf(a.stderr, "%s\n", message)
	a.exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if fe, ok := As(err); ok {
		return fe.Category == CategoryInternal ||
			fe.Category == CategoryProcess
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if fe, ok := As(err); ok {
		level := a.slogLevelFromSeverity(fe.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(fe.Category)),
		}
		for k, v := range fe.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		if fe.Cause != nil {
			attrs = append(attrs, slog.String("error", fe.Cause.Error()))
		}

		a.logger.LogAttrs(context.Background(), level, fe.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts FboxError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
