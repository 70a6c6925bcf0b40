package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/paperview/internal/backend"
	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/config"
	"github.com/matsen/paperview/internal/research"
)

// Constants for output formatting.
const (
	DefaultListLimit = 20 // Default limit for runs list/search

	ListTopicMaxLen = 50 // Used in runs list output
	RefTitleMaxLen  = 70 // Used in refs output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputJSONCompact writes a value as compact JSON to stdout.
func outputJSONCompact(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitWithBackendError reports a backend failure with a matching exit code.
func exitWithBackendError(err error) {
	code, errCode := backendErrorCode(err)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if backend.IsUnavailable(err) {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		}
	} else {
		outputJSON(BackendErrorResponse{Error: BackendError{Code: errCode, Message: err.Error()}})
	}
	os.Exit(code)
}

// backendErrorCode maps a backend error to an exit code and error code.
func backendErrorCode(err error) (int, string) {
	switch {
	case backend.IsAuthError(err):
		return ExitAuthError, "auth_error"
	case backend.IsRateLimited(err):
		return ExitBackendError, "rate_limited"
	case errors.Is(err, research.ErrGenerationFailed):
		return ExitBackendError, "generation_failed"
	case errors.Is(err, backend.ErrEmptyTopic):
		return ExitError, "invalid_request"
	case backend.IsUnavailable(err):
		return ExitBackendError, "unavailable"
	default:
		return ExitBackendError, "api_error"
	}
}

// parseStyleFlag parses a --style value. Empty selects the configured default.
func parseStyleFlag(value string) (citation.Style, error) {
	if strings.TrimSpace(value) == "" {
		return config.GetDefaultStyle(), nil
	}
	var s citation.Style
	if err := s.UnmarshalText([]byte(value)); err != nil {
		return citation.APA, err
	}
	return s, nil
}

// mustParseStyle parses a --style value, exits on error.
func mustParseStyle(value string) citation.Style {
	s, err := parseStyleFlag(value)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return s
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BackendErrorResponse is the JSON error response for backend failures.
type BackendErrorResponse struct {
	Error BackendError `json:"error"`
}

// BackendError describes a backend failure.
type BackendError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
