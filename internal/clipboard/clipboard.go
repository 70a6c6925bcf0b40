// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when clipboard access is not available.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Overridden in tests.
var (
	unsupported = func() bool { return clipboard.Unsupported }
	writeAll    = clipboard.WriteAll
)

// IsAvailable checks if a clipboard utility was found on this system.
func IsAvailable() bool {
	return !unsupported()
}

// Copy copies text to the system clipboard.
// Returns ErrClipboardUnavailable if no clipboard utility exists.
func Copy(text string) error {
	if unsupported() {
		return ErrClipboardUnavailable
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}
