// Package clipboard wraps host clipboard access for the copy-timeline
// and copy-text actions.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// WriteAll copies text to the host clipboard.
func WriteAll(text string) error {
	if text == "" {
		return errors.New("nothing to copy")
	}
	return clipboard.WriteAll(text)
}

// ReadAll returns the current clipboard text.
func ReadAll() (string, error) {
	return clipboard.ReadAll()
}
