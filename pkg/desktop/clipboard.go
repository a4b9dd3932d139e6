// Package desktop wraps the OS integration used after a transcription:
// clipboard, keystroke injection into the captured window and desktop
// notifications.
package desktop

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard is the system clipboard.
type Clipboard struct{}

// WriteText replaces the clipboard contents.
func (Clipboard) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
