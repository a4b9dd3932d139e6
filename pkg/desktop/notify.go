package desktop

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// AppName labels notifications.
const AppName = "Dictator"

func init() {
	beeep.AppName = AppName
}

// Notify shows a transient desktop notification.
func Notify(title, message string) error {
	if err := beeep.Notify(title, message, ""); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
