package dictation

import (
	"time"

	"dictator/pkg/language"
)

// Message is a command consumed by Service.Run. Hotkey listeners, the tray
// menu and the terminal driver only ever talk to the service through Post.
type Message interface {
	message()
}

// HotkeyDown starts a recording session when idle.
type HotkeyDown struct{}

// HotkeyUp ends the active recording and starts transcription.
type HotkeyUp struct{}

// SelectLanguage changes the active language for new sessions.
type SelectLanguage struct {
	Language language.Language
}

// SetDefault persists the active language.
type SetDefault struct{}

// Exit stops Run.
type Exit struct{}

// transcribed carries a finished remote call back to the loop.
type transcribed struct {
	session *Session
	text    string
	err     error
	elapsed time.Duration
}

// hideOverlay fires DisplayDuration after an overlay message. Only the
// most recent one hides anything.
type hideOverlay struct {
	seq uint64
}

func (HotkeyDown) message()     {}
func (HotkeyUp) message()       {}
func (SelectLanguage) message() {}
func (SetDefault) message()     {}
func (Exit) message()           {}
func (transcribed) message()    {}
func (hideOverlay) message()    {}
