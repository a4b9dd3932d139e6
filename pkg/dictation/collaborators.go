package dictation

import (
	"dictator/pkg/audio"
	"dictator/pkg/language"
)

// Recorder captures one clip at a time.
type Recorder interface {
	Start() error
	Stop() (audio.Clip, error)
	Cancel() error
}

// Window identifies the injection target captured when recording starts.
type Window interface {
	Title() string
}

// Injector types text into a previously focused window.
type Injector interface {
	// Capture returns the window that currently has focus, or nil.
	Capture() Window
	// Inject refocuses w and enters text into it.
	Inject(w Window, text string) error
}

// Clipboard receives every successful transcription.
type Clipboard interface {
	WriteText(text string) error
}

// Presenter renders state for the user: the tray indicator and the
// transient overlay.
type Presenter interface {
	ShowState(s State)
	ShowMessage(text string)
	HideMessage()
	ShowLanguage(lang language.Language)
}

// LanguageStore persists the default language.
type LanguageStore interface {
	SaveDefaultLanguage(lang language.Language) error
}

type nopPresenter struct{}

func (nopPresenter) ShowState(State)                {}
func (nopPresenter) ShowMessage(string)             {}
func (nopPresenter) HideMessage()                   {}
func (nopPresenter) ShowLanguage(language.Language) {}

type nopClipboard struct{}

func (nopClipboard) WriteText(string) error { return nil }

type nopInjector struct{}

func (nopInjector) Capture() Window             { return nil }
func (nopInjector) Inject(Window, string) error { return nil }
