package desktop

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/micmonay/keybd_event"

	"dictator/pkg/dictation"
)

// Injection modes.
const (
	ModeType  = "type"
	ModePaste = "paste"
)

// DefaultSettle is the pause between refocusing a window and typing.
const DefaultSettle = 100 * time.Millisecond

// keyboard is the OS surface the injector drives.
type keyboard interface {
	// foreground returns the focused window's title and a func that
	// brings it back to the front. ok is false when no window has focus.
	foreground() (title string, activate func(), ok bool)
	typeText(text string)
	paste() error
}

// Window is a captured injection target.
type Window struct {
	title    string
	activate func()
}

// Title returns the window title at capture time.
func (w *Window) Title() string { return w.title }

// Injector types text into the window that was focused when a recording
// started.
type Injector struct {
	mode   string
	settle time.Duration
	kb     keyboard
	sleep  func(time.Duration)
	log    *slog.Logger
}

var _ dictation.Injector = (*Injector)(nil)

// NewInjector returns an injector in mode (ModeType or ModePaste). Paste
// mode expects the text to already be on the clipboard.
func NewInjector(mode string, settle time.Duration, log *slog.Logger) (*Injector, error) {
	if log == nil {
		log = slog.Default()
	}
	var kb keyboard
	switch mode {
	case ModeType, "":
		mode = ModeType
		kb = robotKeyboard{}
	case ModePaste:
		bond, err := keybd_event.NewKeyBonding()
		if err != nil {
			return nil, fmt.Errorf("create key bonding: %w", err)
		}
		kb = &pasteKeyboard{bond: bond}
	default:
		return nil, fmt.Errorf("unknown injection mode %q", mode)
	}
	return &Injector{mode: mode, settle: settle, kb: kb, sleep: time.Sleep, log: log}, nil
}

// Capture records the currently focused window. It returns nil when no
// window has focus, so the text is not typed into whatever gets focus later.
func (i *Injector) Capture() dictation.Window {
	title, activate, ok := i.kb.foreground()
	if !ok {
		i.log.Debug("no foreground window to capture")
		return nil
	}
	return &Window{title: title, activate: activate}
}

// Inject refocuses w, waits for the settle delay and enters text.
func (i *Injector) Inject(w dictation.Window, text string) error {
	win, ok := w.(*Window)
	if !ok || win == nil {
		return errors.New("inject: window was not captured by this injector")
	}
	if win.activate != nil {
		win.activate()
	}
	i.sleep(i.settle)

	i.log.Debug("injecting text", "mode", i.mode, "target", win.title, "chars", len(text))
	if i.mode == ModePaste {
		if err := i.kb.paste(); err != nil {
			return fmt.Errorf("paste into %q: %w", win.title, err)
		}
		return nil
	}
	i.kb.typeText(text)
	return nil
}

type robotKeyboard struct{}

func (robotKeyboard) foreground() (string, func(), bool) {
	if robotgo.GetHandle() == 0 {
		return "", nil, false
	}
	handle := robotgo.GetActive()
	title := robotgo.GetTitle()
	return title, func() { robotgo.SetActive(handle) }, true
}

func (robotKeyboard) typeText(text string) { robotgo.TypeStr(text) }

func (robotKeyboard) paste() error {
	return errors.New("paste is not supported by the typing keyboard")
}

// pasteKeyboard sends Ctrl+V through keybd_event and uses robotgo only for
// window focus.
type pasteKeyboard struct {
	robotKeyboard
	bond keybd_event.KeyBonding
}

func (p *pasteKeyboard) paste() error {
	p.bond.HasCTRL(true)
	p.bond.SetKeys(keybd_event.VK_V)
	return p.bond.Launching()
}
