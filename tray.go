package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/getlantern/systray"
	"golang.org/x/sync/errgroup"

	"dictator/pkg/app"
	"dictator/pkg/desktop"
	"dictator/pkg/dictation"
	"dictator/pkg/hotkey"
	"dictator/pkg/language"
)

const (
	maxTitleRunes = 40
	// Windows caps tray tooltips at 127 characters.
	maxTooltipRunes = 127
)

var (
	dictationDown = dictation.HotkeyDown{}
	dictationUp   = dictation.HotkeyUp{}
)

// tray is the system tray front end and the dictation Presenter.
type tray struct {
	app      *app.App
	listener hotkey.Listener
	log      *slog.Logger

	langItems map[language.Language]*systray.MenuItem
	state     dictation.State
	cancel    context.CancelFunc
	stopped   chan struct{}
	exitCode  atomic.Int32
}

var _ dictation.Presenter = (*tray)(nil)

func newTray(log *slog.Logger) *tray {
	return &tray{
		log:       log,
		langItems: make(map[language.Language]*systray.MenuItem),
		stopped:   make(chan struct{}),
	}
}

func (t *tray) onReady() {
	systray.SetIcon(iconIdle)
	systray.SetTitle("")
	systray.SetTooltip(stateTooltip(dictation.Idle, t.app.Config.Hotkey))

	mLang := systray.AddMenuItem("Language", "Dictation language")
	for _, l := range language.All() {
		t.langItems[l] = mLang.AddSubMenuItemCheckbox(l.Title(), "Dictate in "+l.Title(), false)
	}
	mDefault := systray.AddMenuItem("Set as Default", "Start with the current language next time")
	systray.AddSeparator()
	mExit := systray.AddMenuItem("Exit", "Quit Dictator")

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return t.app.Service.Run(gctx)
	})
	g.Go(func() error { return t.listener.Listen(gctx) })
	g.Go(func() error { return t.app.Metrics.Serve(gctx) })
	g.Go(func() error {
		t.menuLoop(gctx, mDefault, mExit)
		return nil
	})

	go func() {
		defer close(t.stopped)
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			t.log.Error("dictator stopped", "err", err)
			t.exitCode.Store(1)
		}
		systray.Quit()
	}()
}

func (t *tray) menuLoop(ctx context.Context, mDefault, mExit *systray.MenuItem) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	english := t.langItems[language.English].ClickedCh
	spanish := t.langItems[language.Spanish].ClickedCh
	for {
		select {
		case <-ctx.Done():
			return
		case <-english:
			t.post(dictation.SelectLanguage{Language: language.English})
		case <-spanish:
			t.post(dictation.SelectLanguage{Language: language.Spanish})
		case <-mDefault.ClickedCh:
			t.post(dictation.SetDefault{})
		case <-mExit.ClickedCh:
			t.exit()
		case s := <-sig:
			t.log.Info("signal received", "signal", s.String())
			t.exit()
		}
	}
}

func (t *tray) post(m dictation.Message) {
	if err := t.app.Service.Post(m); err != nil {
		t.log.Warn("menu action dropped", "err", err)
	}
}

func (t *tray) exit() {
	if err := t.app.Service.Post(dictation.Exit{}); err != nil {
		t.cancel()
	}
}

func (t *tray) onExit() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	select {
	case <-t.stopped:
	case <-time.After(3 * time.Second):
		t.log.Warn("background loops did not stop in time")
	}
}

// ShowState swaps the tray icon: green while recording.
func (t *tray) ShowState(s dictation.State) {
	t.state = s
	switch s {
	case dictation.Recording:
		systray.SetIcon(iconRecording)
	case dictation.Transcribing:
		systray.SetIcon(iconIdle)
		systray.SetTitle("Transcribing...")
	default:
		systray.SetIcon(iconIdle)
	}
	systray.SetTooltip(stateTooltip(s, t.app.Config.Hotkey))
}

// ShowMessage is the overlay: a desktop notification plus the tray title
// and tooltip. Windows has no tray title, so the tooltip carries the text
// there until HideMessage.
func (t *tray) ShowMessage(text string) {
	systray.SetTitle(truncate(text, maxTitleRunes))
	systray.SetTooltip(truncate("Dictator: "+text, maxTooltipRunes))
	go func() {
		if err := desktop.Notify(desktop.AppName, text); err != nil {
			t.log.Debug("desktop notification failed", "err", err)
		}
	}()
}

func (t *tray) HideMessage() {
	systray.SetTitle("")
	systray.SetTooltip(stateTooltip(t.state, t.app.Config.Hotkey))
}

func (t *tray) ShowLanguage(lang language.Language) {
	for l, item := range t.langItems {
		if l == lang {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

func stateTooltip(s dictation.State, hotkey string) string {
	switch s {
	case dictation.Recording:
		return "Dictator: recording"
	case dictation.Transcribing:
		return "Dictator: transcribing"
	default:
		return "Dictator: hold " + hotkey + " to dictate"
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
