package hotkey

import (
	"context"
	"fmt"
	"log/slog"

	hook "github.com/robotn/gohook"
)

// HookListener watches the global keyboard hook for one unmodified key.
type HookListener struct {
	binding Binding
	handler Handler
	log     *slog.Logger

	code uint16
	down bool
}

var _ Listener = (*HookListener)(nil)

// NewHookListener returns a listener for b. Bindings with modifiers are
// rejected.
func NewHookListener(b Binding, h Handler, log *slog.Logger) (*HookListener, error) {
	if len(b.Modifiers) > 0 {
		return nil, fmt.Errorf("hotkey %s: modifiers are not supported in hook mode", b)
	}
	code, ok := hook.Keycode[b.Key]
	if !ok {
		return nil, fmt.Errorf("hotkey %s: unsupported key", b)
	}
	if log == nil {
		log = slog.Default()
	}
	return &HookListener{binding: b, handler: h, log: log, code: code}, nil
}

// Listen starts the hook and delivers events until ctx is done.
func (l *HookListener) Listen(ctx context.Context) error {
	events := hook.Start()
	defer hook.End()
	l.log.Info("keyboard hook started", "hotkey", l.binding.String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			l.dispatch(ev)
		}
	}
}

// dispatch folds key-press and auto-repeat into a single down.
func (l *HookListener) dispatch(ev hook.Event) {
	if ev.Keycode != l.code {
		return
	}
	switch ev.Kind {
	case hook.KeyDown, hook.KeyHold:
		if !l.down {
			l.down = true
			l.handler.down()
		}
	case hook.KeyUp:
		if l.down {
			l.down = false
			l.handler.up()
		}
	}
}
