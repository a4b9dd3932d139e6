package hotkey

import (
	"context"
	"fmt"
	"log/slog"

	"golang.design/x/hotkey"
)

var registerKeys = map[string]hotkey.Key{
	"f1":    hotkey.KeyF1,
	"f2":    hotkey.KeyF2,
	"f3":    hotkey.KeyF3,
	"f4":    hotkey.KeyF4,
	"f5":    hotkey.KeyF5,
	"f6":    hotkey.KeyF6,
	"f7":    hotkey.KeyF7,
	"f8":    hotkey.KeyF8,
	"f9":    hotkey.KeyF9,
	"f10":   hotkey.KeyF10,
	"f11":   hotkey.KeyF11,
	"f12":   hotkey.KeyF12,
	"space": hotkey.KeySpace,
}

var registerModifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
}

// RegisterListener owns an OS-registered hotkey.
type RegisterListener struct {
	binding Binding
	handler Handler
	log     *slog.Logger
}

var _ Listener = (*RegisterListener)(nil)

// NewRegisterListener returns a listener for b.
func NewRegisterListener(b Binding, h Handler, log *slog.Logger) *RegisterListener {
	if log == nil {
		log = slog.Default()
	}
	return &RegisterListener{binding: b, handler: h, log: log}
}

// Listen registers the hotkey, delivers events until ctx is done, then
// unregisters it.
func (l *RegisterListener) Listen(ctx context.Context) error {
	key, ok := registerKeys[l.binding.Key]
	if !ok {
		return fmt.Errorf("hotkey %s: unsupported key", l.binding)
	}
	mods := make([]hotkey.Modifier, 0, len(l.binding.Modifiers))
	for _, m := range l.binding.Modifiers {
		mods = append(mods, registerModifiers[m])
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register hotkey %s: %w", l.binding, err)
	}
	defer func() {
		if err := hk.Unregister(); err != nil {
			l.log.Warn("unregister hotkey", "hotkey", l.binding.String(), "err", err)
		}
	}()
	l.log.Info("hotkey registered", "hotkey", l.binding.String())

	l.loop(ctx, hk.Keydown(), hk.Keyup())
	return nil
}

func (l *RegisterListener) loop(ctx context.Context, down, up <-chan hotkey.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-down:
			if !ok {
				return
			}
			l.handler.down()
		case _, ok := <-up:
			if !ok {
				return
			}
			l.handler.up()
		}
	}
}
