// Package hotkey turns a global key press and release into callbacks.
//
// Two listeners exist. RegisterListener registers the key with the OS so
// other applications never see it. HookListener observes the raw keyboard
// hook instead; it cannot suppress the key and supports no modifiers.
package hotkey

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Binding is a parsed key combination such as ctrl+shift+f3.
type Binding struct {
	Key       string
	Modifiers []string
}

var keyNames = []string{
	"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12", "space",
}

var modifierNames = []string{"ctrl", "shift"}

// Parse reads "mod+mod+key". Names are case-insensitive; "control" is
// accepted for ctrl.
func Parse(s string) (Binding, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	var b Binding
	seen := map[string]bool{}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "control" {
			p = "ctrl"
		}
		if i == len(parts)-1 {
			if !contains(keyNames, p) {
				return Binding{}, fmt.Errorf("hotkey %q: unknown key %q (allowed: %s)", s, p, strings.Join(keyNames, ", "))
			}
			b.Key = p
			break
		}
		if !contains(modifierNames, p) {
			return Binding{}, fmt.Errorf("hotkey %q: unknown modifier %q (allowed: %s)", s, p, strings.Join(modifierNames, ", "))
		}
		if !seen[p] {
			seen[p] = true
			b.Modifiers = append(b.Modifiers, p)
		}
	}
	sort.Strings(b.Modifiers)
	return b, nil
}

func (b Binding) String() string {
	return strings.Join(append(append([]string(nil), b.Modifiers...), b.Key), "+")
}

// Handler receives key transitions. Callbacks must not block; in this
// program they only post a message to the dictation queue.
type Handler struct {
	OnDown func()
	OnUp   func()
}

func (h Handler) down() {
	if h.OnDown != nil {
		h.OnDown()
	}
}

func (h Handler) up() {
	if h.OnUp != nil {
		h.OnUp()
	}
}

// Listener blocks delivering key events until ctx is done.
type Listener interface {
	Listen(ctx context.Context) error
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
