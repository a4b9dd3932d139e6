// Package language defines the fixed set of dictation languages.
package language

import (
	"fmt"
	"strings"
)

// Language is the active recognition language.
type Language int

const (
	English Language = iota
	Spanish
)

// All returns every supported language in menu order.
func All() []Language {
	return []Language{English, Spanish}
}

// Parse maps a configuration value such as "english" or "Spanish" to a Language.
func Parse(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "english":
		return English, nil
	case "spanish":
		return Spanish, nil
	}
	return English, fmt.Errorf("unknown language %q (allowed: english, spanish)", s)
}

// ParseOrDefault is Parse with English as the fallback for unknown values.
func ParseOrDefault(s string) Language {
	l, err := Parse(s)
	if err != nil {
		return English
	}
	return l
}

// String returns the lowercase configuration name.
func (l Language) String() string {
	switch l {
	case English:
		return "english"
	case Spanish:
		return "spanish"
	default:
		return "unknown"
	}
}

// Title returns the name shown in menus.
func (l Language) Title() string {
	switch l {
	case English:
		return "English"
	case Spanish:
		return "Spanish"
	default:
		return "Unknown"
	}
}

// Code returns the ISO-639-1 code sent to Whisper-style APIs.
func (l Language) Code() string {
	if l == Spanish {
		return "es"
	}
	return "en"
}

// Locale returns the BCP-47 tag used by Google Speech.
func (l Language) Locale() string {
	if l == Spanish {
		return "es-ES"
	}
	return "en-US"
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == English || l == Spanish
}
