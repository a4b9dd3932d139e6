package main

import (
	"testing"

	"dictator/pkg/dictation"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer transcription", 10, "a longe..."},
		{"áéíóúñáéíóú", 8, "áéíóú..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestStateTooltip(t *testing.T) {
	tests := []struct {
		state dictation.State
		want  string
	}{
		{dictation.Idle, "Dictator: hold f3 to dictate"},
		{dictation.Recording, "Dictator: recording"},
		{dictation.Transcribing, "Dictator: transcribing"},
	}
	for _, tt := range tests {
		if got := stateTooltip(tt.state, "f3"); got != tt.want {
			t.Errorf("stateTooltip(%v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}
