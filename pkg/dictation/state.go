package dictation

import "fmt"

// State is the dictation lifecycle phase.
type State int32

const (
	Idle State = iota
	Recording
	Transcribing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
