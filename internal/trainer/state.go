package trainer

import (
	"fmt"

	"github.com/google/uuid"
)

// State is the scheduler's position in the training loop.
type State int

const (
	StateIdle State = iota
	StateAnnouncing
	StatePlaying
	StateGap
	StateRevealing
	StateWordGap
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnnouncing:
		return "announcing"
	case StatePlaying:
		return "playing"
	case StateGap:
		return "gap"
	case StateRevealing:
		return "revealing"
	case StateWordGap:
		return "word gap"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventKind identifies a scheduler event.
type EventKind int

const (
	// EventCharacter is sent when a new character has been picked
	EventCharacter EventKind = iota
	// EventRepetition is sent before each repetition of the character is played
	EventRepetition
	// EventRevealed is sent once all repetitions of the character have been played
	EventRevealed
	// EventStopped is sent when the session ends, for whatever reason
	EventStopped
)

func (k EventKind) String() string {
	switch k {
	case EventCharacter:
		return "character"
	case EventRepetition:
		return "repetition"
	case EventRevealed:
		return "revealed"
	case EventStopped:
		return "stopped"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes progress of a training session.
type Event struct {
	Kind       EventKind
	Session    uuid.UUID
	Char       rune
	Pattern    string
	Repetition int   // 1-based, EventRepetition only
	Err        error // EventStopped only, nil on a clean stop
}

// Observer receives scheduler events on the driver goroutine. It must return
// promptly and must not call back into Stop.
type Observer func(Event)
