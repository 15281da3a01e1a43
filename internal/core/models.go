package core

import (
	"errors"
	"time"
)

// PlayState is the transport status reported by a player
type PlayState int

const (
	PlayStateUndefined PlayState = iota
	PlayStateLoading
	PlayStatePlaying
	PlayStatePaused
	PlayStateStopped
)

// String returns the lowercase name of the play state
func (s PlayState) String() string {
	switch s {
	case PlayStateLoading:
		return "loading"
	case PlayStatePlaying:
		return "playing"
	case PlayStatePaused:
		return "paused"
	case PlayStateStopped:
		return "stopped"
	default:
		return "undefined"
	}
}

// ParsePlayState converts the output of PlayState.String back into a PlayState.
// Unknown names map to PlayStateUndefined.
func ParsePlayState(s string) PlayState {
	switch s {
	case "loading":
		return PlayStateLoading
	case "playing":
		return PlayStatePlaying
	case "paused":
		return PlayStatePaused
	case "stopped":
		return PlayStateStopped
	default:
		return PlayStateUndefined
	}
}

// TransitionReason identifies what triggered a transition
type TransitionReason string

const (
	ReasonLock    TransitionReason = "lock"
	ReasonUnlock  TransitionReason = "unlock"
	ReasonStartup TransitionReason = "startup"
)

// Action is what the monitor did to the player in response to a transition
type Action string

const (
	ActionNone    Action = "none"
	ActionPaused  Action = "paused"
	ActionResumed Action = "resumed"
)

// Transition records one handled session event
type Transition struct {
	ID            string
	Reason        TransitionReason
	ObservedState PlayState // state read from the player; undefined on unlock
	Action        Action
	WasPlaying    bool   // value of the remembered flag after handling
	Player        string // name of the player backend
	Error         string // empty on success
	At            time.Time
}

// Validation errors
var (
	ErrInvalidTransitionID = errors.New("transition ID cannot be empty")
	ErrInvalidReason       = errors.New("invalid transition reason")
	ErrInvalidAction       = errors.New("invalid transition action")
	ErrMissingTimestamp    = errors.New("transition timestamp is required")
)

// Validate validates a Transition
func (t *Transition) Validate() error {
	if t.ID == "" {
		return ErrInvalidTransitionID
	}
	switch t.Reason {
	case ReasonLock, ReasonUnlock, ReasonStartup:
	default:
		return ErrInvalidReason
	}
	switch t.Action {
	case ActionNone, ActionPaused, ActionResumed:
	default:
		return ErrInvalidAction
	}
	if t.At.IsZero() {
		return ErrMissingTimestamp
	}
	return nil
}

// Failed returns true if the player reported an error while handling the transition
func (t *Transition) Failed() bool {
	return t.Error != ""
}
