// Package player adapts media players to the two operations the lock monitor needs.
package player

import (
	"context"
	"errors"

	"pauseonlock/internal/core"
)

var ErrUnsupported = errors.New("player backend is not supported on this platform")

// Player is the host-side control surface used by the lock monitor
type Player interface {
	// Name returns the unique name of this backend (e.g., "mpris", "mpd")
	Name() string

	// PlayState returns the current transport status
	PlayState(ctx context.Context) (core.PlayState, error)

	// TogglePlayPause flips playback between playing and paused
	TogglePlayPause(ctx context.Context) error
}
