//go:build !linux

package player

import (
	"context"
	"log/slog"

	"pauseonlock/internal/core"
)

// MPRIS is unavailable outside Linux.
type MPRIS struct{}

// NewMPRIS always returns ErrUnsupported on non-Linux platforms
func NewMPRIS(_ string, _ *slog.Logger) (*MPRIS, error) {
	return nil, ErrUnsupported
}

// Name returns the backend name
func (p *MPRIS) Name() string {
	return "mpris"
}

// PlayState returns ErrUnsupported
func (p *MPRIS) PlayState(_ context.Context) (core.PlayState, error) {
	return core.PlayStateUndefined, ErrUnsupported
}

// TogglePlayPause returns ErrUnsupported
func (p *MPRIS) TogglePlayPause(_ context.Context) error {
	return ErrUnsupported
}

// Close is a no-op on non-Linux platforms
func (p *MPRIS) Close() error {
	return nil
}

var _ Player = (*MPRIS)(nil)
