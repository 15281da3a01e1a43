package storage

import (
	"context"
	"pauseonlock/internal/core"
)

// Journal defines the interface for transition persistence
type Journal interface {
	// Record stores a handled transition
	Record(ctx context.Context, t *core.Transition) error

	// Recent returns up to limit transitions, newest first
	Recent(ctx context.Context, limit int) ([]*core.Transition, error)

	// Lifecycle
	Close() error
}
