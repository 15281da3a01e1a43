//go:build unix && !linux

package session

import (
	"fmt"
	"log/slog"
)

// DefaultKind is the source used when none is configured
const DefaultKind = KindSignal

// NewPlatformSource creates the session source named by kind
func NewPlatformSource(kind string, logger *slog.Logger) (Source, error) {
	switch kind {
	case "", KindSignal:
		return NewSignalSource(logger), nil
	case KindWTS, KindLogind, KindScreenSaver:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, kind)
	}
}
