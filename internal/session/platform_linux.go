//go:build linux

package session

import (
	"fmt"
	"log/slog"
)

// DefaultKind is the source used when none is configured
const DefaultKind = KindLogind

// NewPlatformSource creates the session source named by kind
func NewPlatformSource(kind string, logger *slog.Logger) (Source, error) {
	switch kind {
	case "", KindLogind:
		return NewLogindSource(logger), nil
	case KindScreenSaver:
		return NewScreenSaverSource(logger), nil
	case KindSignal:
		return NewSignalSource(logger), nil
	case KindWTS:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, kind)
	}
}
