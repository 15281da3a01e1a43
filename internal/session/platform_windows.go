//go:build windows

package session

import (
	"fmt"
	"log/slog"
)

// DefaultKind is the source used when none is configured
const DefaultKind = KindWTS

// NewPlatformSource creates the session source named by kind
func NewPlatformSource(kind string, logger *slog.Logger) (Source, error) {
	switch kind {
	case "", KindWTS:
		return NewWTSSource(logger), nil
	case KindLogind, KindScreenSaver, KindSignal:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, kind)
	}
}
