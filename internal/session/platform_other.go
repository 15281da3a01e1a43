//go:build !unix && !windows

package session

import (
	"fmt"
	"log/slog"
)

// DefaultKind is the source used when none is configured
const DefaultKind = ""

// NewPlatformSource reports every kind as unsupported
func NewPlatformSource(kind string, _ *slog.Logger) (Source, error) {
	switch kind {
	case "", KindWTS, KindLogind, KindScreenSaver, KindSignal:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, kind)
	}
}
