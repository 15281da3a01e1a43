//go:build unix

package session

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SignalSource turns SIGUSR1 into a session lock and SIGUSR2 into an unlock.
// It lets screen lockers without a bus interface drive the monitor, e.g.
// `pkill -USR1 pauseonlock` from a locker hook.
type SignalSource struct {
	logger *slog.Logger
}

// NewSignalSource creates a signal-driven source
func NewSignalSource(logger *slog.Logger) *SignalSource {
	return &SignalSource{
		logger: logger.With("component", "session-signal"),
	}
}

// Name returns the source kind
func (s *SignalSource) Name() string {
	return KindSignal
}

// Subscribe starts listening for SIGUSR1/SIGUSR2
func (s *SignalSource) Subscribe(handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)

	sub := newLoopSubscription(func() error {
		signal.Stop(ch)
		return nil
	})

	go func() {
		defer close(sub.done)
		for {
			select {
			case <-sub.quit:
				return
			case sig := <-ch:
				reason, ok := reasonFromSignal(sig)
				if !ok {
					continue
				}
				s.logger.Debug("session signal received", "signal", sig.String(), "reason", reason.String())
				handler(Event{Reason: reason, Source: KindSignal, At: time.Now()})
			}
		}
	}()

	return sub, nil
}

func reasonFromSignal(sig os.Signal) (Reason, bool) {
	switch sig {
	case syscall.SIGUSR1:
		return SessionLock, true
	case syscall.SIGUSR2:
		return SessionUnlock, true
	default:
		return 0, false
	}
}

// Ensure SignalSource implements Source
var _ Source = (*SignalSource)(nil)
