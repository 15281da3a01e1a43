// Package session delivers operating-system session-switch notifications.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrNilHandler    = errors.New("session handler cannot be nil")
	ErrUnsupported   = errors.New("session source is not supported on this platform")
	ErrUnknownSource = errors.New("unknown session source")
)

// Source kinds accepted by NewPlatformSource
const (
	KindWTS         = "wts"
	KindLogind      = "logind"
	KindScreenSaver = "screensaver"
	KindSignal      = "signal"
)

// Reason is the cause of a session switch. Values match the Windows
// WTS_SESSION_* codes delivered with WM_WTSSESSION_CHANGE.
type Reason int

const (
	ConsoleConnect       Reason = 1
	ConsoleDisconnect    Reason = 2
	RemoteConnect        Reason = 3
	RemoteDisconnect     Reason = 4
	SessionLogon         Reason = 5
	SessionLogoff        Reason = 6
	SessionLock          Reason = 7
	SessionUnlock        Reason = 8
	SessionRemoteControl Reason = 9
)

// String returns a readable name for the reason
func (r Reason) String() string {
	switch r {
	case ConsoleConnect:
		return "console-connect"
	case ConsoleDisconnect:
		return "console-disconnect"
	case RemoteConnect:
		return "remote-connect"
	case RemoteDisconnect:
		return "remote-disconnect"
	case SessionLogon:
		return "session-logon"
	case SessionLogoff:
		return "session-logoff"
	case SessionLock:
		return "session-lock"
	case SessionUnlock:
		return "session-unlock"
	case SessionRemoteControl:
		return "session-remote-control"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Event is a single session-switch notification
type Event struct {
	Reason    Reason
	SessionID uint32 // 0 when the source does not report one
	Source    string
	At        time.Time
}

// Handler receives events. Events from one subscription are delivered one at
// a time. A handler must not unsubscribe its own subscription.
type Handler func(Event)

// Subscription is a live registration with a Source
type Subscription interface {
	// Unsubscribe releases the registration. It is idempotent, and once it
	// returns the handler is never invoked again.
	Unsubscribe() error
}

// Source is an operating-system session notification stream
type Source interface {
	// Name returns the source kind (e.g., "wts", "logind")
	Name() string

	// Subscribe registers handler and starts delivering events to it
	Subscribe(handler Handler) (Subscription, error)
}

// loopSubscription owns a delivery goroutine that exits when quit is closed.
type loopSubscription struct {
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	release func() error
	err     error
}

func newLoopSubscription(release func() error) *loopSubscription {
	return &loopSubscription{
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		release: release,
	}
}

// Unsubscribe stops the delivery goroutine, waits for it and releases resources
func (s *loopSubscription) Unsubscribe() error {
	s.once.Do(func() {
		close(s.quit)
		<-s.done
		if s.release != nil {
			s.err = s.release()
		}
	})
	return s.err
}
