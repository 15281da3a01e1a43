//go:build linux

package session

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	logindDest             = "org.freedesktop.login1"
	logindPath             = "/org/freedesktop/login1"
	logindManagerInterface = "org.freedesktop.login1.Manager"
	logindSessionInterface = "org.freedesktop.login1.Session"

	screenSaverInterface = "org.freedesktop.ScreenSaver"
	screenSaverMember    = "ActiveChanged"
)

// DBusSource delivers session events from D-Bus signals
type DBusSource struct {
	kind      string
	connect   func() (*dbus.Conn, error)
	match     func(conn *dbus.Conn) ([]dbus.MatchOption, error)
	translate func(sig *dbus.Signal) (Reason, bool)
	logger    *slog.Logger
}

// NewLogindSource listens for Lock/Unlock on the caller's logind session.
// The session is taken from XDG_SESSION_ID, falling back to logind's "auto".
func NewLogindSource(logger *slog.Logger) *DBusSource {
	return &DBusSource{
		kind:      KindLogind,
		connect:   func() (*dbus.Conn, error) { return dbus.ConnectSystemBus() },
		match:     matchLogindSession,
		translate: reasonFromLogind,
		logger:    logger.With("component", "session-logind"),
	}
}

// NewScreenSaverSource listens for org.freedesktop.ScreenSaver.ActiveChanged
// on the session bus.
func NewScreenSaverSource(logger *slog.Logger) *DBusSource {
	return &DBusSource{
		kind:    KindScreenSaver,
		connect: func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() },
		match: func(*dbus.Conn) ([]dbus.MatchOption, error) {
			return []dbus.MatchOption{
				dbus.WithMatchInterface(screenSaverInterface),
				dbus.WithMatchMember(screenSaverMember),
			}, nil
		},
		translate: reasonFromScreenSaver,
		logger:    logger.With("component", "session-screensaver"),
	}
}

// Name returns the source kind
func (s *DBusSource) Name() string {
	return s.kind
}

// Subscribe opens a private bus connection and starts delivering signals
func (s *DBusSource) Subscribe(handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	conn, err := s.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bus: %w", err)
	}

	opts, err := s.match(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.AddMatchSignal(opts...); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to add signal match: %w", err)
	}

	ch := make(chan *dbus.Signal, 16)
	conn.Signal(ch)

	sub := newLoopSubscription(func() error {
		conn.RemoveSignal(ch)
		if err := conn.RemoveMatchSignal(opts...); err != nil {
			s.logger.Debug("failed to remove signal match", "error", err)
		}
		return conn.Close()
	})

	go func() {
		defer close(sub.done)
		for {
			select {
			case <-sub.quit:
				return
			case sig, ok := <-ch:
				if !ok {
					return
				}
				reason, ok := s.translate(sig)
				if !ok {
					continue
				}
				s.logger.Debug("session signal received", "signal", sig.Name, "path", sig.Path, "reason", reason.String())
				handler(Event{Reason: reason, Source: s.kind, At: time.Now()})
			}
		}
	}()

	s.logger.Info("subscribed to session signals")
	return sub, nil
}

func matchLogindSession(conn *dbus.Conn) ([]dbus.MatchOption, error) {
	id := os.Getenv("XDG_SESSION_ID")
	if id == "" {
		id = "auto"
	}

	var path dbus.ObjectPath
	mgr := conn.Object(logindDest, logindPath)
	if err := mgr.Call(logindManagerInterface+".GetSession", 0, id).Store(&path); err != nil {
		return nil, fmt.Errorf("failed to resolve logind session %q: %w", id, err)
	}

	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(logindSessionInterface),
	}, nil
}

func reasonFromLogind(sig *dbus.Signal) (Reason, bool) {
	switch sig.Name {
	case logindSessionInterface + ".Lock":
		return SessionLock, true
	case logindSessionInterface + ".Unlock":
		return SessionUnlock, true
	default:
		return 0, false
	}
}

func reasonFromScreenSaver(sig *dbus.Signal) (Reason, bool) {
	if sig.Name != screenSaverInterface+"."+screenSaverMember || len(sig.Body) != 1 {
		return 0, false
	}
	active, ok := sig.Body[0].(bool)
	if !ok {
		return 0, false
	}
	if active {
		return SessionLock, true
	}
	return SessionUnlock, true
}

// Ensure DBusSource implements Source
var _ Source = (*DBusSource)(nil)
