// Package monitor pauses playback when the session locks and resumes it on
// unlock if it was playing at lock time.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pauseonlock/internal/core"
	"pauseonlock/internal/idgen"
	"pauseonlock/internal/player"
	"pauseonlock/internal/session"
)

const defaultCallTimeout = 5 * time.Second

var ErrAlreadyStarted = errors.New("monitor already started")

// State is the monitor's view of the session
type State int

const (
	StateUnlocked State = iota
	StateLocked
)

// String returns the state name
func (s State) String() string {
	if s == StateLocked {
		return "locked"
	}
	return "unlocked"
}

// Recorder receives a record of every handled transition
type Recorder interface {
	Record(ctx context.Context, t *core.Transition) error
}

// Option configures a Monitor
type Option func(*Monitor)

// WithRecorder journals every lock/unlock the monitor handles
func WithRecorder(r Recorder) Option {
	return func(m *Monitor) {
		m.recorder = r
	}
}

// WithClock replaces the clock used for transition timestamps
func WithClock(c Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

// WithCallTimeout bounds each player call
func WithCallTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.callTimeout = d
		}
	}
}

// Monitor applies the pause/resume policy to session lock/unlock events
type Monitor struct {
	player      player.Player
	source      session.Source
	recorder    Recorder
	clock       Clock
	callTimeout time.Duration
	logger      *slog.Logger

	// mu serializes event handling with Start/Stop
	mu         sync.Mutex
	sub        session.Subscription
	running    bool
	state      State
	wasPlaying bool
}

// NewMonitor creates a monitor. It does nothing until Start is called.
func NewMonitor(p player.Player, source session.Source, logger *slog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		player:      p,
		source:      source,
		clock:       RealClock{},
		callTimeout: defaultCallTimeout,
		logger:      logger.With("component", "lock-monitor"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to the session source
func (m *Monitor) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.running = true
	m.mu.Unlock()

	// Subscribe outside the lock: sources may deliver synchronously.
	sub, err := m.source.Subscribe(m.HandleSessionChange)
	if err != nil {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	if !m.running {
		// Stopped while subscribing.
		m.mu.Unlock()
		return sub.Unsubscribe()
	}
	m.sub = sub
	m.mu.Unlock()

	m.logger.Info("lock monitor started",
		"source", m.source.Name(),
		"player", m.player.Name(),
	)
	return nil
}

// Stop unsubscribes from the session source. It is safe to call more than
// once. After Stop returns no event has any effect.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	sub := m.sub
	m.sub = nil
	m.running = false
	m.mu.Unlock()

	if sub == nil {
		return nil
	}

	// Unsubscribe outside the lock so an in-flight handler can finish.
	err := sub.Unsubscribe()
	if err != nil {
		m.logger.Warn("failed to unsubscribe from session source", "error", err)
	}
	m.logger.Info("lock monitor stopped")
	return err
}

// State returns the monitor's current session state
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// HandleSessionChange is the handler registered with the session source
func (m *Monitor) HandleSessionChange(event session.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		m.logger.Debug("event ignored, monitor not running", "reason", event.Reason.String())
		return
	}

	switch event.Reason {
	case session.SessionLock:
		m.onLock()
	case session.SessionUnlock:
		m.onUnlock()
	default:
		m.logger.Debug("session change ignored", "reason", event.Reason.String(), "session_id", event.SessionID)
	}
}

// onLock pauses a playing player and remembers that it did
func (m *Monitor) onLock() {
	ctx, cancel := context.WithTimeout(context.Background(), m.callTimeout)
	defer cancel()

	m.state = StateLocked
	t := m.newTransition(core.ReasonLock)

	state, err := m.player.PlayState(ctx)
	if err != nil {
		m.logger.Warn("failed to read play state, assuming not playing", "error", err)
		m.wasPlaying = false
		t.Error = err.Error()
		m.record(ctx, t)
		return
	}
	t.ObservedState = state

	if state != core.PlayStatePlaying {
		m.wasPlaying = false
		m.logger.Info("session locked, player not playing", "state", state.String())
		m.record(ctx, t)
		return
	}

	m.wasPlaying = true
	t.WasPlaying = true
	t.Action = core.ActionPaused
	if err := m.player.TogglePlayPause(ctx); err != nil {
		m.logger.Error("failed to pause player", "error", err)
		t.Error = err.Error()
	} else {
		m.logger.Info("session locked, playback paused")
	}
	m.record(ctx, t)
}

// onUnlock resumes the player if it was playing at the last lock. The flag
// is left as is.
func (m *Monitor) onUnlock() {
	ctx, cancel := context.WithTimeout(context.Background(), m.callTimeout)
	defer cancel()

	m.state = StateUnlocked
	t := m.newTransition(core.ReasonUnlock)
	t.WasPlaying = m.wasPlaying

	if !m.wasPlaying {
		m.logger.Info("session unlocked, nothing to resume")
		m.record(ctx, t)
		return
	}

	t.Action = core.ActionResumed
	if err := m.player.TogglePlayPause(ctx); err != nil {
		m.logger.Error("failed to resume player", "error", err)
		t.Error = err.Error()
	} else {
		m.logger.Info("session unlocked, playback resumed")
	}
	m.record(ctx, t)
}

func (m *Monitor) newTransition(reason core.TransitionReason) *core.Transition {
	return &core.Transition{
		ID:     idgen.NewTransition(),
		Reason: reason,
		Action: core.ActionNone,
		Player: m.player.Name(),
		At:     m.clock.Now().UTC(),
	}
}

func (m *Monitor) record(ctx context.Context, t *core.Transition) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(ctx, t); err != nil {
		m.logger.Warn("failed to record transition", "transition_id", t.ID, "error", err)
	}
}
