package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReason_String(t *testing.T) {
	assert.Equal(t, "session-lock", SessionLock.String())
	assert.Equal(t, "session-unlock", SessionUnlock.String())
	assert.Equal(t, "console-connect", ConsoleConnect.String())
	assert.Equal(t, "session-remote-control", SessionRemoteControl.String())
	assert.Equal(t, "reason(42)", Reason(42).String())
}

func TestReason_MatchesWTSCodes(t *testing.T) {
	assert.Equal(t, Reason(0x7), SessionLock)
	assert.Equal(t, Reason(0x8), SessionUnlock)
}

func TestLoopSubscription_Idempotent(t *testing.T) {
	releases := 0
	sub := newLoopSubscription(func() error {
		releases++
		return errors.New("already closed")
	})
	go func() {
		<-sub.quit
		close(sub.done)
	}()

	err := sub.Unsubscribe()
	assert.EqualError(t, err, "already closed")

	err = sub.Unsubscribe()
	assert.EqualError(t, err, "already closed")
	assert.Equal(t, 1, releases)
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	d := NewDispatcher("test")

	var got []string
	_, err := d.Subscribe(func(e Event) { got = append(got, "first:"+e.Reason.String()) })
	require.NoError(t, err)
	_, err = d.Subscribe(func(e Event) { got = append(got, "second:"+e.Reason.String()) })
	require.NoError(t, err)

	n := d.Dispatch(Event{Reason: SessionLock})

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"first:session-lock", "second:session-lock"}, got)
}

func TestDispatcher_FillsDefaults(t *testing.T) {
	d := NewDispatcher("manual")

	var got Event
	_, err := d.Subscribe(func(e Event) { got = e })
	require.NoError(t, err)

	before := time.Now()
	d.Dispatch(Event{Reason: SessionUnlock})

	assert.Equal(t, "manual", got.Source)
	assert.False(t, got.At.Before(before))

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d.Dispatch(Event{Reason: SessionUnlock, Source: "wts", At: at})
	assert.Equal(t, "wts", got.Source)
	assert.Equal(t, at, got.At)
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := NewDispatcher("test")

	calls := 0
	sub, err := d.Subscribe(func(Event) { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 1, d.Subscribers())

	require.NoError(t, sub.Unsubscribe())
	require.NoError(t, sub.Unsubscribe())
	assert.Equal(t, 0, d.Subscribers())

	assert.Equal(t, 0, d.Dispatch(Event{Reason: SessionLock}))
	assert.Equal(t, 0, calls)
}

func TestDispatcher_UnsubscribeWaitsForDelivery(t *testing.T) {
	d := NewDispatcher("test")

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	finished := false

	sub, err := d.Subscribe(func(Event) {
		close(entered)
		<-release
		mu.Lock()
		finished = true
		mu.Unlock()
	})
	require.NoError(t, err)

	go d.Dispatch(Event{Reason: SessionLock})
	<-entered

	unsubscribed := make(chan struct{})
	go func() {
		sub.Unsubscribe()
		close(unsubscribed)
	}()

	select {
	case <-unsubscribed:
		t.Fatal("Unsubscribe returned while handler was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-unsubscribed

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, finished)
}

func TestDispatcher_NilHandler(t *testing.T) {
	_, err := NewDispatcher("test").Subscribe(nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}
