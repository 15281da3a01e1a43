//go:build linux

package session

import (
	"log/slog"
	"os"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonFromLogind(t *testing.T) {
	r, ok := reasonFromLogind(&dbus.Signal{Name: "org.freedesktop.login1.Session.Lock"})
	assert.True(t, ok)
	assert.Equal(t, SessionLock, r)

	r, ok = reasonFromLogind(&dbus.Signal{Name: "org.freedesktop.login1.Session.Unlock"})
	assert.True(t, ok)
	assert.Equal(t, SessionUnlock, r)

	_, ok = reasonFromLogind(&dbus.Signal{Name: "org.freedesktop.login1.Session.PauseDevice"})
	assert.False(t, ok)
}

func TestReasonFromScreenSaver(t *testing.T) {
	name := "org.freedesktop.ScreenSaver.ActiveChanged"

	r, ok := reasonFromScreenSaver(&dbus.Signal{Name: name, Body: []interface{}{true}})
	assert.True(t, ok)
	assert.Equal(t, SessionLock, r)

	r, ok = reasonFromScreenSaver(&dbus.Signal{Name: name, Body: []interface{}{false}})
	assert.True(t, ok)
	assert.Equal(t, SessionUnlock, r)

	_, ok = reasonFromScreenSaver(&dbus.Signal{Name: name, Body: []interface{}{"yes"}})
	assert.False(t, ok)

	_, ok = reasonFromScreenSaver(&dbus.Signal{Name: name})
	assert.False(t, ok)

	_, ok = reasonFromScreenSaver(&dbus.Signal{Name: "org.freedesktop.ScreenSaver.WakeUpScreen", Body: []interface{}{true}})
	assert.False(t, ok)
}

func TestNewPlatformSource_Linux(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		kind     string
		wantName string
		wantErr  error
	}{
		{"", KindLogind, nil},
		{KindLogind, KindLogind, nil},
		{KindScreenSaver, KindScreenSaver, nil},
		{KindSignal, KindSignal, nil},
		{KindWTS, "", ErrUnsupported},
		{"x11", "", ErrUnknownSource},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			source, err := NewPlatformSource(tt.kind, logger)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, source.Name())
		})
	}
}
