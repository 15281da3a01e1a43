package player

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pauseonlock/internal/core"
)

// fakeMPD speaks just enough of the MPD protocol for the backend
type fakeMPD struct {
	listener net.Listener
	password string

	mu       sync.Mutex
	state    string
	commands []string
}

func newFakeMPD(t *testing.T, state string) *fakeMPD {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeMPD{listener: l, state: state}
	go f.serve()
	t.Cleanup(func() { l.Close() })
	return f
}

func (f *fakeMPD) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeMPD) handle(conn net.Conn) {
	defer conn.Close()
	fmt.Fprint(conn, "OK MPD 0.23.5\n")

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()

		f.mu.Lock()
		if line != "close" && !strings.HasPrefix(line, "password") {
			f.commands = append(f.commands, line)
		}
		reply := "OK\n"
		switch {
		case line == "status":
			reply = fmt.Sprintf("volume: 80\nrepeat: 0\nstate: %s\nOK\n", f.state)
		case line == "pause 1":
			f.state = "pause"
		case line == "pause 0", line == "play":
			f.state = "play"
		case strings.HasPrefix(line, "password"):
			if line != fmt.Sprintf("password %q", f.password) && line != "password "+f.password {
				reply = "ACK [3@0] {password} incorrect password\n"
			}
		case line == "close":
			f.mu.Unlock()
			return
		}
		f.mu.Unlock()

		fmt.Fprint(conn, reply)
	}
}

func (f *fakeMPD) State() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeMPD) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func newTestMPD(f *fakeMPD, password string) *MPD {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewMPD(MPDConfig{Address: f.listener.Addr().String(), Password: password}, logger)
}

func TestMPD_PlayState(t *testing.T) {
	tests := []struct {
		state string
		want  core.PlayState
	}{
		{"play", core.PlayStatePlaying},
		{"pause", core.PlayStatePaused},
		{"stop", core.PlayStateStopped},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			server := newFakeMPD(t, tt.state)
			p := newTestMPD(server, "")

			got, err := p.PlayState(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMPD_TogglePlayPause(t *testing.T) {
	tests := []struct {
		name      string
		state     string
		wantCmd   string
		wantState string
	}{
		{"playing pauses", "play", "pause 1", "pause"},
		{"paused resumes", "pause", "pause 0", "play"},
		{"stopped starts", "stop", "play", "play"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newFakeMPD(t, tt.state)
			p := newTestMPD(server, "")

			require.NoError(t, p.TogglePlayPause(context.Background()))
			assert.Equal(t, []string{"status", tt.wantCmd}, server.Commands())
			assert.Equal(t, tt.wantState, server.State())
		})
	}
}

func TestMPD_Password(t *testing.T) {
	server := newFakeMPD(t, "play")
	server.password = "secret"

	got, err := newTestMPD(server, "secret").PlayState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.PlayStatePlaying, got)

	_, err = newTestMPD(server, "wrong").PlayState(context.Background())
	assert.Error(t, err)
}

func TestMPD_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	p := NewMPD(MPDConfig{Address: addr}, logger)

	_, err = p.PlayState(context.Background())
	assert.Error(t, err)
	assert.Error(t, p.TogglePlayPause(context.Background()))
}

func TestMPD_ContextCancelled(t *testing.T) {
	server := newFakeMPD(t, "play")
	p := newTestMPD(server, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.TogglePlayPause(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, server.Commands())
}

func TestNewMPD_Defaults(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	p := NewMPD(MPDConfig{}, logger)

	assert.Equal(t, "tcp", p.config.Network)
	assert.Equal(t, "localhost:6600", p.config.Address)
	assert.Equal(t, "mpd", p.Name())
}
