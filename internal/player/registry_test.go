package player

import (
	"context"
	"testing"

	"pauseonlock/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPlayer is a simple mock implementation of Player
type mockPlayer struct {
	name string
}

func (m *mockPlayer) Name() string {
	return m.name
}

func (m *mockPlayer) PlayState(ctx context.Context) (core.PlayState, error) {
	return core.PlayStateStopped, nil
}

func (m *mockPlayer) TogglePlayPause(ctx context.Context) error {
	return nil
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	player1 := &mockPlayer{name: "player1"}
	player2 := &mockPlayer{name: "player2"}
	player1Duplicate := &mockPlayer{name: "player1"}

	err := registry.Register(player1)
	require.NoError(t, err)

	err = registry.Register(player2)
	require.NoError(t, err)

	err = registry.Register(player1Duplicate)
	assert.ErrorIs(t, err, ErrPlayerAlreadyExists)

	assert.Equal(t, []string{"player1", "player2"}, registry.List())
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	p := &mockPlayer{name: "mpd"}

	_, err := registry.Get("mpd")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	require.NoError(t, registry.Register(p))

	retrieved, err := registry.Get("mpd")
	require.NoError(t, err)
	assert.Equal(t, p, retrieved)
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&mockPlayer{name: "mpris"}))

	require.NoError(t, registry.Unregister("mpris"))
	assert.Empty(t, registry.List())

	err := registry.Unregister("mpris")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
