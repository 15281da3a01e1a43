//go:build linux

package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"pauseonlock/internal/core"
)

const (
	mprisBusPrefix       = "org.mpris.MediaPlayer2."
	mprisObjectPath      = "/org/mpris/MediaPlayer2"
	mprisPlayerInterface = "org.mpris.MediaPlayer2.Player"
	dbusPropertiesGet    = "org.freedesktop.DBus.Properties.Get"
	dbusListNames        = "org.freedesktop.DBus.ListNames"
)

var ErrNoMPRISPlayer = errors.New("no MPRIS player on the session bus")

// MPRIS controls a media player over the MPRIS D-Bus interface.
type MPRIS struct {
	conn     *dbus.Conn
	instance string // bus name suffix, empty means first player found
	logger   *slog.Logger
}

// NewMPRIS connects to the session bus. instance selects the player
// ("spotify", "vlc", ...); an empty instance targets whichever MPRIS
// player is found first at call time.
func NewMPRIS(instance string, logger *slog.Logger) (*MPRIS, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &MPRIS{
		conn:     conn,
		instance: instance,
		logger:   logger.With("component", "player-mpris"),
	}, nil
}

// Name returns the backend name
func (p *MPRIS) Name() string {
	return "mpris"
}

// PlayState reads the PlaybackStatus property
func (p *MPRIS) PlayState(ctx context.Context) (core.PlayState, error) {
	obj, err := p.object(ctx)
	if err != nil {
		return core.PlayStateUndefined, err
	}

	var v dbus.Variant
	if err := obj.CallWithContext(ctx, dbusPropertiesGet, 0, mprisPlayerInterface, "PlaybackStatus").Store(&v); err != nil {
		return core.PlayStateUndefined, fmt.Errorf("failed to read playback status: %w", err)
	}

	status, ok := v.Value().(string)
	if !ok {
		return core.PlayStateUndefined, fmt.Errorf("unexpected playback status type %s", v.Signature())
	}

	return playStateFromMPRIS(types.PlaybackStatus(status)), nil
}

// TogglePlayPause calls the PlayPause method
func (p *MPRIS) TogglePlayPause(ctx context.Context) error {
	obj, err := p.object(ctx)
	if err != nil {
		return err
	}

	if call := obj.CallWithContext(ctx, mprisPlayerInterface+".PlayPause", 0); call.Err != nil {
		return fmt.Errorf("PlayPause failed: %w", call.Err)
	}
	return nil
}

// Close releases the D-Bus connection
func (p *MPRIS) Close() error {
	return p.conn.Close()
}

func (p *MPRIS) object(ctx context.Context) (dbus.BusObject, error) {
	dest := mprisBusPrefix + p.instance
	if p.instance == "" {
		name, err := p.discover(ctx)
		if err != nil {
			return nil, err
		}
		dest = name
	}
	return p.conn.Object(dest, mprisObjectPath), nil
}

// discover returns the first MPRIS bus name in sorted order
func (p *MPRIS) discover(ctx context.Context) (string, error) {
	var names []string
	if err := p.conn.BusObject().CallWithContext(ctx, dbusListNames, 0).Store(&names); err != nil {
		return "", fmt.Errorf("failed to list bus names: %w", err)
	}

	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisBusPrefix) {
			players = append(players, name)
		}
	}
	if len(players) == 0 {
		return "", ErrNoMPRISPlayer
	}

	sort.Strings(players)
	p.logger.Debug("discovered MPRIS player", "bus_name", players[0], "candidates", len(players))
	return players[0], nil
}

func playStateFromMPRIS(status types.PlaybackStatus) core.PlayState {
	switch status {
	case types.PlaybackStatusPlaying:
		return core.PlayStatePlaying
	case types.PlaybackStatusPaused:
		return core.PlayStatePaused
	case types.PlaybackStatusStopped:
		return core.PlayStateStopped
	default:
		return core.PlayStateUndefined
	}
}

// Ensure MPRIS implements Player
var _ Player = (*MPRIS)(nil)
