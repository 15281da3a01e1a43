package player

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fhs/gompd/v2/mpd"

	"pauseonlock/internal/core"
)

// MPDConfig holds connection settings for an MPD server
type MPDConfig struct {
	Network  string // "tcp" or "unix"
	Address  string // "localhost:6600" or a socket path
	Password string // optional
}

// MPD controls a Music Player Daemon. A fresh connection is dialed for each
// call because MPD drops idle clients.
type MPD struct {
	config MPDConfig
	logger *slog.Logger
}

// NewMPD creates an MPD backend. No connection is made until first use.
func NewMPD(config MPDConfig, logger *slog.Logger) *MPD {
	if config.Network == "" {
		config.Network = "tcp"
	}
	if config.Address == "" {
		config.Address = "localhost:6600"
	}
	return &MPD{
		config: config,
		logger: logger.With("component", "player-mpd"),
	}
}

// Name returns the backend name
func (p *MPD) Name() string {
	return "mpd"
}

// PlayState reads the "state" attribute of the MPD status
func (p *MPD) PlayState(ctx context.Context) (core.PlayState, error) {
	var state core.PlayState
	err := p.withClient(ctx, func(c *mpd.Client) error {
		attrs, err := c.Status()
		if err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
		state = playStateFromMPD(attrs["state"])
		return nil
	})
	return state, err
}

// TogglePlayPause pauses a playing server, resumes a paused one and starts
// a stopped one.
func (p *MPD) TogglePlayPause(ctx context.Context) error {
	return p.withClient(ctx, func(c *mpd.Client) error {
		attrs, err := c.Status()
		if err != nil {
			return fmt.Errorf("status failed: %w", err)
		}

		switch playStateFromMPD(attrs["state"]) {
		case core.PlayStatePlaying:
			err = c.Pause(true)
		case core.PlayStatePaused:
			err = c.Pause(false)
		default:
			err = c.Play(-1)
		}
		if err != nil {
			return fmt.Errorf("toggle failed: %w", err)
		}
		return nil
	})
}

func (p *MPD) withClient(ctx context.Context, fn func(c *mpd.Client) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		client *mpd.Client
		err    error
	)
	if p.config.Password != "" {
		client, err = mpd.DialAuthenticated(p.config.Network, p.config.Address, p.config.Password)
	} else {
		client, err = mpd.Dial(p.config.Network, p.config.Address)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to mpd at %s: %w", p.config.Address, err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			p.logger.Debug("mpd close failed", "error", cerr)
		}
	}()

	return fn(client)
}

func playStateFromMPD(state string) core.PlayState {
	switch state {
	case "play":
		return core.PlayStatePlaying
	case "pause":
		return core.PlayStatePaused
	case "stop":
		return core.PlayStateStopped
	default:
		return core.PlayStateUndefined
	}
}

// Ensure MPD implements Player
var _ Player = (*MPD)(nil)
