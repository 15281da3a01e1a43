package logging

import (
	"context"
	"log/slog"
	"time"

	"pauseonlock/internal/core"
	"pauseonlock/internal/player"
)

// PlayerLogger wraps a Player and logs all method calls
type PlayerLogger struct {
	player player.Player
	logger *slog.Logger
}

// NewPlayerLogger creates a new logging decorator for Player
func NewPlayerLogger(p player.Player, logger *slog.Logger) player.Player {
	return &PlayerLogger{
		player: p,
		logger: logger.With("interface", "Player", "backend", p.Name()),
	}
}

func (l *PlayerLogger) Name() string {
	return l.player.Name()
}

func (l *PlayerLogger) PlayState(ctx context.Context) (core.PlayState, error) {
	start := time.Now()
	l.logger.Debug("PlayState called")

	state, err := l.player.PlayState(ctx)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("PlayState failed",
			"duration", duration,
			"error", err)
		return state, err
	}

	l.logger.Debug("PlayState completed",
		"state", state.String(),
		"duration", duration)

	return state, nil
}

func (l *PlayerLogger) TogglePlayPause(ctx context.Context) error {
	start := time.Now()
	l.logger.Info("TogglePlayPause called")

	err := l.player.TogglePlayPause(ctx)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("TogglePlayPause failed",
			"duration", duration,
			"error", err)
		return err
	}

	l.logger.Info("TogglePlayPause completed",
		"duration", duration)

	return nil
}
