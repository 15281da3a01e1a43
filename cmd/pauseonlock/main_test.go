package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pauseonlock/internal/core"
	"pauseonlock/internal/storage/sqlite"
)

func TestPrintHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	journal, err := sqlite.New(path)
	require.NoError(t, err)

	base := time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, journal.Record(ctx, &core.Transition{
		ID: "tr_a", Reason: core.ReasonLock, ObservedState: core.PlayStatePlaying,
		Action: core.ActionPaused, WasPlaying: true, Player: "mpd", At: base,
	}))
	require.NoError(t, journal.Record(ctx, &core.Transition{
		ID: "tr_b", Reason: core.ReasonUnlock, Action: core.ActionResumed,
		WasPlaying: true, Player: "mpd", Error: "connection refused", At: base.Add(time.Minute),
	}))
	require.NoError(t, journal.Close())

	var buf bytes.Buffer
	require.NoError(t, printHistory(&buf, path, 10))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "unlock")
	assert.Contains(t, lines[0], "error=connection refused")
	assert.Contains(t, lines[1], "lock")
	assert.Contains(t, lines[1], "playing")
	assert.Contains(t, lines[1], "paused")
	assert.NotContains(t, lines[1], "error=")
}

func TestPrintHistory_MissingJournal(t *testing.T) {
	var buf bytes.Buffer
	err := printHistory(&buf, filepath.Join(t.TempDir(), "none.db"), 5)
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}
