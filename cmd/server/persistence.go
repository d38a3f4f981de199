package main

import (
	"context"
	"io"

	"github.com/cbodonnell/racetrack/pkg/ledger"
	"github.com/cbodonnell/racetrack/pkg/log"
	"github.com/cbodonnell/racetrack/pkg/workers"
)

// loadScores reports a failed load and carries on with whatever was read;
// the in-memory table stays authoritative.
func loadScores(ctx context.Context, scores *ledger.Ledger) {
	if err := scores.Load(ctx); err != nil {
		log.Error("%v; continuing with the scores read so far", err)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// openGameLog falls back to discarding game events when the log cannot be
// opened, so the game still runs.
func openGameLog(path string, rotateBytes int64) io.WriteCloser {
	f, err := workers.OpenGameLog(path, rotateBytes)
	if err != nil {
		log.Error("Game log disabled: %v", err)
		return nopWriteCloser{io.Discard}
	}
	return f
}
