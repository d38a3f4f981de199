// Package ledger keeps the per-slot win counts in the shared region and
// persists them through a score repository.
package ledger

import (
	"context"
	"fmt"

	"github.com/cbodonnell/racetrack/pkg/log"
	"github.com/cbodonnell/racetrack/pkg/repositories"
)

// ScoreTable is the score section of the shared region. WithScores must hold
// the score lock while fn runs.
type ScoreTable interface {
	WithScores(fn func(scores []int32))
}

type Ledger struct {
	table      ScoreTable
	repository repositories.ScoreRepository
}

type NewLedgerOptions struct {
	Table      ScoreTable
	Repository repositories.ScoreRepository
}

func New(opts NewLedgerOptions) *Ledger {
	return &Ledger{
		table:      opts.Table,
		repository: opts.Repository,
	}
}

// Load replaces the in-memory table with the persisted one. Ids outside the
// table are ignored; with nothing persisted every slot starts at zero. When
// the repository fails, whatever it managed to read is kept and the error is
// returned for the caller to report.
func (l *Ledger) Load(ctx context.Context) error {
	var err error
	l.table.WithScores(func(scores []int32) {
		for i := range scores {
			scores[i] = 0
		}

		var stored map[int]int
		stored, err = l.repository.LoadScores(ctx)
		if err != nil {
			if repositories.IsNotFound(err) {
				log.Info("No existing scores, starting fresh")
				err = nil
				return
			}
			err = fmt.Errorf("failed to load scores: %v", err)
		}

		for id, wins := range stored {
			if id < 0 || id >= len(scores) {
				log.Debug("Ignoring score for unknown player %d", id)
				continue
			}
			scores[id] = int32(wins)
		}
		if err == nil {
			log.Info("Scores loaded")
		}
	})
	return err
}

// Save writes the whole table, one entry per slot.
func (l *Ledger) Save(ctx context.Context) error {
	var err error
	l.table.WithScores(func(scores []int32) {
		err = l.saveLocked(ctx, scores)
	})
	return err
}

func (l *Ledger) saveLocked(ctx context.Context, scores []int32) error {
	table := make(map[int]int, len(scores))
	for id, wins := range scores {
		table[id] = int(wins)
	}
	if err := l.repository.SaveScores(ctx, table); err != nil {
		return fmt.Errorf("failed to save scores: %v", err)
	}
	return nil
}

// RecordWin adds a win for slot and saves the table. The new count is
// returned even when the save fails; memory stays authoritative.
func (l *Ledger) RecordWin(ctx context.Context, slot int) (int, error) {
	var wins int
	var err error
	l.table.WithScores(func(scores []int32) {
		if slot < 0 || slot >= len(scores) {
			err = fmt.Errorf("slot %d has no score entry", slot)
			return
		}
		scores[slot]++
		wins = int(scores[slot])
		err = l.saveLocked(ctx, scores)
	})
	return wins, err
}

// Scores returns a copy of the current table.
func (l *Ledger) Scores() []int {
	var out []int
	l.table.WithScores(func(scores []int32) {
		out = make([]int, len(scores))
		for i, wins := range scores {
			out[i] = int(wins)
		}
	})
	return out
}
