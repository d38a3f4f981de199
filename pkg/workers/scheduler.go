package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/racetrack/pkg/log"
)

// TurnAdvancer is the part of the shared state the scheduler drives.
type TurnAdvancer interface {
	AdvanceTurn() (next int, advanced bool)
}

type TurnScheduler struct {
	state    TurnAdvancer
	interval time.Duration
}

type NewTurnSchedulerOptions struct {
	State    TurnAdvancer
	Interval time.Duration
}

// NewTurnScheduler creates a new TurnScheduler.
// The scheduler is the only writer of the turn pointer once a game is
// running: each tick it passes a completed turn to the next connected slot
// in round-robin order. With nobody connected it leaves the pointer alone
// and tries again next tick.
func NewTurnScheduler(opts NewTurnSchedulerOptions) *TurnScheduler {
	return &TurnScheduler{
		state:    opts.State,
		interval: opts.Interval,
	}
}

func (s *TurnScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info("Turn scheduler started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *TurnScheduler) tick() {
	if next, advanced := s.state.AdvanceTurn(); advanced {
		log.Debug("Turn -> Player %d", next)
	}
}
