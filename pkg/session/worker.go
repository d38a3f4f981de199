// Package session runs one participant's side of the game: it waits for the
// slot's turn, takes one action from the participant, applies a server-side
// roll and publishes the result.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/racetrack/pkg/channels"
	"github.com/cbodonnell/racetrack/pkg/game"
	"github.com/cbodonnell/racetrack/pkg/game/types"
	"github.com/cbodonnell/racetrack/pkg/log"
	"github.com/cbodonnell/racetrack/pkg/messages"
	"github.com/cbodonnell/racetrack/pkg/state"
	"github.com/google/uuid"
)

// Scoreboard records wins. RecordWin must not be called with the state lock
// held.
type Scoreboard interface {
	RecordWin(ctx context.Context, slot int) (int, error)
	Scores() []int
}

type Worker struct {
	slot         int
	name         string
	state        state.StateManager
	scoreboard   Scoreboard
	conn         channels.Conn
	broadcaster  channels.Broadcaster
	roller       game.Roller
	winPosition  int
	pollInterval time.Duration
	resetPause   time.Duration
	logger       *log.Logger
}

type NewWorkerOptions struct {
	Slot         int
	Name         string
	State        state.StateManager
	Scoreboard   Scoreboard
	Conn         channels.Conn
	Broadcaster  channels.Broadcaster
	Roller       game.Roller
	WinPosition  int
	PollInterval time.Duration
	ResetPause   time.Duration
	Logger       *log.Logger
}

func NewWorker(opts NewWorkerOptions) *Worker {
	return &Worker{
		slot:         opts.Slot,
		name:         opts.Name,
		state:        opts.State,
		scoreboard:   opts.Scoreboard,
		conn:         opts.Conn,
		broadcaster:  opts.Broadcaster,
		roller:       opts.Roller,
		winPosition:  opts.WinPosition,
		pollInterval: opts.PollInterval,
		resetPause:   opts.ResetPause,
		logger:       opts.Logger,
	}
}

// Connect claims the worker's slot. Once the last slot connects the game
// starts with slot 0 holding the turn.
func (w *Worker) Connect() error {
	started, err := w.state.Connect(w.slot, w.name, uuid.New())
	if err != nil {
		return fmt.Errorf("failed to connect slot %d: %v", w.slot, err)
	}
	w.logger.Info("Player %d connected", w.slot)
	if started {
		w.logger.Info("All %d players connected. Game started!", w.state.NumPlayers())
	}
	return nil
}

// Run serves the slot until its channel fails or ctx is done. A closed
// channel marks the slot disconnected and ends the worker without error.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		switch w.state.CheckTurn(w.slot) {
		case state.TurnStatusGameOver:
			if !sleep(ctx, w.resetPause) {
				return nil
			}
			if w.state.Reset(uuid.New()) {
				w.logger.Info("Resetting game state for new game")
			}
			continue
		case state.TurnStatusWait:
			if !sleep(ctx, w.pollInterval) {
				return nil
			}
			continue
		}

		if err := w.takeTurn(ctx); err != nil {
			if err := w.state.Disconnect(w.slot); err != nil {
				w.logger.Error("Failed to mark slot disconnected: %v", err)
			}
			if channels.IsChannelClosed(err) || ctx.Err() != nil {
				w.logger.Info("Player %d disconnected", w.slot)
				return nil
			}
			return err
		}
	}
}

func (w *Worker) takeTurn(ctx context.Context) error {
	if err := w.conn.Send(messages.MessageTypeYourTurn); err != nil {
		return err
	}

	action, err := w.conn.ReadLine()
	if err != nil {
		return err
	}
	w.logger.Trace("Player %d sent %q", w.slot, action)

	roll := w.roller.Roll()
	result, err := w.state.ApplyRoll(w.slot, roll, w.winPosition)
	if err != nil {
		// the turn was taken away while we waited on the participant
		w.logger.Warn("Dropped action from player %d: %v", w.slot, err)
		return nil
	}
	w.logger.Info("Player %d rolled %d -> position %d", w.slot, result.Roll, result.Position)

	snapshot := w.state.Snapshot()
	if result.Won {
		w.finishGame(ctx, snapshot)
	}
	w.publish(snapshot)

	return nil
}

// finishGame runs after the state lock is released: score updates take the
// score lock, which is never nested inside the state lock.
func (w *Worker) finishGame(ctx context.Context, snapshot *types.GameState) {
	wins, err := w.scoreboard.RecordWin(ctx, w.slot)
	if err != nil {
		w.logger.Error("Failed to persist scores: %v", err)
	}
	w.state.PostLog("Player %d WON! Total wins = %d", w.slot, wins)
	w.logger.Info("Player %d WINS! Total wins = %d", w.slot, wins)

	if err := w.conn.Send(messages.MessageTypeYouWin); err != nil {
		w.logger.Warn("Failed to notify winner: %v", err)
	}
	others := w.connectedSlots(snapshot.Connected(), true)
	for _, err := range w.broadcaster.Broadcast(others, messages.MessageTypeGameOver) {
		w.logger.Debug("Game over not delivered: %v", err)
	}
}

func (w *Worker) publish(snapshot *types.GameState) {
	board := messages.FormatStatus(snapshot, w.scoreboard.Scores(), w.winPosition)
	for _, err := range w.broadcaster.Broadcast(w.connectedSlots(snapshot.Connected(), false), board) {
		w.logger.Debug("Status not delivered: %v", err)
	}
}

func (w *Worker) connectedSlots(connected []bool, excludeSelf bool) []int {
	slots := make([]int, 0, len(connected))
	for i, ok := range connected {
		if !ok || (excludeSelf && i == w.slot) {
			continue
		}
		slots = append(slots, i)
	}
	return slots
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
