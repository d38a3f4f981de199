package state

import (
	"github.com/cbodonnell/racetrack/pkg/game/types"
	"github.com/google/uuid"
)

// TurnStatus tells a session worker what to do on one pass of its loop.
type TurnStatus int

const (
	// TurnStatusWait means the game is not active, it is another slot's
	// turn, or this slot's turn is complete and waiting to be advanced.
	TurnStatusWait TurnStatus = iota
	// TurnStatusMine means the slot holds the turn and may act.
	TurnStatusMine
	// TurnStatusGameOver means the game has a winner and awaits a reset.
	TurnStatusGameOver
)

// MoveResult describes a roll applied to the shared state.
type MoveResult struct {
	Slot     int
	Roll     int
	Position int
	Won      bool
}

// StateManager provides shared access to the game state.
// Implementations must be safe for use by concurrent goroutines and
// concurrent processes.
type StateManager interface {
	// NumPlayers returns the configured table size.
	NumPlayers() int
	// Snapshot returns a copy of the current game state.
	Snapshot() *types.GameState
	// Connect marks a slot connected and starts the game once every slot is.
	Connect(slot int, name string, roundID uuid.UUID) (started bool, err error)
	// Disconnect marks a slot disconnected.
	Disconnect(slot int) error
	// CheckTurn reports whether the slot may act.
	CheckTurn(slot int) TurnStatus
	// ApplyRoll moves the slot holding the turn and evaluates the win condition.
	ApplyRoll(slot, roll, winPosition int) (MoveResult, error)
	// AdvanceTurn passes a completed turn to the next connected slot.
	AdvanceTurn() (next int, advanced bool)
	// Reset starts a new game instance if the current one is over.
	Reset(roundID uuid.UUID) bool
	// PostLog places a message in the log mailbox, replacing any pending one.
	PostLog(format string, args ...interface{})
	// TakeLog removes the pending message from the log mailbox.
	TakeLog() (string, bool)
}
