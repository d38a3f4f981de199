package game

import (
	"fmt"

	"github.com/cbodonnell/racetrack/pkg/game/constants"
)

// ErrInvalidPlayerCount is returned for a table size outside
// [constants.MinPlayers, constants.MaxPlayers].
type ErrInvalidPlayerCount struct {
	Count int
}

func (e *ErrInvalidPlayerCount) Error() string {
	return fmt.Sprintf("player count %d out of range [%d, %d]", e.Count, constants.MinPlayers, constants.MaxPlayers)
}

// Rules are fixed for the lifetime of a server run.
type Rules struct {
	NumPlayers  int
	WinPosition int
}

func (r Rules) Validate() error {
	if err := ValidatePlayerCount(r.NumPlayers); err != nil {
		return err
	}
	if r.WinPosition <= 0 {
		return fmt.Errorf("win position must be positive, got %d", r.WinPosition)
	}
	return nil
}

func ValidatePlayerCount(n int) error {
	if n < constants.MinPlayers || n > constants.MaxPlayers {
		return &ErrInvalidPlayerCount{Count: n}
	}
	return nil
}

// HasWon reports whether a position ends the game.
func (r Rules) HasWon(position int) bool {
	return position >= r.WinPosition
}
