package types

import (
	"github.com/cbodonnell/racetrack/pkg/game/constants"
	"github.com/google/uuid"
)

// Phase is the turn state machine's position for one game instance.
type Phase int

const (
	PhaseWaitingForPlayers Phase = iota
	PhaseActive
	PhaseTurnComplete
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseWaitingForPlayers:
		return "waiting"
	case PhaseActive:
		return "active"
	case PhaseTurnComplete:
		return "turn_complete"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// GameState is a point-in-time copy of the shared game state. It is a plain
// value: mutating it never changes the shared region.
type GameState struct {
	RoundID       uuid.UUID    `json:"roundID"`
	Positions     []int        `json:"positions"`
	CurrentTurn   int          `json:"currentTurn"`
	ActivePlayers int          `json:"activePlayers"`
	NumPlayers    int          `json:"numPlayers"`
	GameActive    bool         `json:"gameActive"`
	GameOver      bool         `json:"gameOver"`
	Winner        int          `json:"winner"`
	TurnComplete  bool         `json:"turnComplete"`
	Players       []PlayerSlot `json:"players"`
}

func (g *GameState) Phase() Phase {
	switch {
	case g.GameOver:
		return PhaseOver
	case !g.GameActive:
		return PhaseWaitingForPlayers
	case g.TurnComplete:
		return PhaseTurnComplete
	default:
		return PhaseActive
	}
}

func (g *GameState) HasWinner() bool {
	return g.Winner != constants.NoWinner
}

// Connected returns the connection flag of every configured slot.
func (g *GameState) Connected() []bool {
	connected := make([]bool, len(g.Players))
	for i, p := range g.Players {
		connected[i] = p.Connected
	}
	return connected
}

func (g *GameState) Copy() *GameState {
	newGameState := *g
	newGameState.Positions = append([]int(nil), g.Positions...)
	newGameState.Players = append([]PlayerSlot(nil), g.Players...)
	return &newGameState
}
