package messages

import (
	"fmt"
	"strings"

	"github.com/cbodonnell/racetrack/pkg/game/types"
)

const (
	// MessageBufferSize is the largest line either side reads at once
	MessageBufferSize = 2048
)

// Server to participant
const (
	MessageTypeYourTurn = "YOUR_TURN"
	MessageTypeYouWin   = "YOU_WIN"
	MessageTypeGameOver = "GAME_OVER"
	// MessageTypeStatus prefixes every line of a board broadcast
	MessageTypeStatus = "STATUS"
)

// Participant to server. Any inbound line ends the turn; this is what the
// bundled client sends.
const (
	MessageTypeRoll = "ROLL"
)

// Line terminates a message for the wire.
func Line(msg string) string {
	return msg + "\n"
}

// IsType reports whether a received line is a message of the given type.
func IsType(line, messageType string) bool {
	line = strings.TrimRight(line, "\r\n")
	return line == messageType || strings.HasPrefix(line, messageType+" ")
}

// StatusBody strips the status prefix from a received line.
func StatusBody(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !IsType(line, MessageTypeStatus) {
		return "", false
	}
	return strings.TrimPrefix(strings.TrimPrefix(line, MessageTypeStatus), " "), true
}

// FormatStatus renders the board as a block of STATUS lines. The block is
// written in a single call, so keep it well under the pipe's atomic write size.
func FormatStatus(state *types.GameState, scores []int, winPosition int) string {
	b := &strings.Builder{}
	statusf(b, "round %s", shortRound(state))
	for i, pos := range state.Positions {
		marker := " "
		if state.GameActive && state.CurrentTurn == i {
			marker = ">"
		}
		conn := ""
		if i < len(state.Players) && !state.Players[i].Connected {
			conn = " (disconnected)"
		}
		wins := 0
		if i < len(scores) {
			wins = scores[i]
		}
		name := fmt.Sprintf("Player %d", i)
		if i < len(state.Players) && state.Players[i].Name != "" {
			name = state.Players[i].Name
		}
		statusf(b, "%s %-12s |%s| %d/%d wins=%d%s", marker, name, track(pos, winPosition), pos, winPosition, wins, conn)
	}
	if state.HasWinner() {
		statusf(b, "winner: Player %d", state.Winner)
	}
	return b.String()
}

func statusf(b *strings.Builder, format string, args ...interface{}) {
	b.WriteString(MessageTypeStatus)
	b.WriteString(" ")
	fmt.Fprintf(b, format, args...)
	b.WriteString("\n")
}

func track(pos, winPosition int) string {
	if winPosition <= 0 {
		return ""
	}
	const width = 20
	filled := pos * width / winPosition
	if filled > width {
		filled = width
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

func shortRound(state *types.GameState) string {
	id := state.RoundID.String()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
