package game

// NextTurn returns the slot that should hold the turn after current, probing
// forward in slot order and skipping disconnected slots. It makes at most
// numPlayers probes. ok is false when no slot is connected, in which case the
// turn pointer must stay where it is.
func NextTurn(current, numPlayers int, connected []bool) (next int, ok bool) {
	if numPlayers <= 0 {
		return current, false
	}
	for probe := 1; probe <= numPlayers; probe++ {
		candidate := (current + probe) % numPlayers
		if candidate < len(connected) && connected[candidate] {
			return candidate, true
		}
	}
	return current, false
}
