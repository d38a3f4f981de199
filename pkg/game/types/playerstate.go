package types

// PlayerSlot is a fixed entry in the participant table.
type PlayerSlot struct {
	Connected bool   `json:"connected"`
	Name      string `json:"name"`
}

// Equal returns true if the slot is equal to the other slot
func (p PlayerSlot) Equal(other PlayerSlot) bool {
	return p.Connected == other.Connected && p.Name == other.Name
}
