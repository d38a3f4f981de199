package constants

const (
	// MinPlayers is the smallest table a game can be started with
	MinPlayers int = 3
	// MaxPlayers is the number of slots reserved in the shared region
	MaxPlayers int = 5
	// MaxNameLen is the size of a slot's display name, in bytes
	MaxNameLen int = 32
	// LogBufferSize is the size of the log mailbox, in bytes
	LogBufferSize int = 256

	// DefaultWinPosition is the position that ends the game
	DefaultWinPosition int = 20
	// DiceSides is the largest value a single roll can produce
	DiceSides int = 6

	// NoWinner marks a game that has not been won
	NoWinner int = -1
)
