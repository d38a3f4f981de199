package state

import (
	"fmt"
	"path/filepath"
	"unicode/utf8"
	"unsafe"

	"github.com/cbodonnell/racetrack/pkg/game"
	"github.com/cbodonnell/racetrack/pkg/game/constants"
	"github.com/cbodonnell/racetrack/pkg/game/types"
	"github.com/cbodonnell/racetrack/pkg/locks"
	"github.com/cbodonnell/racetrack/pkg/shm"
	"github.com/google/uuid"
)

const (
	// RegionFileName is the name of the shared region inside the run directory
	RegionFileName = "racetrack.shm"

	layoutMagic   uint32 = 0x52414345 // "RACE"
	layoutVersion uint32 = 1
)

// slotLayout and layout describe the shared region byte for byte. They hold
// no pointers, so every process can interpret the mapping at the same
// offsets. Booleans are stored as int32 (0 or 1).
type slotLayout struct {
	Connected int32
	Name      [constants.MaxNameLen]byte
}

type layout struct {
	Magic   uint32
	Version uint32

	// guarded by the state lock
	RoundID       [16]byte
	Positions     [constants.MaxPlayers]int32
	CurrentTurn   int32
	ActivePlayers int32
	NumPlayers    int32
	GameActive    int32
	Winner        int32
	GameOver      int32
	TurnComplete  int32
	Players       [constants.MaxPlayers]slotLayout

	// guarded by the log lock
	LogBuffer  [constants.LogBufferSize]byte
	LogLen     int32
	LogPending int32

	// guarded by the score lock
	Scores [constants.MaxPlayers]int32
}

// LayoutSize is the size of the shared region in bytes.
const LayoutSize = int(unsafe.Sizeof(layout{}))

// ErrInvalidSlot is returned for a slot index outside the configured table.
type ErrInvalidSlot struct {
	Slot       int
	NumPlayers int
}

func (e *ErrInvalidSlot) Error() string {
	return fmt.Sprintf("slot %d out of range [0, %d)", e.Slot, e.NumPlayers)
}

// ErrNotYourTurn is returned when a slot tries to move without holding an
// open turn in an active game.
type ErrNotYourTurn struct {
	Slot        int
	CurrentTurn int
}

func (e *ErrNotYourTurn) Error() string {
	return fmt.Sprintf("slot %d cannot move, turn belongs to slot %d", e.Slot, e.CurrentTurn)
}

// ErrAlreadyConnected is returned when a slot connects twice.
type ErrAlreadyConnected struct {
	Slot int
}

func (e *ErrAlreadyConnected) Error() string {
	return fmt.Sprintf("slot %d is already connected", e.Slot)
}

// Store is one process's handle on the shared region and its locks.
type Store struct {
	dir        string
	region     *shm.Region
	locks      *locks.Set
	data       *layout
	numPlayers int
}

// Create initializes a fresh region in dir for a table of numPlayers.
// Any region left behind by a previous run is replaced.
func Create(dir string, numPlayers int) (*Store, error) {
	if err := game.ValidatePlayerCount(numPlayers); err != nil {
		return nil, err
	}

	lockSet, err := locks.OpenSet(dir)
	if err != nil {
		return nil, err
	}

	region, err := shm.Create(filepath.Join(dir, RegionFileName), LayoutSize)
	if err != nil {
		lockSet.Close()
		return nil, err
	}

	s := newStore(dir, region, lockSet)
	s.numPlayers = numPlayers
	s.locks.StateLock.With(func() {
		s.data.Magic = layoutMagic
		s.data.Version = layoutVersion
		s.data.NumPlayers = int32(numPlayers)
		s.data.CurrentTurn = 0
		s.data.Winner = int32(constants.NoWinner)
		for i := 0; i < numPlayers; i++ {
			setName(&s.data.Players[i], fmt.Sprintf("Player %d", i))
		}
	})

	return s, nil
}

// Open attaches to a region previously set up by Create.
func Open(dir string) (*Store, error) {
	region, err := shm.Open(filepath.Join(dir, RegionFileName), LayoutSize)
	if err != nil {
		return nil, err
	}

	lockSet, err := locks.OpenSet(dir)
	if err != nil {
		region.Close()
		return nil, err
	}

	s := newStore(dir, region, lockSet)
	var magic, version uint32
	s.locks.StateLock.With(func() {
		magic = s.data.Magic
		version = s.data.Version
		s.numPlayers = int(s.data.NumPlayers)
	})
	if magic != layoutMagic || version != layoutVersion {
		s.Close()
		return nil, fmt.Errorf("region in %s is not initialized (magic %#x, version %d)", dir, magic, version)
	}

	return s, nil
}

func newStore(dir string, region *shm.Region, lockSet *locks.Set) *Store {
	return &Store{
		dir:    dir,
		region: region,
		locks:  lockSet,
		data:   (*layout)(unsafe.Pointer(&region.Bytes()[0])),
	}
}

// Close releases this handle. The region stays available to other handles.
func (s *Store) Close() error {
	s.data = nil
	regionErr := s.region.Close()
	lockErr := s.locks.Close()
	if regionErr != nil {
		return regionErr
	}
	return lockErr
}

// Destroy closes the handle and removes the region and its lock files.
func (s *Store) Destroy() error {
	closeErr := s.Close()
	if err := s.region.Remove(); err != nil {
		return err
	}
	locks.Remove(s.dir)
	return closeErr
}

func (s *Store) Locks() *locks.Set {
	return s.locks
}

func (s *Store) NumPlayers() int {
	return s.numPlayers
}

func (s *Store) Snapshot() *types.GameState {
	var snapshot *types.GameState
	s.locks.StateLock.With(func() {
		snapshot = s.snapshotLocked()
	})
	return snapshot
}

func (s *Store) snapshotLocked() *types.GameState {
	n := s.numPlayers
	g := &types.GameState{
		RoundID:       uuid.UUID(s.data.RoundID),
		Positions:     make([]int, n),
		CurrentTurn:   int(s.data.CurrentTurn),
		ActivePlayers: int(s.data.ActivePlayers),
		NumPlayers:    int(s.data.NumPlayers),
		GameActive:    s.data.GameActive != 0,
		GameOver:      s.data.GameOver != 0,
		Winner:        int(s.data.Winner),
		TurnComplete:  s.data.TurnComplete != 0,
		Players:       make([]types.PlayerSlot, n),
	}
	for i := 0; i < n; i++ {
		g.Positions[i] = int(s.data.Positions[i])
		g.Players[i] = types.PlayerSlot{
			Connected: s.data.Players[i].Connected != 0,
			Name:      getName(&s.data.Players[i]),
		}
	}
	return g
}

func (s *Store) checkSlot(slot int) error {
	if slot < 0 || slot >= s.numPlayers {
		return &ErrInvalidSlot{Slot: slot, NumPlayers: s.numPlayers}
	}
	return nil
}

func (s *Store) Connect(slot int, name string, roundID uuid.UUID) (bool, error) {
	if err := s.checkSlot(slot); err != nil {
		return false, err
	}

	var started bool
	var err error
	s.locks.StateLock.With(func() {
		p := &s.data.Players[slot]
		if p.Connected != 0 {
			err = &ErrAlreadyConnected{Slot: slot}
			return
		}
		p.Connected = 1
		if name != "" {
			setName(p, name)
		}
		s.data.ActivePlayers++

		if int(s.data.ActivePlayers) == s.numPlayers && s.data.GameActive == 0 && s.data.GameOver == 0 {
			s.data.RoundID = roundID
			s.data.GameActive = 1
			s.data.CurrentTurn = 0
			s.data.TurnComplete = 0
			s.data.Winner = int32(constants.NoWinner)
			started = true
			s.PostLog("========== GAME STARTED: %d PLAYERS (round %s) ==========", s.numPlayers, roundID)
		}
	})
	return started, err
}

// Disconnect marks the slot disconnected. If the slot held an open turn, the
// turn is marked complete so the scheduler passes it on.
func (s *Store) Disconnect(slot int) error {
	if err := s.checkSlot(slot); err != nil {
		return err
	}

	s.locks.StateLock.With(func() {
		p := &s.data.Players[slot]
		if p.Connected == 0 {
			return
		}
		p.Connected = 0
		s.data.ActivePlayers--
		if s.data.GameActive != 0 && s.data.GameOver == 0 && int(s.data.CurrentTurn) == slot {
			s.data.TurnComplete = 1
		}
		s.PostLog("Player %d disconnected (%d still connected)", slot, s.data.ActivePlayers)
	})
	return nil
}

func (s *Store) CheckTurn(slot int) TurnStatus {
	status := TurnStatusWait
	s.locks.StateLock.With(func() {
		switch {
		case s.data.GameOver != 0:
			status = TurnStatusGameOver
		case s.data.GameActive == 0, int(s.data.CurrentTurn) != slot, s.data.TurnComplete != 0:
			status = TurnStatusWait
		default:
			status = TurnStatusMine
		}
	})
	return status
}

// ApplyRoll adds roll to the slot's position. Reaching winPosition sets the
// winner and ends the game in the same critical section. The turn is marked
// complete either way.
func (s *Store) ApplyRoll(slot, roll, winPosition int) (MoveResult, error) {
	if err := s.checkSlot(slot); err != nil {
		return MoveResult{}, err
	}

	result := MoveResult{Slot: slot, Roll: roll}
	var err error
	s.locks.StateLock.With(func() {
		if s.data.GameActive == 0 || s.data.GameOver != 0 || s.data.TurnComplete != 0 || int(s.data.CurrentTurn) != slot {
			err = &ErrNotYourTurn{Slot: slot, CurrentTurn: int(s.data.CurrentTurn)}
			return
		}

		s.data.Positions[slot] += int32(roll)
		result.Position = int(s.data.Positions[slot])
		s.PostLog("Player %d rolled %d (position=%d)", slot, roll, result.Position)

		if result.Position >= winPosition {
			s.data.Winner = int32(slot)
			s.data.GameActive = 0
			s.data.GameOver = 1
			result.Won = true
		}
		s.data.TurnComplete = 1
	})
	return result, err
}

func (s *Store) AdvanceTurn() (int, bool) {
	next := 0
	advanced := false
	s.locks.StateLock.With(func() {
		next = int(s.data.CurrentTurn)
		if s.data.GameActive == 0 || s.data.GameOver != 0 || s.data.TurnComplete == 0 {
			return
		}

		connected := make([]bool, s.numPlayers)
		for i := range connected {
			connected[i] = s.data.Players[i].Connected != 0
		}
		candidate, ok := game.NextTurn(int(s.data.CurrentTurn), s.numPlayers, connected)
		if !ok {
			return
		}

		s.data.CurrentTurn = int32(candidate)
		s.data.TurnComplete = 0
		next = candidate
		advanced = true
		s.PostLog("[SCHEDULER] Turn advanced to Player %d", candidate)
	})
	return next, advanced
}

// Reset reinitializes a finished game in place. It only acts while the game
// is over, so concurrent or repeated calls after a single win reset once.
func (s *Store) Reset(roundID uuid.UUID) bool {
	reset := false
	s.locks.StateLock.With(func() {
		if s.data.GameOver == 0 {
			return
		}
		for i := range s.data.Positions {
			s.data.Positions[i] = 0
		}
		s.data.RoundID = roundID
		s.data.CurrentTurn = 0
		s.data.Winner = int32(constants.NoWinner)
		s.data.GameOver = 0
		s.data.GameActive = 1
		s.data.TurnComplete = 0
		if s.data.Players[0].Connected == 0 {
			// slot 0 is gone; let the scheduler pick the first connected slot
			s.data.TurnComplete = 1
		}
		reset = true
		s.PostLog("========== NEW GAME STARTED (round %s) ==========", roundID)
	})
	return reset
}

// PostLog overwrites the mailbox. Messages longer than the buffer are cut at
// the last whole UTF-8 character that fits.
func (s *Store) PostLog(format string, args ...interface{}) {
	msg := truncateUTF8(fmt.Sprintf(format, args...), len(s.data.LogBuffer))
	s.locks.LogLock.With(func() {
		n := copy(s.data.LogBuffer[:], msg)
		s.data.LogLen = int32(n)
		s.data.LogPending = 1
	})
}

func (s *Store) TakeLog() (string, bool) {
	var msg string
	var ok bool
	s.locks.LogLock.With(func() {
		if s.data.LogPending == 0 {
			return
		}
		msg = string(s.data.LogBuffer[:s.data.LogLen])
		s.data.LogPending = 0
		ok = true
	})
	return msg, ok
}

// WithScores runs fn with the score table while holding the score lock.
// The slice aliases the shared region and must not be retained.
func (s *Store) WithScores(fn func(scores []int32)) {
	s.locks.ScoreLock.With(func() {
		fn(s.data.Scores[:])
	})
}

func truncateUTF8(msg string, limit int) string {
	if len(msg) <= limit {
		return msg
	}
	n := limit
	for n > 0 && !utf8.RuneStart(msg[n]) {
		n--
	}
	return msg[:n]
}

func setName(p *slotLayout, name string) {
	p.Name = [constants.MaxNameLen]byte{}
	copy(p.Name[:], truncateUTF8(name, constants.MaxNameLen-1))
}

func getName(p *slotLayout) string {
	for i, b := range p.Name {
		if b == 0 {
			return string(p.Name[:i])
		}
	}
	return string(p.Name[:])
}
