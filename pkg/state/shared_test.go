package state

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/cbodonnell/racetrack/pkg/game"
	"github.com/cbodonnell/racetrack/pkg/game/constants"
	"github.com/cbodonnell/racetrack/pkg/game/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, numPlayers int) *Store {
	t.Helper()
	s, err := Create(t.TempDir(), numPlayers)
	require.NoError(t, err)
	t.Cleanup(func() { s.Destroy() })
	return s
}

func connectAll(t *testing.T, s StateManager) {
	t.Helper()
	for i := 0; i < s.NumPlayers(); i++ {
		_, err := s.Connect(i, "", uuid.New())
		require.NoError(t, err)
	}
}

func TestCreateInitialState(t *testing.T) {
	s := newTestStore(t, 4)
	got := s.Snapshot()

	assert.Equal(t, 4, got.NumPlayers)
	assert.Equal(t, []int{0, 0, 0, 0}, got.Positions)
	assert.Equal(t, 0, got.CurrentTurn)
	assert.Equal(t, constants.NoWinner, got.Winner)
	assert.False(t, got.GameActive)
	assert.False(t, got.GameOver)
	assert.Equal(t, types.PhaseWaitingForPlayers, got.Phase())
	assert.Equal(t, "Player 3", got.Players[3].Name)
}

func TestCreateRejectsBadPlayerCount(t *testing.T) {
	_, err := Create(t.TempDir(), 2)
	var countErr *game.ErrInvalidPlayerCount
	assert.ErrorAs(t, err, &countErr)
}

func TestOpenSharesState(t *testing.T) {
	dir := t.TempDir()
	parent, err := Create(dir, 3)
	require.NoError(t, err)
	defer parent.Destroy()

	child, err := Open(dir)
	require.NoError(t, err)
	defer child.Close()

	assert.Equal(t, 3, child.NumPlayers())

	_, err = child.Connect(1, "alice", uuid.New())
	require.NoError(t, err)

	got := parent.Snapshot()
	assert.True(t, got.Players[1].Connected)
	assert.Equal(t, "alice", got.Players[1].Name)
	assert.Equal(t, 1, got.ActivePlayers)
}

func TestOpenUninitializedRegion(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}

func TestConnectStartsGameWhenTableIsFull(t *testing.T) {
	s := newTestStore(t, 3)
	roundID := uuid.New()

	started, err := s.Connect(2, "", uuid.New())
	require.NoError(t, err)
	assert.False(t, started)
	started, err = s.Connect(0, "", uuid.New())
	require.NoError(t, err)
	assert.False(t, started)
	assert.False(t, s.Snapshot().GameActive)

	started, err = s.Connect(1, "", roundID)
	require.NoError(t, err)
	assert.True(t, started)

	got := s.Snapshot()
	assert.True(t, got.GameActive)
	assert.Equal(t, 0, got.CurrentTurn)
	assert.Equal(t, roundID, got.RoundID)
	assert.Equal(t, types.PhaseActive, got.Phase())

	msg, ok := s.TakeLog()
	require.True(t, ok)
	assert.Contains(t, msg, "GAME STARTED: 3 PLAYERS")
}

func TestConnectErrors(t *testing.T) {
	s := newTestStore(t, 3)

	_, err := s.Connect(3, "", uuid.New())
	var slotErr *ErrInvalidSlot
	assert.ErrorAs(t, err, &slotErr)

	_, err = s.Connect(0, "", uuid.New())
	require.NoError(t, err)
	_, err = s.Connect(0, "", uuid.New())
	var connErr *ErrAlreadyConnected
	assert.ErrorAs(t, err, &connErr)
	assert.Equal(t, 1, s.Snapshot().ActivePlayers)
}

func TestCheckTurn(t *testing.T) {
	s := newTestStore(t, 3)
	assert.Equal(t, TurnStatusWait, s.CheckTurn(0))

	connectAll(t, s)
	assert.Equal(t, TurnStatusMine, s.CheckTurn(0))
	assert.Equal(t, TurnStatusWait, s.CheckTurn(1))

	_, err := s.ApplyRoll(0, 3, 20)
	require.NoError(t, err)
	// turn complete but not advanced yet
	assert.Equal(t, TurnStatusWait, s.CheckTurn(0))

	_, advanced := s.AdvanceTurn()
	require.True(t, advanced)
	assert.Equal(t, TurnStatusMine, s.CheckTurn(1))
}

func TestApplyRollChangesOnlyTheMover(t *testing.T) {
	for numPlayers := constants.MinPlayers; numPlayers <= constants.MaxPlayers; numPlayers++ {
		s := newTestStore(t, numPlayers)
		connectAll(t, s)
		roller := game.NewDiceRoller(int64(numPlayers))

		for turn := 0; turn < 3*numPlayers; turn++ {
			before := s.Snapshot()
			mover := before.CurrentTurn

			result, err := s.ApplyRoll(mover, roller.Roll(), 1000)
			require.NoError(t, err)

			after := s.Snapshot()
			for i := range after.Positions {
				delta := after.Positions[i] - before.Positions[i]
				if i == mover {
					assert.GreaterOrEqual(t, delta, 1)
					assert.LessOrEqual(t, delta, constants.DiceSides)
					assert.Equal(t, after.Positions[i], result.Position)
				} else {
					assert.Zero(t, delta)
				}
			}
			assert.True(t, after.TurnComplete)

			next, advanced := s.AdvanceTurn()
			require.True(t, advanced)
			assert.Equal(t, (mover+1)%numPlayers, next)
			assert.GreaterOrEqual(t, next, 0)
			assert.Less(t, next, numPlayers)
		}
	}
}

func TestApplyRollOutOfTurn(t *testing.T) {
	s := newTestStore(t, 3)

	_, err := s.ApplyRoll(0, 3, 20)
	var turnErr *ErrNotYourTurn
	require.ErrorAs(t, err, &turnErr, "game not active yet")

	connectAll(t, s)
	_, err = s.ApplyRoll(1, 3, 20)
	require.ErrorAs(t, err, &turnErr)
	assert.Equal(t, 0, turnErr.CurrentTurn)

	_, err = s.ApplyRoll(0, 3, 20)
	require.NoError(t, err)
	_, err = s.ApplyRoll(0, 3, 20)
	assert.ErrorAs(t, err, &turnErr, "turn already complete")
	assert.Equal(t, []int{3, 0, 0}, s.Snapshot().Positions)
}

func TestApplyRollWin(t *testing.T) {
	s := newTestStore(t, 3)
	connectAll(t, s)

	result, err := s.ApplyRoll(0, 6, 6)
	require.NoError(t, err)
	assert.True(t, result.Won)

	got := s.Snapshot()
	assert.Equal(t, 0, got.Winner)
	assert.True(t, got.GameOver)
	assert.False(t, got.GameActive)
	assert.Equal(t, []int{6, 0, 0}, got.Positions)
	assert.Equal(t, types.PhaseOver, got.Phase())

	// nothing moves and the turn does not advance until reset
	_, advanced := s.AdvanceTurn()
	assert.False(t, advanced)
	for slot := 0; slot < 3; slot++ {
		_, err := s.ApplyRoll(slot, 1, 6)
		assert.Error(t, err)
		assert.Equal(t, TurnStatusGameOver, s.CheckTurn(slot))
	}
	assert.Equal(t, []int{6, 0, 0}, s.Snapshot().Positions)
}

func TestAdvanceTurnSkipsDisconnectedHolder(t *testing.T) {
	s := newTestStore(t, 3)
	connectAll(t, s)

	_, err := s.ApplyRoll(0, 2, 20)
	require.NoError(t, err)
	next, advanced := s.AdvanceTurn()
	require.True(t, advanced)
	require.Equal(t, 1, next)

	// slot 1 drops while holding the turn pointer
	require.NoError(t, s.Disconnect(1))
	got := s.Snapshot()
	assert.True(t, got.TurnComplete)
	assert.Equal(t, 2, got.ActivePlayers)

	next, advanced = s.AdvanceTurn()
	require.True(t, advanced)
	assert.Equal(t, 2, next)

	_, err = s.ApplyRoll(2, 4, 20)
	require.NoError(t, err)
	next, advanced = s.AdvanceTurn()
	require.True(t, advanced)
	assert.Equal(t, 0, next, "slot 1 skipped on the way round")
}

func TestAdvanceTurnStallsWithNobodyConnected(t *testing.T) {
	s := newTestStore(t, 3)
	connectAll(t, s)

	_, err := s.ApplyRoll(0, 2, 20)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Disconnect(i))
	}

	for tick := 0; tick < 3; tick++ {
		next, advanced := s.AdvanceTurn()
		assert.False(t, advanced)
		assert.Equal(t, 0, next)
	}
	assert.Equal(t, 0, s.Snapshot().CurrentTurn)
}

func TestAdvanceTurnRequiresCompletedTurn(t *testing.T) {
	s := newTestStore(t, 3)
	_, advanced := s.AdvanceTurn()
	assert.False(t, advanced, "game not active")

	connectAll(t, s)
	_, advanced = s.AdvanceTurn()
	assert.False(t, advanced, "turn not complete")
}

func TestResetIsIdempotent(t *testing.T) {
	s := newTestStore(t, 3)
	connectAll(t, s)

	assert.False(t, s.Reset(uuid.New()), "reset ignored while the game is running")

	_, err := s.ApplyRoll(0, 6, 6)
	require.NoError(t, err)

	roundID := uuid.New()
	require.True(t, s.Reset(roundID))
	once := s.Snapshot()

	assert.False(t, s.Reset(uuid.New()))
	twice := s.Snapshot()

	assert.Equal(t, once, twice)
	assert.Equal(t, []int{0, 0, 0}, twice.Positions)
	assert.Equal(t, 0, twice.CurrentTurn)
	assert.Equal(t, constants.NoWinner, twice.Winner)
	assert.True(t, twice.GameActive)
	assert.False(t, twice.GameOver)
	assert.Equal(t, roundID, twice.RoundID)
}

func TestConcurrentResetRunsOnce(t *testing.T) {
	dir := t.TempDir()
	parent, err := Create(dir, 3)
	require.NoError(t, err)
	defer parent.Destroy()
	connectAll(t, parent)
	_, err = parent.ApplyRoll(0, 6, 6)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan bool, 3)
	for i := 0; i < 3; i++ {
		handle, err := Open(dir)
		require.NoError(t, err)
		defer handle.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- handle.Reset(uuid.New())
		}()
	}
	wg.Wait()
	close(results)

	resets := 0
	for r := range results {
		if r {
			resets++
		}
	}
	assert.Equal(t, 1, resets)
	assert.True(t, parent.Snapshot().GameActive)
}

func TestResetWithSlotZeroGone(t *testing.T) {
	s := newTestStore(t, 3)
	connectAll(t, s)
	require.NoError(t, s.Disconnect(0))
	_, advanced := s.AdvanceTurn()
	require.True(t, advanced)

	_, err := s.ApplyRoll(1, 6, 6)
	require.NoError(t, err)
	require.True(t, s.Reset(uuid.New()))

	next, advanced := s.AdvanceTurn()
	require.True(t, advanced)
	assert.Equal(t, 1, next)
}

func TestLogMailboxOverwrites(t *testing.T) {
	s := newTestStore(t, 3)

	_, ok := s.TakeLog()
	assert.False(t, ok)

	s.PostLog("first %d", 1)
	s.PostLog("second %d", 2)

	msg, ok := s.TakeLog()
	require.True(t, ok)
	assert.Equal(t, "second 2", msg)

	_, ok = s.TakeLog()
	assert.False(t, ok)
}

func TestLogMailboxTruncates(t *testing.T) {
	s := newTestStore(t, 3)
	long := make([]byte, constants.LogBufferSize+50)
	for i := range long {
		long[i] = 'x'
	}
	s.PostLog("%s", long)

	msg, ok := s.TakeLog()
	require.True(t, ok)
	assert.Len(t, msg, constants.LogBufferSize)
}

func TestLogMailboxTruncatesOnCharacterBoundary(t *testing.T) {
	s := newTestStore(t, 3)
	prefix := strings.Repeat("x", constants.LogBufferSize-1)
	s.PostLog("%s%s", prefix, "é and more")

	msg, ok := s.TakeLog()
	require.True(t, ok)
	assert.Equal(t, prefix, msg)
	assert.True(t, utf8.ValidString(msg))
}

func TestConnectTruncatesLongName(t *testing.T) {
	s := newTestStore(t, 3)
	name := strings.Repeat("a", constants.MaxNameLen-2) + "ü"
	_, err := s.Connect(0, name, uuid.New())
	require.NoError(t, err)

	got := s.Snapshot().Players[0].Name
	assert.Equal(t, strings.Repeat("a", constants.MaxNameLen-2), got)
	assert.True(t, utf8.ValidString(got))
}

func TestWithScores(t *testing.T) {
	dir := t.TempDir()
	parent, err := Create(dir, 3)
	require.NoError(t, err)
	defer parent.Destroy()
	child, err := Open(dir)
	require.NoError(t, err)
	defer child.Close()

	child.WithScores(func(scores []int32) {
		require.Len(t, scores, constants.MaxPlayers)
		scores[2] = 7
	})
	parent.WithScores(func(scores []int32) {
		assert.Equal(t, int32(7), scores[2])
	})
}
