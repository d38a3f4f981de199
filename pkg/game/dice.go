package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/cbodonnell/racetrack/pkg/game/constants"
)

// Roller produces the server-side increment for one turn.
type Roller interface {
	// Roll returns a value in [1, constants.DiceSides].
	Roll() int
}

// DiceRoller rolls a fair die. It is safe for concurrent use.
type DiceRoller struct {
	lock sync.Mutex
	rng  *rand.Rand
}

func NewDiceRoller(seed int64) *DiceRoller {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DiceRoller{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (d *DiceRoller) Roll() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.rng.Intn(constants.DiceSides) + 1
}

// FixedRoller replays a sequence of rolls, repeating the last one when the
// sequence runs out. Values are clamped to the die's range.
type FixedRoller struct {
	lock  sync.Mutex
	rolls []int
	next  int
}

func NewFixedRoller(rolls ...int) *FixedRoller {
	return &FixedRoller{rolls: rolls}
}

func (f *FixedRoller) Roll() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	if len(f.rolls) == 0 {
		return 1
	}
	i := f.next
	if i >= len(f.rolls) {
		i = len(f.rolls) - 1
	} else {
		f.next++
	}
	return clampRoll(f.rolls[i])
}

func clampRoll(v int) int {
	if v < 1 {
		return 1
	}
	if v > constants.DiceSides {
		return constants.DiceSides
	}
	return v
}
