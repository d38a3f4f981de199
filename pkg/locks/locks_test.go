package locks

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockExcludesOtherHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.lock")

	// Two handles on the same file behave like two processes.
	a, err := Open("a", path)
	require.NoError(t, err)
	defer a.Close()
	b, err := Open("b", path)
	require.NoError(t, err)
	defer b.Close()

	a.Lock()

	acquired := make(chan struct{})
	go func() {
		b.Lock()
		close(acquired)
		b.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second handle acquired a held lock")
	case <-time.After(100 * time.Millisecond):
	}

	a.Unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second handle never acquired the released lock")
	}
}

func TestLockSerializesGoroutines(t *testing.T) {
	l, err := Open("state", filepath.Join(t.TempDir(), "state.lock"))
	require.NoError(t, err)
	defer l.Close()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.With(func() {
					counter++
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, counter)
}

func TestWithReleasesOnPanic(t *testing.T) {
	l, err := Open("state", filepath.Join(t.TempDir(), "state.lock"))
	require.NoError(t, err)
	defer l.Close()

	assert.Panics(t, func() {
		l.With(func() {
			panic("boom")
		})
	})

	done := make(chan struct{})
	go func() {
		l.With(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock still held after panic")
	}
}

func TestOpenSet(t *testing.T) {
	dir := t.TempDir()
	set, err := OpenSet(dir)
	require.NoError(t, err)
	assert.Equal(t, "state", set.StateLock.Name())
	assert.Equal(t, "log", set.LogLock.Name())
	assert.Equal(t, "score", set.ScoreLock.Name())
	assert.NoError(t, set.Close())

	assert.FileExists(t, filepath.Join(dir, "score.lock"))
	Remove(dir)
	assert.NoFileExists(t, filepath.Join(dir, "score.lock"))
}
