// Package locks provides mutual exclusion that holds across OS processes.
//
// A Lock pairs an in-process mutex with an exclusive flock(2) on a dedicated
// lock file. The mutex serializes goroutines sharing one handle; the flock
// serializes every open file description of the lock file, which covers
// other processes and other handles within this process.
package locks

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Lock is a cross-process exclusive lock backed by a lock file.
type Lock struct {
	name string
	mu   sync.Mutex
	file *os.File
}

// Open opens (creating if needed) the lock file at path.
// The caller is responsible for calling Close.
func Open(name, path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %v", path, err)
	}
	return &Lock{
		name: name,
		file: f,
	}, nil
}

func (l *Lock) Name() string {
	return l.name
}

// Lock blocks until the lock is held by the caller.
func (l *Lock) Lock() {
	l.mu.Lock()
	for {
		err := unix.Flock(int(l.file.Fd()), unix.LOCK_EX)
		if err == nil {
			return
		}
		if err == unix.EINTR {
			continue
		}
		l.mu.Unlock()
		panic(fmt.Sprintf("flock %s: %v", l.name, err))
	}
}

func (l *Lock) Unlock() {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.mu.Unlock()
		panic(fmt.Sprintf("unflock %s: %v", l.name, err))
	}
	l.mu.Unlock()
}

// With runs fn while holding the lock. The lock is released on every exit
// path, including a panic in fn.
func (l *Lock) With(fn func()) {
	l.Lock()
	defer l.Unlock()
	fn()
}

func (l *Lock) Close() error {
	return l.file.Close()
}

// Set groups the three locks guarding the shared region.
//
// Ordering: StateLock may be held while taking LogLock. ScoreLock is never
// taken while StateLock is held.
type Set struct {
	StateLock *Lock
	LogLock   *Lock
	ScoreLock *Lock
}

// OpenSet opens state.lock, log.lock and score.lock inside dir.
func OpenSet(dir string) (*Set, error) {
	set := &Set{}
	var err error
	if set.StateLock, err = Open("state", dir+"/state.lock"); err != nil {
		return nil, err
	}
	if set.LogLock, err = Open("log", dir+"/log.lock"); err != nil {
		set.Close()
		return nil, err
	}
	if set.ScoreLock, err = Open("score", dir+"/score.lock"); err != nil {
		set.Close()
		return nil, err
	}
	return set, nil
}

func (s *Set) Close() error {
	var firstErr error
	for _, l := range []*Lock{s.StateLock, s.LogLock, s.ScoreLock} {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Remove deletes the lock files in dir. Only the process that owns the
// region lifecycle calls this, on shutdown.
func Remove(dir string) {
	for _, name := range []string{"state.lock", "log.lock", "score.lock"} {
		os.Remove(dir + "/" + name)
	}
}
