// Package channels implements the per-slot byte-stream endpoints between the
// server and a participant: one named pipe per direction.
//
// Open order matters because opening a FIFO blocks until the other end is
// opened too. Both sides open the server→participant pipe first, then the
// participant→server pipe.
package channels

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cbodonnell/racetrack/pkg/messages"
	"golang.org/x/sys/unix"
)

// DefaultDir is where endpoints are created when no directory is configured.
const DefaultDir = "/tmp"

// ErrChannelClosed is returned when the other side has closed its end.
type ErrChannelClosed struct {
	Slot int
}

func (e *ErrChannelClosed) Error() string {
	return fmt.Sprintf("channel for slot %d closed", e.Slot)
}

func IsChannelClosed(err error) bool {
	var closedErr *ErrChannelClosed
	return errors.As(err, &closedErr)
}

// InPath is the participant→server endpoint for a slot.
func InPath(dir string, slot int) string {
	return filepath.Join(dir, fmt.Sprintf("player_%d_in", slot))
}

// OutPath is the server→participant endpoint for a slot.
func OutPath(dir string, slot int) string {
	return filepath.Join(dir, fmt.Sprintf("player_%d_out", slot))
}

// CreateEndpoints creates a fresh FIFO pair for each of n slots, replacing
// anything already at those paths.
func CreateEndpoints(dir string, n int) error {
	for slot := 0; slot < n; slot++ {
		for _, path := range []string{InPath(dir, slot), OutPath(dir, slot)} {
			os.Remove(path)
			if err := unix.Mkfifo(path, 0o666); err != nil {
				return fmt.Errorf("failed to create endpoint %s: %v", path, err)
			}
		}
	}
	return nil
}

// RemoveEndpoints removes the FIFO pairs of n slots.
func RemoveEndpoints(dir string, n int) {
	for slot := 0; slot < n; slot++ {
		os.Remove(InPath(dir, slot))
		os.Remove(OutPath(dir, slot))
	}
}

// Conn is one side's view of a slot's endpoint pair.
type Conn interface {
	// ReadLine blocks until a full line (or the final partial line) arrives.
	ReadLine() (string, error)
	// Send writes one message line.
	Send(msg string) error
	Close() error
}

type pipeConn struct {
	slot   int
	reader *bufio.Reader
	in     *os.File
	out    *os.File

	closeOnce sync.Once
}

// Accept opens the server side of a slot's endpoints. It blocks until a
// participant opens the other ends, or ctx is done.
func Accept(ctx context.Context, dir string, slot int) (Conn, error) {
	return openPair(ctx, slot, OutPath(dir, slot), os.O_WRONLY, InPath(dir, slot), os.O_RDONLY, true)
}

// Dial opens the participant side of a slot's endpoints.
func Dial(ctx context.Context, dir string, slot int) (Conn, error) {
	return openPair(ctx, slot, OutPath(dir, slot), os.O_RDONLY, InPath(dir, slot), os.O_WRONLY, false)
}

func openPair(ctx context.Context, slot int, outPath string, outFlag int, inPath string, inFlag int, server bool) (Conn, error) {
	type result struct {
		conn *pipeConn
		err  error
	}
	done := make(chan result, 1)

	go func() {
		first, err := os.OpenFile(outPath, outFlag, 0)
		if err != nil {
			done <- result{err: fmt.Errorf("failed to open endpoint %s: %v", outPath, err)}
			return
		}
		second, err := os.OpenFile(inPath, inFlag, 0)
		if err != nil {
			first.Close()
			done <- result{err: fmt.Errorf("failed to open endpoint %s: %v", inPath, err)}
			return
		}
		c := &pipeConn{slot: slot}
		if server {
			c.out, c.in = first, second
		} else {
			c.in, c.out = first, second
		}
		c.reader = bufio.NewReaderSize(c.in, messages.MessageBufferSize)
		done <- result{conn: c}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return r.conn, nil
	case <-ctx.Done():
		// The opener is stuck in open(2); release it by opening the far
		// ends ourselves, then discard whatever it returns.
		go func() {
			unblock(outPath, outFlag)
			unblock(inPath, inFlag)
			if r := <-done; r.conn != nil {
				r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

func unblock(path string, flag int) {
	opposite := os.O_RDONLY
	if flag == os.O_RDONLY {
		opposite = os.O_WRONLY
	}
	if f, err := os.OpenFile(path, opposite|unix.O_NONBLOCK, 0); err == nil {
		f.Close()
	}
}

func (c *pipeConn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF || errors.Is(err, os.ErrClosed) {
			if line != "" {
				return line, nil
			}
			return "", &ErrChannelClosed{Slot: c.slot}
		}
		return "", fmt.Errorf("failed to read from slot %d: %v", c.slot, err)
	}
	return line, nil
}

func (c *pipeConn) Send(msg string) error {
	if !strings.HasSuffix(msg, "\n") {
		msg = messages.Line(msg)
	}
	if _, err := io.WriteString(c.out, msg); err != nil {
		if errors.Is(err, unix.EPIPE) || errors.Is(err, os.ErrClosed) {
			return &ErrChannelClosed{Slot: c.slot}
		}
		return fmt.Errorf("failed to write to slot %d: %v", c.slot, err)
	}
	return nil
}

func (c *pipeConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		inErr := c.in.Close()
		outErr := c.out.Close()
		if inErr != nil {
			err = inErr
		} else {
			err = outErr
		}
	})
	return err
}

// Broadcaster writes to other slots' server→participant endpoints without
// blocking: a slot with no reader or a full pipe is skipped.
type Broadcaster interface {
	Broadcast(slots []int, msg string) []error
}

type PipeBroadcaster struct {
	dir string
}

func NewPipeBroadcaster(dir string) *PipeBroadcaster {
	return &PipeBroadcaster{dir: dir}
}

// Broadcast sends msg to each slot and returns the errors of the slots it
// could not reach. A message is written in a single call, so lines from
// different writers never interleave while it fits in the pipe's atomic size.
func (b *PipeBroadcaster) Broadcast(slots []int, msg string) []error {
	if !strings.HasSuffix(msg, "\n") {
		msg = messages.Line(msg)
	}
	var errs []error
	for _, slot := range slots {
		if err := b.send(slot, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (b *PipeBroadcaster) send(slot int, msg string) error {
	// Raw syscalls: an *os.File would park on a full pipe instead of
	// returning EAGAIN.
	path := OutPath(b.dir, slot)
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("failed to open endpoint %s: %v", path, err)
	}
	defer unix.Close(fd)
	if _, err := unix.Write(fd, []byte(msg)); err != nil {
		return fmt.Errorf("failed to write to slot %d: %v", slot, err)
	}
	return nil
}
