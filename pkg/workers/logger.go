package workers

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cbodonnell/racetrack/pkg/log"
)

// LogMailbox is the single-slot message buffer shared by every process.
type LogMailbox interface {
	TakeLog() (string, bool)
}

type LogWorker struct {
	mailbox  LogMailbox
	out      io.Writer
	interval time.Duration
	now      func() time.Time
}

type NewLogWorkerOptions struct {
	Mailbox  LogMailbox
	Out      io.Writer
	Interval time.Duration
}

// NewLogWorker creates a new LogWorker.
// The worker drains the log mailbox on a fixed interval and appends each
// message as one line to the game log. Messages posted faster than the
// interval overwrite each other in the mailbox.
func NewLogWorker(opts NewLogWorkerOptions) *LogWorker {
	return &LogWorker{
		mailbox:  opts.Mailbox,
		out:      opts.Out,
		interval: opts.Interval,
		now:      time.Now,
	}
}

func (w *LogWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Info("Logger worker started")
	for {
		select {
		case <-ctx.Done():
			// pick up a message posted during shutdown
			w.drain()
			return
		case <-ticker.C:
			w.drain()
		}
	}
}

func (w *LogWorker) drain() {
	msg, ok := w.mailbox.TakeLog()
	if !ok {
		return
	}
	line := fmt.Sprintf("%s %s\n", w.now().Format(time.RFC3339), msg)
	if _, err := io.WriteString(w.out, line); err != nil {
		log.Error("Failed to write game log: %v", err)
	}
}
