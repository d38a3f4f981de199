package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cbodonnell/racetrack/pkg/channels"
	"github.com/cbodonnell/racetrack/pkg/config"
	"github.com/cbodonnell/racetrack/pkg/log"
	"github.com/cbodonnell/racetrack/pkg/messages"
)

func main() {
	slot := flag.Int("slot", -1, "Player slot to join")
	fifoDir := flag.String("fifo-dir", "", "Directory holding the player endpoints (default from RACETRACK_FIFO_DIR)")
	auto := flag.Bool("auto", false, "Roll without waiting for ENTER")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stderr, "", log.DefaultLoggerFlag, parsedLogLevel))

	if *slot < 0 {
		fmt.Fprintln(os.Stderr, "usage: client -slot N [-fifo-dir DIR] [-auto]")
		os.Exit(2)
	}
	dir := *fifoDir
	if dir == "" {
		cfg, err := config.Load(".env")
		if err != nil {
			log.Error("Failed to load configuration: %v", err)
			os.Exit(1)
		}
		dir = cfg.FIFODir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Joining as player %d...\n", *slot)
	conn, err := channels.Dial(ctx, dir, *slot)
	if err != nil {
		log.Error("Failed to join: %v", err)
		os.Exit(1)
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if err := play(conn, os.Stdin, os.Stdout, *auto); err != nil {
		log.Error("Connection lost: %v", err)
		os.Exit(1)
	}
}

// play relays server messages to out and answers each turn prompt with a
// roll, after a line on in unless auto is set. It returns nil once the
// server closes the channel.
func play(conn channels.Conn, in io.Reader, out io.Writer, auto bool) error {
	input := bufio.NewReader(in)
	for {
		line, err := conn.ReadLine()
		if err != nil {
			if channels.IsChannelClosed(err) {
				fmt.Fprintln(out, "Server closed the connection.")
				return nil
			}
			return err
		}

		if body, ok := messages.StatusBody(line); ok {
			fmt.Fprintln(out, body)
			continue
		}

		switch {
		case messages.IsType(line, messages.MessageTypeYourTurn):
			if !auto {
				fmt.Fprint(out, "Your turn! Press ENTER to roll the dice...")
				if _, err := input.ReadString('\n'); err != nil && err != io.EOF {
					return err
				}
			} else {
				fmt.Fprintln(out, "Your turn! Rolling...")
			}
			if err := conn.Send(messages.MessageTypeRoll); err != nil {
				return err
			}
		case messages.IsType(line, messages.MessageTypeYouWin):
			fmt.Fprintln(out, "*** You win! ***")
		case messages.IsType(line, messages.MessageTypeGameOver):
			fmt.Fprintln(out, "Game over. A new game starts shortly.")
		default:
			log.Debug("Ignoring unknown message %q", line)
		}
	}
}
