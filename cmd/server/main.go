package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/cbodonnell/racetrack/pkg/config"
	"github.com/cbodonnell/racetrack/pkg/game"
	"github.com/cbodonnell/racetrack/pkg/log"
)

func main() {
	players := flag.Int("players", 0, "Number of players (3-5); prompted for when unset")
	logLevel := flag.String("log-level", "info", "Log level")
	envFile := flag.String("env-file", ".env", "Optional file of RACETRACK_* variables")
	workerSlot := flag.Int("worker-slot", -1, "Run as the session worker for this slot (internal)")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	if *workerSlot >= 0 {
		logger = logger.WithField("slot", *workerSlot)
	}
	log.SetDefaultLogger(logger)

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *workerSlot >= 0 {
		if err := runWorker(ctx, cfg, *workerSlot, logger); err != nil {
			log.Error("Worker for slot %d failed: %v", *workerSlot, err)
			os.Exit(1)
		}
		return
	}

	log.Info("Log level set to %s", parsedLogLevel)
	numPlayers := *players
	if numPlayers == 0 {
		numPlayers, err = promptPlayerCount(os.Stdin, os.Stdout)
		if err != nil {
			log.Error("Failed to read player count: %v", err)
			os.Exit(1)
		}
	}
	rules := game.Rules{NumPlayers: numPlayers, WinPosition: cfg.WinPosition}
	if err := rules.Validate(); err != nil {
		log.Error("Invalid rules: %v", err)
		os.Exit(1)
	}

	if err := runParent(ctx, cfg, rules, os.Args[1:]); err != nil {
		log.Error("Server failed: %v", err)
		os.Exit(1)
	}
}

func promptPlayerCount(in io.Reader, out io.Writer) (int, error) {
	fmt.Fprint(out, "Enter number of players (3-5): ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", strings.TrimSpace(line))
	}
	return n, nil
}
