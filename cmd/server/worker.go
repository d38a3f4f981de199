package main

import (
	"context"
	"fmt"

	"github.com/cbodonnell/racetrack/pkg/channels"
	"github.com/cbodonnell/racetrack/pkg/config"
	"github.com/cbodonnell/racetrack/pkg/game"
	"github.com/cbodonnell/racetrack/pkg/ledger"
	"github.com/cbodonnell/racetrack/pkg/log"
	"github.com/cbodonnell/racetrack/pkg/repositories"
	"github.com/cbodonnell/racetrack/pkg/session"
	"github.com/cbodonnell/racetrack/pkg/state"
)

// runWorker serves one slot from a process of its own.
func runWorker(ctx context.Context, cfg *config.Config, slot int, logger *log.Logger) error {
	store, err := state.Open(cfg.RunDir)
	if err != nil {
		return fmt.Errorf("failed to open shared state: %v", err)
	}
	defer store.Close()

	repository, err := repositories.NewScoreRepository(ctx, cfg.ScoreURL, cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("failed to open score store: %v", err)
	}
	defer repository.Close(context.Background())

	logger.Info("Waiting for player %d", slot)
	conn, err := channels.Accept(ctx, cfg.FIFODir, slot)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer conn.Close()

	seed := cfg.Seed
	if seed != 0 {
		seed += int64(slot)
	}
	worker := session.NewWorker(session.NewWorkerOptions{
		Slot:  slot,
		Name:  fmt.Sprintf("Player %d", slot),
		State: store,
		Scoreboard: ledger.New(ledger.NewLedgerOptions{
			Table:      store,
			Repository: repository,
		}),
		Conn:         conn,
		Broadcaster:  channels.NewPipeBroadcaster(cfg.FIFODir),
		Roller:       game.NewDiceRoller(seed),
		WinPosition:  cfg.WinPosition,
		PollInterval: cfg.PollInterval,
		ResetPause:   cfg.ResetPause,
		Logger:       logger,
	})
	if err := worker.Connect(); err != nil {
		return err
	}

	// unblock a pending read once we are asked to stop
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	return worker.Run(ctx)
}
