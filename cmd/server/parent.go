package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/cbodonnell/racetrack/pkg/api"
	"github.com/cbodonnell/racetrack/pkg/channels"
	"github.com/cbodonnell/racetrack/pkg/config"
	"github.com/cbodonnell/racetrack/pkg/game"
	"github.com/cbodonnell/racetrack/pkg/ledger"
	"github.com/cbodonnell/racetrack/pkg/log"
	"github.com/cbodonnell/racetrack/pkg/repositories"
	"github.com/cbodonnell/racetrack/pkg/state"
	"github.com/cbodonnell/racetrack/pkg/workers"
)

// runParent owns every shared resource: it creates them, runs the logger and
// scheduler, supervises one worker process per slot and tears everything
// down once ctx is cancelled.
func runParent(ctx context.Context, cfg *config.Config, rules game.Rules, args []string) error {
	log.Info("Starting server for %d players, first to %d wins", rules.NumPlayers, rules.WinPosition)

	if err := os.MkdirAll(cfg.RunDir, 0o755); err != nil {
		return fmt.Errorf("failed to create run dir: %v", err)
	}
	store, err := state.Create(cfg.RunDir, rules.NumPlayers)
	if err != nil {
		return fmt.Errorf("failed to create shared state: %v", err)
	}
	defer func() {
		if err := store.Destroy(); err != nil {
			log.Error("Failed to remove shared state: %v", err)
		}
	}()

	repository, err := repositories.NewScoreRepository(ctx, cfg.ScoreURL, cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("failed to open score store: %v", err)
	}
	defer repository.Close(context.Background())

	scores := ledger.New(ledger.NewLedgerOptions{Table: store, Repository: repository})
	loadScores(ctx, scores)

	if err := channels.CreateEndpoints(cfg.FIFODir, rules.NumPlayers); err != nil {
		return err
	}
	defer channels.RemoveEndpoints(cfg.FIFODir, rules.NumPlayers)

	gameLog := openGameLog(cfg.LogFile, cfg.LogRotateBytes)
	defer gameLog.Close()

	var wg sync.WaitGroup
	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
	}()

	logWorker := workers.NewLogWorker(workers.NewLogWorkerOptions{
		Mailbox:  store,
		Out:      gameLog,
		Interval: cfg.LoggerInterval,
	})
	scheduler := workers.NewTurnScheduler(workers.NewTurnSchedulerOptions{
		State:    store,
		Interval: cfg.SchedulerInterval,
	})
	wg.Add(2)
	go func() {
		defer wg.Done()
		logWorker.Start(runCtx)
	}()
	go func() {
		defer wg.Done()
		scheduler.Start(runCtx)
	}()

	if cfg.StatusPort > 0 {
		apiServer := api.NewAPIServer(api.NewAPIServerOptions{
			Port:   cfg.StatusPort,
			State:  store,
			Scores: scores,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := apiServer.Start(runCtx); err != nil {
				log.Error("%v", err)
			}
		}()
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate server binary: %v", err)
	}
	supervisor := &supervisor{self: self, args: args}
	for slot := 0; slot < rules.NumPlayers; slot++ {
		if err := supervisor.spawn(slot); err != nil {
			supervisor.stop()
			return err
		}
	}
	log.Info("Waiting for %d players on %s/player_N_{in,out}", rules.NumPlayers, cfg.FIFODir)

	<-ctx.Done()
	log.Info("Shutting down")
	if err := scores.Save(context.Background()); err != nil {
		log.Error("Failed to save scores: %v", err)
	}
	supervisor.stop()
	return nil
}

type supervisor struct {
	self string
	args []string

	lock  sync.Mutex
	procs []*exec.Cmd
	wg    sync.WaitGroup
}

func (s *supervisor) spawn(slot int) error {
	args := append(append([]string{}, s.args...), "-worker-slot", strconv.Itoa(slot))
	cmd := exec.Command(s.self, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = workerProcAttr()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start worker for slot %d: %v", slot, err)
	}
	log.Debug("Started worker for slot %d (pid %d)", slot, cmd.Process.Pid)

	s.lock.Lock()
	s.procs = append(s.procs, cmd)
	s.lock.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := cmd.Wait()
		log.Info("Worker for slot %d exited: %s", slot, exitStatus(err))
	}()
	return nil
}

// stop signals every worker and reaps them. Workers that already exited
// just fail the signal.
func (s *supervisor) stop() {
	s.lock.Lock()
	for _, cmd := range s.procs {
		cmd.Process.Signal(os.Interrupt)
	}
	s.lock.Unlock()
	s.wg.Wait()
}

func exitStatus(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
