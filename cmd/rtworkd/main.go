// rtworkd runs the demo worker plugin on the in-process host, journals every
// cycle to SQLite and serves the introspection API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/seantiz/rtwork/internal/api"
	"github.com/seantiz/rtwork/internal/config"
	"github.com/seantiz/rtwork/internal/demo"
	"github.com/seantiz/rtwork/internal/hostsim"
	"github.com/seantiz/rtwork/internal/store"
)

func main() {
	cfg := config.Load()
	if cfg.File != "" {
		var err error
		if cfg, err = config.LoadFile(cfg.File); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("rtworkd: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"config_file", cfg.File,
		"cycle_period", cfg.CyclePeriod.String(),
		"tasks_per_cycle", cfg.TasksPerCycle,
		"freewheel", cfg.Freewheel,
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hostsim.New(hostsim.Config{
		QueueCapacity:    cfg.QueueCapacity,
		ResponseCapacity: cfg.ResponseCapacity,
		MaxMessageSize:   cfg.MaxMessageSize,
		Freewheel:        cfg.Freewheel,
	}, logger.With("component", "hostsim"))

	desc, err := demo.NewDescriptor()
	if err != nil {
		log.Fatalf("failed to create descriptor: %v", err)
	}
	inst := h.NewInstance("demo")
	plugin, err := demo.New(inst.Features(), demo.Options{
		TasksPerCycle: cfg.TasksPerCycle,
		RespondFrom:   uint32(cfg.RespondFrom),
	}, logger.With("component", "demo"))
	if err != nil {
		log.Fatalf("failed to instantiate plugin: %v", err)
	}
	inst.Bind(desc.Register(plugin), desc)

	j := newJournal(db, h.Broker(), cfg.RetainCycles, logger.With("component", "journal"))
	var journalWG sync.WaitGroup
	journalWG.Go(j.run)

	h.Start(ctx)

	var cycleWG sync.WaitGroup
	cycleWG.Go(func() {
		runCycles(ctx, h, plugin.Run, cfg.CyclePeriod)
	})

	srv := api.NewServer(cfg.ListenAddr, db, h, desc, logger)
	runErr := srv.Run(ctx)

	stop()
	cycleWG.Wait()
	h.Wait()
	h.Close()
	journalWG.Wait()

	logger.Info("rtworkd: stopped", "plugin", plugin.Stats())

	if runErr != nil {
		log.Fatalf("server error: %v", runErr)
	}
}

// runCycles drives the host from a goroutine pinned to one OS thread, which
// plays the real-time thread.
func runCycles(ctx context.Context, h *hostsim.Host, process func(), period time.Duration) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Cycle(process)
		}
	}
}
