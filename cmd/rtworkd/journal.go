package main

import (
	"context"
	"log/slog"

	"github.com/seantiz/rtwork/internal/hostsim"
	"github.com/seantiz/rtwork/internal/model"
	"github.com/seantiz/rtwork/internal/store"
)

const defaultPruneEvery = 1000

// journal persists cycle reports off the real-time thread. Reports dropped by
// the broker under load are not journaled.
type journal struct {
	store      store.Store
	reports    <-chan model.Cycle
	unsub      func()
	retain     int
	pruneEvery int
	logger     *slog.Logger
}

func newJournal(s store.Store, b *hostsim.Broker, retain int, logger *slog.Logger) *journal {
	ch, unsub := b.Subscribe()
	return &journal{
		store:      s,
		reports:    ch,
		unsub:      unsub,
		retain:     retain,
		pruneEvery: defaultPruneEvery,
		logger:     logger,
	}
}

// run journals reports until the broker is closed.
func (j *journal) run() {
	defer j.unsub()

	ctx := context.Background()
	var written int
	for c := range j.reports {
		if err := j.store.InsertCycle(ctx, &c); err != nil {
			j.logger.Error("failed to journal cycle", "cycle_id", c.ID, "seq", c.Seq, "error", err)
			continue
		}
		written++

		if c.Status == model.StatusDegraded {
			j.logger.Warn("cycle degraded",
				"cycle_id", c.ID,
				"seq", c.Seq,
				"schedule_rejected", c.ScheduleRejected,
				"work_failed", c.WorkFailed,
				"response_rejected", c.ResponseRejected,
				"response_failed", c.ResponseFailed,
			)
		}

		if j.retain > 0 && written%j.pruneEvery == 0 {
			n, err := j.store.PruneCycles(ctx, j.retain)
			if err != nil {
				j.logger.Error("failed to prune journal", "error", err)
				continue
			}
			j.logger.Debug("pruned journal", "removed", n, "retain", j.retain)
		}
	}
	j.logger.Info("journal closed", "written", written)
}
