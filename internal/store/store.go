package store

import (
	"context"

	"github.com/seantiz/rtwork/internal/model"
)

// CycleStats holds aggregate figures over the cycle journal.
type CycleStats struct {
	Total            int            `json:"total"`
	CountByStatus    map[string]int `json:"count_by_status"`
	Scheduled        int            `json:"scheduled"`
	ScheduleRejected int            `json:"schedule_rejected"`
	Executed         int            `json:"executed"`
	WorkFailed       int            `json:"work_failed"`
	Responses        int            `json:"responses"`
	ResponseRejected int            `json:"response_rejected"`
	ResponseFailed   int            `json:"response_failed"`
	AvgDurationUS    float64        `json:"avg_duration_us"`
	MaxDurationUS    int64          `json:"max_duration_us"`
}

// Store defines the persistence operations for cycle reports.
type Store interface {
	InsertCycle(ctx context.Context, c *model.Cycle) error
	GetCycle(ctx context.Context, id string) (*model.Cycle, error)
	ListCycles(ctx context.Context, limit, offset int) ([]*model.Cycle, int, error)
	GetCycleStats(ctx context.Context) (*CycleStats, error)
	PruneCycles(ctx context.Context, keep int) (int, error)
	Close() error
}
