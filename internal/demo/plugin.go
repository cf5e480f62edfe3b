package demo

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/seantiz/rtwork/internal/host"
	"github.com/seantiz/rtwork/internal/worker"
)

// Options controls how much work the plugin generates.
type Options struct {
	TasksPerCycle int
	// RespondFrom is the first task index that gets a response.
	RespondFrom uint32
}

// DefaultOptions returns ten tasks per cycle with responses from task five.
func DefaultOptions() Options {
	return Options{TasksPerCycle: 10, RespondFrom: 5}
}

// Stats is a snapshot of the plugin counters.
type Stats struct {
	Cycles         uint64 `json:"cycles"`
	Scheduled      uint64 `json:"scheduled"`
	ScheduleFailed uint64 `json:"schedule_failed"`
	Worked         uint64 `json:"worked"`
	Responded      uint64 `json:"responded"`
	Received       uint64 `json:"received"`
	EndRuns        uint64 `json:"end_runs"`
}

// Plugin is one demo instance.
type Plugin struct {
	opts     Options
	logger   *slog.Logger
	schedule *worker.Schedule[WorkMessage]
	req      *worker.Request[WorkMessage]

	// cycle is owned by the real-time side.
	cycle uint64

	cycles         atomic.Uint64
	scheduled      atomic.Uint64
	scheduleFailed atomic.Uint64
	worked         atomic.Uint64
	responded      atomic.Uint64
	received       atomic.Uint64
	endRuns        atomic.Uint64
}

// New instantiates a plugin against the host capabilities in features.
func New(features *host.FeatureSet, opts Options, logger *slog.Logger) (*Plugin, error) {
	sched, err := worker.NewSchedule[WorkMessage](features, host.ClassAudio, WorkCodec, WorkCodec.Size())
	if err != nil {
		return nil, fmt.Errorf("bind schedule: %w", err)
	}
	return &Plugin{
		opts:     opts,
		logger:   logger,
		schedule: sched,
		req:      worker.NewRequest(WorkMessage{}),
	}, nil
}

// Run is the real-time callback. It schedules TasksPerCycle requests and
// counts the ones the host refused.
func (p *Plugin) Run() {
	p.cycle++
	p.cycles.Add(1)
	for task := range p.opts.TasksPerCycle {
		p.req.Reset(WorkMessage{Cycle: p.cycle, Task: uint32(task)})
		if err := p.schedule.ScheduleWork(p.req); err != nil {
			p.scheduleFailed.Add(1)
			continue
		}
		p.scheduled.Add(1)
	}
}

// Work runs on the host worker thread.
func (p *Plugin) Work(rh *worker.ResponseHandler[Response], data WorkMessage) error {
	p.worked.Add(1)
	p.logger.Debug("work", "cycle", data.Cycle, "task", data.Task)

	if data.Task < p.opts.RespondFrom {
		return nil
	}
	resp := Response{
		Cycle: data.Cycle,
		Task:  data.Task,
		Note:  fmt.Sprintf("task %d of cycle %d", data.Task, data.Cycle),
	}
	if err := rh.Respond(resp); err != nil {
		return fmt.Errorf("respond to task %d: %w", data.Task, err)
	}
	p.responded.Add(1)
	return nil
}

// WorkResponse runs in the real-time domain.
func (p *Plugin) WorkResponse(Response) error {
	p.received.Add(1)
	return nil
}

// EndRun runs in the real-time domain after the cycle's last response.
func (p *Plugin) EndRun() error {
	p.endRuns.Add(1)
	return nil
}

// Stats returns the current counters.
func (p *Plugin) Stats() Stats {
	return Stats{
		Cycles:         p.cycles.Load(),
		Scheduled:      p.scheduled.Load(),
		ScheduleFailed: p.scheduleFailed.Load(),
		Worked:         p.worked.Load(),
		Responded:      p.responded.Load(),
		Received:       p.received.Load(),
		EndRuns:        p.endRuns.Load(),
	}
}

// Descriptor is the executor adapter for demo plugins.
type Descriptor = worker.Descriptor[WorkMessage, Response, *Plugin]

// NewDescriptor creates the executor adapter for demo plugins.
func NewDescriptor() (*Descriptor, error) {
	rc, err := NewResponseCodec()
	if err != nil {
		return nil, fmt.Errorf("response codec: %w", err)
	}
	return worker.NewDescriptor[WorkMessage, Response, *Plugin](WorkCodec, rc), nil
}
