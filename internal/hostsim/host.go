package hostsim

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/seantiz/rtwork/internal/host"
	"github.com/seantiz/rtwork/internal/model"
)

// ErrNotBound is returned when an instance is used before Bind.
var ErrNotBound = errors.New("instance not bound")

// Config holds host sizing and scheduling options.
type Config struct {
	QueueCapacity    int
	ResponseCapacity int
	MaxMessageSize   int
	Freewheel        bool
}

// DefaultConfig returns the sizing used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		QueueCapacity:    64,
		ResponseCapacity: 64,
		MaxMessageSize:   4096,
	}
}

// Host is an in-process worker host. Cycle must be called from a single
// goroutine, which acts as the real-time domain.
type Host struct {
	cfg       Config
	logger    *slog.Logger
	requests  *ring
	responses *ring
	broker    *Broker
	wake      chan struct{}

	// workMu serialises Work across instances, so at most one Work runs at a
	// time for any instance.
	workMu  sync.Mutex
	workBuf []byte

	deliverBuf []byte

	mu        sync.RWMutex
	instances []*Instance

	wg      sync.WaitGroup
	seq     atomic.Uint64
	pending atomic.Int64

	scheduled        atomic.Int64
	scheduleRejected atomic.Int64
	executed         atomic.Int64
	workFailed       atomic.Int64
	responseRejected atomic.Int64
}

// New creates a host. Zero or negative sizes fall back to DefaultConfig.
func New(cfg Config, logger *slog.Logger) *Host {
	def := DefaultConfig()
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = def.QueueCapacity
	}
	if cfg.ResponseCapacity <= 0 {
		cfg.ResponseCapacity = def.ResponseCapacity
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}

	return &Host{
		cfg:        cfg,
		logger:     logger,
		requests:   newRing(cfg.QueueCapacity, cfg.MaxMessageSize),
		responses:  newRing(cfg.ResponseCapacity, cfg.MaxMessageSize),
		broker:     NewBroker(),
		wake:       make(chan struct{}, 1),
		workBuf:    make([]byte, 0, cfg.MaxMessageSize),
		deliverBuf: make([]byte, 0, cfg.MaxMessageSize),
	}
}

// Broker returns the host's cycle report broker.
func (h *Host) Broker() *Broker {
	return h.broker
}

// Config returns the effective configuration.
func (h *Host) Config() Config {
	return h.cfg
}

// Instance is one computation instance as seen by the host.
type Instance struct {
	host     *Host
	name     string
	features *host.FeatureSet

	mu    sync.RWMutex
	key   host.InstanceKey
	iface host.WorkerInterface
}

// NewInstance issues capabilities for a new instance. The instance takes part
// in cycles once Bind has been called.
func (h *Host) NewInstance(name string) *Instance {
	inst := &Instance{host: h, name: name}
	inst.features = host.NewFeatureSet(map[string]any{
		host.URISchedule: host.ScheduleFeature{
			Handle:       inst,
			ScheduleWork: h.scheduleWork,
		},
	})

	h.mu.Lock()
	h.instances = append(h.instances, inst)
	h.mu.Unlock()

	return inst
}

// Name returns the instance name.
func (i *Instance) Name() string {
	return i.name
}

// Features returns the capabilities the instance resolves at instantiation.
func (i *Instance) Features() *host.FeatureSet {
	return i.features
}

// Bind attaches the executor interface and the key the instance registered under.
func (i *Instance) Bind(key host.InstanceKey, iface host.WorkerInterface) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.key = key
	i.iface = iface
}

// Unbind detaches the instance. Queued views for it are dropped on delivery.
func (i *Instance) Unbind() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.iface = nil
}

func (i *Instance) binding() (host.InstanceKey, host.WorkerInterface, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.iface == nil {
		return host.InstanceKey{}, nil, ErrNotBound
	}
	return i.key, i.iface, nil
}

// Start launches the worker goroutine. It is a no-op in freewheel mode.
func (h *Host) Start(ctx context.Context) {
	if h.cfg.Freewheel {
		h.logger.Info("host started", "mode", "freewheel")
		return
	}
	h.logger.Info("host started", "mode", "threaded",
		"queue_capacity", h.cfg.QueueCapacity,
		"response_capacity", h.cfg.ResponseCapacity,
		"max_message_size", h.cfg.MaxMessageSize,
	)
	h.wg.Go(func() {
		h.workLoop(ctx)
	})
}

// Wait blocks until the worker goroutine exits.
func (h *Host) Wait() {
	h.wg.Wait()
}

// Close stops report fan-out. Call it after Wait.
func (h *Host) Close() {
	h.broker.Close()
}

// Pending returns the number of requests accepted but not yet executed.
func (h *Host) Pending() int {
	return int(h.pending.Load())
}

// Drain blocks until every accepted request has been executed or ctx is done.
func (h *Host) Drain(ctx context.Context) error {
	if h.pending.Load() <= 0 {
		return nil
	}
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for h.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// scheduleWork is the ScheduleFunc issued to every instance.
func (h *Host) scheduleWork(handle any, view []byte) host.Status {
	inst, ok := handle.(*Instance)
	if !ok || inst.host != h {
		h.rejectSchedule(host.StatusErrUnknown)
		return host.StatusErrUnknown
	}

	if h.cfg.Freewheel {
		if len(view) > h.cfg.MaxMessageSize {
			h.rejectSchedule(host.StatusErrUnknown)
			return host.StatusErrUnknown
		}
		h.scheduled.Add(1)
		countTransfer(directionSchedule, host.StatusSuccess)
		h.execute(inst, view)
		return host.StatusSuccess
	}

	h.pending.Add(1)
	if st := h.requests.push(inst, view); st != host.StatusSuccess {
		h.pending.Add(-1)
		h.rejectSchedule(st)
		return st
	}
	h.scheduled.Add(1)
	countTransfer(directionSchedule, host.StatusSuccess)

	select {
	case h.wake <- struct{}{}:
	default:
	}
	return host.StatusSuccess
}

func (h *Host) rejectSchedule(st host.Status) {
	h.scheduleRejected.Add(1)
	countTransfer(directionSchedule, st)
}

func (h *Host) workLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("worker stopped", "pending", h.requests.len())
			return
		case <-h.wake:
		}
		h.runQueued()
	}
}

func (h *Host) runQueued() {
	for {
		inst, view, ok := h.requests.pop(h.workBuf)
		if !ok {
			return
		}
		h.workBuf = view[:0]
		h.execute(inst, view)
		h.pending.Add(-1)
		queueDepth.WithLabelValues("requests").Set(float64(h.requests.len()))
	}
}

// execute runs one Work call under workMu.
func (h *Host) execute(inst *Instance, view []byte) {
	h.workMu.Lock()
	defer h.workMu.Unlock()

	key, iface, err := inst.binding()
	if err != nil {
		h.executed.Add(1)
		h.workFailed.Add(1)
		countTransfer(directionWork, host.StatusErrUnknown)
		h.logger.Warn("dropping work for unbound instance", "instance", inst.name)
		return
	}

	start := time.Now()
	st := iface.Work(key, h.respond, inst, view)
	workDuration.Observe(time.Since(start).Seconds())

	h.executed.Add(1)
	countTransfer(directionWork, st)
	if st != host.StatusSuccess {
		h.workFailed.Add(1)
		h.logger.Warn("work failed", "instance", inst.name, "status", st.String())
	}
}

// respond is the RespondFunc passed to every Work call.
func (h *Host) respond(handle any, view []byte) host.Status {
	inst, ok := handle.(*Instance)
	if !ok || inst.host != h {
		h.responseRejected.Add(1)
		countTransfer(directionRespond, host.StatusErrUnknown)
		return host.StatusErrUnknown
	}

	st := h.responses.push(inst, view)
	countTransfer(directionRespond, st)
	if st != host.StatusSuccess {
		h.responseRejected.Add(1)
	}
	return st
}

// Cycle runs one processing period on the calling goroutine: process is the
// real-time callback, then every queued response is delivered, then each bound
// instance receives exactly one EndRun. The returned report is also published
// to the broker.
func (h *Host) Cycle(process func()) model.Cycle {
	c := model.Cycle{
		Seq:       h.seq.Add(1),
		StartedAt: time.Now().UTC(),
	}

	if process != nil {
		process()
	}

	c.Responses, c.ResponseFailed = h.deliverResponses()

	h.mu.RLock()
	instances := h.instances
	h.mu.RUnlock()

	for _, inst := range instances {
		key, iface, err := inst.binding()
		if err != nil {
			continue
		}
		c.Instances++
		if st := iface.EndRun(key); st != host.StatusSuccess {
			h.logger.Warn("end of run failed", "instance", inst.name, "status", st.String())
		}
		c.Barriers++
	}

	c.Scheduled = int(h.scheduled.Swap(0))
	c.ScheduleRejected = int(h.scheduleRejected.Swap(0))
	c.Executed = int(h.executed.Swap(0))
	c.WorkFailed = int(h.workFailed.Swap(0))
	c.ResponseRejected = int(h.responseRejected.Swap(0))

	c.ID = model.NewID()
	c.Finish(time.Now().UTC())

	queueDepth.WithLabelValues("requests").Set(float64(h.requests.len()))
	queueDepth.WithLabelValues("responses").Set(float64(h.responses.len()))
	cyclesTotal.WithLabelValues(c.Status).Inc()

	h.broker.Publish(c)
	return c
}

// deliverResponses hands every queued response to its instance.
func (h *Host) deliverResponses() (delivered, failed int) {
	for {
		inst, view, ok := h.responses.pop(h.deliverBuf)
		if !ok {
			return delivered, failed
		}
		h.deliverBuf = view[:0]

		key, iface, err := inst.binding()
		if err != nil {
			failed++
			countTransfer(directionDeliver, host.StatusErrUnknown)
			continue
		}
		st := iface.WorkResponse(key, view)
		countTransfer(directionDeliver, st)
		if st != host.StatusSuccess {
			failed++
			continue
		}
		delivered++
	}
}
