package hostsim

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/seantiz/rtwork/internal/host"
	"github.com/seantiz/rtwork/internal/model"
)

// Metric label values for transfer direction.
const (
	directionSchedule = "schedule"
	directionRespond  = "respond"
	directionWork     = "work"
	directionDeliver  = "deliver"
)

var (
	transfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtwork_hostsim_transfers_total",
			Help: "Total number of boundary crossings by direction and resulting status.",
		},
		[]string{"direction", "status"},
	)

	workDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rtwork_hostsim_work_seconds",
			Help:    "Duration of Work invocations, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rtwork_hostsim_queue_depth",
			Help: "Number of views waiting in a host queue.",
		},
		[]string{"queue"},
	)

	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtwork_hostsim_cycles_total",
			Help: "Total number of completed cycles by outcome.",
		},
		[]string{"status"},
	)
)

// transferCounters holds pre-resolved children so the real-time path does no
// label lookups.
var transferCounters = map[string]map[host.Status]prometheus.Counter{}

func init() {
	prometheus.MustRegister(transfersTotal)
	prometheus.MustRegister(workDuration)
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(cyclesTotal)

	// Pre-initialize label combinations so they appear in /metrics with
	// value 0 from startup, rather than only after first observation.
	statuses := []host.Status{host.StatusSuccess, host.StatusErrUnknown, host.StatusErrNoSpace}
	for _, dir := range []string{directionSchedule, directionRespond, directionWork, directionDeliver} {
		transferCounters[dir] = make(map[host.Status]prometheus.Counter, len(statuses))
		for _, st := range statuses {
			transferCounters[dir][st] = transfersTotal.WithLabelValues(dir, st.String())
		}
	}
	queueDepth.WithLabelValues("requests")
	queueDepth.WithLabelValues("responses")
	cyclesTotal.WithLabelValues(model.StatusOK)
	cyclesTotal.WithLabelValues(model.StatusDegraded)
}

// countTransfer records one boundary crossing. Unrecognised statuses count as unknown.
func countTransfer(direction string, st host.Status) {
	c, ok := transferCounters[direction][st]
	if !ok {
		c = transferCounters[direction][host.StatusErrUnknown]
	}
	c.Inc()
}
