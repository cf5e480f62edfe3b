package model

import "time"

// Cycle outcome constants.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Cycle is the journal record of one processing cycle: the requests scheduled
// during it, the work and responses observed while it ran, and its barrier.
type Cycle struct {
	ID               string    `json:"id"`
	Seq              uint64    `json:"seq"`
	Instances        int       `json:"instances"`
	Scheduled        int       `json:"scheduled"`
	ScheduleRejected int       `json:"schedule_rejected"`
	Executed         int       `json:"executed"`
	WorkFailed       int       `json:"work_failed"`
	Responses        int       `json:"responses"`
	ResponseRejected int       `json:"response_rejected"`
	ResponseFailed   int       `json:"response_failed"`
	Barriers         int       `json:"barriers"`
	Status           string    `json:"status"`
	DurationUS       int64     `json:"duration_us"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// Failures returns the number of transfers or calls that did not succeed.
func (c *Cycle) Failures() int {
	return c.ScheduleRejected + c.WorkFailed + c.ResponseRejected + c.ResponseFailed
}

// Finish sets the outcome fields from the counters and the given end time.
func (c *Cycle) Finish(now time.Time) {
	c.FinishedAt = now
	c.DurationUS = now.Sub(c.StartedAt).Microseconds()
	c.Status = StatusOK
	if c.Failures() > 0 {
		c.Status = StatusDegraded
	}
}
