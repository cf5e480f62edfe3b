// Package hostsim is an in-process reference host for the worker protocol.
// It issues scheduling capabilities, queues requests in a bounded ring, runs
// Work on a single worker goroutine, queues responses in a second bounded
// ring and delivers them, followed by one EndRun per instance, at the end of
// each cycle. In freewheel mode work runs inline inside ScheduleWork.
package hostsim
