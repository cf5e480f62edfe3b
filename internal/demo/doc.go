// Package demo is an example instance for the worker protocol. Each cycle it
// schedules a fixed number of tasks; the worker answers tasks at or above a
// threshold, and the real-time side counts responses and end-of-cycle barriers.
package demo
