// Package host defines the capabilities a host runtime hands to a computation
// instance and the interface it calls back into. Concrete hosts (see hostsim)
// implement the scheduling and responding sides; the worker package implements
// WorkerInterface.
package host
