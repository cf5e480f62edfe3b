// Package worker lets a real-time computation offload blocking work to a
// host-managed worker thread and receive the results inside its own cycle.
//
// The real-time side owns a Schedule and hands it Requests. The host runs the
// instance's Work method on a worker thread, where a ResponseHandler can send
// zero or more responses back. Responses are delivered to WorkResponse and each
// cycle ends with exactly one EndRun. A Descriptor adapts an instance type to
// host.WorkerInterface and resolves instances through a Registry.
package worker
