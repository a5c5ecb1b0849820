// Package taskqueue runs deferred work outside the request path.
//
// A Task is a named, msgpack-encoded payload addressed to a queue. Handlers are
// registered by name on a Queue; Defer returns as soon as the task is accepted and
// the handler runs later, possibly more than once. Delivery is at-least-once and
// unordered, so every handler must be idempotent.
//
// Three backends share the Queue interface:
//
//   - Local records deferred tasks and runs them only when asked. Tests use it to
//     assert what was scheduled.
//   - InProc runs tasks on a bounded worker pool inside the process.
//   - Redis pushes tasks onto Redis lists consumed by worker processes, with
//     delayed retries and a dead-letter list per queue.
//
// Failed tasks are retried according to a RetryPolicy unless the error reports
// itself as non-retryable (see go-errors RetryableError).
package taskqueue
