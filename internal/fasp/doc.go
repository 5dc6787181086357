// Package fasp drives a transfer executable through its local management
// channel. It is structured into small files by concern:
//
//   - launcher.go: bind a loopback port, spawn with "-M <port>", accept one
//     connection, release (interrupt + reap) on every exit path.
//   - parser.go: the line state machine turning the channel into frames and
//     the final DONE/ERROR outcome.
//   - fields.go, normalize.go: canonical field names and int/bool coercion.
//   - listener.go: listener formats and the fan-out registry.
//   - agent.go: RegisterListener/StartTransfer, wiring the pieces together.
//   - errors.go: error types and helpers (IsProtocol, AsTransfer, ...).
//   - events.go: lifecycle event publisher (noop default, in-memory for tests).
//   - metrics.go: Prometheus collectors.
//
// Wire format, one frame:
//
//	FASPMGR 2
//	Type: STATS
//	Bytescont: 1024
//	<blank line>
//
// Nothing here is retried; callers decide retry policy from the returned error.
package fasp
