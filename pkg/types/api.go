package types

// TransferRequest is the body of POST /transfers.
type TransferRequest struct {
	// Arguments passed to the transfer executable after the management port flag.
	// example: ["-l","100m","/data/file.bin","user@host:/incoming"]
	Args []string `json:"args" example:"-l,100m,/data/file.bin,user@host:/incoming"`
	// Extra environment variables for the child process.
	Env map[string]string `json:"env,omitempty"`
	// Optional executable override: a bare name found in the configured
	// search paths. Defaults to the server configuration.
	// example: ascp
	Executable string `json:"executable,omitempty" example:"ascp"`
}

// Transfer states reported in TransferStatus.State.
const (
	StateRunning     = "running"
	StateDone        = "done"
	StateFailed      = "failed"
	StateInterrupted = "interrupted"
)

// TransferStatus describes one transfer known to the daemon.
type TransferStatus struct {
	// Server-assigned identifier.
	// example: 3f1c2f0e-9a4b-4d0a-8f6e-6c1b2a3d4e5f
	ID string `json:"id" example:"3f1c2f0e-9a4b-4d0a-8f6e-6c1b2a3d4e5f"`
	// One of running, done, failed, interrupted.
	// example: running
	State string `json:"state" example:"running"`
	// Executable path the transfer was launched with.
	// example: /usr/local/bin/ascp
	Executable string `json:"executable" example:"/usr/local/bin/ascp"`
	// Arguments after the management port flag.
	Args []string `json:"args"`
	// Failure message when State is failed or interrupted.
	Error string `json:"error,omitempty"`
	// Error code reported by the transfer executable, when it sent one.
	// example: 12
	Code int `json:"code,omitempty" example:"12"`
	// Session ids seen on this transfer's management channel.
	Sessions []string `json:"sessions,omitempty"`
	// Start time (unix seconds).
	// example: 1700000000
	StartedAt int64 `json:"started_at_unix" example:"1700000000"`
	// End time (unix seconds); zero while running.
	EndedAt int64 `json:"ended_at_unix,omitempty"`
}

// TransfersResponse wraps GET /transfers.
type TransfersResponse struct {
	Transfers []TransferStatus `json:"transfers"`
}

// SessionStatus is the aggregate view of one live session.
type SessionStatus struct {
	// example: 8d3b6f0a-0000-0000-0000-000000000001
	ID string `json:"id"`
	// Bytes of files already completed in this session.
	Cumulative int64 `json:"cumulative"`
	// Pre-transfer size reported for the session.
	JobSize int64 `json:"job_size"`
	// Whether JobSize was reported.
	Sized bool `json:"sized"`
	// Current position in bytes.
	Current int64 `json:"current"`
	// Set when the owning transfer ended without a DONE frame. Stale
	// sessions still count towards the aggregate.
	Stale bool `json:"stale"`
}

// ProgressStatus is the aggregate progress across live sessions.
type ProgressStatus struct {
	// example: 1048576
	Total int64 `json:"total" example:"1048576"`
	// Whether any live session reported a size.
	Sized bool `json:"sized"`
	// example: 524288
	Progress int64 `json:"progress" example:"524288"`
	// example: 50
	Percent float64 `json:"percent" example:"50"`
	// Activity counter advanced while no total was known.
	Steps int64 `json:"steps"`
	// example: multi=2
	Title string `json:"title,omitempty" example:"multi=2"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Number of transfers in state running.
	// example: 1
	Running int `json:"running" example:"1"`
	// Total transfers started since boot.
	// example: 7
	Started int `json:"started" example:"7"`
	Progress ProgressStatus  `json:"progress"`
	Sessions []SessionStatus `json:"sessions"`
	// Number of sessions flagged stale.
	// example: 0
	StaleSessions int `json:"stale_sessions" example:"0"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
