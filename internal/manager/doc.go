// Package manager keeps the bookkeeping for transfers started through the
// daemon. It is structured into small files by concern:
//
//   - manager.go: Manager type, constructor, Start/Get/List/Cancel/Close.
//   - config.go: ManagerConfig and package defaults.
//   - errors.go: error types and helpers (IsTooBusy, IsTransferNotFound).
//   - status_report.go: aggregate Status for GET /status.
//
// Every transfer runs on its own goroutine through a shared fasp.Agent. A
// single progress.Aggregator, guarded by fasp.Synchronized, sums the live
// sessions of all of them.
package manager
