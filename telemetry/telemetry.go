// Package telemetry implements the handful of atomic counters the CLI's
// stats subcommand reports: no exporter, no background flush, just
// process-lifetime counts a caller can read and print.
package telemetry

import "sync/atomic"

// Counters tallies sus-tool operations across a process's lifetime.
type Counters struct {
	SealsCreated    atomic.Int64
	WitnessesMinted atomic.Int64
	VerifySuccesses atomic.Int64
	VerifyFailures  atomic.Int64
}

// Global is the counter set used by cmd/sus-tool. A package-level instance
// keeps every subcommand invocation within one process accumulating into
// the same counters, the way the stats subcommand expects.
var Global Counters

// Snapshot is a point-in-time, render-friendly copy of Global's counts.
type Snapshot struct {
	SealsCreated    int64
	WitnessesMinted int64
	VerifySuccesses int64
	VerifyFailures  int64
}

// Snap reads Global's current counts.
func Snap() Snapshot {
	return Snapshot{
		SealsCreated:    Global.SealsCreated.Load(),
		WitnessesMinted: Global.WitnessesMinted.Load(),
		VerifySuccesses: Global.VerifySuccesses.Load(),
		VerifyFailures:  Global.VerifyFailures.Load(),
	}
}
