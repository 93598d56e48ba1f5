// Package sync runs the catalog passes as one unit and schedules them.
//
// A run takes the run lock, executes the requested passes in dependency order and
// stores one SyncRun row per pass. A pass that aborts does not stop the ones after
// it. Only one run is active at a time: a second trigger gets ErrRunInProgress and
// a scheduler tick that collides with a run is skipped.
//
// The scheduler performs a full run at start, with the price pass forced, and a
// price-only run on every tick after that.
package sync
