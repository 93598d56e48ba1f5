// Package catalog exposes catalog synchronization over HTTP.
//
// Routes:
//
//	POST /sync/run?force=true&pass=prices   start a run in the background (202, 409 while one is active)
//	GET  /sync/status                       running flag, current run id and the last report
//	GET  /sync/runs?limit=50                recorded pass summaries, newest first
//
// The persistence, remote clients and passes live in the subpackages; sync holds
// the runner and scheduler this package triggers.
package catalog
