// Package lock provides the run lock that keeps sync runs from overlapping.
//
// A tick that cannot acquire the lock is skipped rather than queued. The memory
// backend is enough for a single process; the redis backend uses SET NX PX with a
// random token and a compare-and-delete release so replicas share one lock.
package lock
