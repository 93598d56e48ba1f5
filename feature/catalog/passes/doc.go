// Package passes defines the five catalog reconciliation passes.
//
// Each pass is a reconcile.Job over one remote dataset:
//
//	identities  tarkov.dev items          creates items, writes name and short name
//	metadata    tarkov-market PvE + PvP   creates items, writes market fields and tags
//	types       tarkov.dev item types     replaces item type labels
//	keys        tarkov.dev keys           writes the uses counter
//	prices      tarkov.dev sell offers    patches vendor offers in place
//
// Only identities and metadata create items. The others fail unknown ids as record
// errors, which is why Order runs the creating passes first.
//
// Every pass keeps its own cursor per item, so a fresh identity stamp never hides a
// stale market record.
package passes
