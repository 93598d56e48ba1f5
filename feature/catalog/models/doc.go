// Package models defines the gorm models of the local catalog store.
//
// Items are keyed by their BSG id (external_id). Tags, types and vendors are
// immortal label tables; item_tags and item_types are owned by their item and
// replaced wholesale, item_sales rows are patched in place. sync_cursors keeps the
// last applied remote timestamp per item and pass, sync_runs the run history.
package models
