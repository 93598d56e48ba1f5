package passes

import (
	"context"
	"time"

	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog/store"

	"gorm.io/gorm"
)

// cascadeFunc writes the child rows of one item inside the record transaction.
type cascadeFunc func(tx *gorm.DB, itemID uint) error

// itemTarget is the reconcile.Target shared by every pass: all passes write items
// keyed by external id and differ only in creation rights and cascades.
type itemTarget[R any] struct {
	store *store.Store
	pass  string

	// create lets the pass insert unseen items; other passes fail them.
	create bool

	// prepare runs before the transaction opens (label resolution) and returns
	// the cascade to apply inside it. May be nil.
	prepare func(ctx context.Context, rec R) (cascadeFunc, error)
}

func (t *itemTarget[R]) LoadIndex(ctx context.Context) (map[string]reconcile.Row, error) {
	return t.store.ItemIndex(ctx, t.pass)
}

func (t *itemTarget[R]) Apply(ctx context.Context, key string, row reconcile.Row, rec R, updates map[string]any, syncedAt time.Time) (bool, error) {
	var cascade cascadeFunc
	if t.prepare != nil {
		c, err := t.prepare(ctx, rec)
		if err != nil {
			return false, err
		}
		cascade = c
	}

	inserted := false
	err := t.store.Tx(ctx, func(tx *gorm.DB) error {
		var (
			id  uint
			err error
		)
		if t.create {
			id, inserted, err = store.EnsureItem(tx, key, row)
		} else if id = row.ID; id == 0 {
			id, err = store.ItemID(tx, key)
		}
		if err != nil {
			return err
		}

		if err := store.UpdateItem(tx, id, updates); err != nil {
			return err
		}
		if cascade != nil {
			if err := cascade(tx, id); err != nil {
				return err
			}
		}
		return store.StampCursor(tx, id, t.pass, syncedAt)
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}
