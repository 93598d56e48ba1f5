package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownItem is returned when a pass that cannot create items meets an unseen id.
var ErrUnknownItem = errors.New("item not found locally")

// Store is the gorm persistence of the catalog.
type Store struct {
	db     *gorm.DB
	Labels *Labels
}

// New creates a store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db, Labels: NewLabels(db)}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Tx runs fn inside one transaction; the record write is all-or-nothing.
func (s *Store) Tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

type indexRow struct {
	ID         uint
	ExternalID string
	SyncedAt   *time.Time
}

// ItemIndex loads external_id -> local row with the cursor of the given pass.
func (s *Store) ItemIndex(ctx context.Context, pass string) (map[string]reconcile.Row, error) {
	var rows []indexRow
	err := s.db.WithContext(ctx).
		Table("items").
		Select("items.id AS id, items.external_id AS external_id, sync_cursors.synced_at AS synced_at").
		Joins("LEFT JOIN sync_cursors ON sync_cursors.item_id = items.id AND sync_cursors.pass = ?", pass).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load item index for %s: %w", pass, err)
	}

	index := make(map[string]reconcile.Row, len(rows))
	for _, r := range rows {
		row := reconcile.Row{ID: r.ID}
		if r.SyncedAt != nil {
			t := r.SyncedAt.UTC()
			row.SyncedAt = &t
		}
		index[r.ExternalID] = row
	}
	return index, nil
}

// EnsureItem returns the id of the item with externalID, creating it with only the
// identity set when row does not carry one. inserted is true only for the creator.
func EnsureItem(tx *gorm.DB, externalID string, row reconcile.Row) (uint, bool, error) {
	if row.ID != 0 {
		return row.ID, false, nil
	}

	item := models.Item{ExternalID: externalID}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(&item)
	if res.Error != nil {
		return 0, false, fmt.Errorf("failed to create item %s: %w", externalID, res.Error)
	}
	if res.RowsAffected == 1 && item.ID != 0 {
		return item.ID, true, nil
	}

	// Lost the race against another writer: the row exists now.
	id, err := ItemID(tx, externalID)
	return id, false, err
}

// ItemID looks up an item by external id, returning ErrUnknownItem if absent.
func ItemID(tx *gorm.DB, externalID string) (uint, error) {
	var item models.Item
	err := tx.Select("id").Where("external_id = ?", externalID).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUnknownItem
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up item %s: %w", externalID, err)
	}
	return item.ID, nil
}

// UpdateItem writes the mapped columns of an item. An empty map is a no-op.
func UpdateItem(tx *gorm.DB, itemID uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := tx.Model(&models.Item{ID: itemID}).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update item %d: %w", itemID, err)
	}
	return nil
}

// StampCursor records that pass applied remote data up to syncedAt to the item.
func StampCursor(tx *gorm.DB, itemID uint, pass string, syncedAt time.Time) error {
	cursor := models.SyncCursor{ItemID: itemID, Pass: pass, SyncedAt: syncedAt.UTC()}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}, {Name: "pass"}},
		DoUpdates: clause.AssignmentColumns([]string{"synced_at"}),
	}).Create(&cursor).Error
	if err != nil {
		return fmt.Errorf("failed to stamp %s cursor of item %d: %w", pass, itemID, err)
	}
	return nil
}

// UpsertKeyUses sets the uses counter of a key item.
func UpsertKeyUses(tx *gorm.DB, itemID uint, uses int) error {
	key := models.Key{ItemID: itemID, Uses: uses}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"uses"}),
	}).Create(&key).Error
	if err != nil {
		return fmt.Errorf("failed to write key uses of item %d: %w", itemID, err)
	}
	return nil
}
