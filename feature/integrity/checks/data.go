package checks

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// orphanQueries count child rows whose parent row is gone.
var orphanQueries = map[string]string{
	"item_tags": `SELECT COUNT(*) AS n FROM item_tags
		LEFT JOIN items ON items.id = item_tags.item_id
		LEFT JOIN tags ON tags.id = item_tags.tag_id
		WHERE items.id IS NULL OR tags.id IS NULL`,
	"item_types": `SELECT COUNT(*) AS n FROM item_types
		LEFT JOIN items ON items.id = item_types.item_id
		LEFT JOIN types ON types.id = item_types.type_id
		WHERE items.id IS NULL OR types.id IS NULL`,
	"item_sales": `SELECT COUNT(*) AS n FROM item_sales
		LEFT JOIN items ON items.id = item_sales.item_id
		LEFT JOIN vendors ON vendors.id = item_sales.vendor_id
		WHERE items.id IS NULL OR vendors.id IS NULL`,
	"item_keys": `SELECT COUNT(*) AS n FROM item_keys
		LEFT JOIN items ON items.id = item_keys.item_id
		WHERE items.id IS NULL`,
	"sync_cursors": `SELECT COUNT(*) AS n FROM sync_cursors
		LEFT JOIN items ON items.id = sync_cursors.item_id
		WHERE items.id IS NULL`,
}

// DataReport lists row-level inconsistencies of the catalog.
type DataReport struct {
	// Orphans maps a child table to its rows without a parent.
	Orphans map[string]int `json:"orphans"`
	// Uncursored counts items the given pass never wrote.
	Uncursored int `json:"uncursored"`
	// Sample holds up to sampleSize external ids of uncursored items.
	Sample []string `json:"sample"`
	Pass   string   `json:"pass"`
}

const sampleSize = 20

// CheckData counts orphaned child rows and items without a cursor for pass.
func CheckData(ctx context.Context, db *gorm.DB, pass string) (*DataReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &DataReport{Orphans: make(map[string]int, len(orphanQueries)), Sample: []string{}, Pass: pass}
	for table, query := range orphanQueries {
		var n int64
		if err := db.WithContext(ctx).Raw(query).Scan(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count orphans of %s: %w", table, err)
		}
		report.Orphans[table] = int(n)
	}

	uncursored := db.WithContext(ctx).
		Table("items").
		Joins("LEFT JOIN sync_cursors ON sync_cursors.item_id = items.id AND sync_cursors.pass = ?", pass).
		Where("sync_cursors.id IS NULL").
		Session(&gorm.Session{})

	var count int64
	if err := uncursored.Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count uncursored items: %w", err)
	}
	report.Uncursored = int(count)

	if count > 0 {
		if err := uncursored.
			Order("items.external_id").
			Limit(sampleSize).
			Pluck("items.external_id", &report.Sample).Error; err != nil {
			return nil, fmt.Errorf("failed to sample uncursored items: %w", err)
		}
	}

	return report, nil
}

// Clean reports whether no inconsistency was found.
func (r *DataReport) Clean() bool {
	for _, n := range r.Orphans {
		if n > 0 {
			return false
		}
	}
	return r.Uncursored == 0
}
