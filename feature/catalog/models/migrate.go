package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or alters the catalog tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return nil
}
