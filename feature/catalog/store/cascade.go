package store

import (
	"fmt"

	"catalog-sync/feature/catalog/models"

	"gorm.io/gorm"
)

// ReplaceItemTags makes tagIDs the exact tag set of the item.
func ReplaceItemTags(tx *gorm.DB, itemID uint, tagIDs []uint) error {
	if err := tx.Where("item_id = ?", itemID).Delete(&models.ItemTag{}).Error; err != nil {
		return fmt.Errorf("failed to clear tags of item %d: %w", itemID, err)
	}
	rows := make([]models.ItemTag, 0, len(tagIDs))
	for _, id := range distinct(tagIDs) {
		rows = append(rows, models.ItemTag{ItemID: itemID, TagID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert tags of item %d: %w", itemID, err)
	}
	return nil
}

// ReplaceItemTypes makes typeIDs the exact type set of the item.
func ReplaceItemTypes(tx *gorm.DB, itemID uint, typeIDs []uint) error {
	if err := tx.Where("item_id = ?", itemID).Delete(&models.ItemType{}).Error; err != nil {
		return fmt.Errorf("failed to clear types of item %d: %w", itemID, err)
	}
	rows := make([]models.ItemType, 0, len(typeIDs))
	for _, id := range distinct(typeIDs) {
		rows = append(rows, models.ItemType{ItemID: itemID, TypeID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert types of item %d: %w", itemID, err)
	}
	return nil
}

// Sale is one vendor offer to patch into item_sales.
type Sale struct {
	VendorID      uint
	Price         int
	Currency      string
	PriceOriginal int
}

// PatchResult counts what PatchSales did.
type PatchResult struct {
	Created   int
	Patched   int
	Unchanged int
}

// PatchSales creates missing (item, vendor) rows and updates only the fields that
// differ on existing ones. Rows are never deleted, so their ids survive every run.
func PatchSales(tx *gorm.DB, itemID uint, sales []Sale) (PatchResult, error) {
	var res PatchResult
	if len(sales) == 0 {
		return res, nil
	}

	var existing []models.ItemSale
	if err := tx.Where("item_id = ?", itemID).Find(&existing).Error; err != nil {
		return res, fmt.Errorf("failed to load sales of item %d: %w", itemID, err)
	}
	byVendor := make(map[uint]models.ItemSale, len(existing))
	for _, row := range existing {
		byVendor[row.VendorID] = row
	}

	for _, sale := range sales {
		row, ok := byVendor[sale.VendorID]
		if !ok {
			row = models.ItemSale{
				ItemID:        itemID,
				VendorID:      sale.VendorID,
				Price:         sale.Price,
				Currency:      sale.Currency,
				PriceOriginal: sale.PriceOriginal,
			}
			if err := tx.Create(&row).Error; err != nil {
				return res, fmt.Errorf("failed to create sale of item %d vendor %d: %w", itemID, sale.VendorID, err)
			}
			byVendor[sale.VendorID] = row
			res.Created++
			continue
		}

		changes := make(map[string]any, 3)
		if row.Price != sale.Price {
			changes["price"] = sale.Price
		}
		if row.Currency != sale.Currency {
			changes["currency"] = sale.Currency
		}
		if row.PriceOriginal != sale.PriceOriginal {
			changes["price_original"] = sale.PriceOriginal
		}
		if len(changes) == 0 {
			res.Unchanged++
			continue
		}
		if err := tx.Model(&models.ItemSale{ID: row.ID}).Updates(changes).Error; err != nil {
			return res, fmt.Errorf("failed to patch sale %d: %w", row.ID, err)
		}
		res.Patched++
	}
	return res, nil
}

func distinct(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
