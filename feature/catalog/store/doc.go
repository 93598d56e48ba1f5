// Package store persists the catalog through gorm.
//
// Parent writes (EnsureItem, UpdateItem, StampCursor) and cascades (ReplaceItemTags,
// ReplaceItemTypes, PatchSales) take the record transaction so a pass can commit a
// record as one unit. Labels are resolved before that transaction opens: a label
// committed on its own is visible to every concurrent record and never rolled back.
package store
