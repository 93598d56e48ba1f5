// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL, PostgreSQL or SQLite connections from the
// application's configuration. Every connection is opened with TranslateError so
// unique-constraint violations surface as gorm.ErrDuplicatedKey regardless of dialect.
//
// # Schema Inspection
//
// GetTableColumns reads the live column list of a table (SHOW COLUMNS, PRAGMA
// table_info or information_schema) so the integrity feature can compare it with
// the catalog models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "items")
package database
