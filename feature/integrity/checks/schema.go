package checks

import (
	"fmt"
	"sort"
	"sync"

	"catalog-sync/core/database"
	"catalog-sync/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SchemaReport strictly types the result of a schema integrity check.
type SchemaReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// CheckSchema verifies the catalog tables using the gorm models as the source of truth.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Driver:  db.Dialector.Name(),
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	cache := &sync.Map{}
	for _, model := range models.All() {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		if !db.Migrator().HasTable(s.Table) {
			report.Tables[s.Table] = TableReport{MissingColumns: []string{}, Status: "missing"}
			report.Matched = false
			continue
		}

		actualCols, err := database.GetTableColumns(db, s.Table)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", s.Table, err))
			report.Matched = false
			continue
		}

		actual := make(map[string]struct{}, len(actualCols))
		for _, col := range actualCols {
			actual[col.Field] = struct{}{}
		}

		tbl := TableReport{MissingColumns: []string{}, Status: "ok"}
		for _, col := range s.DBNames {
			if _, ok := actual[col]; !ok {
				tbl.MissingColumns = append(tbl.MissingColumns, col)
			}
		}
		if len(tbl.MissingColumns) > 0 {
			sort.Strings(tbl.MissingColumns)
			tbl.Status = "error"
			report.Matched = false
		}
		report.Tables[s.Table] = tbl
	}

	return report, nil
}
