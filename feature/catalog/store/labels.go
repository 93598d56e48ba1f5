package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-sync/core/reconcile"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Kind is a label table.
type Kind string

const (
	KindTag    Kind = "tag"
	KindType   Kind = "type"
	KindVendor Kind = "vendor"
)

// Table returns the table holding labels of this kind.
func (k Kind) Table() string {
	switch k {
	case KindTag:
		return "tags"
	case KindType:
		return "types"
	case KindVendor:
		return "vendors"
	default:
		return ""
	}
}

// maxLookupAttempts bounds create/lookup rounds for one label name.
const maxLookupAttempts = 3

type label struct {
	ID   uint
	Name string
}

// Labels resolves label names to ids, creating missing labels.
// Calls for the same (kind, name) are collapsed in-process; the unique index on
// name settles races with other processes.
type Labels struct {
	db    *gorm.DB
	group singleflight.Group
}

// NewLabels creates a resolver over db.
func NewLabels(db *gorm.DB) *Labels {
	return &Labels{db: db}
}

// Resolve returns the ids of names in first-seen order, without duplicates.
// Blank names are ignored.
func (l *Labels) Resolve(ctx context.Context, kind Kind, names []string) ([]uint, error) {
	if kind.Table() == "" {
		return nil, fmt.Errorf("unknown label kind %q", kind)
	}

	seen := make(map[string]struct{}, len(names))
	ids := make([]uint, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		id, err := l.FindOrCreate(ctx, kind, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FindOrCreate returns the id of the label named name.
func (l *Labels) FindOrCreate(ctx context.Context, kind Kind, name string) (uint, error) {
	v, err, _ := l.group.Do(string(kind)+"\x00"+name, func() (any, error) {
		return l.findOrCreate(ctx, kind, name)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint), nil
}

func (l *Labels) findOrCreate(ctx context.Context, kind Kind, name string) (uint, error) {
	db := l.db.WithContext(ctx)
	table := kind.Table()

	var lastErr error
	for attempt := 0; attempt < maxLookupAttempts; attempt++ {
		var found label
		err := db.Table(table).Where("name = ?", name).Take(&found).Error
		if err == nil {
			return found.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("failed to look up %s %q: %w", kind, name, err)
		}

		created := label{Name: name}
		err = db.Table(table).Create(&created).Error
		if err == nil {
			return created.ID, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("failed to create %s %q: %w", kind, name, err)
		}
		// Someone else created it between our lookup and insert; look it up again.
		lastErr = &reconcile.LookupConflictError{Kind: string(kind), Name: name, Err: err}
	}
	return 0, lastErr
}
