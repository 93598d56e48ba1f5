package store

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog/models"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

var (
	selectTag = "SELECT \\* FROM `tags` WHERE name = .+ LIMIT .+"
	insertTag = regexp.QuoteMeta("INSERT INTO `tags`")
	duplicate = &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'Meds' for key 'name'"}
)

func TestLabels_Dedup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]uint, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := s.Labels.Resolve(ctx, KindTag, []string{"Meds", "Meds", " "})
			assert.NoError(t, err)
			if assert.Len(t, got, 1) {
				ids[i] = got[0]
			}
		}(i)
	}
	wg.Wait()

	var tags []models.Tag
	require.NoError(t, s.DB().Where("name = ?", "Meds").Find(&tags).Error)
	require.Len(t, tags, 1)
	for _, id := range ids {
		assert.Equal(t, tags[0].ID, id)
	}
}

func TestLabels_TwoResolvers(t *testing.T) {
	s := newTestStore(t)
	other := NewLabels(s.DB())
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, l := range []*Labels{s.Labels, other} {
		wg.Add(1)
		go func(l *Labels) {
			defer wg.Done()
			_, err := l.Resolve(ctx, KindVendor, []string{"Therapist", "Prapor"})
			assert.NoError(t, err)
		}(l)
	}
	wg.Wait()

	var count int64
	s.DB().Model(&models.Vendor{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestLabels_KindsAreSeparate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tagIDs, err := s.Labels.Resolve(ctx, KindTag, []string{"Barter"})
	require.NoError(t, err)
	typeIDs, err := s.Labels.Resolve(ctx, KindType, []string{"Barter", "Keys"})
	require.NoError(t, err)
	assert.Len(t, tagIDs, 1)
	assert.Len(t, typeIDs, 2)

	_, err = s.Labels.Resolve(ctx, Kind("color"), []string{"red"})
	assert.Error(t, err)
}

func TestLabels_ConflictRetriedAsLookup(t *testing.T) {
	db, mock := setupMockDB(t)
	labels := NewLabels(db)

	mock.ExpectQuery(selectTag).WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectBegin()
	mock.ExpectExec(insertTag).WillReturnError(duplicate)
	mock.ExpectRollback()
	mock.ExpectQuery(selectTag).WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "Meds"))

	id, err := labels.FindOrCreate(context.Background(), KindTag, "Meds")
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabels_ConflictExhausted(t *testing.T) {
	db, mock := setupMockDB(t)
	labels := NewLabels(db)

	for i := 0; i < maxLookupAttempts; i++ {
		mock.ExpectQuery(selectTag).WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
		mock.ExpectBegin()
		mock.ExpectExec(insertTag).WillReturnError(duplicate)
		mock.ExpectRollback()
	}

	_, err := labels.FindOrCreate(context.Background(), KindTag, "Meds")
	var conflict *reconcile.LookupConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Meds", conflict.Name)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabels_LookupError(t *testing.T) {
	db, mock := setupMockDB(t)
	labels := NewLabels(db)

	mock.ExpectQuery(selectTag).WillReturnError(assert.AnError)

	_, err := labels.FindOrCreate(context.Background(), KindTag, "Meds")
	assert.ErrorIs(t, err, assert.AnError)
}
