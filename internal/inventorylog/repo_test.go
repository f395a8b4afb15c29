package inventorylog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/supplysync/supplysync-backend/pkg/db/models"
	"github.com/supplysync/supplysync-backend/pkg/enums"
	"github.com/supplysync/supplysync-backend/pkg/pagination"
)

func setupLogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS inventory_logs (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  quantity_change INTEGER NOT NULL,
  action TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedLogRow(t *testing.T, db *gorm.DB, productID string, action enums.InventoryAction, change int, at time.Time) models.InventoryLog {
	t.Helper()
	row := models.InventoryLog{
		ID:             uuid.New(),
		ProductID:      productID,
		UserID:         uuid.New(),
		QuantityChange: change,
		Action:         action,
		CreatedAt:      at,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepositoryListPaginatesNewestFirst(t *testing.T) {
	db := setupLogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var seeded []models.InventoryLog
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedLogRow(t, db, "507f1f77bcf86cd799439011", enums.InventoryActionRestock, 10+i, base.Add(time.Duration(i)*time.Minute)))
	}

	first, cursor, err := repo.List(ctx, pagination.Params{Limit: 2}, Filters{})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, cursor)
	assert.Equal(t, seeded[4].ID, first[0].ID)
	assert.Equal(t, seeded[3].ID, first[1].ID)

	second, cursor, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: cursor}, Filters{})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, seeded[2].ID, second[0].ID)
	assert.Equal(t, seeded[1].ID, second[1].ID)

	third, cursor, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: cursor}, Filters{})
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.Empty(t, cursor)
	assert.Equal(t, seeded[0].ID, third[0].ID)
}

func TestRepositoryListAppliesFilters(t *testing.T) {
	db := setupLogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedLogRow(t, db, "507f1f77bcf86cd799439011", enums.InventoryActionRestock, 40, base)
	seedLogRow(t, db, "507f1f77bcf86cd799439011", enums.InventoryActionSale, -2, base.Add(time.Minute))
	seedLogRow(t, db, "507f1f77bcf86cd799439022", enums.InventoryActionSale, -1, base.Add(2*time.Minute))

	action := enums.InventoryActionSale
	rows, cursor, err := repo.List(ctx, pagination.Params{Limit: 10}, Filters{
		ProductID: "507f1f77bcf86cd799439011",
		Action:    &action,
	})
	require.NoError(t, err)
	assert.Empty(t, cursor)
	require.Len(t, rows, 1)
	assert.Equal(t, -2, rows[0].QuantityChange)
}

func TestRepositoryListRejectsGarbageCursor(t *testing.T) {
	db := setupLogTestDB(t)
	repo := NewRepository(db)

	_, _, err := repo.List(context.Background(), pagination.Params{Limit: 10, Cursor: "%%%not-base64%%%"}, Filters{})
	require.Error(t, err)
}

func TestRepositoryCreateAppendsBatch(t *testing.T) {
	db := setupLogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	entries := []models.InventoryLog{
		{ID: uuid.New(), ProductID: "507f1f77bcf86cd799439011", UserID: uuid.New(), QuantityChange: -3, Action: enums.InventoryActionSale, CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), ProductID: "507f1f77bcf86cd799439022", UserID: uuid.New(), QuantityChange: -1, Action: enums.InventoryActionSale, CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.Create(ctx, entries))

	var count int64
	require.NoError(t, db.Model(&models.InventoryLog{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
