package inventorylog

import (
	"context"

	"github.com/supplysync/supplysync-backend/pkg/db/models"
	"github.com/supplysync/supplysync-backend/pkg/enums"
	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Filters narrow the inventory log listing.
type Filters struct {
	ProductID string
	Action    *enums.InventoryAction
}

// Repository defines persistence operations for inventory audit rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entries []models.InventoryLog) error
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.InventoryLog, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory log repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entries []models.InventoryLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// List returns audit rows newest first using a keyset cursor on
// (created_at, id).
func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.InventoryLog, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.InventoryLog{})
	if filters.ProductID != "" {
		query = query.Where("product_id = ?", filters.ProductID)
	}
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse cursor")
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.InventoryLog
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return rows, nextCursor, nil
}
