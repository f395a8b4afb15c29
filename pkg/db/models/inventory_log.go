package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/supplysync/supplysync-backend/pkg/enums"
)

// InventoryLog is an append-only audit row recorded whenever product stock
// changes. ProductID references the document-store product.
type InventoryLog struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID      string                `gorm:"column:product_id;type:char(24);not null;index"`
	UserID         uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	QuantityChange int                   `gorm:"column:quantity_change;not null"`
	Action         enums.InventoryAction `gorm:"column:action;type:text;not null"`
	Notes          string                `gorm:"column:notes;not null;default:''"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
}
