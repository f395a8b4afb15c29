package inventorylog

import (
	"time"

	"github.com/google/uuid"
	"github.com/supplysync/supplysync-backend/pkg/db/models"
	"github.com/supplysync/supplysync-backend/pkg/enums"
)

// LogDTO is the transport shape for a single audit row.
type LogDTO struct {
	ID             uuid.UUID             `json:"id"`
	ProductID      string                `json:"product_id"`
	UserID         uuid.UUID             `json:"user_id"`
	QuantityChange int                   `json:"quantity_change"`
	Action         enums.InventoryAction `json:"action"`
	Notes          string                `json:"notes,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// LogList wraps the paginated rows plus the next page cursor.
type LogList struct {
	Logs       []LogDTO `json:"logs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

func FromModel(m *models.InventoryLog) *LogDTO {
	if m == nil {
		return nil
	}
	return &LogDTO{
		ID:             m.ID,
		ProductID:      m.ProductID,
		UserID:         m.UserID,
		QuantityChange: m.QuantityChange,
		Action:         m.Action,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
	}
}

func fromModels(rows []models.InventoryLog) []LogDTO {
	dtos := make([]LogDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos
}
