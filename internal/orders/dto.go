package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/supplysync/supplysync-backend/pkg/db/models"
	"github.com/supplysync/supplysync-backend/pkg/enums"
	"github.com/supplysync/supplysync-backend/pkg/types"
)

// OrderItemInput is a single requested product line.
type OrderItemInput struct {
	ProductID string `json:"product_id" validate:"required,len=24,hexadecimal"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest captures the payload for placing an order.
type CreateOrderRequest struct {
	CustomerName  string           `json:"customer_name" validate:"required"`
	CustomerEmail string           `json:"customer_email" validate:"required,email"`
	CustomerPhone string           `json:"customer_phone" validate:"required"`
	Shipping      types.Address    `json:"shipping" validate:"required"`
	Notes         string           `json:"notes"`
	Items         []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest carries the mutable order fields. Line items and the
// fulfillment status have their own paths and are not editable here.
type UpdateOrderRequest struct {
	CustomerName  string               `json:"customer_name" validate:"required"`
	CustomerEmail string               `json:"customer_email" validate:"required,email"`
	CustomerPhone string               `json:"customer_phone" validate:"required"`
	Shipping      types.Address        `json:"shipping" validate:"required"`
	Notes         string               `json:"notes"`
	PaymentStatus *enums.PaymentStatus `json:"payment_status,omitempty"`
}

// UpdateStatusRequest moves an order through its lifecycle.
type UpdateStatusRequest struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
}

// Filters narrow the order listing.
type Filters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}

// LineItemDTO is the transport shape for an order line.
type LineItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDTO is the transport shape for a full order.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone string              `json:"customer_phone"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Total         decimal.Decimal     `json:"total"`
	Shipping      types.Address       `json:"shipping"`
	Notes         string              `json:"notes,omitempty"`
	Items         []LineItemDTO       `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	items := make([]LineItemDTO, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, LineItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return &OrderDTO{
		ID:            m.ID,
		OrderNumber:   m.OrderNumber,
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
		CustomerPhone: m.CustomerPhone,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		Total:         m.Total,
		Shipping:      m.Shipping,
		Notes:         m.Notes,
		Items:         items,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func fromModels(rows []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos
}
