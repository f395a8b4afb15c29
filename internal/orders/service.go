package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/supplysync/supplysync-backend/internal/catalog"
	"github.com/supplysync/supplysync-backend/internal/inventorylog"
	"github.com/supplysync/supplysync-backend/pkg/db/models"
	"github.com/supplysync/supplysync-backend/pkg/enums"
	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/pagination"
	redisclient "github.com/supplysync/supplysync-backend/pkg/redis"
	"gorm.io/gorm"
)

// Service defines the behavior needed by the orders controller.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, params ListParams) (*OrderList, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productCatalog interface {
	GetByID(ctx context.Context, id string) (*catalog.ProductDTO, error)
}

type orderNumberer interface {
	Next(ctx context.Context) (string, error)
}

type service struct {
	db      txRunner
	orders  Repository
	logs    inventorylog.Repository
	catalog productCatalog
	numbers orderNumberer
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	DB             txRunner
	OrderRepo      Repository
	LogRepo        inventorylog.Repository
	ProductCatalog productCatalog
	Numberer       orderNumberer
}

// NewService constructs an orders service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.LogRepo == nil {
		return nil, fmt.Errorf("inventory log repository is required")
	}
	if params.ProductCatalog == nil {
		return nil, fmt.Errorf("product catalog is required")
	}
	if params.Numberer == nil {
		return nil, fmt.Errorf("order numberer is required")
	}
	return &service{
		db:      params.DB,
		orders:  params.OrderRepo,
		logs:    params.LogRepo,
		catalog: params.ProductCatalog,
		numbers: params.Numberer,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	total := decimal.Zero
	items := make([]models.OrderLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		product, err := s.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeInvalidReference,
					fmt.Sprintf("unknown product %s", item.ProductID))
			}
			return nil, err
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		items = append(items, models.OrderLineItem{
			ProductID: item.ProductID,
			SKU:       product.SKU,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
	}

	orderNumber, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate order number")
	}

	order := &models.Order{
		OrderNumber:   orderNumber,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Total:         total,
		Shipping:      req.Shipping,
		Notes:         req.Notes,
		Items:         items,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		entries := make([]models.InventoryLog, 0, len(order.Items))
		for _, item := range order.Items {
			entries = append(entries, models.InventoryLog{
				ProductID:      item.ProductID,
				UserID:         userID,
				QuantityChange: -item.Quantity,
				Action:         enums.InventoryActionSale,
				Notes:          fmt.Sprintf("order %s", order.OrderNumber),
			})
		}
		if err := s.logs.WithTx(tx).Create(ctx, entries); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record sale logs")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return FromModel(order), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

// ListParams combines pagination with the supported filters.
type ListParams struct {
	Limit  int
	Cursor string
	Filters
}

func (s *service) List(ctx context.Context, params ListParams) (*OrderList, error) {
	rows, nextCursor, err := s.orders.List(ctx,
		pagination.Params{Limit: params.Limit, Cursor: params.Cursor}, params.Filters)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return &OrderList{Orders: fromModels(rows), NextCursor: nextCursor}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"customer_name":   req.CustomerName,
		"customer_email":  req.CustomerEmail,
		"customer_phone":  req.CustomerPhone,
		"shipping_street": req.Shipping.Street,
		"shipping_city":   req.Shipping.City,
		"shipping_state":  req.Shipping.State,
		"shipping_zip":    req.Shipping.Zip,
		"notes":           req.Notes,
	}
	if req.PaymentStatus != nil {
		if !req.PaymentStatus.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
		}
		updates["payment_status"] = *req.PaymentStatus
	}

	if err := s.orders.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
	}
	return s.GetByID(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}
	if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	order.Status = next
	return FromModel(order), nil
}

// Delete removes an order that never shipped. Completed orders are part of
// the audit trail and stay.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot delete a %s order", order.Status))
	}
	deleted, err := s.orders.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

// RedisNumberer allocates order numbers from a shared counter.
type RedisNumberer struct {
	redis *redisclient.Client
}

// NewRedisNumberer builds a numberer backed by the provided Redis client.
func NewRedisNumberer(client *redisclient.Client) (*RedisNumberer, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisNumberer{redis: client}, nil
}

// Next returns the next order number, zero padded for sortable display.
func (n *RedisNumberer) Next(ctx context.Context) (string, error) {
	seq, err := n.redis.Incr(ctx, n.redis.CounterKey("orders"))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%06d", seq), nil
}
