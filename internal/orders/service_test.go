package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/supplysync/supplysync-backend/internal/catalog"
	"github.com/supplysync/supplysync-backend/internal/inventorylog"
	"github.com/supplysync/supplysync-backend/pkg/db/models"
	"github.com/supplysync/supplysync-backend/pkg/enums"
	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/pagination"
	"github.com/supplysync/supplysync-backend/pkg/types"
	"gorm.io/gorm"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrderRepo struct {
	byID    map[uuid.UUID]*models.Order
	updates map[string]any
}

func newStubOrderRepo(seed ...*models.Order) *stubOrderRepo {
	repo := &stubOrderRepo{byID: make(map[uuid.UUID]*models.Order)}
	for _, order := range seed {
		repo.byID[order.ID] = order
	}
	return repo
}

func (r *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	r.byID[order.ID] = order
	return order, nil
}

func (r *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := r.byID[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range r.byID {
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		rows = append(rows, *order)
	}
	return rows, "", nil
}

func (r *stubOrderRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	r.updates = updates
	if order, ok := r.byID[id]; ok {
		if name, ok := updates["customer_name"].(string); ok {
			order.CustomerName = name
		}
		if status, ok := updates["payment_status"].(enums.PaymentStatus); ok {
			order.PaymentStatus = status
		}
	}
	return nil
}

func (r *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if order, ok := r.byID[id]; ok {
		order.Status = status
	}
	return nil
}

func (r *stubOrderRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, ok := r.byID[id]; !ok {
		return 0, nil
	}
	delete(r.byID, id)
	return 1, nil
}

type stubLogRepo struct {
	entries []models.InventoryLog
}

func (r *stubLogRepo) WithTx(tx *gorm.DB) inventorylog.Repository { return r }

func (r *stubLogRepo) Create(ctx context.Context, entries []models.InventoryLog) error {
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *stubLogRepo) List(ctx context.Context, params pagination.Params, filters inventorylog.Filters) ([]models.InventoryLog, string, error) {
	return r.entries, "", nil
}

type stubCatalog struct {
	products map[string]*catalog.ProductDTO
}

func (c *stubCatalog) GetByID(ctx context.Context, id string) (*catalog.ProductDTO, error) {
	if product, ok := c.products[id]; ok {
		return product, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type stubNumberer struct {
	seq int64
}

func (n *stubNumberer) Next(ctx context.Context) (string, error) {
	n.seq++
	return fmt.Sprintf("ORD-%06d", n.seq), nil
}

const (
	productA = "507f1f77bcf86cd799439011"
	productB = "507f1f77bcf86cd799439012"
)

func testShipping() types.Address {
	return types.Address{Street: "1 Dock Rd", City: "Springfield", State: "IL", Zip: "62701"}
}

func buildTestService(t *testing.T, repo *stubOrderRepo, logs *stubLogRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:        stubTxRunner{},
		OrderRepo: repo,
		LogRepo:   logs,
		ProductCatalog: &stubCatalog{products: map[string]*catalog.ProductDTO{
			productA: {ID: productA, SKU: "PJ-1000", Price: decimal.RequireFromString("10.50")},
			productB: {ID: productB, SKU: "PJ-2000", Price: decimal.RequireFromString("5.25")},
		}},
		Numberer: &stubNumberer{},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected a coded error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("code = %s, want %s", typed.Code(), code)
	}
}

func baseRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:  "Pat Smith",
		CustomerEmail: "pat@example.com",
		CustomerPhone: "555-0100",
		Shipping:      testShipping(),
		Items: []OrderItemInput{
			{ProductID: productA, Quantity: 2},
			{ProductID: productB, Quantity: 1},
		},
	}
}

func TestCreateOrderComputesTotalsAndLogsSales(t *testing.T) {
	repo := newStubOrderRepo()
	logs := &stubLogRepo{}
	svc := buildTestService(t, repo, logs)
	userID := uuid.New()

	order, err := svc.Create(context.Background(), userID, baseRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !order.Total.Equal(decimal.RequireFromString("26.25")) {
		t.Fatalf("total = %s, want 26.25", order.Total)
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("initial statuses = %s/%s", order.Status, order.PaymentStatus)
	}
	if order.OrderNumber != "ORD-000001" {
		t.Fatalf("order number = %q", order.OrderNumber)
	}
	if len(order.Items) != 2 || order.Items[0].SKU != "PJ-1000" {
		t.Fatalf("items = %+v", order.Items)
	}
	if !order.Items[0].Subtotal.Equal(decimal.RequireFromString("21.00")) {
		t.Fatalf("subtotal = %s", order.Items[0].Subtotal)
	}

	if len(logs.entries) != 2 {
		t.Fatalf("sale logs = %d", len(logs.entries))
	}
	if logs.entries[0].Action != enums.InventoryActionSale || logs.entries[0].QuantityChange != -2 {
		t.Fatalf("first log = %+v", logs.entries[0])
	}
	if logs.entries[0].UserID != userID {
		t.Fatal("sale log missing acting user")
	}
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	repo := newStubOrderRepo()
	logs := &stubLogRepo{}
	svc := buildTestService(t, repo, logs)

	req := baseRequest()
	req.Items = []OrderItemInput{{ProductID: "ffffffffffffffffffffffff", Quantity: 1}}

	_, err := svc.Create(context.Background(), uuid.New(), req)
	expectCode(t, err, pkgerrors.CodeInvalidReference)
	if len(repo.byID) != 0 {
		t.Fatal("order persisted despite unknown product")
	}
	if len(logs.entries) != 0 {
		t.Fatal("sale logs written despite failure")
	}
}

func TestCreateOrderRejectsZeroQuantity(t *testing.T) {
	svc := buildTestService(t, newStubOrderRepo(), &stubLogRepo{})

	req := baseRequest()
	req.Items[0].Quantity = 0

	_, err := svc.Create(context.Background(), uuid.New(), req)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	repo := newStubOrderRepo(order)
	svc := buildTestService(t, repo, &stubLogRepo{})

	updated, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("status = %s", updated.Status)
	}

	_, err = svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPending)
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdateStatusSkipsStages(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	svc := buildTestService(t, newStubOrderRepo(order), &stubLogRepo{})

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusCompleted)
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestDeleteCompletedOrderBlocked(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusCompleted}
	repo := newStubOrderRepo(order)
	svc := buildTestService(t, repo, &stubLogRepo{})

	err := svc.Delete(context.Background(), order.ID)
	expectCode(t, err, pkgerrors.CodeConflict)
	if len(repo.byID) != 1 {
		t.Fatal("completed order removed")
	}
}

func TestDeletePendingOrder(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	repo := newStubOrderRepo(order)
	svc := buildTestService(t, repo, &stubLogRepo{})

	if err := svc.Delete(context.Background(), order.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatal("order still present")
	}

	err := svc.Delete(context.Background(), order.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetUnknownOrder(t *testing.T) {
	svc := buildTestService(t, newStubOrderRepo(), &stubLogRepo{})

	_, err := svc.GetByID(context.Background(), uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateOrderPaymentStatus(t *testing.T) {
	order := &models.Order{
		ID:            uuid.New(),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
	}
	repo := newStubOrderRepo(order)
	svc := buildTestService(t, repo, &stubLogRepo{})

	paid := enums.PaymentStatusPaid
	updated, err := svc.Update(context.Background(), order.ID, UpdateOrderRequest{
		CustomerName:  "Pat Smith",
		CustomerEmail: "pat@example.com",
		CustomerPhone: "555-0100",
		Shipping:      testShipping(),
		PaymentStatus: &paid,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("payment status = %s", updated.PaymentStatus)
	}
}
