package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/supplysync/supplysync-backend/api/middleware"
	"github.com/supplysync/supplysync-backend/internal/orders"
	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/enums"
	"github.com/supplysync/supplysync-backend/pkg/types"
)

type stubOrderService struct {
	created     []orders.CreateOrderRequest
	createdBy   []uuid.UUID
	statusCalls []enums.OrderStatus
	listParams  *orders.ListParams
	order       *orders.OrderDTO
	err         error
}

func (s *stubOrderService) Create(ctx context.Context, userID uuid.UUID, req orders.CreateOrderRequest) (*orders.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, req)
	s.createdBy = append(s.createdBy, userID)
	return s.order, nil
}

func (s *stubOrderService) GetByID(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrderService) List(ctx context.Context, params orders.ListParams) (*orders.OrderList, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.listParams = &params
	return &orders.OrderList{}, nil
}

func (s *stubOrderService) Update(ctx context.Context, id uuid.UUID, req orders.UpdateOrderRequest) (*orders.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*orders.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.statusCalls = append(s.statusCalls, next)
	return s.order, nil
}

func (s *stubOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func orderRequestBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	payload := orders.CreateOrderRequest{
		CustomerName:  "Ada Nguyen",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "555-0100",
		Shipping: types.Address{
			Street: "1 Dock Rd",
			City:   "Portland",
			State:  "OR",
			Zip:    "97201",
		},
		Items: []orders.OrderItemInput{
			{ProductID: "507f1f77bcf86cd799439011", Quantity: 2},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return bytes.NewBuffer(raw)
}

func TestCreateOrderRequiresUserContext(t *testing.T) {
	logg := testLogger()
	svc := &stubOrderService{}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", orderRequestBody(t))
	rec := httptest.NewRecorder()
	CreateOrder(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user context, got %d", rec.Code)
	}
	if len(svc.created) != 0 {
		t.Fatalf("expected no create call without user context")
	}
}

func TestCreateOrderPassesRequester(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()
	svc := &stubOrderService{order: &orders.OrderDTO{ID: uuid.New(), OrderNumber: "ORD-000001"}}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", orderRequestBody(t))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	CreateOrder(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.createdBy) != 1 || svc.createdBy[0] != userID {
		t.Fatalf("expected order attributed to requester")
	}
}

func TestGetOrderRejectsMalformedID(t *testing.T) {
	logg := testLogger()
	svc := &stubOrderService{}

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "not-a-uuid")
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/not-a-uuid", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	GetOrder(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestListOrdersParsesFilters(t *testing.T) {
	logg := testLogger()
	svc := &stubOrderService{}

	req := httptest.NewRequest(http.MethodGet, "/api/orders?limit=10&status=processing&payment_status=paid", nil)
	rec := httptest.NewRecorder()
	ListOrders(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.listParams == nil {
		t.Fatalf("expected list call")
	}
	if svc.listParams.Limit != 10 {
		t.Fatalf("expected limit 10, got %d", svc.listParams.Limit)
	}
	if svc.listParams.Status == nil || *svc.listParams.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing status filter")
	}
	if svc.listParams.PaymentStatus == nil || *svc.listParams.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid payment filter")
	}
}

func TestListOrdersRejectsUnknownStatus(t *testing.T) {
	logg := testLogger()
	svc := &stubOrderService{}

	req := httptest.NewRequest(http.MethodGet, "/api/orders?status=shipped", nil)
	rec := httptest.NewRecorder()
	ListOrders(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
	if svc.listParams != nil {
		t.Fatalf("expected no list call for unknown status")
	}
}

func TestUpdateOrderStatusMapsConflict(t *testing.T) {
	logg := testLogger()
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeConflict, "cannot move order from completed to pending")}
	orderID := uuid.New()

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", orderID.String())
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)

	body := bytes.NewBufferString(`{"status":"pending"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID.String()+"/status", body)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	UpdateOrderStatus(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
