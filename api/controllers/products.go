package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/supplysync/supplysync-backend/api/middleware"
	"github.com/supplysync/supplysync-backend/api/responses"
	"github.com/supplysync/supplysync-backend/api/validators"
	"github.com/supplysync/supplysync-backend/internal/catalog"
	"github.com/supplysync/supplysync-backend/internal/inventorylog"
	"github.com/supplysync/supplysync-backend/pkg/enums"
	"github.com/supplysync/supplysync-backend/pkg/logger"
)

func CreateProduct(svc catalog.ProductService, audit inventorylog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload catalog.CreateProductInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recordStockChange(r, audit, logg, product.ID, initialQuantity(product), enums.InventoryActionRestock, "initial stock")
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func GetProduct(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ListProducts(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func ListLowStockProducts(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func UpdateProduct(svc catalog.ProductService, audit inventorylog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var payload catalog.CreateProductInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		before, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if delta := initialQuantity(product) - initialQuantity(before); delta != 0 {
			recordStockChange(r, audit, logg, product.ID, delta, enums.InventoryActionAdjustment, "stock updated")
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func initialQuantity(product *catalog.ProductDTO) int {
	if product == nil {
		return 0
	}
	total := 0
	for _, wh := range product.Warehouses {
		total += wh.Quantity
	}
	return total
}

// recordStockChange appends an audit row. The catalog write already
// happened, so a failed append is logged and never fails the request.
func recordStockChange(r *http.Request, audit inventorylog.Service, logg *logger.Logger, productID string, change int, action enums.InventoryAction, notes string) {
	if audit == nil || change == 0 {
		return
	}
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return
	}
	err = audit.Record(r.Context(), []inventorylog.Entry{{
		ProductID:      productID,
		UserID:         userID,
		QuantityChange: change,
		Action:         action,
		Notes:          notes,
	}})
	if err != nil && logg != nil {
		ctx := logg.WithFields(r.Context(), map[string]any{"product_id": productID})
		logg.Warn(ctx, "inventory audit row not recorded")
	}
}
