package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductDTO exposes a catalog product in API responses.
type ProductDTO struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	SKU         string                  `json:"sku"`
	Category    string                  `json:"category"`
	Description string                  `json:"description"`
	Price       decimal.Decimal         `json:"price"`
	SupplierID  string                  `json:"supplierId"`
	Warehouses  []WarehouseInventoryDTO `json:"warehouses"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// WarehouseInventoryDTO is a per-warehouse stock record in API responses.
type WarehouseInventoryDTO struct {
	WarehouseID      string `json:"warehouseId"`
	Quantity         int    `json:"quantity"`
	ReorderThreshold int    `json:"reorderThreshold"`
}

// SupplierDTO exposes a supplier in API responses.
type SupplierDTO struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	ContactEmail     string        `json:"contactEmail"`
	Phone            string        `json:"phone"`
	Address          types.Address `json:"address"`
	ProductsSupplied []string      `json:"productsSupplied"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// WarehouseDTO exposes a warehouse in API responses. CurrentUtilization is
// computed from product quantities when the warehouse is loaded.
type WarehouseDTO struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	LocationCode       string        `json:"locationCode"`
	Address            types.Address `json:"address"`
	Capacity           int           `json:"capacity"`
	CurrentUtilization int           `json:"currentUtilization"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// CreateProductInput captures creation-time product data.
type CreateProductInput struct {
	Name        string                    `json:"name" validate:"required"`
	SKU         string                    `json:"sku" validate:"required"`
	Category    string                    `json:"category" validate:"required"`
	Description string                    `json:"description" validate:"required"`
	Price       decimal.Decimal           `json:"price" validate:"required"`
	SupplierID  string                    `json:"supplierId" validate:"required"`
	Warehouses  []WarehouseInventoryInput `json:"warehouses" validate:"required,min=1,dive"`
}

// WarehouseInventoryInput is a requested per-warehouse stock record.
type WarehouseInventoryInput struct {
	WarehouseID      string `json:"warehouseId" validate:"required"`
	Quantity         int    `json:"quantity" validate:"gte=0"`
	ReorderThreshold int    `json:"reorderThreshold" validate:"gte=0"`
}

// CreateSupplierInput captures creation-time supplier data.
type CreateSupplierInput struct {
	Name         string        `json:"name" validate:"required"`
	ContactEmail string        `json:"contactEmail" validate:"required,email"`
	Phone        string        `json:"phone" validate:"required"`
	Address      types.Address `json:"address" validate:"required"`
}

// CreateWarehouseInput captures creation-time warehouse data.
type CreateWarehouseInput struct {
	Name         string        `json:"name" validate:"required"`
	LocationCode string        `json:"locationCode" validate:"required"`
	Address      types.Address `json:"address" validate:"required"`
	Capacity     int           `json:"capacity" validate:"gte=0"`
}

func priceToDecimal128(price decimal.Decimal) (primitive.Decimal128, error) {
	d, err := primitive.ParseDecimal128(price.String())
	if err != nil {
		return primitive.Decimal128{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	return d, nil
}

func decimal128ToPrice(value primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(value.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func productToDTO(p *Product) *ProductDTO {
	if p == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		SKU:         p.SKU,
		Category:    p.Category,
		Description: p.Description,
		Price:       decimal128ToPrice(p.Price),
		SupplierID:  p.SupplierID.Hex(),
		Warehouses:  make([]WarehouseInventoryDTO, 0, len(p.Warehouses)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, wh := range p.Warehouses {
		dto.Warehouses = append(dto.Warehouses, WarehouseInventoryDTO{
			WarehouseID:      wh.WarehouseID.Hex(),
			Quantity:         wh.Quantity,
			ReorderThreshold: wh.ReorderThreshold,
		})
	}
	return dto
}

// ProductsToDTOs maps stored products into their API representation.
func ProductsToDTOs(products []Product) []ProductDTO {
	return productsToDTOs(products)
}

func productsToDTOs(products []Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *productToDTO(&products[i]))
	}
	return dtos
}

func supplierToDTO(s *Supplier) *SupplierDTO {
	if s == nil {
		return nil
	}
	dto := &SupplierDTO{
		ID:               s.ID.Hex(),
		Name:             s.Name,
		ContactEmail:     s.ContactEmail,
		Phone:            s.Phone,
		Address:          s.Address,
		ProductsSupplied: make([]string, 0, len(s.ProductsSupplied)),
		CreatedAt:        s.CreatedAt,
	}
	for _, id := range s.ProductsSupplied {
		dto.ProductsSupplied = append(dto.ProductsSupplied, id.Hex())
	}
	return dto
}

func warehouseToDTO(w *Warehouse, utilization int) *WarehouseDTO {
	if w == nil {
		return nil
	}
	return &WarehouseDTO{
		ID:                 w.ID.Hex(),
		Name:               w.Name,
		LocationCode:       w.LocationCode,
		Address:            w.Address,
		Capacity:           w.Capacity,
		CurrentUtilization: utilization,
		CreatedAt:          w.CreatedAt,
	}
}
