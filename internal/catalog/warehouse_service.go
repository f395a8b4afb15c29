package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type warehouseRepository interface {
	Insert(ctx context.Context, warehouse *Warehouse) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Warehouse, error)
	FindAll(ctx context.Context) ([]Warehouse, error)
	ExistsByLocationCode(ctx context.Context, code string, excludeID primitive.ObjectID) (bool, error)
	Replace(ctx context.Context, id primitive.ObjectID, warehouse *Warehouse) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type productsByWarehouseRepository interface {
	FindByWarehouse(ctx context.Context, warehouseID primitive.ObjectID) ([]Product, error)
	CountByWarehouse(ctx context.Context, warehouseID primitive.ObjectID) (int64, error)
}

// WarehouseService exposes warehouse operations.
type WarehouseService interface {
	Create(ctx context.Context, input CreateWarehouseInput) (*WarehouseDTO, error)
	GetByID(ctx context.Context, id string) (*WarehouseDTO, error)
	List(ctx context.Context) ([]WarehouseDTO, error)
	Update(ctx context.Context, id string, input CreateWarehouseInput) (*WarehouseDTO, error)
	Delete(ctx context.Context, id string) error
	ListProducts(ctx context.Context, id string) ([]ProductDTO, error)
}

type warehouseService struct {
	warehouses warehouseRepository
	products   productsByWarehouseRepository
	logg       *logger.Logger
}

// NewWarehouseService builds the warehouse service.
func NewWarehouseService(warehouses warehouseRepository, products productsByWarehouseRepository, logg *logger.Logger) (WarehouseService, error) {
	if warehouses == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &warehouseService{warehouses: warehouses, products: products, logg: logg}, nil
}

func (s *warehouseService) Create(ctx context.Context, input CreateWarehouseInput) (*WarehouseDTO, error) {
	code := strings.TrimSpace(input.LocationCode)

	exists, err := s.warehouses.ExistsByLocationCode(ctx, code, primitive.NilObjectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check location code")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateKey, "a warehouse with this location code already exists")
	}

	warehouse := &Warehouse{
		Name:         input.Name,
		LocationCode: code,
		Address:      input.Address,
		Capacity:     input.Capacity,
		CreatedAt:    time.Now().UTC(),
	}

	id, err := s.warehouses.Insert(ctx, warehouse)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert warehouse")
	}
	warehouse.ID = id
	return warehouseToDTO(warehouse, 0), nil
}

func (s *warehouseService) GetByID(ctx context.Context, id string) (*WarehouseDTO, error) {
	warehouse, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	utilization, err := s.utilization(ctx, warehouse.ID)
	if err != nil {
		return nil, err
	}
	return warehouseToDTO(warehouse, utilization), nil
}

func (s *warehouseService) List(ctx context.Context) ([]WarehouseDTO, error) {
	warehouses, err := s.warehouses.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warehouses")
	}
	dtos := make([]WarehouseDTO, 0, len(warehouses))
	for i := range warehouses {
		utilization, err := s.utilization(ctx, warehouses[i].ID)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *warehouseToDTO(&warehouses[i], utilization))
	}
	return dtos, nil
}

func (s *warehouseService) Update(ctx context.Context, id string, input CreateWarehouseInput) (*WarehouseDTO, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(input.LocationCode)
	if code != existing.LocationCode {
		exists, err := s.warehouses.ExistsByLocationCode(ctx, code, existing.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check location code")
		}
		if exists {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateKey, "a warehouse with this location code already exists")
		}
	}

	replacement := &Warehouse{
		ID:           existing.ID,
		Name:         input.Name,
		LocationCode: code,
		Address:      input.Address,
		Capacity:     input.Capacity,
		CreatedAt:    existing.CreatedAt,
	}

	matched, err := s.warehouses.Replace(ctx, existing.ID, replacement)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace warehouse")
	}
	if matched == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
	}

	utilization, err := s.utilization(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	return warehouseToDTO(replacement, utilization), nil
}

func (s *warehouseService) Delete(ctx context.Context, id string) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.products.CountByWarehouse(ctx, existing.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count referencing products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "warehouse is still referenced by products")
	}

	deleted, err := s.warehouses.Delete(ctx, existing.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete warehouse")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
	}
	return nil
}

func (s *warehouseService) ListProducts(ctx context.Context, id string) ([]ProductDTO, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindByWarehouse(ctx, existing.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warehouse products")
	}
	return productsToDTOs(products), nil
}

// utilization derives the warehouse utilization by summing the stored
// quantities of every product record naming this warehouse.
func (s *warehouseService) utilization(ctx context.Context, warehouseID primitive.ObjectID) (int, error) {
	products, err := s.products.FindByWarehouse(ctx, warehouseID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum warehouse quantities")
	}
	total := 0
	for i := range products {
		for _, wh := range products[i].Warehouses {
			if wh.WarehouseID == warehouseID {
				total += wh.Quantity
			}
		}
	}
	return total, nil
}

func (s *warehouseService) load(ctx context.Context, id string) (*Warehouse, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	warehouse, err := s.warehouses.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
	}
	return warehouse, nil
}
