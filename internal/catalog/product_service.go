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

type productRepository interface {
	Insert(ctx context.Context, product *Product) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	FindAll(ctx context.Context) ([]Product, error)
	FindLowStock(ctx context.Context) ([]Product, error)
	ExistsBySKU(ctx context.Context, sku string, excludeID primitive.ObjectID) (bool, error)
	Replace(ctx context.Context, id primitive.ObjectID, product *Product) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type supplierBackrefRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*Supplier, error)
	AddProductRef(ctx context.Context, supplierID, productID primitive.ObjectID) (int64, error)
	RemoveProductRef(ctx context.Context, supplierID, productID primitive.ObjectID) (int64, error)
}

type warehouseLookupRepository interface {
	CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// ProductService exposes catalog product operations.
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetByID(ctx context.Context, id string) (*ProductDTO, error)
	List(ctx context.Context) ([]ProductDTO, error)
	ListLowStock(ctx context.Context) ([]ProductDTO, error)
	Update(ctx context.Context, id string, input CreateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id string) error
}

type productService struct {
	products   productRepository
	suppliers  supplierBackrefRepository
	warehouses warehouseLookupRepository
	logg       *logger.Logger
}

// NewProductService builds the product service with its collaborating repositories.
func NewProductService(products productRepository, suppliers supplierBackrefRepository, warehouses warehouseLookupRepository, logg *logger.Logger) (ProductService, error) {
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if warehouses == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &productService{
		products:   products,
		suppliers:  suppliers,
		warehouses: warehouses,
		logg:       logg,
	}, nil
}

// validatedRefs holds the parsed supplier and warehouse references for a write.
type validatedRefs struct {
	supplierID primitive.ObjectID
	records    []WarehouseInventory
}

// checkReferences parses all entity references and verifies every one names
// an existing document. The warehouse check compares the distinct matched
// count against the distinct requested count; a mismatch means at least one
// id is dangling, without identifying which.
func (s *productService) checkReferences(ctx context.Context, input CreateProductInput) (*validatedRefs, error) {
	supplierID, err := parseID("supplierId", input.SupplierID)
	if err != nil {
		return nil, err
	}

	records := make([]WarehouseInventory, 0, len(input.Warehouses))
	distinct := make(map[primitive.ObjectID]struct{}, len(input.Warehouses))
	for _, wh := range input.Warehouses {
		warehouseID, err := parseID("warehouseId", wh.WarehouseID)
		if err != nil {
			return nil, err
		}
		records = append(records, WarehouseInventory{
			WarehouseID:      warehouseID,
			Quantity:         wh.Quantity,
			ReorderThreshold: wh.ReorderThreshold,
		})
		distinct[warehouseID] = struct{}{}
	}

	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, "supplier does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup supplier")
	}

	ids := make([]primitive.ObjectID, 0, len(distinct))
	for id := range distinct {
		ids = append(ids, id)
	}
	matched, err := s.warehouses.CountByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup warehouses")
	}
	if matched != int64(len(ids)) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, "one or more warehouses do not exist")
	}

	return &validatedRefs{supplierID: supplierID, records: records}, nil
}

func (s *productService) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	refs, err := s.checkReferences(ctx, input)
	if err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(input.SKU)
	exists, err := s.products.ExistsBySKU(ctx, sku, primitive.NilObjectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateKey, "a product with this SKU already exists")
	}

	price, err := priceToDecimal128(input.Price)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &Product{
		Name:        input.Name,
		SKU:         sku,
		Category:    input.Category,
		Description: input.Description,
		Price:       price,
		SupplierID:  refs.supplierID,
		Warehouses:  refs.records,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.products.Insert(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}
	product.ID = id

	// Best effort: the product write already committed, so a failed
	// back-reference update is logged and the create still succeeds.
	s.addBackref(ctx, refs.supplierID, id)

	return productToDTO(product), nil
}

func (s *productService) GetByID(ctx context.Context, id string) (*ProductDTO, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return productToDTO(product), nil
}

func (s *productService) List(ctx context.Context) ([]ProductDTO, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return productsToDTOs(products), nil
}

func (s *productService) ListLowStock(ctx context.Context) ([]ProductDTO, error) {
	products, err := s.products.FindLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock products")
	}
	return productsToDTOs(products), nil
}

func (s *productService) Update(ctx context.Context, id string, input CreateProductInput) (*ProductDTO, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	refs, err := s.checkReferences(ctx, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.products.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	sku := strings.TrimSpace(input.SKU)
	if sku != existing.SKU {
		exists, err := s.products.ExistsBySKU(ctx, sku, oid)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
		}
		if exists {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateKey, "a product with this SKU already exists")
		}
	}

	price, err := priceToDecimal128(input.Price)
	if err != nil {
		return nil, err
	}

	// Full replace: any field missing from the input is overwritten.
	replacement := &Product{
		ID:          oid,
		Name:        input.Name,
		SKU:         sku,
		Category:    input.Category,
		Description: input.Description,
		Price:       price,
		SupplierID:  refs.supplierID,
		Warehouses:  refs.records,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}

	matched, err := s.products.Replace(ctx, oid, replacement)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace product")
	}
	if matched == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	// Two independent updates; a crash in between leaves the old and new
	// supplier lists temporarily inconsistent.
	if existing.SupplierID != refs.supplierID {
		s.removeBackref(ctx, existing.SupplierID, oid)
		s.addBackref(ctx, refs.supplierID, oid)
	}

	return productToDTO(replacement), nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	oid, err := parseID("id", id)
	if err != nil {
		return err
	}

	existing, err := s.products.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	s.removeBackref(ctx, existing.SupplierID, oid)

	deleted, err := s.products.Delete(ctx, oid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *productService) addBackref(ctx context.Context, supplierID, productID primitive.ObjectID) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"supplier_id": supplierID.Hex(),
		"product_id":  productID.Hex(),
	})
	modified, err := s.suppliers.AddProductRef(ctx, supplierID, productID)
	if err != nil {
		s.logg.Error(ctx, "adding supplier back-reference failed", err)
		return
	}
	if modified == 0 {
		s.logg.Warn(ctx, "supplier back-reference not modified")
	}
}

func (s *productService) removeBackref(ctx context.Context, supplierID, productID primitive.ObjectID) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"supplier_id": supplierID.Hex(),
		"product_id":  productID.Hex(),
	})
	modified, err := s.suppliers.RemoveProductRef(ctx, supplierID, productID)
	if err != nil {
		s.logg.Error(ctx, "removing supplier back-reference failed", err)
		return
	}
	if modified == 0 {
		s.logg.Warn(ctx, "supplier back-reference not modified")
	}
}
