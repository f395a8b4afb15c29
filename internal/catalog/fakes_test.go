package catalog

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/supplysync/supplysync-backend/pkg/logger"
	"github.com/supplysync/supplysync-backend/pkg/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var errTest = errors.New("backing store unavailable")

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "catalog-test", Output: io.Discard})
}

func testAddress() types.Address {
	return types.Address{Street: "1 Dock Rd", City: "Oakland", State: "CA", Zip: "94607"}
}

type fakeProductRepo struct {
	products map[primitive.ObjectID]*Product

	insertErr error
	findErr   error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[primitive.ObjectID]*Product)}
}

func (f *fakeProductRepo) Insert(ctx context.Context, product *Product) (primitive.ObjectID, error) {
	if f.insertErr != nil {
		return primitive.NilObjectID, f.insertErr
	}
	id := product.ID
	if id.IsZero() {
		id = primitive.NewObjectID()
	}
	cpy := *product
	cpy.ID = id
	f.products[id] = &cpy
	return id, nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	product, ok := f.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cpy := *product
	return &cpy, nil
}

func (f *fakeProductRepo) FindAll(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepo) FindLowStock(ctx context.Context) ([]Product, error) {
	var out []Product
	for _, p := range f.products {
		for _, wh := range p.Warehouses {
			if wh.Quantity < wh.ReorderThreshold {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeProductRepo) FindBySupplier(ctx context.Context, supplierID primitive.ObjectID) ([]Product, error) {
	var out []Product
	for _, p := range f.products {
		if p.SupplierID == supplierID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) FindByWarehouse(ctx context.Context, warehouseID primitive.ObjectID) ([]Product, error) {
	var out []Product
	for _, p := range f.products {
		for _, wh := range p.Warehouses {
			if wh.WarehouseID == warehouseID {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeProductRepo) CountByWarehouse(ctx context.Context, warehouseID primitive.ObjectID) (int64, error) {
	products, _ := f.FindByWarehouse(ctx, warehouseID)
	return int64(len(products)), nil
}

func (f *fakeProductRepo) ExistsBySKU(ctx context.Context, sku string, excludeID primitive.ObjectID) (bool, error) {
	for id, p := range f.products {
		if p.SKU == sku && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProductRepo) Replace(ctx context.Context, id primitive.ObjectID, product *Product) (int64, error) {
	if _, ok := f.products[id]; !ok {
		return 0, nil
	}
	cpy := *product
	cpy.ID = id
	f.products[id] = &cpy
	return 1, nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := f.products[id]; !ok {
		return 0, nil
	}
	delete(f.products, id)
	return 1, nil
}

type fakeSupplierRepo struct {
	suppliers map[primitive.ObjectID]*Supplier

	refErr error
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{suppliers: make(map[primitive.ObjectID]*Supplier)}
}

func (f *fakeSupplierRepo) add(supplier *Supplier) primitive.ObjectID {
	if supplier.ID.IsZero() {
		supplier.ID = primitive.NewObjectID()
	}
	f.suppliers[supplier.ID] = supplier
	return supplier.ID
}

func (f *fakeSupplierRepo) Insert(ctx context.Context, supplier *Supplier) (primitive.ObjectID, error) {
	cpy := *supplier
	return f.add(&cpy), nil
}

func (f *fakeSupplierRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Supplier, error) {
	supplier, ok := f.suppliers[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cpy := *supplier
	cpy.ProductsSupplied = append([]primitive.ObjectID(nil), supplier.ProductsSupplied...)
	return &cpy, nil
}

func (f *fakeSupplierRepo) FindAll(ctx context.Context) ([]Supplier, error) {
	out := make([]Supplier, 0, len(f.suppliers))
	for _, s := range f.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSupplierRepo) ExistsByEmail(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	for id, s := range f.suppliers {
		if s.ContactEmail == email && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSupplierRepo) Replace(ctx context.Context, id primitive.ObjectID, supplier *Supplier) (int64, error) {
	if _, ok := f.suppliers[id]; !ok {
		return 0, nil
	}
	cpy := *supplier
	cpy.ID = id
	f.suppliers[id] = &cpy
	return 1, nil
}

func (f *fakeSupplierRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := f.suppliers[id]; !ok {
		return 0, nil
	}
	delete(f.suppliers, id)
	return 1, nil
}

func (f *fakeSupplierRepo) AddProductRef(ctx context.Context, supplierID, productID primitive.ObjectID) (int64, error) {
	if f.refErr != nil {
		return 0, f.refErr
	}
	supplier, ok := f.suppliers[supplierID]
	if !ok {
		return 0, nil
	}
	for _, id := range supplier.ProductsSupplied {
		if id == productID {
			return 0, nil
		}
	}
	supplier.ProductsSupplied = append(supplier.ProductsSupplied, productID)
	return 1, nil
}

func (f *fakeSupplierRepo) RemoveProductRef(ctx context.Context, supplierID, productID primitive.ObjectID) (int64, error) {
	if f.refErr != nil {
		return 0, f.refErr
	}
	supplier, ok := f.suppliers[supplierID]
	if !ok {
		return 0, nil
	}
	kept := supplier.ProductsSupplied[:0]
	var removed int64
	for _, id := range supplier.ProductsSupplied {
		if id == productID {
			removed++
			continue
		}
		kept = append(kept, id)
	}
	supplier.ProductsSupplied = kept
	if removed > 0 {
		return 1, nil
	}
	return 0, nil
}

type fakeWarehouseRepo struct {
	warehouses map[primitive.ObjectID]*Warehouse
}

func newFakeWarehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{warehouses: make(map[primitive.ObjectID]*Warehouse)}
}

func (f *fakeWarehouseRepo) add(warehouse *Warehouse) primitive.ObjectID {
	if warehouse.ID.IsZero() {
		warehouse.ID = primitive.NewObjectID()
	}
	f.warehouses[warehouse.ID] = warehouse
	return warehouse.ID
}

func (f *fakeWarehouseRepo) Insert(ctx context.Context, warehouse *Warehouse) (primitive.ObjectID, error) {
	cpy := *warehouse
	return f.add(&cpy), nil
}

func (f *fakeWarehouseRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Warehouse, error) {
	warehouse, ok := f.warehouses[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cpy := *warehouse
	return &cpy, nil
}

func (f *fakeWarehouseRepo) FindAll(ctx context.Context) ([]Warehouse, error) {
	out := make([]Warehouse, 0, len(f.warehouses))
	for _, w := range f.warehouses {
		out = append(out, *w)
	}
	return out, nil
}

func (f *fakeWarehouseRepo) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := f.warehouses[id]; ok {
			count++
		}
	}
	return count, nil
}

func (f *fakeWarehouseRepo) ExistsByLocationCode(ctx context.Context, code string, excludeID primitive.ObjectID) (bool, error) {
	for id, w := range f.warehouses {
		if w.LocationCode == code && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWarehouseRepo) Replace(ctx context.Context, id primitive.ObjectID, warehouse *Warehouse) (int64, error) {
	if _, ok := f.warehouses[id]; !ok {
		return 0, nil
	}
	cpy := *warehouse
	cpy.ID = id
	f.warehouses[id] = &cpy
	return 1, nil
}

func (f *fakeWarehouseRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := f.warehouses[id]; !ok {
		return 0, nil
	}
	delete(f.warehouses, id)
	return 1, nil
}

func seedSupplier(repo *fakeSupplierRepo, email string) primitive.ObjectID {
	return repo.add(&Supplier{
		Name:             "Acme Wholesale",
		ContactEmail:     email,
		Phone:            "555-0100",
		Address:          testAddress(),
		ProductsSupplied: []primitive.ObjectID{},
		CreatedAt:        time.Now().UTC(),
	})
}

func seedWarehouse(repo *fakeWarehouseRepo, code string) primitive.ObjectID {
	return repo.add(&Warehouse{
		Name:         "Bay Hub",
		LocationCode: code,
		Address:      testAddress(),
		Capacity:     1000,
		CreatedAt:    time.Now().UTC(),
	})
}

func baseProductInput(supplierID, warehouseID primitive.ObjectID) CreateProductInput {
	return CreateProductInput{
		Name:        "Pallet Jack",
		SKU:         "PJ-1000",
		Category:    "Equipment",
		Description: "Manual pallet jack, 2500kg",
		Price:       decimal.RequireFromString("349.99"),
		SupplierID:  supplierID.Hex(),
		Warehouses: []WarehouseInventoryInput{
			{WarehouseID: warehouseID.Hex(), Quantity: 12, ReorderThreshold: 4},
		},
	}
}
