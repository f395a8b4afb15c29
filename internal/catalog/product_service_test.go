package catalog

import (
	"context"
	"testing"

	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newProductService(t *testing.T, products *fakeProductRepo, suppliers *fakeSupplierRepo, warehouses *fakeWarehouseRepo) ProductService {
	t.Helper()
	svc, err := NewProductService(products, suppliers, warehouses, testLogger())
	if err != nil {
		t.Fatalf("new product service: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func TestCreateProductSuccess(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	supplierID := seedSupplier(suppliers, "acme@example.com")
	warehouseID := seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	input := baseProductInput(supplierID, warehouseID)
	dto, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if dto.ID == "" {
		t.Fatal("expected generated id")
	}
	if dto.SupplierID != supplierID.Hex() {
		t.Fatalf("expected supplier %s, got %s", supplierID.Hex(), dto.SupplierID)
	}
	if len(dto.Warehouses) != 1 || dto.Warehouses[0].WarehouseID != warehouseID.Hex() {
		t.Fatalf("warehouse references not preserved: %+v", dto.Warehouses)
	}
	if !dto.Price.Equal(input.Price) {
		t.Fatalf("expected price %s, got %s", input.Price, dto.Price)
	}
}

func TestCreateProductDanglingSupplier(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	warehouseID := seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	input := baseProductInput(primitive.NewObjectID(), warehouseID)
	_, err := svc.Create(context.Background(), input)
	expectCode(t, err, pkgerrors.CodeInvalidReference)

	if len(products.products) != 0 {
		t.Fatal("no product document should be created on a failed reference check")
	}
}

func TestCreateProductDanglingWarehouse(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	supplierID := seedSupplier(suppliers, "acme@example.com")
	seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	input := baseProductInput(supplierID, primitive.NewObjectID())
	_, err := svc.Create(context.Background(), input)
	expectCode(t, err, pkgerrors.CodeInvalidReference)
}

func TestCreateProductMalformedID(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	svc := newProductService(t, products, suppliers, warehouses)

	input := baseProductInput(primitive.NewObjectID(), primitive.NewObjectID())
	input.SupplierID = "not-a-hex-id"
	_, err := svc.Create(context.Background(), input)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	supplierID := seedSupplier(suppliers, "acme@example.com")
	warehouseID := seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	input := baseProductInput(supplierID, warehouseID)
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), input)
	expectCode(t, err, pkgerrors.CodeDuplicateKey)
}

func TestCreateProductMaintainsBackrefSetSemantics(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	supplierID := seedSupplier(suppliers, "acme@example.com")
	warehouseID := seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	dto, err := svc.Create(context.Background(), baseProductInput(supplierID, warehouseID))
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	supplier := suppliers.suppliers[supplierID]
	count := 0
	for _, id := range supplier.ProductsSupplied {
		if id.Hex() == dto.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected back-reference exactly once, got %d", count)
	}
}

func TestCreateProductSucceedsWhenBackrefFails(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	supplierID := seedSupplier(suppliers, "acme@example.com")
	warehouseID := seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	input := baseProductInput(supplierID, warehouseID)
	suppliers.refErr = errTest
	dto, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create should succeed despite back-reference failure: %v", err)
	}
	if dto == nil || dto.ID == "" {
		t.Fatal("expected created product")
	}
}

func TestUpdateProductSwitchesSupplierBackrefs(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	oldSupplier := seedSupplier(suppliers, "old@example.com")
	newSupplier := seedSupplier(suppliers, "new@example.com")
	warehouseID := seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	dto, err := svc.Create(context.Background(), baseProductInput(oldSupplier, warehouseID))
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	updated := baseProductInput(newSupplier, warehouseID)
	if _, err := svc.Update(context.Background(), dto.ID, updated); err != nil {
		t.Fatalf("update product: %v", err)
	}

	productID, _ := primitive.ObjectIDFromHex(dto.ID)
	for _, id := range suppliers.suppliers[oldSupplier].ProductsSupplied {
		if id == productID {
			t.Fatal("old supplier still references the product")
		}
	}
	found := false
	for _, id := range suppliers.suppliers[newSupplier].ProductsSupplied {
		if id == productID {
			found = true
		}
	}
	if !found {
		t.Fatal("new supplier missing the product reference")
	}
}

func TestUpdateProductDuplicateSKUExcludesSelf(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	supplierID := seedSupplier(suppliers, "acme@example.com")
	warehouseID := seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	dto, err := svc.Create(context.Background(), baseProductInput(supplierID, warehouseID))
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	// Re-submitting the same SKU for the same product is not a collision.
	if _, err := svc.Update(context.Background(), dto.ID, baseProductInput(supplierID, warehouseID)); err != nil {
		t.Fatalf("update with own sku: %v", err)
	}

	other := baseProductInput(supplierID, warehouseID)
	other.SKU = "PJ-2000"
	if _, err := svc.Create(context.Background(), other); err != nil {
		t.Fatalf("create second product: %v", err)
	}

	conflicting := baseProductInput(supplierID, warehouseID)
	conflicting.SKU = "PJ-2000"
	_, err = svc.Update(context.Background(), dto.ID, conflicting)
	expectCode(t, err, pkgerrors.CodeDuplicateKey)
}

func TestDeleteProductTwice(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	supplierID := seedSupplier(suppliers, "acme@example.com")
	warehouseID := seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	dto, err := svc.Create(context.Background(), baseProductInput(supplierID, warehouseID))
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := svc.Delete(context.Background(), dto.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	err = svc.Delete(context.Background(), dto.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteProductRemovesBackref(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	supplierID := seedSupplier(suppliers, "acme@example.com")
	warehouseID := seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	dto, err := svc.Create(context.Background(), baseProductInput(supplierID, warehouseID))
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := svc.Delete(context.Background(), dto.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if len(suppliers.suppliers[supplierID].ProductsSupplied) != 0 {
		t.Fatal("supplier back-reference not removed on delete")
	}
}

func TestListLowStock(t *testing.T) {
	products := newFakeProductRepo()
	suppliers := newFakeSupplierRepo()
	warehouses := newFakeWarehouseRepo()
	supplierID := seedSupplier(suppliers, "acme@example.com")
	warehouseID := seedWarehouse(warehouses, "OAK-01")
	svc := newProductService(t, products, suppliers, warehouses)

	healthy := baseProductInput(supplierID, warehouseID)
	if _, err := svc.Create(context.Background(), healthy); err != nil {
		t.Fatalf("create healthy product: %v", err)
	}

	low := baseProductInput(supplierID, warehouseID)
	low.SKU = "PJ-3000"
	low.Warehouses[0].Quantity = 2
	low.Warehouses[0].ReorderThreshold = 5
	lowDTO, err := svc.Create(context.Background(), low)
	if err != nil {
		t.Fatalf("create low stock product: %v", err)
	}

	result, err := svc.ListLowStock(context.Background())
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(result) != 1 || result[0].ID != lowDTO.ID {
		t.Fatalf("expected only the low stock product, got %+v", result)
	}
}

func TestGetProductMalformedID(t *testing.T) {
	svc := newProductService(t, newFakeProductRepo(), newFakeSupplierRepo(), newFakeWarehouseRepo())
	_, err := svc.GetByID(context.Background(), "zzzz")
	expectCode(t, err, pkgerrors.CodeValidation)
}
