package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// lowStockFilter matches products with at least one warehouse record whose
// quantity fell below its reorder threshold. The server only accepts $expr
// at the top level of the filter, so the per-element comparison is phrased
// as $anyElementTrue over a $map of the Warehouses array.
var lowStockFilter = bson.D{{Key: "$expr", Value: bson.D{{Key: "$anyElementTrue", Value: bson.D{
	{Key: "$map", Value: bson.D{
		{Key: "input", Value: "$Warehouses"},
		{Key: "as", Value: "wh"},
		{Key: "in", Value: bson.D{{Key: "$lt", Value: bson.A{"$$wh.Quantity", "$$wh.ReorderThreshold"}}}},
	}},
}}}}}

// ProductRepository handles product document persistence.
type ProductRepository struct {
	col *mongo.Collection
}

// NewProductRepository binds a Mongo collection to product operations.
func NewProductRepository(col *mongo.Collection) *ProductRepository {
	return &ProductRepository{col: col}
}

// Insert persists a new product document and returns its generated id.
func (r *ProductRepository) Insert(ctx context.Context, product *Product) (primitive.ObjectID, error) {
	if product == nil {
		return primitive.NilObjectID, fmt.Errorf("product is required")
	}
	res, err := r.col.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid, nil
}

// FindByID loads a product document.
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	var product Product
	if err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAll returns every product document.
func (r *ProductRepository) FindAll(ctx context.Context) ([]Product, error) {
	return r.find(ctx, bson.D{})
}

// FindLowStock returns products with at least one under-threshold warehouse record.
func (r *ProductRepository) FindLowStock(ctx context.Context) ([]Product, error) {
	return r.find(ctx, lowStockFilter)
}

// FindBySupplier returns products whose supplier reference matches the id.
func (r *ProductRepository) FindBySupplier(ctx context.Context, supplierID primitive.ObjectID) ([]Product, error) {
	return r.find(ctx, bson.D{{Key: "SupplierId", Value: supplierID}})
}

// FindByWarehouse returns products carrying a stock record for the warehouse.
func (r *ProductRepository) FindByWarehouse(ctx context.Context, warehouseID primitive.ObjectID) ([]Product, error) {
	filter := bson.D{{Key: "Warehouses", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: "WarehouseId", Value: warehouseID},
	}}}}}
	return r.find(ctx, filter)
}

// CountByWarehouse counts products referencing the warehouse.
func (r *ProductRepository) CountByWarehouse(ctx context.Context, warehouseID primitive.ObjectID) (int64, error) {
	filter := bson.D{{Key: "Warehouses", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: "WarehouseId", Value: warehouseID},
	}}}}}
	return r.col.CountDocuments(ctx, filter)
}

// ExistsBySKU reports whether another product already uses the SKU.
func (r *ProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.D{{Key: "SKU", Value: sku}}
	if !excludeID.IsZero() {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}})
	}
	count, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Replace overwrites the full product document and returns the matched count.
func (r *ProductRepository) Replace(ctx context.Context, id primitive.ObjectID, product *Product) (int64, error) {
	if product == nil {
		return 0, fmt.Errorf("product is required")
	}
	res, err := r.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, product)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes the product document and returns the deleted count.
func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.D) ([]Product, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SupplierRepository handles supplier document persistence.
type SupplierRepository struct {
	col *mongo.Collection
}

// NewSupplierRepository binds a Mongo collection to supplier operations.
func NewSupplierRepository(col *mongo.Collection) *SupplierRepository {
	return &SupplierRepository{col: col}
}

// Insert persists a new supplier document and returns its generated id.
func (r *SupplierRepository) Insert(ctx context.Context, supplier *Supplier) (primitive.ObjectID, error) {
	if supplier == nil {
		return primitive.NilObjectID, fmt.Errorf("supplier is required")
	}
	res, err := r.col.InsertOne(ctx, supplier)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid, nil
}

// FindByID loads a supplier document.
func (r *SupplierRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Supplier, error) {
	var supplier Supplier
	if err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// FindAll returns every supplier document.
func (r *SupplierRepository) FindAll(ctx context.Context) ([]Supplier, error) {
	cursor, err := r.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var suppliers []Supplier
	if err := cursor.All(ctx, &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// ExistsByEmail reports whether another supplier already uses the contact email.
func (r *SupplierRepository) ExistsByEmail(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.D{{Key: "ContactEmail", Value: email}}
	if !excludeID.IsZero() {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}})
	}
	count, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Replace overwrites the full supplier document and returns the matched count.
func (r *SupplierRepository) Replace(ctx context.Context, id primitive.ObjectID, supplier *Supplier) (int64, error) {
	if supplier == nil {
		return 0, fmt.Errorf("supplier is required")
	}
	res, err := r.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, supplier)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes the supplier document and returns the deleted count.
func (r *SupplierRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddProductRef adds the product id to the supplier back-reference list with
// set semantics and returns the modified count.
func (r *SupplierRepository) AddProductRef(ctx context.Context, supplierID, productID primitive.ObjectID) (int64, error) {
	update := bson.D{{Key: "$addToSet", Value: bson.D{{Key: "ProductsSupplied", Value: productID}}}}
	res, err := r.col.UpdateOne(ctx, bson.D{{Key: "_id", Value: supplierID}}, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// RemoveProductRef removes the product id from the supplier back-reference
// list and returns the modified count.
func (r *SupplierRepository) RemoveProductRef(ctx context.Context, supplierID, productID primitive.ObjectID) (int64, error) {
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "ProductsSupplied", Value: productID}}}}
	res, err := r.col.UpdateOne(ctx, bson.D{{Key: "_id", Value: supplierID}}, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// WarehouseRepository handles warehouse document persistence.
type WarehouseRepository struct {
	col *mongo.Collection
}

// NewWarehouseRepository binds a Mongo collection to warehouse operations.
func NewWarehouseRepository(col *mongo.Collection) *WarehouseRepository {
	return &WarehouseRepository{col: col}
}

// Insert persists a new warehouse document and returns its generated id.
func (r *WarehouseRepository) Insert(ctx context.Context, warehouse *Warehouse) (primitive.ObjectID, error) {
	if warehouse == nil {
		return primitive.NilObjectID, fmt.Errorf("warehouse is required")
	}
	res, err := r.col.InsertOne(ctx, warehouse)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid, nil
}

// FindByID loads a warehouse document.
func (r *WarehouseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Warehouse, error) {
	var warehouse Warehouse
	if err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&warehouse); err != nil {
		return nil, err
	}
	return &warehouse, nil
}

// FindAll returns every warehouse document.
func (r *WarehouseRepository) FindAll(ctx context.Context) ([]Warehouse, error) {
	cursor, err := r.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var warehouses []Warehouse
	if err := cursor.All(ctx, &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

// CountByIDs counts warehouses whose id is in the provided set.
func (r *WarehouseRepository) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}
	return r.col.CountDocuments(ctx, filter)
}

// ExistsByLocationCode reports whether another warehouse already uses the code.
func (r *WarehouseRepository) ExistsByLocationCode(ctx context.Context, code string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.D{{Key: "LocationCode", Value: code}}
	if !excludeID.IsZero() {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}})
	}
	count, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Replace overwrites the full warehouse document and returns the matched count.
func (r *WarehouseRepository) Replace(ctx context.Context, id primitive.ObjectID, warehouse *Warehouse) (int64, error) {
	if warehouse == nil {
		return 0, fmt.Errorf("warehouse is required")
	}
	res, err := r.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, warehouse)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes the warehouse document and returns the deleted count.
func (r *WarehouseRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
