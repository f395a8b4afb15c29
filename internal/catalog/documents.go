package catalog

import (
	"time"

	"github.com/supplysync/supplysync-backend/pkg/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document structs mirror the stored element names exactly. The query
// bridge prompt describes this layout to the model, so the PascalCase
// names are part of the external contract, not a style choice.

// Product is the stored catalog document.
type Product struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"Name"`
	SKU         string               `bson:"SKU"`
	Category    string               `bson:"Category"`
	Description string               `bson:"Description"`
	Price       primitive.Decimal128 `bson:"Price"`
	SupplierID  primitive.ObjectID   `bson:"SupplierId"`
	Warehouses  []WarehouseInventory `bson:"Warehouses"`
	CreatedAt   time.Time            `bson:"CreatedAt"`
	UpdatedAt   time.Time            `bson:"UpdatedAt"`
}

// WarehouseInventory is a per-warehouse stock record embedded in Product.
type WarehouseInventory struct {
	WarehouseID      primitive.ObjectID `bson:"WarehouseId"`
	Quantity         int                `bson:"Quantity"`
	ReorderThreshold int                `bson:"ReorderThreshold"`
}

// Supplier is the stored supplier document. ProductsSupplied is a
// denormalized back-reference list maintained alongside product writes.
type Supplier struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	Name             string               `bson:"Name"`
	ContactEmail     string               `bson:"ContactEmail"`
	Phone            string               `bson:"Phone"`
	Address          types.Address        `bson:"Address"`
	ProductsSupplied []primitive.ObjectID `bson:"ProductsSupplied"`
	CreatedAt        time.Time            `bson:"CreatedAt"`
}

// Warehouse is the stored warehouse document. CurrentUtilization is
// derived at read time by summing product quantities; the stored field
// survives for documents written by older clients.
type Warehouse struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Name               string             `bson:"Name"`
	LocationCode       string             `bson:"LocationCode"`
	Address            types.Address      `bson:"Address"`
	Capacity           int                `bson:"Capacity"`
	CurrentUtilization int                `bson:"CurrentUtilization"`
	CreatedAt          time.Time          `bson:"CreatedAt"`
}
