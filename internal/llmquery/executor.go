package llmquery

import (
	"context"

	"github.com/supplysync/supplysync-backend/internal/catalog"
	mongoclient "github.com/supplysync/supplysync-backend/pkg/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// StoreExecutor runs bridge-generated filters against the document store.
type StoreExecutor struct {
	db *mongo.Database
}

// NewStoreExecutor binds a Mongo database handle to bridge query execution.
func NewStoreExecutor(db *mongo.Database) *StoreExecutor {
	return &StoreExecutor{db: db}
}

// FindProducts runs the filter against the typed product representation.
func (e *StoreExecutor) FindProducts(ctx context.Context, filter bson.D) ([]catalog.Product, error) {
	cursor, err := e.db.Collection(mongoclient.CollectionProducts).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []catalog.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindRaw runs the filter against an arbitrary collection and returns the
// matched documents in their generic representation.
func (e *StoreExecutor) FindRaw(ctx context.Context, collection string, filter bson.D) ([]bson.D, error) {
	cursor, err := e.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
