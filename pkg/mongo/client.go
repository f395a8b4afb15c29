package mongo

import (
	"context"
	"fmt"

	"github.com/supplysync/supplysync-backend/pkg/config"
	"github.com/supplysync/supplysync-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names are case-sensitive; the query bridge prompt promises
// exactly these spellings.
const (
	CollectionProducts   = "Products"
	CollectionSuppliers  = "Suppliers"
	CollectionWarehouses = "Warehouses"
)

// Client wraps the shared Mongo connection and database handle.
type Client struct {
	raw      *mongo.Client
	database *mongo.Database
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New connects to Mongo and verifies connectivity.
func New(ctx context.Context, cfg config.MongoConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo database name is required")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts = opts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	raw, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	if err := raw.Ping(ctx, readpref.Primary()); err != nil {
		_ = raw.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "mongo connection established")
	}

	return &Client{
		raw:      raw,
		database: raw.Database(cfg.Database),
	}, nil
}

// Database returns the configured database handle.
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Collection returns a handle for the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Products returns the products collection handle.
func (c *Client) Products() *mongo.Collection {
	return c.Collection(CollectionProducts)
}

// Suppliers returns the suppliers collection handle.
func (c *Client) Suppliers() *mongo.Collection {
	return c.Collection(CollectionSuppliers)
}

// Warehouses returns the warehouses collection handle.
func (c *Client) Warehouses() *mongo.Collection {
	return c.Collection(CollectionWarehouses)
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.raw.Ping(ctx, readpref.Primary())
}

// Close tears down the underlying connections.
func (c *Client) Close(ctx context.Context) error {
	return c.raw.Disconnect(ctx)
}
