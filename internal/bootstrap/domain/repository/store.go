package repository

import (
	"context"
	"time"

	"pnregistry-dbinit/internal/bootstrap/domain/model"
)

// Connector opens a live connection to the database server. One call is one
// connection attempt; retrying is the caller's business.
type Connector interface {
	Connect(ctx context.Context) (Store, error)
}

// Store is the connection handle the initializer owns for the run. It only
// exposes what the bootstrap needs.
type Store interface {
	ListDatabaseNames(ctx context.Context) ([]string, error)
	ListCollectionNames(ctx context.Context, database string) ([]string, error)
	CreateCollection(ctx context.Context, database, collection string) error
	// CreateIndex creates an ascending single-field index and returns its name.
	CreateIndex(ctx context.Context, database, collection, field string) (string, error)
	InsertOne(ctx context.Context, database, collection string, document interface{}) error
	Disconnect(ctx context.Context) error
}

// SeedSource provides the record inserted into a fresh collection
type SeedSource interface {
	Load() (model.Record, error)
}

// Locker guards a bootstrap run against a concurrent run on the same target.
type Locker interface {
	// Acquire returns false without error when another holder owns key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
