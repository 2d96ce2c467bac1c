package mongodb

import (
	"context"
	"fmt"

	"pnregistry-dbinit/internal/bootstrap/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store implements repository.Store on a connected *mongo.Client
type Store struct {
	client *mongo.Client
}

var _ repository.Store = (*Store)(nil)

// NewStore wraps an already connected client
func NewStore(client *mongo.Client) *Store {
	return &Store{client: client}
}

// ListDatabaseNames lists every database on the server
func (s *Store) ListDatabaseNames(ctx context.Context) ([]string, error) {
	names, err := s.client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return names, nil
}

// ListCollectionNames lists the collections of database
func (s *Store) ListCollectionNames(ctx context.Context, database string) ([]string, error) {
	names, err := s.client.Database(database).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections of %s: %w", database, err)
	}
	return names, nil
}

// CreateCollection explicitly creates collection, implicitly creating database
func (s *Store) CreateCollection(ctx context.Context, database, collection string) error {
	if err := s.client.Database(database).CreateCollection(ctx, collection); err != nil {
		return fmt.Errorf("create collection %s.%s: %w", database, collection, err)
	}
	return nil
}

// CreateIndex creates an ascending index on field and returns the index name
func (s *Store) CreateIndex(ctx context.Context, database, collection, field string) (string, error) {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
	}
	name, err := s.client.Database(database).Collection(collection).Indexes().CreateOne(ctx, model, options.CreateIndexes())
	if err != nil {
		return "", fmt.Errorf("create index on %s.%s(%s): %w", database, collection, field, err)
	}
	return name, nil
}

// InsertOne inserts document verbatim
func (s *Store) InsertOne(ctx context.Context, database, collection string, document interface{}) error {
	if _, err := s.client.Database(database).Collection(collection).InsertOne(ctx, document); err != nil {
		return fmt.Errorf("insert into %s.%s: %w", database, collection, err)
	}
	return nil
}

// Disconnect closes the underlying client
func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
