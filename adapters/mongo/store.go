package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"xlmongo/domain/tabular"
	"xlmongo/internal/logging"
	"xlmongo/ports"
)

// Client wraps a connected MongoDB client
type Client struct {
	client *mongo.Client
	logger *zap.Logger
}

// Connect opens a client for uri and verifies the server answers
func Connect(ctx context.Context, uri string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", redactURI(uri), err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach %s: %w", redactURI(uri), err)
	}

	logger.Debug("connected to document store", zap.String("uri", redactURI(uri)))
	return &Client{client: client, logger: logger}, nil
}

// Collection returns the store for one database collection
func (c *Client) Collection(database, collection string) ports.DocumentStore {
	return &collectionStore{
		coll:   c.client.Database(database).Collection(collection),
		logger: c.logger.With(zap.String("database", database), zap.String("collection", collection)),
	}
}

// Disconnect closes the client
func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// collectionStore implements ports.DocumentStore
type collectionStore struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// InsertDocuments inserts docs with one InsertMany call
func (s *collectionStore) InsertDocuments(ctx context.Context, docs []tabular.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	batch := make([]interface{}, len(docs))
	for i, doc := range docs {
		batch[i] = ToBSON(doc)
	}

	res, err := s.coll.InsertMany(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %d documents: %w", len(docs), err)
	}

	logging.FromContext(ctx, s.logger).Debug("documents inserted", zap.Int("count", len(res.InsertedIDs)))
	return len(res.InsertedIDs), nil
}

// FindDocuments reads every document, excluding _id
func (s *collectionStore) FindDocuments(ctx context.Context) ([]tabular.Document, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}})
	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []tabular.Document
	for cursor.Next(ctx) {
		var raw bson.D
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, FromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	logging.FromContext(ctx, s.logger).Debug("documents read", zap.Int("count", len(docs)))
	return docs, nil
}
