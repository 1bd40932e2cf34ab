package ports

import (
	"context"

	"xlmongo/domain/tabular"
)

// DocumentStore reads and writes schema-less documents in one collection
type DocumentStore interface {
	// InsertDocuments inserts docs as a single batch and returns how many were stored
	InsertDocuments(ctx context.Context, docs []tabular.Document) (int, error)
	// FindDocuments returns every document without its storage identifier,
	// fields in stored order
	FindDocuments(ctx context.Context) ([]tabular.Document, error)
}

// StoreFactory opens the DocumentStore for a database and collection
type StoreFactory interface {
	Collection(database, collection string) DocumentStore
}
