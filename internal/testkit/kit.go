package testkit

import (
	"context"
	"sync"

	"xlmongo/domain/tabular"
	"xlmongo/ports"
)

// MemoryStore is an in-memory ports.DocumentStore. Documents are copied on
// the way in and out, and _id never appears.
type MemoryStore struct {
	mu   sync.Mutex
	docs []tabular.Document

	// InsertErr and FindErr, when set, are returned instead of doing the work
	InsertErr error
	FindErr   error
	// Batches records the size of every InsertDocuments call
	Batches []int
}

// NewMemoryStore creates a store holding docs
func NewMemoryStore(docs ...tabular.Document) *MemoryStore {
	s := &MemoryStore{}
	for _, d := range docs {
		s.docs = append(s.docs, cloneDocument(d))
	}
	return s
}

// InsertDocuments appends docs as one batch
func (s *MemoryStore) InsertDocuments(ctx context.Context, docs []tabular.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.InsertErr != nil {
		return 0, s.InsertErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs = append(s.docs, cloneDocument(d))
	}
	s.Batches = append(s.Batches, len(docs))
	return len(docs), nil
}

// FindDocuments returns a copy of every stored document
func (s *MemoryStore) FindDocuments(ctx context.Context) ([]tabular.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.FindErr != nil {
		return nil, s.FindErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tabular.Document, len(s.docs))
	for i, d := range s.docs {
		out[i] = cloneDocument(d)
	}
	return out, nil
}

// Len returns the number of stored documents
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// MemoryStoreFactory hands out one MemoryStore per database/collection pair
type MemoryStoreFactory struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

// NewMemoryStoreFactory creates an empty factory
func NewMemoryStoreFactory() *MemoryStoreFactory {
	return &MemoryStoreFactory{stores: make(map[string]*MemoryStore)}
}

// Collection implements ports.StoreFactory
func (f *MemoryStoreFactory) Collection(database, collection string) ports.DocumentStore {
	return f.Store(database, collection)
}

// Store returns the concrete store for database/collection, creating it if needed
func (f *MemoryStoreFactory) Store(database, collection string) *MemoryStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := database + "." + collection
	s, ok := f.stores[key]
	if !ok {
		s = NewMemoryStore()
		f.stores[key] = s
	}
	return s
}

func cloneDocument(d tabular.Document) tabular.Document {
	return append(tabular.Document(nil), d...)
}
