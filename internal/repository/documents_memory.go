package repository

import (
	"context"
	"sort"
	"sync"
)

// MemoryDocumentStore keeps documents in process. List returns documents in
// insertion order.
type MemoryDocumentStore struct {
	mu    sync.RWMutex
	seq   int64
	colls map[string]map[string]memoryDoc
}

type memoryDoc struct {
	seq    int64
	fields Fields
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{colls: make(map[string]map[string]memoryDoc)}
}

func (s *MemoryDocumentStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.colls[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: cloneFields(doc.fields)}, nil
}

func (s *MemoryDocumentStore) List(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.colls[collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return coll[ids[i]].seq < coll[ids[j]].seq })

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, Document{ID: id, Fields: cloneFields(coll[id].fields)})
	}
	return docs, nil
}

func (s *MemoryDocumentStore) Put(_ context.Context, collection, id string, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.colls[collection]
	if !ok {
		coll = make(map[string]memoryDoc)
		s.colls[collection] = coll
	}
	seq := coll[id].seq
	if _, exists := coll[id]; !exists {
		s.seq++
		seq = s.seq
	}
	coll[id] = memoryDoc{seq: seq, fields: cloneFields(fields)}
	return nil
}

func (s *MemoryDocumentStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.colls[collection], id)
	return nil
}

func cloneFields(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

var _ DocumentStore = (*MemoryDocumentStore)(nil)
