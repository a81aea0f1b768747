package repository

import (
	"context"
	"fmt"
)

// Logical collections.
const (
	CollectionUsers        = "users"
	CollectionCredentials  = "credentials"
	CollectionPackages     = "travelPackages"
	CollectionPurchases    = "purchases"
	CollectionReservations = "reservations"
)

// Fields is the body of a document.
type Fields map[string]any

type Document struct {
	ID     string
	Fields Fields
}

// DocumentStore is the document-database port every adapter implements. Put
// is an upsert; Delete of a missing document is not an error.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Put(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
}

func (f Fields) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
