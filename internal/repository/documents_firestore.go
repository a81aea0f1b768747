package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreDocumentStore talks to the same Firestore collections the mobile
// client used before the backend existed.
type FirestoreDocumentStore struct {
	client *firestore.Client
}

func NewFirestoreDocumentStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreDocumentStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreDocumentStore{client: client}, nil
}

func (s *FirestoreDocumentStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreDocumentStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return Document{ID: snap.Ref.ID, Fields: Fields(snap.Data())}, nil
}

func (s *FirestoreDocumentStore) List(ctx context.Context, collection string) ([]Document, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: Fields(snap.Data())})
	}
	return docs, nil
}

func (s *FirestoreDocumentStore) Put(ctx context.Context, collection, id string, fields Fields) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, map[string]interface{}(fields))
	return err
}

func (s *FirestoreDocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	return err
}

var _ DocumentStore = (*FirestoreDocumentStore)(nil)
