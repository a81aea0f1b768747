package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentsSchema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	fields     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

type PGDocumentStore struct {
	db *pgxpool.Pool
}

func NewPGDocumentStore(db *pgxpool.Pool) *PGDocumentStore {
	return &PGDocumentStore{db: db}
}

// EnsureSchema creates the documents table when it is missing.
func (s *PGDocumentStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, documentsSchema)
	return err
}

func (s *PGDocumentStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT fields FROM documents WHERE collection=$1 AND id=$2`, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	fields := Fields{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: fields}, nil
}

func (s *PGDocumentStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.Query(ctx, `SELECT id, fields FROM documents WHERE collection=$1 ORDER BY created_at, id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields := Fields{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

func (s *PGDocumentStore) Put(ctx context.Context, collection, id string, fields Fields) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO documents (collection, id, fields)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET fields = EXCLUDED.fields, updated_at = now()`,
		collection, id, string(payload))
	return err
}

func (s *PGDocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM documents WHERE collection=$1 AND id=$2`, collection, id)
	return err
}

var _ DocumentStore = (*PGDocumentStore)(nil)
