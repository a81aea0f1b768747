package storage

import (
	"bytes"
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps blobs in a Mongo GridFS bucket, using the blob path as
// the file name.
type GridFSStore struct {
	db      *mongo.Database
	baseURL string
}

func NewGridFSStore(db *mongo.Database, baseURL string) *GridFSStore {
	return &GridFSStore{db: db, baseURL: baseURL}
}

// bucket builds a bucket per call; deadlines are bucket-scoped.
func (s *GridFSStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db)
	if err != nil {
		return nil, err
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(dl); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(dl); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *GridFSStore) Upload(ctx context.Context, p string, data []byte, contentType string) (string, error) {
	cleaned, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err := b.UploadFromStream(cleaned, bytes.NewReader(data), opts); err != nil {
		return "", err
	}
	return publicURL(s.baseURL, cleaned), nil
}

func (s *GridFSStore) Open(ctx context.Context, p string) (io.ReadCloser, string, error) {
	cleaned, err := CleanPath(p)
	if err != nil {
		return nil, "", err
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return nil, "", err
	}

	stream, err := b.OpenDownloadStreamByName(cleaned)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", ErrBlobNotFound
		}
		return nil, "", err
	}

	contentType := "application/octet-stream"
	if meta := stream.GetFile().Metadata; len(meta) > 0 {
		if v, ok := meta.Lookup("contentType").StringValueOK(); ok && v != "" {
			contentType = v
		}
	}
	return stream, contentType, nil
}

var _ BlobStore = (*GridFSStore)(nil)
