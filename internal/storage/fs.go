package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// FSStore keeps blobs as files under a root directory.
type FSStore struct {
	root    string
	baseURL string
}

func NewFSStore(root, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{root: root, baseURL: baseURL}, nil
}

func (s *FSStore) Upload(_ context.Context, p string, data []byte, _ string) (string, error) {
	cleaned, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return publicURL(s.baseURL, cleaned), nil
}

// Open sniffs the content type from the first bytes of the file.
func (s *FSStore) Open(_ context.Context, p string) (io.ReadCloser, string, error) {
	cleaned, err := CleanPath(p)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(cleaned)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrBlobNotFound
		}
		return nil, "", err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", err
	}
	return f, http.DetectContentType(head[:n]), nil
}

var _ BlobStore = (*FSStore)(nil)
