package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/travelstore/internal/domain"
)

// Credentials are stored apart from the public user profile, keyed by the
// lower-cased email.
type Credentials struct {
	UserID       string
	PasswordHash string
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User, passwordHash string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	Save(ctx context.Context, user *domain.User) error
}

type DocUserRepository struct {
	store DocumentStore
}

func NewUserRepository(store DocumentStore) UserRepository {
	return &DocUserRepository{store: store}
}

// Create returns ErrConflict if the email is already registered. The check
// and the write are not atomic.
func (r *DocUserRepository) Create(ctx context.Context, user *domain.User, passwordHash string) error {
	key := credentialsKey(user.Email)
	_, err := r.store.Get(ctx, CollectionCredentials, key)
	switch {
	case err == nil:
		return ErrConflict
	case !errors.Is(err, ErrNotFound):
		return err
	}

	if err := r.store.Put(ctx, CollectionCredentials, key, Fields{
		"uid":          user.ID,
		"passwordHash": passwordHash,
	}); err != nil {
		return err
	}
	return r.Save(ctx, user)
}

func (r *DocUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.store.Get(ctx, CollectionUsers, id)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:          doc.ID,
		Email:       doc.Fields.String("email"),
		DisplayName: doc.Fields.String("displayName"),
		Role:        domain.Role(doc.Fields.String("role")),
	}, nil
}

func (r *DocUserRepository) GetCredentials(ctx context.Context, email string) (*Credentials, error) {
	doc, err := r.store.Get(ctx, CollectionCredentials, credentialsKey(email))
	if err != nil {
		return nil, err
	}
	return &Credentials{
		UserID:       doc.Fields.String("uid"),
		PasswordHash: doc.Fields.String("passwordHash"),
	}, nil
}

func (r *DocUserRepository) Save(ctx context.Context, user *domain.User) error {
	return r.store.Put(ctx, CollectionUsers, user.ID, Fields{
		"email":       user.Email,
		"displayName": user.DisplayName,
		"role":        string(user.Role),
	})
}

func credentialsKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ UserRepository = (*DocUserRepository)(nil)
