// Package cart holds a shopper's pending selection of packages.
package cart

import (
	"context"
	"sync"

	"github.com/Domenick1991/travelstore/internal/domain"
)

// Cart is an ordered, append-only list of packages. Adding the same package
// twice keeps both entries.
type Cart struct {
	Items []domain.TravelPackage `json:"items"`
}

func (c *Cart) Add(pkg domain.TravelPackage) {
	c.Items = append(c.Items, pkg)
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Size() int {
	return len(c.Items)
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// Snapshot returns a copy that later mutations of c do not affect.
func (c *Cart) Snapshot() []domain.TravelPackage {
	out := make([]domain.TravelPackage, len(c.Items))
	copy(out, c.Items)
	return out
}

// Store keeps one cart per user. Get returns an empty cart for a user with
// nothing saved. AddItem appends atomically, so concurrent adds are all kept.
// RemoveItems drops the first n items; checkout uses it to take away exactly
// the items it processed and keep anything added meanwhile.
type Store interface {
	GetCart(ctx context.Context, userID string) (*Cart, error)
	AddItem(ctx context.Context, userID string, pkg domain.TravelPackage) (*Cart, error)
	RemoveItems(ctx context.Context, userID string, n int) error
	DeleteCart(ctx context.Context, userID string) error
}

type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]domain.TravelPackage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]domain.TravelPackage)}
}

func (s *MemoryStore) GetCart(_ context.Context, userID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyOf(userID), nil
}

func (s *MemoryStore) AddItem(_ context.Context, userID string, pkg domain.TravelPackage) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[userID] = append(s.carts[userID], pkg)
	return s.copyOf(userID), nil
}

func (s *MemoryStore) RemoveItems(_ context.Context, userID string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	if n >= len(items) {
		delete(s.carts, userID)
		return nil
	}
	if n > 0 {
		s.carts[userID] = append([]domain.TravelPackage(nil), items[n:]...)
	}
	return nil
}

func (s *MemoryStore) DeleteCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return nil
}

func (s *MemoryStore) copyOf(userID string) *Cart {
	items := s.carts[userID]
	c := &Cart{Items: make([]domain.TravelPackage, len(items))}
	copy(c.Items, items)
	return c
}

var _ Store = (*MemoryStore)(nil)
