package repository

import (
	"context"

	"github.com/Domenick1991/travelstore/internal/domain"
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *domain.Purchase) error
	GetByID(ctx context.Context, id string) (*domain.Purchase, error)
	List(ctx context.Context) ([]domain.Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error)
}

type DocPurchaseRepository struct {
	store DocumentStore
}

func NewPurchaseRepository(store DocumentStore) PurchaseRepository {
	return &DocPurchaseRepository{store: store}
}

func (r *DocPurchaseRepository) Create(ctx context.Context, p *domain.Purchase) error {
	fields := Fields{
		"userId":    p.UserID,
		"packageId": p.PackageID,
		"email":     p.Email,
		"price":     p.Price,
		"timestamp": p.Timestamp,
	}
	if p.CardDigest != "" {
		fields["encryptedCardDetails"] = p.CardDigest
	}
	if p.ReservationID != "" {
		fields["reservationId"] = p.ReservationID
	}
	return r.store.Put(ctx, CollectionPurchases, p.ID, fields)
}

func (r *DocPurchaseRepository) GetByID(ctx context.Context, id string) (*domain.Purchase, error) {
	doc, err := r.store.Get(ctx, CollectionPurchases, id)
	if err != nil {
		return nil, err
	}
	p := purchaseFromDoc(doc)
	return &p, nil
}

func (r *DocPurchaseRepository) List(ctx context.Context) ([]domain.Purchase, error) {
	return r.list(ctx, func(domain.Purchase) bool { return true })
}

// ListByUser scans the collection and keeps the user's records; the store
// port has no query support.
func (r *DocPurchaseRepository) ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	return r.list(ctx, func(p domain.Purchase) bool { return p.UserID == userID })
}

func (r *DocPurchaseRepository) list(ctx context.Context, keep func(domain.Purchase) bool) ([]domain.Purchase, error) {
	docs, err := r.store.List(ctx, CollectionPurchases)
	if err != nil {
		return nil, err
	}
	purchases := make([]domain.Purchase, 0, len(docs))
	for _, d := range docs {
		p := purchaseFromDoc(d)
		if keep(p) {
			purchases = append(purchases, p)
		}
	}
	return purchases, nil
}

func purchaseFromDoc(d Document) domain.Purchase {
	return domain.Purchase{
		ID:            d.ID,
		UserID:        d.Fields.String("userId"),
		PackageID:     d.Fields.String("packageId"),
		Email:         d.Fields.String("email"),
		Price:         d.Fields.String("price"),
		CardDigest:    d.Fields.String("encryptedCardDetails"),
		ReservationID: d.Fields.String("reservationId"),
		Timestamp:     d.Fields.String("timestamp"),
	}
}

var _ PurchaseRepository = (*DocPurchaseRepository)(nil)
