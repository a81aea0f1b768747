package repository

import (
	"context"

	"github.com/Domenick1991/travelstore/internal/domain"
)

type ReservationRepository interface {
	Save(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context) ([]domain.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error)
	Delete(ctx context.Context, id string) error
}

type DocReservationRepository struct {
	store DocumentStore
}

func NewReservationRepository(store DocumentStore) ReservationRepository {
	return &DocReservationRepository{store: store}
}

func (r *DocReservationRepository) Save(ctx context.Context, res *domain.Reservation) error {
	return r.store.Put(ctx, CollectionReservations, res.ID, reservationFields(res))
}

func (r *DocReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	doc, err := r.store.Get(ctx, CollectionReservations, id)
	if err != nil {
		return nil, err
	}
	res := reservationFromDoc(doc)
	return &res, nil
}

func (r *DocReservationRepository) List(ctx context.Context) ([]domain.Reservation, error) {
	return r.list(ctx, func(domain.Reservation) bool { return true })
}

func (r *DocReservationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	return r.list(ctx, func(res domain.Reservation) bool { return res.UserID == userID })
}

// UpdateStatus rewrites the whole document with the new status. There is no
// compare-and-set; the last writer wins.
func (r *DocReservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Status = status
	if err := r.store.Put(ctx, CollectionReservations, id, reservationFields(current)); err != nil {
		return nil, err
	}
	return current, nil
}

func (r *DocReservationRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionReservations, id)
}

func (r *DocReservationRepository) list(ctx context.Context, keep func(domain.Reservation) bool) ([]domain.Reservation, error) {
	docs, err := r.store.List(ctx, CollectionReservations)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(docs))
	for _, d := range docs {
		res := reservationFromDoc(d)
		if keep(res) {
			out = append(out, res)
		}
	}
	return out, nil
}

func reservationFields(res *domain.Reservation) Fields {
	return Fields{
		"userId":    res.UserID,
		"packageId": res.PackageID,
		"email":     res.Email,
		"price":     res.Price,
		"status":    string(res.Status),
	}
}

func reservationFromDoc(d Document) domain.Reservation {
	return domain.Reservation{
		ID:        d.ID,
		UserID:    d.Fields.String("userId"),
		PackageID: d.Fields.String("packageId"),
		Email:     d.Fields.String("email"),
		Price:     d.Fields.String("price"),
		Status:    domain.ReservationStatus(d.Fields.String("status")),
	}
}

var _ ReservationRepository = (*DocReservationRepository)(nil)
