package reservations

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/kafka"
	"github.com/Domenick1991/travelstore/internal/metrics"
	"github.com/Domenick1991/travelstore/internal/realtime"
	"github.com/Domenick1991/travelstore/internal/repository"
	"github.com/Domenick1991/travelstore/internal/session"
)

type SettleResult string

const (
	Settled        SettleResult = "settled"
	AlreadySettled SettleResult = "already_settled"
	Failed         SettleResult = "failed"
)

type ReservationUseCase interface {
	Settle(ctx context.Context, id string) (SettleResult, error)
	List(ctx context.Context) ([]domain.Reservation, error)
	ListForUser(ctx context.Context, sess session.Session) ([]domain.Reservation, error)
	Delete(ctx context.Context, id string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Notifier interface {
	Publish(ctx context.Context, change realtime.Change) error
}

type ReservationService struct {
	reservations       repository.ReservationRepository
	purchases          repository.PurchaseRepository
	producer           Producer
	notifier           Notifier
	eventsTopic        string
	notificationsTopic string
	now                func() time.Time
}

type ReservationServiceOption func(*ReservationService)

func WithEvents(producer Producer, topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

func WithNotifier(notifier Notifier) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notifier = notifier
	}
}

func NewReservationService(
	reservations repository.ReservationRepository,
	purchases repository.PurchaseRepository,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		reservations: reservations,
		purchases:    purchases,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Settle turns a reservation into a purchase and marks it paid. The status is
// re-read first, so settling a paid reservation writes nothing. The purchase
// key is derived from the reservation id; if an earlier run created it but
// failed before the status update, only the status update is retried.
func (s *ReservationService) Settle(ctx context.Context, id string) (SettleResult, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return s.settled(Failed), err
	}
	if res.Status == domain.ReservationStatusPaid {
		log.Printf("reservation %s already settled", id)
		return s.settled(AlreadySettled), nil
	}

	purchaseID := domain.SettlementPurchaseID(res.ID)
	_, err = s.purchases.GetByID(ctx, purchaseID)
	switch {
	case err == nil:
		log.Printf("reservation %s: purchase %s exists, updating status only", id, purchaseID)
	case errors.Is(err, repository.ErrNotFound):
		purchase := &domain.Purchase{
			ID:            purchaseID,
			UserID:        res.UserID,
			PackageID:     res.PackageID,
			Email:         res.Email,
			Price:         res.Price,
			ReservationID: res.ID,
			Timestamp:     strconv.FormatInt(s.now().UnixMilli(), 10),
		}
		if err := s.purchases.Create(ctx, purchase); err != nil {
			return s.settled(Failed), &domain.BackendWriteError{Op: "create settlement purchase", Err: err}
		}
		s.notify(ctx, realtime.Change{Path: repository.CollectionPurchases + "/" + purchase.ID, Kind: kafka.EventPurchaseCreated, Record: purchase})
	default:
		return s.settled(Failed), err
	}

	updated, err := s.reservations.UpdateStatus(ctx, res.ID, domain.ReservationStatusPaid)
	if err != nil {
		return s.settled(Failed), &domain.BackendWriteError{Op: "mark reservation paid", Err: err}
	}

	s.publish(ctx, kafka.StoreEvent{
		Type:      kafka.EventReservationSettled,
		UserID:    updated.UserID,
		Email:     updated.Email,
		PackageID: updated.PackageID,
		RecordID:  updated.ID,
		Price:     updated.Price,
		Status:    string(updated.Status),
		At:        s.now(),
	})
	s.notify(ctx, realtime.Change{Path: repository.CollectionReservations + "/" + updated.ID, Kind: kafka.EventReservationSettled, Record: updated})
	return s.settled(Settled), nil
}

func (s *ReservationService) List(ctx context.Context) ([]domain.Reservation, error) {
	return s.reservations.List(ctx)
}

func (s *ReservationService) ListForUser(ctx context.Context, sess session.Session) ([]domain.Reservation, error) {
	return s.reservations.ListByUser(ctx, sess.UserID)
}

func (s *ReservationService) Delete(ctx context.Context, id string) error {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reservations.Delete(ctx, id); err != nil {
		return &domain.BackendWriteError{Op: "delete reservation", Err: err}
	}

	s.publish(ctx, kafka.StoreEvent{
		Type:      kafka.EventReservationDeleted,
		UserID:    res.UserID,
		Email:     res.Email,
		PackageID: res.PackageID,
		RecordID:  res.ID,
		Price:     res.Price,
		Status:    string(res.Status),
		At:        s.now(),
	})
	s.notify(ctx, realtime.Change{Path: repository.CollectionReservations + "/" + res.ID, Kind: kafka.EventReservationDeleted})
	return nil
}

func (s *ReservationService) settled(result SettleResult) SettleResult {
	metrics.SettlementsTotal.WithLabelValues(string(result)).Inc()
	return result
}

func (s *ReservationService) publish(ctx context.Context, event kafka.StoreEvent) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, event.RecordID, event); err != nil {
		log.Printf("WARNING: failed to publish %s for %s: %v", event.Type, event.RecordID, err)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.RecordID, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for %s: %v", event.Type, event.RecordID, err)
		}
	}
}

func (s *ReservationService) notify(ctx context.Context, change realtime.Change) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, change); err != nil {
		log.Printf("WARNING: realtime publish %s: %v", change.Path, err)
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)
