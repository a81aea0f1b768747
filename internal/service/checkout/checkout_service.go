package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/Domenick1991/travelstore/internal/cart"
	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/kafka"
	"github.com/Domenick1991/travelstore/internal/metrics"
	"github.com/Domenick1991/travelstore/internal/payment"
	"github.com/Domenick1991/travelstore/internal/realtime"
	"github.com/Domenick1991/travelstore/internal/repository"
	"github.com/Domenick1991/travelstore/internal/session"
	"golang.org/x/sync/errgroup"
)

type CheckoutUseCase interface {
	AddToCart(ctx context.Context, sess session.Session, packageID string) (*cart.Cart, error)
	Cart(ctx context.Context, sess session.Session) (*cart.Cart, error)
	ClearCart(ctx context.Context, sess session.Session) error
	Pay(ctx context.Context, sess session.Session, form CardForm) (*Outcome, error)
	Reserve(ctx context.Context, sess session.Session) (*Outcome, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Notifier interface {
	Publish(ctx context.Context, change realtime.Change) error
}

// CardForm carries the raw card fields. It is never stored or logged.
type CardForm struct {
	Number string `json:"card_number"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

type CheckoutService struct {
	carts              cart.Store
	packages           repository.PackageRepository
	purchases          repository.PurchaseRepository
	reservations       repository.ReservationRepository
	producer           Producer
	notifier           Notifier
	eventsTopic        string
	notificationsTopic string
	now                func() time.Time
}

type CheckoutServiceOption func(*CheckoutService)

func WithEvents(producer Producer, topic string) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithNotificationsTopic(topic string) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.notificationsTopic = topic
	}
}

func WithNotifier(notifier Notifier) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.notifier = notifier
	}
}

func NewCheckoutService(
	carts cart.Store,
	packages repository.PackageRepository,
	purchases repository.PurchaseRepository,
	reservations repository.ReservationRepository,
	opts ...CheckoutServiceOption,
) *CheckoutService {
	service := &CheckoutService{
		carts:        carts,
		packages:     packages,
		purchases:    purchases,
		reservations: reservations,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *CheckoutService) AddToCart(ctx context.Context, sess session.Session, packageID string) (*cart.Cart, error) {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	return s.carts.AddItem(ctx, sess.UserID, *pkg)
}

func (s *CheckoutService) Cart(ctx context.Context, sess session.Session) (*cart.Cart, error) {
	return s.carts.GetCart(ctx, sess.UserID)
}

func (s *CheckoutService) ClearCart(ctx context.Context, sess session.Session) error {
	return s.carts.DeleteCart(ctx, sess.UserID)
}

// Pay validates the card form against the session's cart and writes one
// Purchase per cart item. Any failure leaves the cart as it was.
func (s *CheckoutService) Pay(ctx context.Context, sess session.Session, form CardForm) (*Outcome, error) {
	r := s.begin(ActionPay, sess)

	r.enter(StateValidating)
	items, err := s.loadItems(ctx, sess)
	if err != nil {
		return r.fail(err)
	}
	if err := validateCard(form, s.now()); err != nil {
		return r.fail(err)
	}

	r.enter(StateSubmitting)
	digest := payment.Digest(form.Number)
	timestamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	purchases := make([]domain.Purchase, len(items))
	for i, id := range purchaseIDs(sess.UserID, items, timestamp) {
		purchases[i] = domain.Purchase{
			ID:         id,
			UserID:     sess.UserID,
			PackageID:  items[i].ID,
			Email:      sess.Email,
			Price:      items[i].Price,
			CardDigest: digest,
			Timestamp:  timestamp,
		}
	}

	written, err := writeAll(purchases, func(p domain.Purchase) error {
		return s.purchases.Create(ctx, &p)
	})
	r.outcome.Purchases = written
	if err != nil {
		return r.fail(&domain.BackendWriteError{Op: "write purchases", Err: err})
	}

	s.commit(ctx, r, len(items))
	for _, p := range written {
		s.publish(ctx, kafka.StoreEvent{
			Type:      kafka.EventPurchaseCreated,
			UserID:    p.UserID,
			Email:     p.Email,
			PackageID: p.PackageID,
			RecordID:  p.ID,
			Price:     p.Price,
			At:        s.now(),
		}, realtime.Change{Path: repository.CollectionPurchases + "/" + p.ID, Kind: kafka.EventPurchaseCreated, Record: p})
	}
	return r.outcome, nil
}

// Reserve writes one Reservation per distinct package in the cart, keyed by
// user and package so a repeated reservation overwrites the earlier one.
func (s *CheckoutService) Reserve(ctx context.Context, sess session.Session) (*Outcome, error) {
	r := s.begin(ActionReserve, sess)

	r.enter(StateValidating)
	items, err := s.loadItems(ctx, sess)
	if err != nil {
		return r.fail(err)
	}

	seen := make(map[string]bool, len(items))
	reservations := make([]domain.Reservation, 0, len(items))
	for _, pkg := range items {
		id := domain.ReservationID(sess.UserID, pkg.ID)
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := s.ensureUnpaid(ctx, id); err != nil {
			return r.fail(err)
		}
		reservations = append(reservations, domain.Reservation{
			ID:        id,
			UserID:    sess.UserID,
			PackageID: pkg.ID,
			Email:     sess.Email,
			Price:     pkg.Price,
			Status:    domain.ReservationStatusReserved,
		})
	}

	r.enter(StateSubmitting)
	written, err := writeAll(reservations, func(res domain.Reservation) error {
		return s.reservations.Save(ctx, &res)
	})
	r.outcome.Reservations = written
	if err != nil {
		return r.fail(&domain.BackendWriteError{Op: "write reservations", Err: err})
	}

	s.commit(ctx, r, len(items))
	for _, res := range written {
		s.publish(ctx, kafka.StoreEvent{
			Type:      kafka.EventReservationCreated,
			UserID:    res.UserID,
			Email:     res.Email,
			PackageID: res.PackageID,
			RecordID:  res.ID,
			Price:     res.Price,
			Status:    string(res.Status),
			At:        s.now(),
		}, realtime.Change{Path: repository.CollectionReservations + "/" + res.ID, Kind: kafka.EventReservationCreated, Record: res})
	}
	return r.outcome, nil
}

// ensureUnpaid refuses to reset a settled reservation back to Reservado.
func (s *CheckoutService) ensureUnpaid(ctx context.Context, id string) error {
	existing, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load reservation: %w", err)
	}
	if existing.Status == domain.ReservationStatusPaid {
		return domain.NewValidationError("cart", "package already paid")
	}
	return nil
}

func (s *CheckoutService) begin(action Action, sess session.Session) *run {
	r := &run{outcome: &Outcome{Action: action}, userID: sess.UserID}
	r.enter(StateIdle)
	return r
}

func (s *CheckoutService) loadItems(ctx context.Context, sess session.Session) ([]domain.TravelPackage, error) {
	c, err := s.carts.GetCart(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.Empty() {
		return nil, domain.NewValidationError("cart", "cart is empty")
	}
	return c.Snapshot(), nil
}

// commit removes the n checked-out items from the head of the cart once every
// record is written, keeping anything added while the run was in flight. A
// failed trim is logged; the records stay committed.
func (s *CheckoutService) commit(ctx context.Context, r *run, n int) {
	if err := s.carts.RemoveItems(ctx, r.userID, n); err != nil {
		log.Printf("checkout %s user=%s: clear cart: %v", r.outcome.Action, r.userID, err)
	}
	r.enter(StateCommitted)
	metrics.CheckoutTotal.WithLabelValues(string(r.outcome.Action), string(StateCommitted)).Inc()
}

func (s *CheckoutService) publish(ctx context.Context, event kafka.StoreEvent, change realtime.Change) {
	if s.producer != nil && s.eventsTopic != "" {
		if err := s.producer.Publish(ctx, s.eventsTopic, event.RecordID, event); err != nil {
			log.Printf("WARNING: failed to publish %s for %s: %v", event.Type, event.RecordID, err)
		}
		if s.notificationsTopic != "" {
			if err := s.producer.Publish(ctx, s.notificationsTopic, event.RecordID, event); err != nil {
				log.Printf("WARNING: failed to publish %s notification for %s: %v", event.Type, event.RecordID, err)
			}
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, change); err != nil {
			log.Printf("WARNING: realtime publish %s: %v", change.Path, err)
		}
	}
}

func validateCard(form CardForm, now time.Time) error {
	if !payment.IsValidCardNumber(form.Number) {
		return domain.NewValidationError("card_number", "invalid card number")
	}
	if form.Expiry == "" || form.CVC == "" {
		return domain.NewValidationError("card", "complete all card fields")
	}
	if !payment.IsValidExpiry(form.Expiry, now) {
		return domain.NewValidationError("expiry", "invalid expiry date")
	}
	if !payment.IsValidCVC(form.CVC) {
		return domain.NewValidationError("cvc", "cvc must be a 3-digit number")
	}
	return nil
}

// purchaseIDs keys each item as userId_packageId_timestamp. A package that
// appears more than once in the cart gets a _2, _3... suffix so no write
// overwrites another.
func purchaseIDs(userID string, items []domain.TravelPackage, timestamp string) []string {
	ids := make([]string, len(items))
	counts := make(map[string]int, len(items))
	for i, pkg := range items {
		counts[pkg.ID]++
		id := userID + "_" + pkg.ID + "_" + timestamp
		if n := counts[pkg.ID]; n > 1 {
			id += "_" + strconv.Itoa(n)
		}
		ids[i] = id
	}
	return ids
}

// writeAll starts every write at once and waits for all of them. It returns
// the records that were written, in input order, and the first error seen.
// Written records are not rolled back when another write fails.
func writeAll[T any](records []T, write func(T) error) ([]T, error) {
	ok := make([]bool, len(records))
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for i, rec := range records {
		g.Go(func() error {
			if err := write(rec); err != nil {
				return err
			}
			mu.Lock()
			ok[i] = true
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	written := make([]T, 0, len(records))
	for i, rec := range records {
		if ok[i] {
			written = append(written, rec)
		}
	}
	return written, err
}

var _ CheckoutUseCase = (*CheckoutService)(nil)
