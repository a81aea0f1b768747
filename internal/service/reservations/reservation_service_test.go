package reservations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/repository"
	"github.com/Domenick1991/travelstore/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Save(ctx context.Context, res *domain.Reservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) List(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(ctx context.Context, p *domain.Purchase) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPurchaseRepository) GetByID(ctx context.Context, id string) (*domain.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) List(ctx context.Context) ([]domain.Purchase, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Purchase), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func reserved() *domain.Reservation {
	return &domain.Reservation{
		ID:        "u1_p1",
		UserID:    "u1",
		PackageID: "p1",
		Email:     "ana@example.com",
		Price:     "450",
		Status:    domain.ReservationStatusReserved,
	}
}

func newStoreBacked(t *testing.T) (*ReservationService, repository.ReservationRepository, repository.PurchaseRepository) {
	t.Helper()
	store := repository.NewMemoryDocumentStore()
	reservations := repository.NewReservationRepository(store)
	purchases := repository.NewPurchaseRepository(store)
	require.NoError(t, reservations.Save(context.Background(), reserved()))

	service := NewReservationService(reservations, purchases)
	service.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return service, reservations, purchases
}

func TestReservationService_Settle_Twice(t *testing.T) {
	service, reservations, purchases := newStoreBacked(t)
	ctx := context.Background()

	result, err := service.Settle(ctx, "u1_p1")
	require.NoError(t, err)
	assert.Equal(t, Settled, result)

	result, err = service.Settle(ctx, "u1_p1")
	require.NoError(t, err)
	assert.Equal(t, AlreadySettled, result)

	all, err := purchases.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "reservation_u1_p1", all[0].ID)
	assert.Equal(t, "u1_p1", all[0].ReservationID)
	assert.Equal(t, "450", all[0].Price)
	assert.Equal(t, "1700000000000", all[0].Timestamp)

	res, err := reservations.GetByID(ctx, "u1_p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPaid, res.Status)
}

func TestReservationService_Settle_AlreadyPaidWritesNothing(t *testing.T) {
	reservations := &MockReservationRepository{}
	purchases := &MockPurchaseRepository{}
	paid := reserved()
	paid.Status = domain.ReservationStatusPaid
	reservations.On("GetByID", mock.Anything, "u1_p1").Return(paid, nil)

	result, err := NewReservationService(reservations, purchases).Settle(context.Background(), "u1_p1")

	require.NoError(t, err)
	assert.Equal(t, AlreadySettled, result)
	reservations.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	purchases.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReservationService_Settle_ExistingPurchaseOnlyUpdatesStatus(t *testing.T) {
	reservations := &MockReservationRepository{}
	purchases := &MockPurchaseRepository{}
	producer := &MockProducer{}

	paid := reserved()
	paid.Status = domain.ReservationStatusPaid
	reservations.On("GetByID", mock.Anything, "u1_p1").Return(reserved(), nil)
	purchases.On("GetByID", mock.Anything, "reservation_u1_p1").Return(&domain.Purchase{ID: "reservation_u1_p1"}, nil)
	reservations.On("UpdateStatus", mock.Anything, "u1_p1", domain.ReservationStatusPaid).Return(paid, nil)
	producer.On("Publish", mock.Anything, "store-events", "u1_p1", mock.Anything).Return(nil)

	service := NewReservationService(reservations, purchases, WithEvents(producer, "store-events"))
	result, err := service.Settle(context.Background(), "u1_p1")

	require.NoError(t, err)
	assert.Equal(t, Settled, result)
	purchases.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	reservations.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestReservationService_Settle_StatusUpdateFails(t *testing.T) {
	reservations := &MockReservationRepository{}
	purchases := &MockPurchaseRepository{}

	reservations.On("GetByID", mock.Anything, "u1_p1").Return(reserved(), nil)
	purchases.On("GetByID", mock.Anything, "reservation_u1_p1").Return(nil, repository.ErrNotFound)
	purchases.On("Create", mock.Anything, mock.AnythingOfType("*domain.Purchase")).Return(nil)
	reservations.On("UpdateStatus", mock.Anything, "u1_p1", domain.ReservationStatusPaid).Return(nil, errors.New("timeout"))

	result, err := NewReservationService(reservations, purchases).Settle(context.Background(), "u1_p1")

	assert.Equal(t, Failed, result)
	var wErr *domain.BackendWriteError
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, "mark reservation paid", wErr.Op)
}

func TestReservationService_Settle_NotFound(t *testing.T) {
	service, _, purchases := newStoreBacked(t)

	result, err := service.Settle(context.Background(), "nope")

	assert.Equal(t, Failed, result)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	all, err := purchases.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReservationService_ListForUser(t *testing.T) {
	service, reservations, _ := newStoreBacked(t)
	require.NoError(t, reservations.Save(context.Background(), &domain.Reservation{
		ID: "u2_p1", UserID: "u2", PackageID: "p1", Status: domain.ReservationStatusReserved,
	}))

	mine, err := service.ListForUser(context.Background(), session.Session{UserID: "u1"})

	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "u1_p1", mine[0].ID)
}

func TestReservationService_Delete(t *testing.T) {
	service, reservations, _ := newStoreBacked(t)

	require.NoError(t, service.Delete(context.Background(), "u1_p1"))

	_, err := reservations.GetByID(context.Background(), "u1_p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, service.Delete(context.Background(), "u1_p1"), repository.ErrNotFound)
}
