package auth

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
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User, passwordHash string) error {
	args := m.Called(ctx, user, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetCredentials(ctx context.Context, email string) (*repository.Credentials, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Credentials), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestService(repo repository.UserRepository) *AuthService {
	return NewAuthService(repo, session.NewTracker(), "test-secret", time.Hour, bcrypt.MinCost)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := &MockUserRepository{}
	service := newTestService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User"), mock.AnythingOfType("string")).Return(nil).Once()

	user, err := service.Register(ctx, RegisterInput{Email: " ana@example.com ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, user.ID)

	hash := repo.Calls[0].Arguments.String(2)
	assert.NotEqual(t, "pw", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
	repo.AssertExpectations(t)
}

func TestAuthService_Register_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		repo := &MockUserRepository{}
		_, err := newTestService(repo).Register(ctx, RegisterInput{Email: "ana@example.com"})
		var authErr *domain.AuthError
		assert.ErrorAs(t, err, &authErr)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("bad role", func(t *testing.T) {
		repo := &MockUserRepository{}
		_, err := newTestService(repo).Register(ctx, RegisterInput{Email: "a@b.c", Password: "pw", Role: "root"})
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := &MockUserRepository{}
		repo.On("Create", ctx, mock.Anything, mock.Anything).Return(repository.ErrConflict).Once()
		_, err := newTestService(repo).Register(ctx, RegisterInput{Email: "a@b.c", Password: "pw"})
		var authErr *domain.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.True(t, authErr.Duplicate)
	})

	t.Run("backend failure", func(t *testing.T) {
		repo := &MockUserRepository{}
		repo.On("Create", ctx, mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
		_, err := newTestService(repo).Register(ctx, RegisterInput{Email: "a@b.c", Password: "pw"})
		var wErr *domain.BackendWriteError
		assert.ErrorAs(t, err, &wErr)
	})
}

func TestAuthService_LoginAuthenticateLogout(t *testing.T) {
	repo := &MockUserRepository{}
	service := newTestService(repo)
	ctx := context.Background()

	repo.On("GetCredentials", ctx, "ana@example.com").Return(&repository.Credentials{UserID: "u1", PasswordHash: hashOf(t, "pw")}, nil)
	repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Email: "ana@example.com", Role: domain.RoleUser, DisplayName: "Ana"}, nil)

	token, err := service.Login(ctx, "ana@example.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "u1", token.Session.UserID)
	assert.Equal(t, "Ana", token.Session.DisplayName)

	sess, err := service.Authenticate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, token.Session, sess)

	require.NoError(t, service.Logout(ctx, sess.ID))

	_, err = service.Authenticate(token.AccessToken)
	var authErr *domain.AuthError
	assert.ErrorAs(t, err, &authErr, "signed-out session must be rejected")

	assert.Error(t, service.Logout(ctx, sess.ID))
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	repo := &MockUserRepository{}
	service := newTestService(repo)
	ctx := context.Background()

	repo.On("GetCredentials", ctx, "ana@example.com").Return(&repository.Credentials{UserID: "u1", PasswordHash: hashOf(t, "pw")}, nil)
	repo.On("GetCredentials", ctx, "nobody@example.com").Return(nil, repository.ErrNotFound)

	_, err := service.Login(ctx, "ana@example.com", "wrong")
	assert.Equal(t, errInvalidCredentials, err)

	_, err = service.Login(ctx, "nobody@example.com", "pw")
	assert.Equal(t, errInvalidCredentials, err)

	repo.AssertNotCalled(t, "GetByID")
}

func TestAuthService_Authenticate_RejectsForeignAndExpiredTokens(t *testing.T) {
	repo := &MockUserRepository{}
	service := newTestService(repo)
	ctx := context.Background()

	repo.On("GetCredentials", ctx, "ana@example.com").Return(&repository.Credentials{UserID: "u1", PasswordHash: hashOf(t, "pw")}, nil)
	repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Email: "ana@example.com", Role: domain.RoleUser}, nil)

	token, err := service.Login(ctx, "ana@example.com", "pw")
	require.NoError(t, err)

	other := NewAuthService(repo, service.tracker, "other-secret", time.Hour, bcrypt.MinCost)
	_, err = other.Authenticate(token.AccessToken)
	assert.Error(t, err)

	service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = service.Authenticate(token.AccessToken)
	assert.Error(t, err)

	_, err = service.Authenticate("garbage")
	assert.Error(t, err)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := &MockUserRepository{}
	service := newTestService(repo)
	ctx := context.Background()

	sess := session.Session{ID: "sid", UserID: "u1", Role: domain.RoleUser}
	service.tracker.SignIn(sess)

	repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Email: "ana@example.com", Role: domain.RoleUser}, nil).Once()
	repo.On("Save", ctx, mock.MatchedBy(func(u *domain.User) bool { return u.DisplayName == "Ana" })).Return(nil).Once()

	user, err := service.UpdateProfile(ctx, sess, "  Ana ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.DisplayName)

	tracked, _ := service.tracker.Lookup("sid")
	assert.Equal(t, "Ana", tracked.DisplayName)
	repo.AssertExpectations(t)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when missing", func(t *testing.T) {
		repo := &MockUserRepository{}
		repo.On("GetCredentials", ctx, "admin@x").Return(nil, repository.ErrNotFound).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool { return u.Role == domain.RoleAdmin }), mock.Anything).Return(nil).Once()

		require.NoError(t, newTestService(repo).EnsureAdmin(ctx, "admin@x", "pw"))
		repo.AssertExpectations(t)
	})

	t.Run("skips when present", func(t *testing.T) {
		repo := &MockUserRepository{}
		repo.On("GetCredentials", ctx, "admin@x").Return(&repository.Credentials{UserID: "a"}, nil).Once()

		require.NoError(t, newTestService(repo).EnsureAdmin(ctx, "admin@x", "pw"))
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("skips without credentials", func(t *testing.T) {
		repo := &MockUserRepository{}
		require.NoError(t, newTestService(repo).EnsureAdmin(ctx, "", ""))
		repo.AssertNotCalled(t, "GetCredentials")
	})
}
