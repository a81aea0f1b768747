package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/repository"
	"github.com/Domenick1991/travelstore/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Token, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(token string) (session.Session, error)
	Profile(ctx context.Context, sess session.Session) (*domain.User, error)
	UpdateProfile(ctx context.Context, sess session.Session, displayName string) (*domain.User, error)
}

type RegisterInput struct {
	Email    string
	Password string
	Role     domain.Role
}

type Token struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Session     session.Session `json:"session"`
}

var errInvalidCredentials = &domain.AuthError{Message: "invalid email or password"}

type AuthService struct {
	users      repository.UserRepository
	tracker    *session.Tracker
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users repository.UserRepository, tracker *session.Tracker, secret string, tokenTTL time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tracker:    tracker,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, &domain.AuthError{Message: "email and password are required"}
	}
	if input.Role == "" {
		input.Role = domain.RoleUser
	}
	if !input.Role.Valid() {
		return nil, domain.NewValidationError("role", "role must be user or admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:    uuid.NewString(),
		Email: email,
		Role:  input.Role,
	}
	if err := s.users.Create(ctx, user, string(hash)); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, &domain.AuthError{Message: "email already registered", Duplicate: true}
		}
		return nil, &domain.BackendWriteError{Op: "create account", Err: err}
	}

	log.Printf("registered user %s with role %s", user.ID, user.Role)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, &domain.AuthError{Message: "email and password are required"}
	}

	creds, err := s.users.GetCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, creds.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", creds.UserID, err)
	}

	sess := session.Session{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}

	now := s.now()
	exp := now.Add(s.tokenTTL)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"sid":   sess.ID,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.tracker.SignIn(sess)
	return &Token{AccessToken: signed, ExpiresAt: exp, Session: sess}, nil
}

func (s *AuthService) Logout(_ context.Context, sessionID string) error {
	if _, ok := s.tracker.SignOut(sessionID); !ok {
		return &domain.AuthError{Message: "session not found"}
	}
	return nil
}

// Authenticate verifies the token signature and expiry, then requires its
// session to still be signed in.
func (s *AuthService) Authenticate(token string) (session.Session, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return session.Session{}, &domain.AuthError{Message: "invalid or expired token"}
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return session.Session{}, &domain.AuthError{Message: "invalid token claims"}
	}
	sid, _ := claims["sid"].(string)
	sub, _ := claims["sub"].(string)
	if sid == "" || sub == "" {
		return session.Session{}, &domain.AuthError{Message: "invalid token claims"}
	}

	sess, ok := s.tracker.Lookup(sid)
	if !ok || sess.UserID != sub {
		return session.Session{}, &domain.AuthError{Message: "session is signed out"}
	}
	return sess, nil
}

func (s *AuthService) Profile(ctx context.Context, sess session.Session) (*domain.User, error) {
	return s.users.GetByID(ctx, sess.UserID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, sess session.Session, displayName string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	user.DisplayName = strings.TrimSpace(displayName)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, &domain.BackendWriteError{Op: "update profile", Err: err}
	}
	s.tracker.UpdateUser(user.ID, user.DisplayName)
	return user, nil
}

// EnsureAdmin creates the administrator account if its email is not yet
// registered. Empty credentials skip seeding.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.GetCredentials(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	_, err = s.Register(ctx, RegisterInput{Email: email, Password: password, Role: domain.RoleAdmin})
	return err
}

var _ AuthUseCase = (*AuthService)(nil)
