package purchases

import (
	"context"
	"errors"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/repository"
	"github.com/Domenick1991/travelstore/internal/session"
	"golang.org/x/sync/errgroup"
)

const (
	ErrPackageMissing = "package not found"
	ErrUserMissing    = "user not found"

	lookupConcurrency = 8
)

// PurchaseView is a purchase joined with its buyer and package. When either
// reference is gone, DisplayError says which and the fields fall back to
// what the purchase recorded.
type PurchaseView struct {
	domain.Purchase
	Email        string `json:"email"`
	PackageTitle string `json:"packageTitle"`
	Price        string `json:"price"`
	DisplayError string `json:"displayError,omitempty"`
}

type PurchaseUseCase interface {
	ListForUser(ctx context.Context, sess session.Session) ([]PurchaseView, error)
	ListAll(ctx context.Context) ([]PurchaseView, error)
}

type PurchaseService struct {
	purchases repository.PurchaseRepository
	users     repository.UserRepository
	packages  repository.PackageRepository
}

func NewPurchaseService(
	purchases repository.PurchaseRepository,
	users repository.UserRepository,
	packages repository.PackageRepository,
) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		users:     users,
		packages:  packages,
	}
}

func (s *PurchaseService) ListForUser(ctx context.Context, sess session.Session) ([]PurchaseView, error) {
	list, err := s.purchases.ListByUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, list)
}

func (s *PurchaseService) ListAll(ctx context.Context) ([]PurchaseView, error) {
	list, err := s.purchases.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, list)
}

func (s *PurchaseService) join(ctx context.Context, list []domain.Purchase) ([]PurchaseView, error) {
	views := make([]PurchaseView, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, p := range list {
		g.Go(func() error {
			view, err := s.view(gctx, p)
			if err != nil {
				return err
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

func (s *PurchaseService) view(ctx context.Context, p domain.Purchase) (PurchaseView, error) {
	view := PurchaseView{Purchase: p, Email: p.Email, Price: p.Price}

	user, err := s.users.GetByID(ctx, p.UserID)
	switch {
	case err == nil:
		view.Email = user.Email
	case errors.Is(err, repository.ErrNotFound):
		view.DisplayError = ErrUserMissing
	default:
		return PurchaseView{}, err
	}

	pkg, err := s.packages.GetByID(ctx, p.PackageID)
	switch {
	case err == nil:
		view.PackageTitle = pkg.Title
		view.Price = pkg.Price
	case errors.Is(err, repository.ErrNotFound):
		view.DisplayError = ErrPackageMissing
	default:
		return PurchaseView{}, err
	}
	return view, nil
}

var _ PurchaseUseCase = (*PurchaseService)(nil)
