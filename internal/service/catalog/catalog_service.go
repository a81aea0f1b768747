package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/repository"
	"github.com/Domenick1991/travelstore/internal/storage"
	"github.com/google/uuid"
)

type CatalogUseCase interface {
	List(ctx context.Context) ([]domain.TravelPackage, error)
	Get(ctx context.Context, id string) (*domain.TravelPackage, error)
	Create(ctx context.Context, input PackageInput) (*domain.TravelPackage, error)
	Update(ctx context.Context, id string, input PackageInput) (*domain.TravelPackage, error)
	Delete(ctx context.Context, id string) error
}

type PackageCache interface {
	GetPackages(ctx context.Context) ([]domain.TravelPackage, error)
	SetPackages(ctx context.Context, packages []domain.TravelPackage) error
	InvalidatePackages(ctx context.Context) error
}

type Image struct {
	Data        []byte
	ContentType string
}

type PackageInput struct {
	Title       string
	Description string
	Price       string
	Image       *Image
}

type CatalogService struct {
	repo  repository.PackageRepository
	cache PackageCache
	blobs storage.BlobStore
	now   func() time.Time
}

func NewCatalogService(repo repository.PackageRepository, cache PackageCache, blobs storage.BlobStore) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, blobs: blobs, now: time.Now}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.TravelPackage, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPackages(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	packages, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetPackages(ctx, packages); err != nil {
			log.Printf("catalog: cache packages: %v", err)
		}
	}
	return packages, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.TravelPackage, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, input PackageInput) (*domain.TravelPackage, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	now := s.now()
	pkg := &domain.TravelPackage{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		CreatedAt:   strconv.FormatInt(now.UnixMilli(), 10),
	}
	if input.Image != nil {
		url, err := s.upload(ctx, input.Image, now)
		if err != nil {
			return nil, err
		}
		pkg.ImageURL = url
	}

	if err := s.repo.Save(ctx, pkg); err != nil {
		return nil, &domain.BackendWriteError{Op: "save package", Err: err}
	}
	s.invalidate(ctx)
	return pkg, nil
}

// Update replaces the package's fields. Without a new image the previous
// image URL is kept.
func (s *CatalogService) Update(ctx context.Context, id string, input PackageInput) (*domain.TravelPackage, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	pkg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pkg.Title = input.Title
	pkg.Description = input.Description
	pkg.Price = input.Price
	if input.Image != nil {
		url, err := s.upload(ctx, input.Image, s.now())
		if err != nil {
			return nil, err
		}
		pkg.ImageURL = url
	}

	if err := s.repo.Save(ctx, pkg); err != nil {
		return nil, &domain.BackendWriteError{Op: "save package", Err: err}
	}
	s.invalidate(ctx)
	return pkg, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return &domain.BackendWriteError{Op: "delete package", Err: err}
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) upload(ctx context.Context, img *Image, now time.Time) (string, error) {
	if s.blobs == nil {
		return "", errors.New("image storage is not configured")
	}
	url, err := s.blobs.Upload(ctx, storage.ImagePath(now), img.Data, img.ContentType)
	if err != nil {
		return "", &domain.BackendWriteError{Op: "upload image", Err: err}
	}
	return url, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePackages(ctx); err != nil {
		log.Printf("catalog: invalidate cache: %v", err)
	}
}

var pricePattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

func validateInput(input *PackageInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Price = strings.TrimSpace(input.Price)

	if input.Title == "" {
		return domain.NewValidationError("title", "title is required")
	}
	if !pricePattern.MatchString(input.Price) {
		return domain.NewValidationError("price", fmt.Sprintf("price %q must be a non-negative decimal", input.Price))
	}
	if input.Image != nil && len(input.Image.Data) == 0 {
		return domain.NewValidationError("image", "image is empty")
	}
	return nil
}

var _ CatalogUseCase = (*CatalogService)(nil)
