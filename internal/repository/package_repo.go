package repository

import (
	"context"

	"github.com/Domenick1991/travelstore/internal/domain"
)

type PackageRepository interface {
	List(ctx context.Context) ([]domain.TravelPackage, error)
	GetByID(ctx context.Context, id string) (*domain.TravelPackage, error)
	Save(ctx context.Context, pkg *domain.TravelPackage) error
	Delete(ctx context.Context, id string) error
}

type DocPackageRepository struct {
	store DocumentStore
}

func NewPackageRepository(store DocumentStore) PackageRepository {
	return &DocPackageRepository{store: store}
}

func (r *DocPackageRepository) List(ctx context.Context) ([]domain.TravelPackage, error) {
	docs, err := r.store.List(ctx, CollectionPackages)
	if err != nil {
		return nil, err
	}
	packages := make([]domain.TravelPackage, 0, len(docs))
	for _, d := range docs {
		packages = append(packages, packageFromDoc(d))
	}
	return packages, nil
}

func (r *DocPackageRepository) GetByID(ctx context.Context, id string) (*domain.TravelPackage, error) {
	doc, err := r.store.Get(ctx, CollectionPackages, id)
	if err != nil {
		return nil, err
	}
	pkg := packageFromDoc(doc)
	return &pkg, nil
}

func (r *DocPackageRepository) Save(ctx context.Context, pkg *domain.TravelPackage) error {
	return r.store.Put(ctx, CollectionPackages, pkg.ID, Fields{
		"title":       pkg.Title,
		"description": pkg.Description,
		"price":       pkg.Price,
		"imageUrl":    pkg.ImageURL,
		"createdAt":   pkg.CreatedAt,
	})
}

func (r *DocPackageRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionPackages, id)
}

func packageFromDoc(d Document) domain.TravelPackage {
	return domain.TravelPackage{
		ID:          d.ID,
		Title:       d.Fields.String("title"),
		Description: d.Fields.String("description"),
		Price:       d.Fields.String("price"),
		ImageURL:    d.Fields.String("imageUrl"),
		CreatedAt:   d.Fields.String("createdAt"),
	}
}

var _ PackageRepository = (*DocPackageRepository)(nil)
