package service

import (
	"context"
	"errors"
	"math/rand/v2"
	carserrors "rentwheels/internal/cars/errors"
	"rentwheels/internal/cars/repository"
	"rentwheels/pkg/config"
	apperrors "rentwheels/pkg/errors"
	"rentwheels/pkg/model"
	"rentwheels/pkg/sanitizer"
)

// ListingService holds the read-only queries over car listings.
type ListingService interface {
	ListAll(ctx context.Context) ([]*model.Car, error)
	ListNewest(ctx context.Context) ([]*model.Car, error)
	ListTopRated(ctx context.Context) ([]*model.Car, error)
	ListRandomSample(ctx context.Context) ([]*model.Car, error)
	Browse(ctx context.Context) ([]*model.Car, error)
	GetByID(ctx context.Context, id string) (*model.Car, error)
	ListByOwner(ctx context.Context, email string) ([]*model.Car, error)
}

type listingService struct {
	repo    repository.CarRepository
	cfg     *config.Config
	shuffle func(n int, swap func(i, j int))
}

func NewListingService(repo repository.CarRepository, cfg *config.Config) ListingService {
	return &listingService{
		repo:    repo,
		cfg:     cfg,
		shuffle: rand.Shuffle,
	}
}

func (s *listingService) ListAll(ctx context.Context) ([]*model.Car, error) {
	return s.find(ctx, repository.ListQuery{}, "Failed to retrieve cars")
}

func (s *listingService) ListNewest(ctx context.Context) ([]*model.Car, error) {
	return s.find(ctx, repository.ListQuery{Sort: repository.SortNewest}, "Failed to retrieve newest cars")
}

func (s *listingService) ListTopRated(ctx context.Context) ([]*model.Car, error) {
	return s.find(ctx, repository.ListQuery{
		Sort:  repository.SortPriceDesc,
		Limit: s.cfg.TopRatedLimit,
	}, "Failed to retrieve top rated cars")
}

// ListRandomSample returns every car in a uniformly random order. Small
// collections are returned as stored since shuffling them shows nothing new.
func (s *listingService) ListRandomSample(ctx context.Context) ([]*model.Car, error) {
	cars, err := s.find(ctx, repository.ListQuery{}, "Failed to retrieve random cars")
	if err != nil {
		return nil, err
	}

	if len(cars) <= s.cfg.RandomSampleThreshold {
		return cars, nil
	}

	s.shuffle(len(cars), func(i, j int) {
		cars[i], cars[j] = cars[j], cars[i]
	})
	return cars, nil
}

func (s *listingService) Browse(ctx context.Context) ([]*model.Car, error) {
	return s.find(ctx, repository.ListQuery{Sort: repository.SortNewest}, "Failed to browse cars")
}

func (s *listingService) GetByID(ctx context.Context, id string) (*model.Car, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Car ID cannot be empty")
	}

	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, carserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Car", id)
		}
		if errors.Is(err, carserrors.ErrInvalidID) {
			return nil, apperrors.InvalidID("car", id)
		}
		s.cfg.Log.Error("Failed to retrieve car", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve car", err)
	}

	return car, nil
}

// ListByOwner filters by provider email when one is given and lists every
// car otherwise.
func (s *listingService) ListByOwner(ctx context.Context, email string) ([]*model.Car, error) {
	return s.find(ctx, repository.ListQuery{
		ProviderEmail: sanitizer.NormalizeEmail(email),
	}, "Failed to retrieve listings")
}

func (s *listingService) find(ctx context.Context, query repository.ListQuery, failure string) ([]*model.Car, error) {
	cars, err := s.repo.Find(ctx, query)
	if err != nil {
		s.cfg.Log.Error(failure, "error", err)
		return nil, apperrors.Internal(failure, err)
	}
	return cars, nil
}
