package service

import (
	"context"
	"errors"
	carserrors "rentwheels/internal/cars/errors"
	"rentwheels/internal/cars/repository"
	"rentwheels/internal/cars/validator"
	"rentwheels/internal/events"
	"rentwheels/pkg/config"
	apperrors "rentwheels/pkg/errors"
	"rentwheels/pkg/model"
	"rentwheels/pkg/sanitizer"
	"rentwheels/pkg/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CarService creates, patches and deletes single car listings.
type CarService interface {
	Create(ctx context.Context, car *model.Car) error
	Update(ctx context.Context, id string, updates *model.CarUpdate) error
	Delete(ctx context.Context, id string) error
}

type carService struct {
	repo      repository.CarRepository
	validator *validator.CarValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewCarService(
	repo repository.CarRepository,
	validator *validator.CarValidator,
	publisher events.Publisher,
	cfg *config.Config,
) CarService {
	return &carService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *carService) Create(ctx context.Context, car *model.Car) error {
	// ids are always assigned by the store
	car.ID = ""
	s.sanitize(car)
	// new listings are always bookable; status only moves through bookings
	car.Status = model.CarAvailable

	if err := s.validator.Validate(car); err != nil {
		s.cfg.Log.Warn("Car validation failed", "error", err)
		return validationError(err)
	}

	if err := s.repo.Create(ctx, car); err != nil {
		s.cfg.Log.Error("Failed to create car", "error", err)
		return apperrors.Internal("Failed to create car", err)
	}

	s.cfg.Log.Info("Car created successfully",
		"id", car.ID,
		"provider_email", car.ProviderEmail,
	)
	events.Notify(ctx, s.publisher, s.cfg.Log, events.Event{Type: events.CarCreated, Key: car.ID, Payload: car})
	return nil
}

// Update applies the patch field by field. A patch that names nothing, hits
// no car or leaves the stored car as it was is reported as NoChange.
func (s *carService) Update(ctx context.Context, id string, updates *model.CarUpdate) error {
	if id == "" {
		return apperrors.NoChange("No car ID provided")
	}
	if !primitive.IsValidObjectID(id) {
		return apperrors.InvalidID("car", id)
	}
	if updates.IsEmpty() {
		return apperrors.NoChange("No fields to update")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Car update validation failed", "id", id, "error", err)
		return validationError(err)
	}

	result, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, carserrors.ErrNotFound) {
			s.cfg.Log.Info("Car update matched no car", "id", id)
			return apperrors.NoChange("No changes were made")
		}
		if errors.Is(err, carserrors.ErrInvalidID) {
			return apperrors.InvalidID("car", id)
		}
		s.cfg.Log.Error("Failed to update car", "id", id, "error", err)
		return apperrors.Internal("Failed to update car", err)
	}

	if result.ModifiedCount == 0 {
		s.cfg.Log.Info("Car update changed nothing", "id", id)
		return apperrors.NoChange("No changes were made")
	}

	s.cfg.Log.Info("Car updated successfully", "id", id)
	events.Notify(ctx, s.publisher, s.cfg.Log, events.Event{
		Type:    events.CarUpdated,
		Key:     id,
		Payload: map[string]any{"id": id, "changes": updates},
	})
	return nil
}

func (s *carService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Car ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, carserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Car", id)
		}
		if errors.Is(err, carserrors.ErrInvalidID) {
			return apperrors.InvalidID("car", id)
		}
		s.cfg.Log.Error("Failed to delete car", "id", id, "error", err)
		return apperrors.Internal("Failed to delete car", err)
	}

	s.cfg.Log.Info("Car deleted successfully", "id", id)
	events.Notify(ctx, s.publisher, s.cfg.Log, events.Event{
		Type:    events.CarDeleted,
		Key:     id,
		Payload: map[string]string{"id": id},
	})
	return nil
}

func (s *carService) sanitize(car *model.Car) {
	car.CarName = sanitizer.SanitizeText(car.CarName)
	car.Description = sanitizer.SanitizeText(car.Description)
	car.Category = sanitizer.SanitizeText(car.Category)
	car.Location = sanitizer.SanitizeText(car.Location)
	car.ImageURL = sanitizer.SanitizeURL(car.ImageURL)
	car.ProviderName = sanitizer.SanitizeText(car.ProviderName)
	car.ProviderEmail = sanitizer.NormalizeEmail(car.ProviderEmail)
}

func (s *carService) sanitizeUpdate(u *model.CarUpdate) {
	u.CarName = sanitizer.SanitizeTextPtr(u.CarName)
	u.Description = sanitizer.SanitizeTextPtr(u.Description)
	u.Category = sanitizer.SanitizeTextPtr(u.Category)
	u.Location = sanitizer.SanitizeTextPtr(u.Location)
	u.ProviderName = sanitizer.SanitizeTextPtr(u.ProviderName)
	u.ProviderEmail = sanitizer.SanitizeEmailPtr(u.ProviderEmail)
	if u.ImageURL != nil {
		url := sanitizer.SanitizeURL(*u.ImageURL)
		u.ImageURL = &url
	}
}

func validationError(err error) error {
	var fieldErrs validation.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.Validation("Invalid car input", fieldErrs.Details())
	}
	return apperrors.Validation("Invalid car input", map[string]any{"error": err.Error()})
}
