package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "rentwheels/internal/bookings/errors"
	"rentwheels/internal/bookings/repository"
	"rentwheels/internal/bookings/validator"
	carserrors "rentwheels/internal/cars/errors"
	carsrepository "rentwheels/internal/cars/repository"
	"rentwheels/internal/events"
	"rentwheels/pkg/config"
	apperrors "rentwheels/pkg/errors"
	"rentwheels/pkg/model"
	"rentwheels/pkg/sanitizer"
	"rentwheels/pkg/validation"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	MessageBooked        = "Booking created successfully"
	MessageAlreadyBooked = "Car is already booked"
	MessageCancelled     = "Booking cancelled successfully"
)

var errCarTaken = errors.New("car already claimed")

// Outcome is the result of a well-formed booking request. A rejected
// request is not an error: Accepted is false and Message says why.
type Outcome struct {
	Booking  *model.Booking
	Accepted bool
	Message  string
}

type BookingService interface {
	CreateBooking(ctx context.Context, booking *model.Booking) (*Outcome, error)
	CancelBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, email string) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	cars      carsrepository.CarRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	cars carsrepository.CarRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		cars:      cars,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// CreateBooking reserves an available car. Availability is re-checked by
// an atomic claim on the car document, so concurrent requests for the same
// car produce exactly one booking.
func (s *bookingService) CreateBooking(ctx context.Context, booking *model.Booking) (*Outcome, error) {
	s.sanitize(booking)

	if err := s.validator.Validate(booking); err != nil {
		return s.rejectInvalid(err)
	}

	car, err := s.cars.FindByID(ctx, booking.CarID)
	if err != nil {
		return nil, s.carLookupError(booking.CarID, err)
	}
	if !car.IsAvailable() {
		s.cfg.Log.Info("Booking rejected, car unavailable", "car_id", booking.CarID, "user_email", booking.UserEmail)
		return &Outcome{Message: MessageAlreadyBooked}, nil
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking.ID = ""

		claimed, err := s.cars.ClaimAvailable(sessCtx, booking.CarID)
		if err != nil {
			return err
		}
		if !claimed {
			return errCarTaken
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			if !s.repo.Transactional() {
				s.releaseClaim(ctx, booking.CarID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errCarTaken) {
			s.cfg.Log.Info("Booking rejected, car claimed concurrently", "car_id", booking.CarID, "user_email", booking.UserEmail)
			return &Outcome{Message: MessageAlreadyBooked}, nil
		}
		s.cfg.Log.Error("Failed to create booking", "car_id", booking.CarID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"car_id", booking.CarID,
		"user_email", booking.UserEmail,
	)
	events.Notify(ctx, s.publisher, s.cfg.Log, events.Event{Type: events.BookingCreated, Key: booking.CarID, Payload: booking})

	return &Outcome{Booking: booking, Accepted: true, Message: MessageBooked}, nil
}

func (s *bookingService) rejectInvalid(err error) (*Outcome, error) {
	var fieldErrs validation.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, apperrors.Validation("Invalid booking input", map[string]any{"error": err.Error()})
	}

	if missing := fieldErrs.Missing(); len(missing) > 0 {
		s.cfg.Log.Info("Booking rejected, missing fields", "fields", missing)
		return &Outcome{Message: fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", "))}, nil
	}

	s.cfg.Log.Warn("Booking validation failed", "error", err)
	return nil, apperrors.Validation("Invalid booking input", fieldErrs.Details())
}

func (s *bookingService) carLookupError(carID string, err error) error {
	if errors.Is(err, carserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Car", carID)
	}
	if errors.Is(err, carserrors.ErrInvalidID) {
		return apperrors.InvalidID("car", carID)
	}
	s.cfg.Log.Error("Failed to look up car for booking", "car_id", carID, "error", err)
	return apperrors.Internal("Failed to create booking", err)
}

// releaseClaim undoes a claim whose booking could not be written. It runs
// detached from the request so a cancelled client does not strand the car.
func (s *bookingService) releaseClaim(ctx context.Context, carID string) {
	if err := s.cars.Release(context.WithoutCancel(ctx), carID); err != nil {
		s.cfg.Log.Error("Failed to release car after booking failure", "car_id", carID, "error", err)
	}
}

func (s *bookingService) CancelBooking(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.bookingLookupError(id, err)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return err
		}

		if err := s.cars.Release(sessCtx, booking.CarID); err != nil {
			if errors.Is(err, carserrors.ErrNotFound) || errors.Is(err, carserrors.ErrInvalidID) {
				s.cfg.Log.Warn("Cancelled booking references a missing car", "id", id, "car_id", booking.CarID)
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "car_id", booking.CarID, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking cancelled successfully", "id", id, "car_id", booking.CarID)
	events.Notify(ctx, s.publisher, s.cfg.Log, events.Event{Type: events.BookingCancelled, Key: booking.CarID, Payload: booking})
	return nil
}

func (s *bookingService) bookingLookupError(id string, err error) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidID("booking", id)
	}
	s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve booking", err)
}

func (s *bookingService) ListBookings(ctx context.Context, email string) ([]*model.Booking, error) {
	bookings, err := s.repo.FindByUserEmail(ctx, sanitizer.NormalizeEmail(email))
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) sanitize(booking *model.Booking) {
	booking.ID = ""
	booking.BookedAt = time.Time{}
	booking.CarID = strings.TrimSpace(booking.CarID)
	booking.UserName = sanitizer.SanitizeText(booking.UserName)
	booking.UserEmail = sanitizer.NormalizeEmail(booking.UserEmail)
	booking.Location = sanitizer.SanitizeText(booking.Location)
}
