package service

import (
	"context"
	"errors"
	"rentwheels/internal/events"
	userserrors "rentwheels/internal/users/errors"
	"rentwheels/internal/users/repository"
	"rentwheels/internal/users/validator"
	"rentwheels/pkg/config"
	apperrors "rentwheels/pkg/errors"
	"rentwheels/pkg/model"
	"rentwheels/pkg/sanitizer"
	"rentwheels/pkg/validation"
)

const (
	MessageRegistered    = "User registered successfully"
	MessageAlreadyExists = "User already exists"
)

// Registration reports whether a new user was stored. An existing email
// is not an error; Created is false and User is nil.
type Registration struct {
	User    *model.User
	Created bool
	Message string
}

type UserService interface {
	RegisterIfAbsent(ctx context.Context, user *model.User) (*Registration, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	publisher events.Publisher,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *userService) RegisterIfAbsent(ctx context.Context, user *model.User) (*Registration, error) {
	user.ID = ""
	user.Email = sanitizer.NormalizeEmail(user.Email)
	user.Name = sanitizer.SanitizeText(user.Name)
	user.PhotoURL = sanitizer.SanitizeURL(user.PhotoURL)

	if err := s.validator.Validate(user); err != nil {
		s.cfg.Log.Warn("User validation failed", "error", err)
		var fieldErrs validation.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return nil, apperrors.InvalidInput("Invalid user input").WithDetails(fieldErrs.Details())
		}
		return nil, apperrors.InvalidInput("Invalid user input")
	}

	_, err := s.repo.FindByEmail(ctx, user.Email)
	if err == nil {
		s.cfg.Log.Info("User already registered", "email", user.Email)
		return &Registration{Message: MessageAlreadyExists}, nil
	}
	if !errors.Is(err, userserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to look up user", "email", user.Email, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrAlreadyExists) {
			s.cfg.Log.Info("User registered concurrently", "email", user.Email)
			return &Registration{Message: MessageAlreadyExists}, nil
		}
		s.cfg.Log.Error("Failed to create user", "email", user.Email, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered successfully", "id", user.ID, "email", user.Email)
	events.Notify(ctx, s.publisher, s.cfg.Log, events.Event{Type: events.UserRegistered, Key: user.Email, Payload: user})

	return &Registration{User: user, Created: true, Message: MessageRegistered}, nil
}
