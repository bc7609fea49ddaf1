package validator

import (
	"rentwheels/pkg/logger"
	"rentwheels/pkg/model"
	"rentwheels/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type CarValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCarValidator(log *logger.Logger) *CarValidator {
	log.Info("Car validator initialized successfully")

	return &CarValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *CarValidator) Validate(car *model.Car) error {
	return validation.Struct(v.validate, car)
}

func (v *CarValidator) ValidateUpdate(update *model.CarUpdate) error {
	return validation.Struct(v.validate, update)
}
