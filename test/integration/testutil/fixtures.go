package testutil

import (
	"fmt"
	"rentwheels/pkg/model"
	"sync/atomic"
)

var fixtureSeq atomic.Int64

type CarBuilder struct {
	car model.Car
}

func NewCarBuilder() *CarBuilder {
	n := fixtureSeq.Add(1)
	return &CarBuilder{
		car: model.Car{
			CarName:       fmt.Sprintf("Test Car %d", n),
			Description:   "Clean, automatic, air conditioned",
			Category:      "sedan",
			RentPrice:     50,
			Location:      "Dhaka",
			ImageURL:      "https://example.com/car.jpg",
			ProviderName:  "Test Provider",
			ProviderEmail: "provider@example.com",
		},
	}
}

func (b *CarBuilder) WithName(name string) *CarBuilder {
	b.car.CarName = name
	return b
}

func (b *CarBuilder) WithRentPrice(price float64) *CarBuilder {
	b.car.RentPrice = price
	return b
}

func (b *CarBuilder) WithProviderEmail(email string) *CarBuilder {
	b.car.ProviderEmail = email
	return b
}

func (b *CarBuilder) Build() model.Car {
	return b.car
}

func ValidCar() model.Car {
	return NewCarBuilder().Build()
}

func BookingRequest(carID, email string) map[string]string {
	return map[string]string{
		"carId":     carID,
		"userName":  "Test Renter",
		"userEmail": email,
		"location":  "Dhaka",
	}
}
