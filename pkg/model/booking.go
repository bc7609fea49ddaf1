package model

import (
	"time"
)

type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CarID     string    `json:"carId" bson:"carId" validate:"required"`
	UserName  string    `json:"userName" bson:"userName" validate:"required"`
	UserEmail string    `json:"userEmail" bson:"userEmail" validate:"required"`
	Location  string    `json:"location" bson:"location"`
	BookedAt  time.Time `json:"bookedAt" bson:"bookedAt"`
}
