package model

import (
	"encoding/json"
	"time"
)

const (
	CarAvailable   = "available"
	CarUnavailable = "unavailable"
)

// Car is a listing. Fields the platform does not interpret beyond the
// declared ones are kept in Extra and stored next to them.
type Car struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CarName       string    `json:"carName" bson:"carName"`
	Description   string    `json:"description" bson:"description"`
	Category      string    `json:"category" bson:"category"`
	RentPrice     float64   `json:"rentPrice" bson:"rentPrice" validate:"gte=0"`
	Location      string    `json:"location" bson:"location"`
	ImageURL      string    `json:"imageUrl" bson:"imageUrl"`
	ProviderName  string    `json:"providerName" bson:"providerName"`
	ProviderEmail string    `json:"providerEmail" bson:"providerEmail" validate:"omitempty,email"`
	Status        string    `json:"status,omitempty" bson:"status,omitempty" validate:"omitempty,oneof=available unavailable"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	Extra         Extra     `json:"-" bson:",inline"`
}

var carFields = fieldSet(
	"id", "_id", "carName", "description", "category", "rentPrice", "location",
	"imageUrl", "providerName", "providerEmail", "status", "createdAt",
)

type carJSON Car

func (c Car) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(carJSON(c))
	if err != nil {
		return nil, err
	}
	return encodeWithExtra(base, c.Extra)
}

func (c *Car) UnmarshalJSON(data []byte) error {
	var decoded carJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := decodeExtra(data, carFields)
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*c = Car(decoded)
	return nil
}

// IsAvailable treats a missing status as available; documents written
// before status existed never carry the field.
func (c *Car) IsAvailable() bool {
	return c.Status != CarUnavailable
}

// CarUpdate is a field-level patch. Nil fields are left untouched; keys the
// model does not declare land in Extra and are written as sent.
// Status, id and createdAt are never patchable: status only moves through bookings.
type CarUpdate struct {
	CarName       *string  `json:"carName,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Category      *string  `json:"category,omitempty"`
	RentPrice     *float64 `json:"rentPrice,omitempty" validate:"omitempty,gte=0"`
	Location      *string  `json:"location,omitempty"`
	ImageURL      *string  `json:"imageUrl,omitempty"`
	ProviderName  *string  `json:"providerName,omitempty"`
	ProviderEmail *string  `json:"providerEmail,omitempty" validate:"omitempty,email"`
	Extra         Extra    `json:"-"`
}

type carUpdateJSON CarUpdate

func (u CarUpdate) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(carUpdateJSON(u))
	if err != nil {
		return nil, err
	}
	return encodeWithExtra(base, u.Extra)
}

func (u *CarUpdate) UnmarshalJSON(data []byte) error {
	var decoded carUpdateJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := decodeExtra(data, carFields)
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*u = CarUpdate(decoded)
	return nil
}

func (u *CarUpdate) IsEmpty() bool {
	return u == nil || (u.CarName == nil &&
		u.Description == nil &&
		u.Category == nil &&
		u.RentPrice == nil &&
		u.Location == nil &&
		u.ImageURL == nil &&
		u.ProviderName == nil &&
		u.ProviderEmail == nil &&
		len(u.Extra) == 0)
}
