package model

import (
	"encoding/json"
	"time"
)

// User is keyed by email. Profile fields beyond the declared ones are kept in Extra.
type User struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	PhotoURL  string    `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	Extra     Extra     `json:"-" bson:",inline"`
}

var userFields = fieldSet("id", "_id", "email", "name", "photoUrl", "createdAt")

type userJSON User

func (u User) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(userJSON(u))
	if err != nil {
		return nil, err
	}
	return encodeWithExtra(base, u.Extra)
}

func (u *User) UnmarshalJSON(data []byte) error {
	var decoded userJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := decodeExtra(data, userFields)
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*u = User(decoded)
	return nil
}
