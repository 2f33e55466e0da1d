package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Preferences struct {
	Currency      string   `json:"currency" bson:"currency"`
	Newsletter    bool     `json:"newsletter" bson:"newsletter"`
	Notifications bool     `json:"notifications" bson:"notifications"`
	TravelStyles  []string `json:"travelStyles" bson:"travelStyles"`
}

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"passwordHash"`
	Role         string             `json:"role" bson:"role"`
	Name         string             `json:"name" bson:"name"`
	Phone        string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Avatar       string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Bio          string             `json:"bio,omitempty" bson:"bio,omitempty"`
	Preferences  Preferences        `json:"preferences" bson:"preferences"`
	// package ids; dangling ids are tolerated
	Wishlist  []string  `json:"wishlist" bson:"wishlist"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func DefaultPreferences() Preferences {
	return Preferences{
		Currency:      "USD",
		Newsletter:    false,
		Notifications: true,
		TravelStyles:  []string{},
	}
}
