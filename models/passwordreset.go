package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PasswordResetToken stores the hash of a single-use reset token.
type PasswordResetToken struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	TokenHash string             `json:"-" bson:"tokenHash"`
	ExpiresAt time.Time          `json:"expiresAt" bson:"expiresAt"`
	UsedAt    *time.Time         `json:"usedAt,omitempty" bson:"usedAt,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Valid reports whether the token is unused and not yet expired at now.
func (t *PasswordResetToken) Valid(now time.Time) bool {
	return t.UsedAt == nil && t.ExpiresAt.After(now)
}
