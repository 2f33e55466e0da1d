package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"wanderlust/models"
)

const resetTokenBytes = 32

// PasswordResetService issues single-use reset tokens. Only a SHA-256 of the
// token is stored; the raw value exists in the email alone.
type PasswordResetService struct {
	coll Collection
}

func NewPasswordResetService(coll Collection) *PasswordResetService {
	return &PasswordResetService{coll: coll}
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Issue creates a token for userID valid for ttl and returns the raw value.
// Earlier tokens of the same user stay valid until they expire.
func (s *PasswordResetService) Issue(ctx context.Context, userID primitive.ObjectID, ttl time.Duration) (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	raw := hex.EncodeToString(buf)

	ts := now()
	tok := &models.PasswordResetToken{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		TokenHash: hashToken(raw),
		ExpiresAt: ts.Add(ttl),
		CreatedAt: ts,
	}
	if err := insert(ctx, s.coll, tok); err != nil {
		return "", err
	}
	return raw, nil
}

// FindValidByToken returns ErrNotFound for unknown, used or expired tokens.
func (s *PasswordResetService) FindValidByToken(ctx context.Context, raw string) (*models.PasswordResetToken, error) {
	ts := now()
	tok, err := findOne[models.PasswordResetToken](ctx, s.coll, bson.M{
		"tokenHash": hashToken(raw),
		"usedAt":    bson.M{"$exists": false},
		"expiresAt": bson.M{"$gt": ts},
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid(ts) {
		return nil, ErrNotFound
	}
	return tok, nil
}

// Consume marks the token used. It returns false when the token was already
// used or does not exist.
func (s *PasswordResetService) Consume(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "usedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"usedAt": now()}},
	)
	if err != nil {
		return false, fmt.Errorf("consume token: %w", err)
	}
	return res.ModifiedCount > 0, nil
}
