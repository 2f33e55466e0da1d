package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"wanderlust/models"
	"wanderlust/validation"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

var hashCost = bcrypt.DefaultCost

type UserService struct {
	coll Collection
}

func NewUserService(coll Collection) *UserService {
	return &UserService{coll: coll}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register creates a regular user. ErrDuplicate means the email is taken.
func (s *UserService) Register(ctx context.Context, in *validation.RegisterInput) (*models.User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	ts := now()
	u := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         models.RoleUser,
		Name:         in.Name,
		Preferences:  models.DefaultPreferences(),
		Wishlist:     []string{},
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := insert(ctx, s.coll, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks an email and password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := findByID[models.User](ctx, s.coll, id)
	if err != nil {
		return nil, err
	}
	if u.Wishlist == nil {
		u.Wishlist = []string{}
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"email": normalizeEmail(email)})
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}

// ChangePassword requires the current password to match.
func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	return s.SetPassword(ctx, id, next)
}

// SetPassword stores a new hash without checking the old password.
func (s *UserService) SetPassword(ctx context.Context, id, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	out, err := updateFields(ctx, s.coll, id, bson.M{"passwordHash": hash})
	if err != nil {
		return err
	}
	if out == NotFound {
		return ErrNotFound
	}
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in *validation.UserUpdateInput) (Outcome, error) {
	set := bson.M{}
	setString(set, "name", in.Name)
	setString(set, "phone", in.Phone)
	setString(set, "bio", in.Bio)
	setString(set, "avatar", in.Avatar)
	return updateFields(ctx, s.coll, id, set)
}

func (s *UserService) UpdatePreferences(ctx context.Context, id string, in *validation.PreferencesInput) (Outcome, error) {
	styles := in.TravelStyles
	if styles == nil {
		styles = []string{}
	}
	return updateFields(ctx, s.coll, id, bson.M{
		"preferences": models.Preferences{
			Currency:      in.Currency,
			Newsletter:    in.Newsletter,
			Notifications: in.Notifications,
			TravelStyles:  styles,
		},
	})
}

// AddToWishlist is idempotent: adding a saved package reports Unchanged.
// The package id is not checked against the packages collection.
func (s *UserService) AddToWishlist(ctx context.Context, id, packageID string) (Outcome, error) {
	return s.wishlist(ctx, id,
		bson.M{"wishlist": bson.M{"$ne": packageID}},
		bson.M{"$addToSet": bson.M{"wishlist": packageID}},
	)
}

func (s *UserService) RemoveFromWishlist(ctx context.Context, id, packageID string) (Outcome, error) {
	return s.wishlist(ctx, id,
		bson.M{"wishlist": packageID},
		bson.M{"$pull": bson.M{"wishlist": packageID}},
	)
}

// wishlist only matches users whose list actually needs the change, so a
// zero match is resolved like any other update.
func (s *UserService) wishlist(ctx context.Context, id string, filter, update bson.M) (Outcome, error) {
	oid, err := ParseID(id)
	if err != nil {
		return NotFound, err
	}
	filter["_id"] = oid
	update["$set"] = bson.M{"updatedAt": now()}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return NotFound, fmt.Errorf("update wishlist: %w", err)
	}
	if res.ModifiedCount > 0 {
		return Updated, nil
	}
	return existsOutcome(ctx, s.coll, oid)
}
