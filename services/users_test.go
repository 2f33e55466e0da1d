package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"wanderlust/models"
	"wanderlust/validation"
)

func init() {
	hashCost = bcrypt.MinCost
}

func registerUser(t *testing.T, svc *UserService, email string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), &validation.RegisterInput{
		Name:     "Ana Traveler",
		Email:    email,
		Password: "correct horse",
	})
	require.NoError(t, err)
	return u
}

func TestUserRegisterAndAuthenticate(t *testing.T) {
	coll := newMemColl("email")
	svc := NewUserService(coll)
	ctx := context.Background()

	u := registerUser(t, svc, " Ana@Example.com ")
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "ANA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "USD", got.Preferences.Currency)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, &validation.RegisterInput{Name: "Again", Email: "ana@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserChangePassword(t *testing.T) {
	svc := NewUserService(newMemColl("email"))
	ctx := context.Background()
	u := registerUser(t, svc, "ana@example.com")

	err := svc.ChangePassword(ctx, u.ID.Hex(), "not it", "brand new pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, u.ID.Hex(), "correct horse", "brand new pass"))
	_, err = svc.Authenticate(ctx, "ana@example.com", "brand new pass")
	assert.NoError(t, err)
}

func TestUserProfileAndPreferences(t *testing.T) {
	svc := NewUserService(newMemColl("email"))
	ctx := context.Background()
	u := registerUser(t, svc, "ana@example.com")
	id := u.ID.Hex()

	out, err := svc.UpdateProfile(ctx, id, &validation.UserUpdateInput{Name: strPtr("Ana Traveler")})
	require.NoError(t, err)
	assert.Equal(t, Unchanged, out)

	out, err = svc.UpdateProfile(ctx, id, &validation.UserUpdateInput{Bio: strPtr("Always packing")})
	require.NoError(t, err)
	assert.Equal(t, Updated, out)

	prefs := &validation.PreferencesInput{Currency: "EUR", Newsletter: true, TravelStyles: []string{"beach"}}
	out, err = svc.UpdatePreferences(ctx, id, prefs)
	require.NoError(t, err)
	assert.Equal(t, Updated, out)

	out, err = svc.UpdatePreferences(ctx, id, prefs)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, out)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Always packing", got.Bio)
	assert.Equal(t, "EUR", got.Preferences.Currency)
	assert.Equal(t, []string{"beach"}, got.Preferences.TravelStyles)
}

func TestUserWishlist(t *testing.T) {
	svc := NewUserService(newMemColl("email"))
	ctx := context.Background()
	u := registerUser(t, svc, "ana@example.com")
	id := u.ID.Hex()
	pkg := "65a1b2c3d4e5f60718293a4b"

	out, err := svc.AddToWishlist(ctx, id, pkg)
	require.NoError(t, err)
	assert.Equal(t, Updated, out)

	out, err = svc.AddToWishlist(ctx, id, pkg)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, out)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{pkg}, got.Wishlist)

	out, err = svc.RemoveFromWishlist(ctx, id, pkg)
	require.NoError(t, err)
	assert.Equal(t, Updated, out)

	out, err = svc.RemoveFromWishlist(ctx, id, pkg)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, out)

	out, err = svc.AddToWishlist(ctx, "65a1b2c3d4e5f60718293a4c", pkg)
	require.NoError(t, err)
	assert.Equal(t, NotFound, out)
}
