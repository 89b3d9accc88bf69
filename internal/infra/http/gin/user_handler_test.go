package ginserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeseek/internal/app/dto"
)

func TestUserListings(t *testing.T) {
	env := newTestEnv(t)
	seedListing(t, env, env.seller, "Second loft", "rent", 900, false)

	rec := env.do(t, http.MethodGet, "/api/user/listings/"+string(env.seller), nil, env.seller)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	listings := decodeBody[[]dto.ListingView](t, rec)
	// The fixture listing plus the seeded one, both owned by the seller.
	require.Len(t, listings, 2)
	for _, listing := range listings {
		assert.Equal(t, string(env.seller), listing.UserRef)
	}

	// Another user's listings are off limits.
	rec = env.do(t, http.MethodGet, "/api/user/listings/"+string(env.seller), nil, env.buyer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/user/listings/"+string(env.seller), nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserProfileHidesCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/user/"+string(env.seller), nil, env.buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody[dto.UserProfile](t, rec)
	assert.Equal(t, "bob", profile.Username)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUserUpdateSelfOnly(t *testing.T) {
	env := newTestEnv(t)

	username := "bobby"
	rec := env.do(t, http.MethodPost, "/api/user/update/"+string(env.seller), dto.UpdateUserRequest{Username: &username}, env.seller)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "bobby", decodeBody[dto.UserProfile](t, rec).Username)

	rec = env.do(t, http.MethodPost, "/api/user/update/"+string(env.seller), dto.UpdateUserRequest{Username: &username}, env.buyer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
