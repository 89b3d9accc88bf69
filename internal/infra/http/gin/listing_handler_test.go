package ginserver

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"homeseek/internal/app/dto"
	domainlistings "homeseek/internal/domain/listings"
	domainuser "homeseek/internal/domain/user"
)

func seedListing(t *testing.T, env *testEnv, owner domainuser.ID, name, kind string, price int64, offer bool) domainlistings.ListingID {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(primitive.NewObjectID().Hex()),
		Owner:        owner,
		Name:         name,
		Type:         kind,
		RegularPrice: price,
		Offer:        offer,
	})
	require.NoError(t, err)
	require.NoError(t, env.listings.Save(context.Background(), listing))
	return listing.ID
}

func TestListingLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/listing/create", dto.CreateListingRequest{
		Name:         "Canal house",
		Type:         "sale",
		RegularPrice: 450000,
		Bedrooms:     3,
	}, env.seller)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[dto.ListingView](t, rec)
	assert.Equal(t, string(env.seller), created.UserRef)
	assert.NotNil(t, created.ImageURLs)

	// Public read needs no credential.
	rec = env.do(t, http.MethodGet, "/api/listing/get/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Canal house", decodeBody[dto.ListingView](t, rec).Name)

	newName := "Canal house (renovated)"
	rec = env.do(t, http.MethodPost, "/api/listing/update/"+created.ID, dto.UpdateListingRequest{Name: &newName}, env.seller)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, newName, decodeBody[dto.ListingView](t, rec).Name)

	// Only the owner may touch it.
	rec = env.do(t, http.MethodPost, "/api/listing/update/"+created.ID, dto.UpdateListingRequest{Name: &newName}, env.buyer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/listing/delete/"+created.ID, nil, env.buyer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/listing/delete/"+created.ID, nil, env.seller)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/listing/get/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateListingValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/listing/create", dto.CreateListingRequest{Name: "No auth", Type: "rent"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/listing/create", dto.CreateListingRequest{Type: "rent"}, env.seller)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/listing/create", dto.CreateListingRequest{Name: "Houseboat", Type: "timeshare"}, env.seller)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListingSearch(t *testing.T) {
	env := newTestEnv(t)
	seedListing(t, env, env.seller, "Cheap studio", "rent", 600, false)
	seedListing(t, env, env.seller, "Garden flat", "rent", 1500, true)
	seedListing(t, env, env.seller, "Townhouse", "sale", 380000, false)

	search := func(query string) []dto.ListingView {
		rec := env.do(t, http.MethodGet, "/api/listing/get?"+query, nil, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decodeBody[[]dto.ListingView](t, rec)
	}

	// Fixture listing from newTestEnv ("Sunny loft", rent, 1200) counts too.
	assert.Len(t, search("type=rent"), 3)
	assert.Len(t, search("type=sale"), 1)
	assert.Len(t, search("type=all"), 4)

	byTerm := search("searchTerm=garden")
	require.Len(t, byTerm, 1)
	assert.Equal(t, "Garden flat", byTerm[0].Name)

	withOffer := search("offer=true")
	require.Len(t, withOffer, 1)
	assert.Equal(t, "Garden flat", withOffer[0].Name)
	assert.Len(t, search("offer=all"), 4)

	byPrice := search("type=rent&sort=regularPrice&order=asc")
	require.Len(t, byPrice, 3)
	assert.Equal(t, []int64{600, 1200, 1500}, []int64{byPrice[0].RegularPrice, byPrice[1].RegularPrice, byPrice[2].RegularPrice})

	paged := search(fmt.Sprintf("type=all&sort=regularPrice&order=asc&limit=2&startIndex=%d", 2))
	require.Len(t, paged, 2)
	assert.Equal(t, int64(1500), paged[0].RegularPrice)
}

func TestUploadRequiresPhotoFile(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/listing/upload", nil, env.seller)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
