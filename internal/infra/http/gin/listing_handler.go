package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"homeseek/internal/app/dto"
	domainlistings "homeseek/internal/domain/listings"
	"homeseek/internal/infra/storage/s3"
)

type ListingHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Get(c *gin.Context)
	Search(c *gin.Context)
	Upload(c *gin.Context)
}

type ListingHandler struct {
	Listings domainlistings.Repository
	Photos   s3.PhotoStore
	Logger   *slog.Logger
}

func (h ListingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:            domainlistings.ListingID(primitive.NewObjectID().Hex()),
		Owner:         p.ID,
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		RegularPrice:  req.RegularPrice,
		DiscountPrice: req.DiscountPrice,
		Bathrooms:     req.Bathrooms,
		Bedrooms:      req.Bedrooms,
		Furnished:     req.Furnished,
		Parking:       req.Parking,
		Type:          req.Type,
		Offer:         req.Offer,
		ImageURLs:     req.ImageURLs,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if err := h.Listings.Save(requestContext(c), listing); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapListing(listing))
}

func (h ListingHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	listing, ok := h.ownedListing(c, p)
	if !ok {
		return
	}
	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	updated, err := h.Listings.Update(requestContext(c), listing.ID, domainlistings.UpdateParams{
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		RegularPrice:  req.RegularPrice,
		DiscountPrice: req.DiscountPrice,
		Bathrooms:     req.Bathrooms,
		Bedrooms:      req.Bedrooms,
		Furnished:     req.Furnished,
		Parking:       req.Parking,
		Type:          req.Type,
		Offer:         req.Offer,
		ImageURLs:     req.ImageURLs,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListing(updated))
}

func (h ListingHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	listing, ok := h.ownedListing(c, p)
	if !ok {
		return
	}
	if err := h.Listings.Delete(requestContext(c), listing.ID); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Listing has been deleted"})
}

// Get returns one listing; public, no credential needed.
func (h ListingHandler) Get(c *gin.Context) {
	listing, err := h.Listings.ByID(requestContext(c), domainlistings.ListingID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListing(listing))
}

// Search is the public catalog query. Absent boolean filters match both
// values; "all" disables the type filter.
func (h ListingHandler) Search(c *gin.Context) {
	params := domainlistings.SearchParams{
		Term:   c.Query("searchTerm"),
		Type:   c.Query("type"),
		Sort:   c.DefaultQuery("sort", "createdAt"),
		Order:  c.DefaultQuery("order", "desc"),
		Limit:  parsePositiveInt(c.Query("limit"), 9),
		Offset: parsePositiveInt(c.Query("startIndex"), 0),
	}
	params.Offer = triState(c.Query("offer"))
	params.Furnished = triState(c.Query("furnished"))
	params.Parking = triState(c.Query("parking"))

	listings, err := h.Listings.Search(requestContext(c), params)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListings(listings))
}

// Upload stores one photo in the public bucket and returns its URL.
func (h ListingHandler) Upload(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		failure(c, http.StatusBadRequest, "Missing 'photo' form file")
		return
	}
	reader, err := file.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer reader.Close()

	url, err := h.Photos.UploadPhoto(requestContext(c), p.ID, file.Filename, reader, file.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.UploadResponse{Success: true, URL: url})
}

func (h ListingHandler) ownedListing(c *gin.Context, p principal) (*domainlistings.Listing, bool) {
	listing, err := h.Listings.ByID(requestContext(c), domainlistings.ListingID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return nil, false
	}
	if listing.Owner != p.ID {
		failure(c, http.StatusForbidden, "You can only manage your own listings")
		return nil, false
	}
	return listing, true
}

// triState maps "true"/"false" to a filter and anything else (including the
// frontend's literal "all" and an absent parameter) to no filter.
func triState(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
