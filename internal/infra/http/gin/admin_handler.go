package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homeseek/internal/app/dto"
	domainlistings "homeseek/internal/domain/listings"
	domainuser "homeseek/internal/domain/user"
)

type AdminHTTP interface {
	ListUsers(c *gin.Context)
	UpdateUser(c *gin.Context)
	DeleteUser(c *gin.Context)
	ListListings(c *gin.Context)
	UpdateListing(c *gin.Context)
	DeleteListing(c *gin.Context)
}

type AdminHandler struct {
	Users    domainuser.Repository
	Listings domainlistings.Repository
	Logger   *slog.Logger
}

func (h AdminHandler) ListUsers(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)
	if page < 1 {
		page = 1
	}
	limit := parsePositiveInt(c.DefaultQuery("limit", "10"), 10)
	users, total, err := h.Users.List(requestContext(c), domainuser.ListParams{
		Query:  c.Query("search"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserPage{
		Items: dto.MapUserProfiles(users),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h AdminHandler) UpdateUser(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req dto.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.Users.Update(requestContext(c), domainuser.ID(c.Param("id")), domainuser.UpdateParams{
		Username: req.Username,
		Email:    req.Email,
		Avatar:   req.Avatar,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

// DeleteUser removes the account and its listings. Conversations and
// messages are kept; the inbox renders their peer as null.
func (h AdminHandler) DeleteUser(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id := domainuser.ID(c.Param("id"))
	if err := h.Users.Delete(requestContext(c), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if err := h.Listings.DeleteByOwner(requestContext(c), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h AdminHandler) ListListings(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)
	if page < 1 {
		page = 1
	}
	limit := parsePositiveInt(c.DefaultQuery("limit", "10"), 10)
	listings, total, err := h.Listings.List(requestContext(c), domainlistings.ListParams{
		Query:  c.Query("search"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListingPage{
		Items: dto.MapListings(listings),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h AdminHandler) UpdateListing(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	listing, err := h.Listings.Update(requestContext(c), domainlistings.ListingID(c.Param("id")), domainlistings.UpdateParams{
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
	c.JSON(http.StatusOK, dto.MapListing(listing))
}

func (h AdminHandler) DeleteListing(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	if err := h.Listings.Delete(requestContext(c), domainlistings.ListingID(c.Param("id"))); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
