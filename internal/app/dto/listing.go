package dto

import (
	"time"

	domainlistings "homeseek/internal/domain/listings"
)

type ListingView struct {
	ID            string    `json:"_id"`
	UserRef       string    `json:"userRef"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Address       string    `json:"address"`
	RegularPrice  int64     `json:"regularPrice"`
	DiscountPrice int64     `json:"discountPrice"`
	Bathrooms     int       `json:"bathrooms"`
	Bedrooms      int       `json:"bedrooms"`
	Furnished     bool      `json:"furnished"`
	Parking       bool      `json:"parking"`
	Type          string    `json:"type"`
	Offer         bool      `json:"offer"`
	ImageURLs     []string  `json:"imageUrls"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type CreateListingRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	RegularPrice  int64    `json:"regularPrice"`
	DiscountPrice int64    `json:"discountPrice"`
	Bathrooms     int      `json:"bathrooms"`
	Bedrooms      int      `json:"bedrooms"`
	Furnished     bool     `json:"furnished"`
	Parking       bool     `json:"parking"`
	Type          string   `json:"type"`
	Offer         bool     `json:"offer"`
	ImageURLs     []string `json:"imageUrls"`
}

type UpdateListingRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Address       *string   `json:"address"`
	RegularPrice  *int64    `json:"regularPrice"`
	DiscountPrice *int64    `json:"discountPrice"`
	Bathrooms     *int      `json:"bathrooms"`
	Bedrooms      *int      `json:"bedrooms"`
	Furnished     *bool     `json:"furnished"`
	Parking       *bool     `json:"parking"`
	Type          *string   `json:"type"`
	Offer         *bool     `json:"offer"`
	ImageURLs     *[]string `json:"imageUrls"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

func MapListing(listing *domainlistings.Listing) ListingView {
	urls := listing.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return ListingView{
		ID:            string(listing.ID),
		UserRef:       string(listing.Owner),
		Name:          listing.Name,
		Description:   listing.Description,
		Address:       listing.Address,
		RegularPrice:  listing.RegularPrice,
		DiscountPrice: listing.DiscountPrice,
		Bathrooms:     listing.Bathrooms,
		Bedrooms:      listing.Bedrooms,
		Furnished:     listing.Furnished,
		Parking:       listing.Parking,
		Type:          listing.Type,
		Offer:         listing.Offer,
		ImageURLs:     urls,
		CreatedAt:     listing.CreatedAt,
		UpdatedAt:     listing.UpdatedAt,
	}
}

func MapListings(listings []*domainlistings.Listing) []ListingView {
	items := make([]ListingView, 0, len(listings))
	for _, listing := range listings {
		items = append(items, MapListing(listing))
	}
	return items
}
