package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	domainuser "homeseek/internal/domain/user"
)

var (
	ErrIDRequired    = errors.New("listings: id is required")
	ErrOwnerRequired = errors.New("listings: owner is required")
	ErrNameRequired  = errors.New("listings: name is required")
	ErrInvalidType   = errors.New("listings: type must be rent or sale")
	ErrNotFound      = errors.New("listings: not found")
)

type ListingID string

const (
	TypeRent = "rent"
	TypeSale = "sale"
)

type Listing struct {
	ID            ListingID
	Owner         domainuser.ID
	Name          string
	Description   string
	Address       string
	RegularPrice  int64
	DiscountPrice int64
	Bathrooms     int
	Bedrooms      int
	Furnished     bool
	Parking       bool
	Type          string
	Offer         bool
	ImageURLs     []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CreateParams struct {
	ID            ListingID
	Owner         domainuser.ID
	Name          string
	Description   string
	Address       string
	RegularPrice  int64
	DiscountPrice int64
	Bathrooms     int
	Bedrooms      int
	Furnished     bool
	Parking       bool
	Type          string
	Offer         bool
	ImageURLs     []string
	Now           time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	kind := strings.ToLower(strings.TrimSpace(params.Type))
	if kind != TypeRent && kind != TypeSale {
		return nil, ErrInvalidType
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &Listing{
		ID:            params.ID,
		Owner:         params.Owner,
		Name:          name,
		Description:   strings.TrimSpace(params.Description),
		Address:       strings.TrimSpace(params.Address),
		RegularPrice:  params.RegularPrice,
		DiscountPrice: params.DiscountPrice,
		Bathrooms:     params.Bathrooms,
		Bedrooms:      params.Bedrooms,
		Furnished:     params.Furnished,
		Parking:       params.Parking,
		Type:          kind,
		Offer:         params.Offer,
		ImageURLs:     append([]string(nil), params.ImageURLs...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SearchParams mirrors the public catalog filters. Nil tri-state filters
// mean "both", matching the original query semantics where an unset flag
// matches true and false alike.
type SearchParams struct {
	Term      string
	Type      string
	Offer     *bool
	Furnished *bool
	Parking   *bool
	Sort      string
	Order     string
	Limit     int
	Offset    int
}

type ListParams struct {
	Query  string
	Limit  int
	Offset int
}

type UpdateParams struct {
	Name          *string
	Description   *string
	Address       *string
	RegularPrice  *int64
	DiscountPrice *int64
	Bathrooms     *int
	Bedrooms      *int
	Furnished     *bool
	Parking       *bool
	Type          *string
	Offer         *bool
	ImageURLs     *[]string
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	ByOwner(ctx context.Context, owner domainuser.ID) ([]*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, id ListingID, params UpdateParams) (*Listing, error)
	Delete(ctx context.Context, id ListingID) error
	DeleteByOwner(ctx context.Context, owner domainuser.ID) error
	Search(ctx context.Context, params SearchParams) ([]*Listing, error)
	List(ctx context.Context, params ListParams) ([]*Listing, int64, error)
}
