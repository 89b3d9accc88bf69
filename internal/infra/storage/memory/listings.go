package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainlistings "homeseek/internal/domain/listings"
	domainuser "homeseek/internal/domain/user"
)

// ListingRepository stores listings in memory. Not suitable for production.
type ListingRepository struct {
	mu   sync.RWMutex
	byID map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{byID: make(map[domainlistings.ListingID]*domainlistings.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if listing, ok := r.byID[id]; ok {
		return cloneListing(listing), nil
	}
	return nil, domainlistings.ErrNotFound
}

func (r *ListingRepository) ByOwner(ctx context.Context, owner domainuser.ID) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domainlistings.Listing
	for _, listing := range r.byID {
		if listing.Owner == owner {
			result = append(result, cloneListing(listing))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	if listing == nil || strings.TrimSpace(string(listing.ID)) == "" {
		return domainlistings.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[listing.ID] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, id domainlistings.ListingID, params domainlistings.UpdateParams) (*domainlistings.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.byID[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	if params.Name != nil {
		listing.Name = strings.TrimSpace(*params.Name)
	}
	if params.Description != nil {
		listing.Description = *params.Description
	}
	if params.Address != nil {
		listing.Address = *params.Address
	}
	if params.RegularPrice != nil {
		listing.RegularPrice = *params.RegularPrice
	}
	if params.DiscountPrice != nil {
		listing.DiscountPrice = *params.DiscountPrice
	}
	if params.Bathrooms != nil {
		listing.Bathrooms = *params.Bathrooms
	}
	if params.Bedrooms != nil {
		listing.Bedrooms = *params.Bedrooms
	}
	if params.Furnished != nil {
		listing.Furnished = *params.Furnished
	}
	if params.Parking != nil {
		listing.Parking = *params.Parking
	}
	if params.Type != nil {
		listing.Type = strings.ToLower(strings.TrimSpace(*params.Type))
	}
	if params.Offer != nil {
		listing.Offer = *params.Offer
	}
	if params.ImageURLs != nil {
		listing.ImageURLs = append([]string(nil), (*params.ImageURLs)...)
	}
	listing.UpdatedAt = time.Now()
	return cloneListing(listing), nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *ListingRepository) DeleteByOwner(ctx context.Context, owner domainuser.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, listing := range r.byID {
		if listing.Owner == owner {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	term := strings.ToLower(strings.TrimSpace(params.Term))
	matched := make([]*domainlistings.Listing, 0, len(r.byID))
	for _, listing := range r.byID {
		if term != "" && !strings.Contains(strings.ToLower(listing.Name), term) {
			continue
		}
		if params.Type != "" && params.Type != "all" && listing.Type != params.Type {
			continue
		}
		if params.Offer != nil && listing.Offer != *params.Offer {
			continue
		}
		if params.Furnished != nil && listing.Furnished != *params.Furnished {
			continue
		}
		if params.Parking != nil && listing.Parking != *params.Parking {
			continue
		}
		matched = append(matched, cloneListing(listing))
	}
	sortListings(matched, params.Sort, params.Order)
	return paginate(matched, params.Offset, params.Limit), nil
}

func (r *ListingRepository) List(ctx context.Context, params domainlistings.ListParams) ([]*domainlistings.Listing, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	query := strings.ToLower(strings.TrimSpace(params.Query))
	matched := make([]*domainlistings.Listing, 0, len(r.byID))
	for _, listing := range r.byID {
		if query != "" && !strings.Contains(strings.ToLower(listing.Name), query) {
			continue
		}
		matched = append(matched, cloneListing(listing))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	return paginate(matched, params.Offset, params.Limit), total, nil
}

func sortListings(items []*domainlistings.Listing, field, order string) {
	asc := order == "asc"
	less := func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) }
	if field == "regularPrice" {
		less = func(i, j int) bool { return items[i].RegularPrice < items[j].RegularPrice }
	}
	if asc {
		sort.SliceStable(items, less)
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(j, i) })
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	if l == nil {
		return nil
	}
	copyListing := *l
	copyListing.ImageURLs = append([]string(nil), l.ImageURLs...)
	return &copyListing
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
