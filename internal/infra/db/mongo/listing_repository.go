package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "homeseek/internal/domain/listings"
	domainuser "homeseek/internal/domain/user"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(listingsCollection)}
}

var _ domainlistings.Repository = (*ListingRepository)(nil)

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, domainlistings.ErrNotFound
	}
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) ByOwner(ctx context.Context, owner domainuser.ID) ([]*domainlistings.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_ref": string(owner)}, opts)
	if err != nil {
		return nil, err
	}
	return decodeListings(ctx, cursor)
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc, err := newListingDocument(listing)
	if err != nil {
		return err
	}
	_, err = r.col.InsertOne(ctx, doc)
	return err
}

func (r *ListingRepository) Update(ctx context.Context, id domainlistings.ListingID, params domainlistings.UpdateParams) (*domainlistings.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, domainlistings.ErrNotFound
	}
	set := bson.M{"updated_at": time.Now().UnixMilli()}
	if params.Name != nil {
		set["name"] = *params.Name
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}
	if params.Address != nil {
		set["address"] = *params.Address
	}
	if params.RegularPrice != nil {
		set["regular_price"] = *params.RegularPrice
	}
	if params.DiscountPrice != nil {
		set["discount_price"] = *params.DiscountPrice
	}
	if params.Bathrooms != nil {
		set["bathrooms"] = *params.Bathrooms
	}
	if params.Bedrooms != nil {
		set["bedrooms"] = *params.Bedrooms
	}
	if params.Furnished != nil {
		set["furnished"] = *params.Furnished
	}
	if params.Parking != nil {
		set["parking"] = *params.Parking
	}
	if params.Type != nil {
		set["type"] = *params.Type
	}
	if params.Offer != nil {
		set["offer"] = *params.Offer
	}
	if params.ImageURLs != nil {
		set["image_urls"] = *params.ImageURLs
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc listingDocument
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return domainlistings.ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) DeleteByOwner(ctx context.Context, owner domainuser.ID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_ref": string(owner)})
	return err
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	filter := bson.M{}
	if params.Term != "" {
		filter["name"] = primitive.Regex{Pattern: regexEscape(params.Term), Options: "i"}
	}
	if params.Type != "" && params.Type != "all" {
		filter["type"] = params.Type
	}
	if params.Offer != nil {
		filter["offer"] = *params.Offer
	}
	if params.Furnished != nil {
		filter["furnished"] = *params.Furnished
	}
	if params.Parking != nil {
		filter["parking"] = *params.Parking
	}
	sort := "created_at"
	if params.Sort == "regularPrice" {
		sort = "regular_price"
	}
	direction := -1
	if params.Order == "asc" {
		direction = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sort, Value: direction}}).
		SetSkip(int64(params.Offset))
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeListings(ctx, cursor)
}

func (r *ListingRepository) List(ctx context.Context, params domainlistings.ListParams) ([]*domainlistings.Listing, int64, error) {
	filter := bson.M{}
	if params.Query != "" {
		filter["name"] = primitive.Regex{Pattern: regexEscape(params.Query), Options: "i"}
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(params.Offset))
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	listings, err := decodeListings(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func decodeListings(ctx context.Context, cursor *mongo.Cursor) ([]*domainlistings.Listing, error) {
	defer cursor.Close(ctx)
	var listings []*domainlistings.Listing
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		listings = append(listings, doc.toAggregate())
	}
	return listings, cursor.Err()
}

type listingDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	UserRef       string             `bson:"user_ref"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description,omitempty"`
	Address       string             `bson:"address,omitempty"`
	RegularPrice  int64              `bson:"regular_price"`
	DiscountPrice int64              `bson:"discount_price,omitempty"`
	Bathrooms     int                `bson:"bathrooms"`
	Bedrooms      int                `bson:"bedrooms"`
	Furnished     bool               `bson:"furnished"`
	Parking       bool               `bson:"parking"`
	Type          string             `bson:"type"`
	Offer         bool               `bson:"offer"`
	ImageURLs     []string           `bson:"image_urls,omitempty"`
	CreatedAt     int64              `bson:"created_at"`
	UpdatedAt     int64              `bson:"updated_at"`
}

func newListingDocument(l *domainlistings.Listing) (listingDocument, error) {
	oid, err := primitive.ObjectIDFromHex(string(l.ID))
	if err != nil {
		return listingDocument{}, domainlistings.ErrIDRequired
	}
	return listingDocument{
		ID:            oid,
		UserRef:       string(l.Owner),
		Name:          l.Name,
		Description:   l.Description,
		Address:       l.Address,
		RegularPrice:  l.RegularPrice,
		DiscountPrice: l.DiscountPrice,
		Bathrooms:     l.Bathrooms,
		Bedrooms:      l.Bedrooms,
		Furnished:     l.Furnished,
		Parking:       l.Parking,
		Type:          l.Type,
		Offer:         l.Offer,
		ImageURLs:     l.ImageURLs,
		CreatedAt:     l.CreatedAt.UnixMilli(),
		UpdatedAt:     l.UpdatedAt.UnixMilli(),
	}, nil
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:            domainlistings.ListingID(d.ID.Hex()),
		Owner:         domainuser.ID(d.UserRef),
		Name:          d.Name,
		Description:   d.Description,
		Address:       d.Address,
		RegularPrice:  d.RegularPrice,
		DiscountPrice: d.DiscountPrice,
		Bathrooms:     d.Bathrooms,
		Bedrooms:      d.Bedrooms,
		Furnished:     d.Furnished,
		Parking:       d.Parking,
		Type:          d.Type,
		Offer:         d.Offer,
		ImageURLs:     d.ImageURLs,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
}
