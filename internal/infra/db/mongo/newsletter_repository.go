package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	domainnewsletter "homeseek/internal/domain/newsletter"
)

type NewsletterRepository struct {
	col *mongo.Collection
}

func NewNewsletterRepository(db *mongo.Database) *NewsletterRepository {
	return &NewsletterRepository{col: db.Collection(newsletterCollection)}
}

var _ domainnewsletter.Repository = (*NewsletterRepository)(nil)

func (r *NewsletterRepository) Save(ctx context.Context, sub domainnewsletter.Subscription) error {
	doc := subscriptionDocument{
		ID:        primitive.NewObjectID(),
		Email:     sub.Email,
		CreatedAt: sub.CreatedAt.UnixMilli(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainnewsletter.ErrAlreadySubscribed
		}
		return err
	}
	return nil
}

type subscriptionDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Email     string             `bson:"email"`
	CreatedAt int64              `bson:"created_at"`
}
