package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	domainchat "homeseek/internal/domain/chat"
	domainlistings "homeseek/internal/domain/listings"
	domainuser "homeseek/internal/domain/user"
)

type ConversationRepository struct {
	col      *mongo.Collection
	messages *mongo.Collection
	users    *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{
		col:      db.Collection(conversationsCollection),
		messages: db.Collection(messagesCollection),
		users:    db.Collection(usersCollection),
	}
}

var _ domainchat.ConversationRepository = (*ConversationRepository)(nil)

// Create inserts a new conversation and assigns its id. The unique
// (listing_id, participants) index turns a lost race into
// ErrConversationExists, which the caller resolves by re-reading.
func (r *ConversationRepository) Create(ctx context.Context, conversation *domainchat.Conversation) error {
	doc := conversationDocument{
		ID:        primitive.NewObjectID(),
		ListingID: string(conversation.ListingID),
		Participants: [2]string{
			string(conversation.Participants[0]),
			string(conversation.Participants[1]),
		},
		LastMessage: conversation.LastMessage,
		CreatedAt:   conversation.CreatedAt.UnixMilli(),
		UpdatedAt:   conversation.UpdatedAt.UnixMilli(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainchat.ErrConversationExists
		}
		return err
	}
	conversation.ID = domainchat.ConversationID(doc.ID.Hex())
	return nil
}

func (r *ConversationRepository) ByID(ctx context.Context, id domainchat.ConversationID) (*domainchat.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, domainchat.ErrConversationNotFound
	}
	var doc conversationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainchat.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ConversationRepository) ByKey(ctx context.Context, listingID domainlistings.ListingID, pair [2]domainuser.ID) (*domainchat.Conversation, error) {
	filter := bson.M{
		"listing_id":     string(listingID),
		"participants.0": string(pair[0]),
		"participants.1": string(pair[1]),
	}
	var doc conversationDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainchat.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ConversationRepository) UpdateLastMessage(ctx context.Context, id domainchat.ConversationID, text string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return domainchat.ErrConversationNotFound
	}
	update := bson.M{"$set": bson.M{"last_message": text, "updated_at": at.UnixMilli()}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainchat.ErrConversationNotFound
	}
	return nil
}

// Inbox joins each of the user's conversations against the message log and
// the peer's profile in one aggregation. Previews come from the latest
// stored message, so the cached last_message field can never drift into
// what the user sees. Conversations without messages are filtered out.
func (r *ConversationRepository) Inbox(ctx context.Context, userID domainuser.ID) ([]domainchat.InboxEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"participants": string(userID)}}},
		{{Key: "$lookup", Value: bson.M{
			"from": messagesCollection,
			"let":  bson.M{"conv": bson.M{"$toString": "$_id"}},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$conversation_id", "$$conv"}}}},
				bson.M{"$sort": bson.M{"created_at": -1, "_id": -1}},
				bson.M{"$limit": 1},
			},
			"as": "latest",
		}}},
		{{Key: "$match", Value: bson.M{"latest": bson.M{"$ne": bson.A{}}}}},
		{{Key: "$unwind", Value: "$latest"}},
		{{Key: "$addFields", Value: bson.M{
			"peer_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{bson.M{"$arrayElemAt": bson.A{"$participants", 0}}, string(userID)}},
				bson.M{"$arrayElemAt": bson.A{"$participants", 1}},
				bson.M{"$arrayElemAt": bson.A{"$participants", 0}},
			}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": usersCollection,
			"let":  bson.M{"peer": "$peer_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{bson.M{"$toString": "$_id"}, "$$peer"}}}},
				bson.M{"$project": bson.M{"username": 1, "email": 1}},
			},
			"as": "peer",
		}}},
		{{Key: "$sort", Value: bson.M{"latest.created_at": -1}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domainchat.InboxEntry
	for cursor.Next(ctx) {
		var doc inboxDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entry := domainchat.InboxEntry{
			ConversationID: domainchat.ConversationID(doc.ID.Hex()),
			ListingID:      domainlistings.ListingID(doc.ListingID),
			LastMessage:    doc.Latest.Text,
			UpdatedAt:      timestampToTime(doc.Latest.CreatedAt),
		}
		if len(doc.Peer) > 0 {
			entry.Peer = &domainuser.PublicProfile{
				ID:       domainuser.ID(doc.Peer[0].ID.Hex()),
				Username: doc.Peer[0].Username,
				Email:    doc.Peer[0].Email,
			}
		}
		entries = append(entries, entry)
	}
	return entries, cursor.Err()
}

type conversationDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	ListingID    string             `bson:"listing_id"`
	Participants [2]string          `bson:"participants"`
	LastMessage  string             `bson:"last_message,omitempty"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (d conversationDocument) toAggregate() *domainchat.Conversation {
	return &domainchat.Conversation{
		ID:        domainchat.ConversationID(d.ID.Hex()),
		ListingID: domainlistings.ListingID(d.ListingID),
		Participants: [2]domainuser.ID{
			domainuser.ID(d.Participants[0]),
			domainuser.ID(d.Participants[1]),
		},
		LastMessage: d.LastMessage,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}

type inboxDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	ListingID string             `bson:"listing_id"`
	Latest    struct {
		Text      string `bson:"text"`
		CreatedAt int64  `bson:"created_at"`
	} `bson:"latest"`
	Peer []struct {
		ID       primitive.ObjectID `bson:"_id"`
		Username string             `bson:"username"`
		Email    string             `bson:"email"`
	} `bson:"peer"`
}
