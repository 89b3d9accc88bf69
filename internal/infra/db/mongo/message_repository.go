package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainchat "homeseek/internal/domain/chat"
	domainuser "homeseek/internal/domain/user"
)

type MessageRepository struct {
	col           *mongo.Collection
	conversations *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{
		col:           db.Collection(messagesCollection),
		conversations: db.Collection(conversationsCollection),
	}
}

var _ domainchat.MessageRepository = (*MessageRepository)(nil)

func (r *MessageRepository) Append(ctx context.Context, message *domainchat.Message) error {
	doc := messageDocument{
		ID:             primitive.NewObjectID(),
		ConversationID: string(message.ConversationID),
		Sender:         string(message.Sender),
		Text:           message.Text,
		CreatedAt:      message.CreatedAt.UnixMilli(),
	}
	if message.ReadAt != nil {
		ms := message.ReadAt.UnixMilli()
		doc.ReadAt = &ms
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return err
	}
	message.ID = domainchat.MessageID(doc.ID.Hex())
	return nil
}

func (r *MessageRepository) History(ctx context.Context, id domainchat.ConversationID) ([]*domainchat.Message, error) {
	// Secondary _id sort keeps equal-timestamp messages in insertion order.
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"conversation_id": string(id)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var messages []*domainchat.Message
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		messages = append(messages, doc.toAggregate())
	}
	return messages, cursor.Err()
}

func (r *MessageRepository) MarkRead(ctx context.Context, id domainchat.ConversationID, reader domainuser.ID, at time.Time) (domainchat.ReadReceipt, error) {
	filter := bson.M{
		"conversation_id": string(id),
		"sender":          bson.M{"$ne": string(reader)},
		"read_at":         bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"read_at": at.UnixMilli()}}
	res, err := r.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return domainchat.ReadReceipt{}, err
	}
	return domainchat.ReadReceipt{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// UnreadCounts groups the reader's unread messages by conversation, scoped
// to conversations the reader actually belongs to.
func (r *MessageRepository) UnreadCounts(ctx context.Context, reader domainuser.ID) ([]domainchat.UnreadCount, error) {
	memberOf, err := r.conversationIDs(ctx, reader)
	if err != nil {
		return nil, err
	}
	if len(memberOf) == 0 {
		return nil, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"conversation_id": bson.M{"$in": memberOf},
			"sender":          bson.M{"$ne": string(reader)},
			"read_at":         bson.M{"$exists": false},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$conversation_id",
			"unread": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"unread": -1, "_id": 1}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var counts []domainchat.UnreadCount
	for cursor.Next(ctx) {
		var row struct {
			ID     string `bson:"_id"`
			Unread int64  `bson:"unread"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts = append(counts, domainchat.UnreadCount{
			ConversationID: domainchat.ConversationID(row.ID),
			Unread:         row.Unread,
		})
	}
	return counts, cursor.Err()
}

func (r *MessageRepository) conversationIDs(ctx context.Context, member domainuser.ID) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.conversations.Find(ctx, bson.M{"participants": string(member)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var ids []string
	for cursor.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID.Hex())
	}
	return ids, cursor.Err()
}

type messageDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	ConversationID string             `bson:"conversation_id"`
	Sender         string             `bson:"sender"`
	Text           string             `bson:"text"`
	ReadAt         *int64             `bson:"read_at,omitempty"`
	CreatedAt      int64              `bson:"created_at"`
}

func (d messageDocument) toAggregate() *domainchat.Message {
	message := &domainchat.Message{
		ID:             domainchat.MessageID(d.ID.Hex()),
		ConversationID: domainchat.ConversationID(d.ConversationID),
		Sender:         domainuser.ID(d.Sender),
		Text:           d.Text,
		CreatedAt:      timestampToTime(d.CreatedAt),
	}
	if d.ReadAt != nil {
		at := timestampToTime(*d.ReadAt)
		message.ReadAt = &at
	}
	return message
}
