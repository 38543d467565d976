package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/okutsen/chatline/internal/domain"
)

func (s *Store) CreateMessage(ctx context.Context, m *domain.Message) error {
	_, err := s.messages().InsertOne(ctx, m)
	return err
}

// Conversation returns the direct-message history between two users in
// chronological order and marks the other side's messages as seen.
func (s *Store) Conversation(ctx context.Context, me, other domain.UserID) ([]domain.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": me, "receiver_id": other},
		bson.M{"sender_id": other, "receiver_id": me},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.messages().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []domain.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}

	_, err = s.messages().UpdateMany(ctx,
		bson.M{"sender_id": other, "receiver_id": me, "seen": false},
		bson.M{"$set": bson.M{"seen": true}})
	return msgs, err
}

func (s *Store) GroupMessages(ctx context.Context, group domain.GroupID) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.messages().Find(ctx, bson.M{"group_id": group}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []domain.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Store) MarkSeen(ctx context.Context, id domain.MessageID) error {
	res, err := s.messages().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"seen": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UnseenCounts maps sender id to the number of unseen direct messages
// they have sent to me. Used by the sidebar.
func (s *Store) UnseenCounts(ctx context.Context, me domain.UserID) (map[domain.UserID]int, error) {
	match := bson.D{{Key: "$match", Value: bson.M{"receiver_id": me, "seen": false}}}
	group := bson.D{{Key: "$group", Value: bson.M{"_id": "$sender_id", "count": bson.M{"$sum": 1}}}}
	cur, err := s.messages().Aggregate(ctx, mongo.Pipeline{match, group})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[domain.UserID]int)
	for cur.Next(ctx) {
		var row struct {
			ID    domain.UserID `bson:"_id"`
			Count int           `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.Count
	}
	return out, cur.Err()
}
