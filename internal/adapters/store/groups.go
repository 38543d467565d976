package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/okutsen/chatline/internal/domain"
)

func (s *Store) CreateGroup(ctx context.Context, g *domain.Group) error {
	_, err := s.groups().InsertOne(ctx, g)
	return err
}

func (s *Store) GroupByID(ctx context.Context, id domain.GroupID) (*domain.Group, error) {
	var g domain.Group
	err := s.groups().FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return &g, err
}

// GroupsForUser lists the groups the user is a member of, most recently
// updated first.
func (s *Store) GroupsForUser(ctx context.Context, user domain.UserID) ([]domain.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := s.groups().Find(ctx, bson.M{"members": user}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []domain.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Store) UpdateGroup(ctx context.Context, g *domain.Group) error {
	g.UpdatedAt = time.Now().UTC()
	res, err := s.groups().ReplaceOne(ctx, bson.M{"_id": g.ID}, g)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetLastMessage(ctx context.Context, group domain.GroupID, msg domain.MessageID) error {
	_, err := s.groups().UpdateOne(ctx, bson.M{"_id": group}, bson.M{
		"$set": bson.M{"last_message": msg, "updated_at": time.Now().UTC()},
	})
	return err
}

// DeleteGroup removes the group and all of its messages.
func (s *Store) DeleteGroup(ctx context.Context, id domain.GroupID) error {
	if _, err := s.messages().DeleteMany(ctx, bson.M{"group_id": id}); err != nil {
		return err
	}
	res, err := s.groups().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GroupsOf implements core.GroupDirectory.
func (s *Store) GroupsOf(ctx context.Context, user domain.UserID) ([]domain.GroupID, error) {
	cur, err := s.groups().Find(ctx, bson.M{"members": user})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.GroupID
	for cur.Next(ctx) {
		var doc struct {
			ID domain.GroupID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.ID)
	}
	return out, cur.Err()
}

// MembersOf implements core.GroupDirectory.
func (s *Store) MembersOf(ctx context.Context, group domain.GroupID) ([]domain.UserID, error) {
	g, err := s.GroupByID(ctx, group)
	if err != nil {
		return nil, err
	}
	return g.Members, nil
}
