package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/okutsen/chatline/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	count, err := s.users().CountDocuments(ctx, bson.M{"email": u.Email})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUserExists
	}
	_, err = s.users().InsertOne(ctx, u)
	return err
}

func (s *Store) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var u domain.User
	err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return &u, err
}

// ListUsers returns everyone except the given user, for the sidebar.
func (s *Store) ListUsers(ctx context.Context, except domain.UserID) ([]domain.User, error) {
	cur, err := s.users().Find(ctx, bson.M{"_id": bson.M{"$ne": except}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
