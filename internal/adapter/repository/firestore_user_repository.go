package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/entity"
	"github.com/mohamedidrisssalhi/Convo/internal/domain/repository"
	"github.com/mohamedidrisssalhi/Convo/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}

	return &user, nil
}

func (r *firestoreUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := r.queryOne(ctx, "username", username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	// Fall back to matching the display name, mirroring lookup by either handle.
	return r.queryOne(ctx, "fullName", username)
}

func (r *firestoreUserRepository) queryOne(ctx context.Context, field, value string) (*entity.User, error) {
	iter := r.client.Collection("users").Where(field, "==", value).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("User", nil)
		}
		return nil, errors.Internal("Failed to query user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}

	return &user, nil
}

func (r *firestoreUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	iter := r.client.Collection("users").Documents(ctx)

	var users []*entity.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating users: %v", err)
			return nil, errors.Internal("Failed to iterate users", err)
		}

		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			return nil, errors.Internal("Failed to parse user data", err)
		}
		users = append(users, &user)
	}

	return users, nil
}

func (r *firestoreUserRepository) TouchLastMessageAt(ctx context.Context, id string, at time.Time) error {
	_, err := r.client.Collection("users").Doc(id).Update(ctx, []firestore.Update{
		{Path: "lastMessageAt", Value: at},
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		return errors.Internal("Failed to update user activity", err)
	}
	return nil
}

func (r *firestoreUserRepository) AddFriendRequest(ctx context.Context, fromID, toID string) error {
	_, err := r.client.Collection("users").Doc(toID).Update(ctx, []firestore.Update{
		{Path: "incomingRequests", Value: firestore.ArrayUnion(fromID)},
	})
	if err != nil {
		return errors.Internal("Failed to record incoming request", err)
	}

	_, err = r.client.Collection("users").Doc(fromID).Update(ctx, []firestore.Update{
		{Path: "sentRequests", Value: firestore.ArrayUnion(toID)},
	})
	if err != nil {
		return errors.Internal("Failed to record sent request", err)
	}
	return nil
}

func (r *firestoreUserRepository) AcceptFriendRequest(ctx context.Context, ownerID, senderID string) error {
	_, err := r.client.Collection("users").Doc(ownerID).Update(ctx, []firestore.Update{
		{Path: "incomingRequests", Value: firestore.ArrayRemove(senderID)},
		{Path: "friends", Value: firestore.ArrayUnion(senderID)},
	})
	if err != nil {
		return errors.Internal("Failed to accept friend request", err)
	}

	_, err = r.client.Collection("users").Doc(senderID).Update(ctx, []firestore.Update{
		{Path: "sentRequests", Value: firestore.ArrayRemove(ownerID)},
		{Path: "friends", Value: firestore.ArrayUnion(ownerID)},
	})
	if err != nil {
		return errors.Internal("Failed to update request sender", err)
	}
	return nil
}

func (r *firestoreUserRepository) RejectFriendRequest(ctx context.Context, ownerID, senderID string) error {
	_, err := r.client.Collection("users").Doc(ownerID).Update(ctx, []firestore.Update{
		{Path: "incomingRequests", Value: firestore.ArrayRemove(senderID)},
	})
	if err != nil {
		return errors.Internal("Failed to reject friend request", err)
	}

	_, err = r.client.Collection("users").Doc(senderID).Update(ctx, []firestore.Update{
		{Path: "sentRequests", Value: firestore.ArrayRemove(ownerID)},
	})
	if err != nil {
		return errors.Internal("Failed to update request sender", err)
	}
	return nil
}

func (r *firestoreUserRepository) RemoveFriend(ctx context.Context, ownerID, friendID string) error {
	_, err := r.client.Collection("users").Doc(ownerID).Update(ctx, []firestore.Update{
		{Path: "friends", Value: firestore.ArrayRemove(friendID)},
	})
	if err != nil {
		return errors.Internal("Failed to remove friend", err)
	}

	_, err = r.client.Collection("users").Doc(friendID).Update(ctx, []firestore.Update{
		{Path: "friends", Value: firestore.ArrayRemove(ownerID)},
	})
	if err != nil {
		return errors.Internal("Failed to update removed friend", err)
	}
	return nil
}
