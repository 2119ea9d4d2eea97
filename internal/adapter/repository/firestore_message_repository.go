package repository

import (
	"context"
	"log"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/entity"
	"github.com/mohamedidrisssalhi/Convo/internal/domain/repository"
	"github.com/mohamedidrisssalhi/Convo/pkg/errors"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

// ListBetweenUsers merges both directions of a direct conversation. Firestore
// has no OR queries across fields, so each direction is fetched separately and
// the result sorted by creation time.
func (r *firestoreMessageRepository) ListBetweenUsers(ctx context.Context, userA, userB string) ([]*entity.Message, error) {
	sent, err := r.collect(ctx, r.client.Collection("messages").
		Where("senderId", "==", userA).
		Where("receiverId", "==", userB).
		Documents(ctx))
	if err != nil {
		return nil, err
	}

	received, err := r.collect(ctx, r.client.Collection("messages").
		Where("senderId", "==", userB).
		Where("receiverId", "==", userA).
		Documents(ctx))
	if err != nil {
		return nil, err
	}

	messages := append(sent, received...)
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return messages, nil
}

func (r *firestoreMessageRepository) ListByRoom(ctx context.Context, roomID string) ([]*entity.Message, error) {
	return r.collect(ctx, r.client.Collection("messages").
		Where("roomId", "==", roomID).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx))
}

func (r *firestoreMessageRepository) LastBetweenUsers(ctx context.Context, userA, userB string) (*entity.Message, error) {
	newest, err := r.newestInDirection(ctx, userA, userB)
	if err != nil {
		return nil, err
	}

	reverse, err := r.newestInDirection(ctx, userB, userA)
	if err != nil {
		return nil, err
	}

	if newest == nil {
		return reverse, nil
	}
	if reverse != nil && reverse.CreatedAt.After(newest.CreatedAt) {
		return reverse, nil
	}
	return newest, nil
}

func (r *firestoreMessageRepository) newestInDirection(ctx context.Context, senderID, receiverID string) (*entity.Message, error) {
	iter := r.client.Collection("messages").
		Where("senderId", "==", senderID).
		Where("receiverId", "==", receiverID).
		OrderBy("createdAt", firestore.Desc).
		Limit(1).
		Documents(ctx)

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, nil
		}
		return nil, errors.Internal("Failed to query latest message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreMessageRepository) collect(ctx context.Context, iter *firestore.DocumentIterator) ([]*entity.Message, error) {
	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages: %v", err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}
	return messages, nil
}
