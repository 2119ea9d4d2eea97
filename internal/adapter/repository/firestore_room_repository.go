package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/entity"
	"github.com/mohamedidrisssalhi/Convo/internal/domain/repository"
	"github.com/mohamedidrisssalhi/Convo/pkg/errors"
)

type firestoreRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreRoomRepository(client *firestore.Client) repository.RoomRepository {
	return &firestoreRoomRepository{
		client: client,
	}
}

func (r *firestoreRoomRepository) Create(ctx context.Context, room *entity.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}

	now := time.Now()
	room.CreatedAt = now
	room.LastMessageAt = now
	if room.UnreadCounts == nil {
		room.UnreadCounts = make(map[string]int)
	}

	_, err := r.client.Collection("rooms").Doc(room.ID).Set(ctx, room)
	if err != nil {
		return errors.Internal("Failed to create room", err)
	}

	return nil
}

func (r *firestoreRoomRepository) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	doc, err := r.client.Collection("rooms").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Room", err)
		}
		return nil, errors.Internal("Failed to get room", err)
	}

	var room entity.Room
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse room data", err)
	}

	return &room, nil
}

func (r *firestoreRoomRepository) GetByName(ctx context.Context, name string) (*entity.Room, error) {
	iter := r.client.Collection("rooms").Where("name", "==", name).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Room", nil)
		}
		return nil, errors.Internal("Failed to query room by name", err)
	}

	var room entity.Room
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse room data", err)
	}

	return &room, nil
}

func (r *firestoreRoomRepository) List(ctx context.Context) ([]*entity.Room, error) {
	iter := r.client.Collection("rooms").OrderBy("lastMessageAt", firestore.Desc).Documents(ctx)

	var rooms []*entity.Room
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating rooms: %v", err)
			return nil, errors.Internal("Failed to iterate rooms", err)
		}

		var room entity.Room
		if err := doc.DataTo(&room); err != nil {
			return nil, errors.Internal("Failed to parse room data", err)
		}
		rooms = append(rooms, &room)
	}

	return rooms, nil
}

func (r *firestoreRoomRepository) AddMember(ctx context.Context, roomID, userID string) error {
	_, err := r.client.Collection("rooms").Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "members", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Room", err)
		}
		return errors.Internal("Failed to add room member", err)
	}
	return nil
}

func (r *firestoreRoomRepository) RemoveMember(ctx context.Context, roomID, userID string) error {
	_, err := r.client.Collection("rooms").Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "members", Value: firestore.ArrayRemove(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Room", err)
		}
		return errors.Internal("Failed to remove room member", err)
	}
	return nil
}

func (r *firestoreRoomRepository) TouchLastMessageAt(ctx context.Context, roomID string, at time.Time) error {
	_, err := r.client.Collection("rooms").Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "lastMessageAt", Value: at},
	})
	if err != nil {
		return errors.Internal("Failed to update room activity", err)
	}
	return nil
}
