package repository

import (
	"context"
	"time"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/entity"
)

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	GetByName(ctx context.Context, name string) (*entity.Room, error)
	List(ctx context.Context) ([]*entity.Room, error)
	AddMember(ctx context.Context, roomID, userID string) error
	RemoveMember(ctx context.Context, roomID, userID string) error
	TouchLastMessageAt(ctx context.Context, roomID string, at time.Time) error
}
