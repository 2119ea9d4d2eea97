package repository

import (
	"context"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	ListBetweenUsers(ctx context.Context, userA, userB string) ([]*entity.Message, error)
	ListByRoom(ctx context.Context, roomID string) ([]*entity.Message, error)
	// LastBetweenUsers returns the newest message in either direction, or nil
	// when the pair has never exchanged one.
	LastBetweenUsers(ctx context.Context, userA, userB string) (*entity.Message, error)
}
