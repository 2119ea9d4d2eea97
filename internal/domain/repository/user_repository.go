package repository

import (
	"context"
	"time"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	TouchLastMessageAt(ctx context.Context, id string, at time.Time) error

	AddFriendRequest(ctx context.Context, fromID, toID string) error
	AcceptFriendRequest(ctx context.Context, ownerID, senderID string) error
	RejectFriendRequest(ctx context.Context, ownerID, senderID string) error
	RemoveFriend(ctx context.Context, ownerID, friendID string) error
}
