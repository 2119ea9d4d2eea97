package usecase

import (
	"context"
	"log"

	"github.com/samber/lo"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/entity"
	"github.com/mohamedidrisssalhi/Convo/internal/domain/repository"
	"github.com/mohamedidrisssalhi/Convo/internal/infrastructure/ratelimit"
	ws "github.com/mohamedidrisssalhi/Convo/internal/infrastructure/websocket"
	"github.com/mohamedidrisssalhi/Convo/pkg/errors"
)

type RoomUseCase struct {
	roomRepo    repository.RoomRepository
	userRepo    repository.UserRepository
	hub         *ws.Hub
	rateLimiter *ratelimit.RateLimiter
}

func NewRoomUseCase(
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	hub *ws.Hub,
) *RoomUseCase {
	return &RoomUseCase{
		roomRepo:    roomRepo,
		userRepo:    userRepo,
		hub:         hub,
		rateLimiter: ratelimit.NewRateLimiter(),
	}
}

type CreateRoomInput struct {
	Name    string
	Members []string
	Avatar  string
}

func (uc *RoomUseCase) CreateRoom(ctx context.Context, creatorID string, input CreateRoomInput) (*entity.Room, error) {
	allowed, waitTime := uc.rateLimiter.Allow(creatorID, "create_room")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another room", waitTime)
	}

	members := input.Members
	if len(members) == 0 {
		members = []string{creatorID}
	}
	members = lo.Uniq(members)

	// Room names are unique across rooms.
	existing, err := uc.roomRepo.GetByName(ctx, input.Name)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Conflict("Room already exists")
	}

	room := &entity.Room{
		Name:    input.Name,
		Members: members,
		Avatar:  input.Avatar,
	}
	if err := uc.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	return room, nil
}

func (uc *RoomUseCase) ListRooms(ctx context.Context) ([]*entity.Room, error) {
	return uc.roomRepo.List(ctx)
}

// JoinRoom makes the user a durable member. Current viewers of the room get a
// refreshed membership list; the event-channel join is a separate call the
// client issues on its own.
func (uc *RoomUseCase) JoinRoom(ctx context.Context, userID, roomID string) (*entity.Room, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.HasMember(userID) {
		if err := uc.roomRepo.AddMember(ctx, roomID, userID); err != nil {
			return nil, err
		}
		room.Members = append(room.Members, userID)
	}

	uc.hub.BroadcastRoomMembership(ctx, roomID)

	return room, nil
}

func (uc *RoomUseCase) LeaveRoom(ctx context.Context, userID, roomID string) error {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}

	if room.HasMember(userID) {
		if err := uc.roomRepo.RemoveMember(ctx, roomID, userID); err != nil {
			return err
		}
	}

	uc.hub.BroadcastRoomMembership(ctx, roomID)

	return nil
}

// ListRoomMembers resolves the durable membership to user summaries. It is the
// hub's MemberLister: the viewer set decides who to notify, this decides what
// they see.
func (uc *RoomUseCase) ListRoomMembers(ctx context.Context, roomID string) ([]entity.UserSummary, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	members := make([]entity.UserSummary, 0, len(room.Members))
	for _, memberID := range lo.Uniq(room.Members) {
		user, err := uc.userRepo.GetByID(ctx, memberID)
		if err != nil {
			log.Printf("ListRoomMembers: skipping member %s of room %s: %v", memberID, roomID, err)
			continue
		}
		members = append(members, user.Summary())
	}

	return members, nil
}
