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

// FriendUseCase drives the friend-graph side channel. Its pushes ride the same
// event connection as message delivery.
type FriendUseCase struct {
	userRepo    repository.UserRepository
	hub         *ws.Hub
	rateLimiter *ratelimit.RateLimiter
}

func NewFriendUseCase(userRepo repository.UserRepository, hub *ws.Hub) *FriendUseCase {
	return &FriendUseCase{
		userRepo:    userRepo,
		hub:         hub,
		rateLimiter: ratelimit.NewRateLimiter(),
	}
}

// SendFriendRequest targets a user by username (display name accepted as a
// fallback) and notifies them instantly when they are online.
func (uc *FriendUseCase) SendFriendRequest(ctx context.Context, userID, username string) error {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "friend_request")
	if !allowed {
		return errors.TooManyRequests("Rate limit exceeded. Please wait before sending another request", waitTime)
	}

	me, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if me.Username == username || me.FullName == username {
		return errors.BadRequest("Cannot friend yourself", nil)
	}

	target, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target.ID == userID {
		return errors.BadRequest("Cannot friend yourself", nil)
	}
	if lo.Contains(target.Friends, userID) {
		return errors.BadRequest("Already friends", nil)
	}
	if lo.Contains(target.IncomingRequests, userID) || lo.Contains(target.SentRequests, userID) {
		return errors.BadRequest("Request already sent or pending", nil)
	}

	if err := uc.userRepo.AddFriendRequest(ctx, userID, target.ID); err != nil {
		return err
	}

	uc.hub.SendToUser(target.ID, ws.NewEvent(ws.EventFriendRequestReceived, me.Summary()))

	return nil
}

// AcceptFriendRequest links both users and tells both ends to refresh their
// friend lists.
func (uc *FriendUseCase) AcceptFriendRequest(ctx context.Context, userID, senderID string) error {
	me, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !lo.Contains(me.IncomingRequests, senderID) {
		return errors.NotFound("Friend request", nil)
	}
	if _, err := uc.userRepo.GetByID(ctx, senderID); err != nil {
		return err
	}

	if err := uc.userRepo.AcceptFriendRequest(ctx, userID, senderID); err != nil {
		return err
	}

	uc.hub.SendToUser(userID, ws.NewEvent(ws.EventFriendGraphChanged, nil))
	uc.hub.SendToUser(senderID, ws.NewEvent(ws.EventFriendGraphChanged, nil))

	return nil
}

func (uc *FriendUseCase) RejectFriendRequest(ctx context.Context, userID, senderID string) error {
	if _, err := uc.userRepo.GetByID(ctx, senderID); err != nil {
		return err
	}
	return uc.userRepo.RejectFriendRequest(ctx, userID, senderID)
}

func (uc *FriendUseCase) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if _, err := uc.userRepo.GetByID(ctx, friendID); err != nil {
		return err
	}

	if err := uc.userRepo.RemoveFriend(ctx, userID, friendID); err != nil {
		return err
	}

	uc.hub.SendToUser(userID, ws.NewEvent(ws.EventFriendGraphChanged, nil))
	uc.hub.SendToUser(friendID, ws.NewEvent(ws.EventFriendGraphChanged, nil))

	return nil
}

func (uc *FriendUseCase) ListFriends(ctx context.Context, userID string) ([]entity.UserSummary, error) {
	me, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.resolveSummaries(ctx, me.Friends), nil
}

func (uc *FriendUseCase) ListIncomingRequests(ctx context.Context, userID string) ([]entity.UserSummary, error) {
	me, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.resolveSummaries(ctx, me.IncomingRequests), nil
}

func (uc *FriendUseCase) ListSentRequests(ctx context.Context, userID string) ([]entity.UserSummary, error) {
	me, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.resolveSummaries(ctx, me.SentRequests), nil
}

func (uc *FriendUseCase) resolveSummaries(ctx context.Context, ids []string) []entity.UserSummary {
	summaries := make([]entity.UserSummary, 0, len(ids))
	for _, id := range ids {
		user, err := uc.userRepo.GetByID(ctx, id)
		if err != nil {
			log.Printf("resolveSummaries: skipping user %s: %v", id, err)
			continue
		}
		summaries = append(summaries, user.Summary())
	}
	return summaries
}
