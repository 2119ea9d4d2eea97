package usecase

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/entity"
	"github.com/mohamedidrisssalhi/Convo/internal/domain/repository"
	"github.com/mohamedidrisssalhi/Convo/internal/infrastructure/ratelimit"
	ws "github.com/mohamedidrisssalhi/Convo/internal/infrastructure/websocket"
	"github.com/mohamedidrisssalhi/Convo/pkg/errors"
)

// MessageUseCase is the delivery engine: it persists messages, keeps the
// unread/activity ledger consistent, and fans events out to live connections.
type MessageUseCase struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	roomRepo    repository.RoomRepository
	ledger      repository.UnreadLedger
	hub         *ws.Hub
	rateLimiter *ratelimit.RateLimiter
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	roomRepo repository.RoomRepository,
	ledger repository.UnreadLedger,
	hub *ws.Hub,
) *MessageUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &MessageUseCase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		roomRepo:    roomRepo,
		ledger:      ledger,
		hub:         hub,
		rateLimiter: rateLimiter,
	}
}

type SendMessageInput struct {
	Text  string
	Image string
}

// ConversationSummary feeds the sidebar: one entry per direct counterpart with
// the metadata needed to order and badge it.
type ConversationSummary struct {
	entity.UserSummary
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
}

// ListConversations returns every other user with last-activity and unread
// metadata from the caller's perspective, newest activity first.
func (uc *MessageUseCase) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	me, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(users))
	for _, user := range users {
		if user.ID == userID {
			continue
		}

		summary := ConversationSummary{
			UserSummary: user.Summary(),
			UnreadCount: me.UnreadCounts[user.ID],
		}

		last, err := uc.messageRepo.LastBetweenUsers(ctx, userID, user.ID)
		if err != nil {
			log.Printf("ListConversations: failed to resolve last message with %s: %v", user.ID, err)
		} else if last != nil {
			summary.LastMessageAt = last.CreatedAt
		}

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})

	return summaries, nil
}

// GetDirectMessages returns the full history with a peer. Opening the history
// is the read event: the caller's counter for this peer resets and their own
// connection gets an activity signal so the badge clears immediately.
func (uc *MessageUseCase) GetDirectMessages(ctx context.Context, userID, peerID string) ([]*entity.Message, error) {
	if _, err := uc.userRepo.GetByID(ctx, peerID); err != nil {
		return nil, err
	}

	messages, err := uc.messageRepo.ListBetweenUsers(ctx, userID, peerID)
	if err != nil {
		return nil, err
	}

	if err := uc.ledger.Reset(ctx, userID, peerID, repository.CounterpartUser); err != nil {
		log.Printf("GetDirectMessages: failed to reset counter for %s/%s: %v", userID, peerID, err)
	} else {
		uc.hub.NotifyActivity(userID)
	}

	return messages, nil
}

// GetRoomMessages mirrors GetDirectMessages for rooms; only durable members
// may read history.
func (uc *MessageUseCase) GetRoomMessages(ctx context.Context, userID, roomID string) ([]*entity.Message, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(userID) {
		return nil, errors.Forbidden("Not a member of this room", nil)
	}

	messages, err := uc.messageRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err := uc.ledger.Reset(ctx, userID, roomID, repository.CounterpartRoom); err != nil {
		log.Printf("GetRoomMessages: failed to reset counter for %s/%s: %v", userID, roomID, err)
	} else {
		uc.hub.NotifyActivity(userID)
	}

	return messages, nil
}

// SendDirectMessage persists and delivers a direct message. Persistence
// failures surface to the sender; everything after the write is best effort
// and never fails the send.
func (uc *MessageUseCase) SendDirectMessage(ctx context.Context, senderID, receiverID string, input SendMessageInput) (*entity.Message, error) {
	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	if _, err := uc.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, errors.NotFound("Recipient", err)
	}

	message := &entity.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       input.Text,
		Image:      input.Image,
		CreatedAt:  time.Now(),
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	// Activity timestamps move before any push so a racing summary read never
	// observes a timestamp older than the push it is about to receive.
	if err := uc.userRepo.TouchLastMessageAt(ctx, senderID, message.CreatedAt); err != nil {
		log.Printf("SendDirectMessage: failed to touch sender activity: %v", err)
	}
	if err := uc.userRepo.TouchLastMessageAt(ctx, receiverID, message.CreatedAt); err != nil {
		log.Printf("SendDirectMessage: failed to touch recipient activity: %v", err)
	}

	if err := uc.ledger.Increment(ctx, receiverID, senderID, repository.CounterpartUser); err != nil {
		log.Printf("SendDirectMessage: failed to increment counter for %s: %v", receiverID, err)
	}

	uc.hub.SendToUser(receiverID, ws.NewEvent(ws.EventNewMessage, message))
	uc.hub.NotifyActivity(receiverID)
	uc.hub.NotifyActivity(senderID)

	return message, nil
}

// SendRoomMessage persists and delivers a room message to every durable
// member. Offline members only accrue unread counters; the sender never gets
// their own message echoed back.
func (uc *MessageUseCase) SendRoomMessage(ctx context.Context, senderID, roomID string, input SendMessageInput) (*entity.Message, error) {
	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(senderID) {
		return nil, errors.Forbidden("Not a member of this room", nil)
	}

	message := &entity.Message{
		SenderID:  senderID,
		RoomID:    roomID,
		Text:      input.Text,
		Image:     input.Image,
		CreatedAt: time.Now(),
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if err := uc.roomRepo.TouchLastMessageAt(ctx, roomID, message.CreatedAt); err != nil {
		log.Printf("SendRoomMessage: failed to touch room activity: %v", err)
	}

	newMessage := ws.NewEvent(ws.EventNewMessage, message)
	for _, memberID := range lo.Uniq(room.Members) {
		if memberID == senderID {
			continue
		}

		if err := uc.ledger.Increment(ctx, memberID, roomID, repository.CounterpartRoom); err != nil {
			log.Printf("SendRoomMessage: failed to increment counter for %s: %v", memberID, err)
		}

		// Liveness is re-checked per push, never cached across the loop.
		if uc.hub.SendToUser(memberID, newMessage) {
			uc.hub.NotifyActivity(memberID)
		}
	}

	uc.hub.NotifyActivity(senderID)

	return message, nil
}
