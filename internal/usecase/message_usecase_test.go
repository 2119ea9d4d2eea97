package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/entity"
	"github.com/mohamedidrisssalhi/Convo/internal/domain/repository"
	ws "github.com/mohamedidrisssalhi/Convo/internal/infrastructure/websocket"
	"github.com/mohamedidrisssalhi/Convo/pkg/errors"
)

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username || u.FullName == username {
			return u, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	users := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users, nil
}

func (r *fakeUserRepo) TouchLastMessageAt(ctx context.Context, id string, at time.Time) error {
	if u, ok := r.users[id]; ok {
		u.LastMessageAt = at
	}
	return nil
}

func (r *fakeUserRepo) AddFriendRequest(ctx context.Context, fromID, toID string) error {
	r.users[fromID].SentRequests = append(r.users[fromID].SentRequests, toID)
	r.users[toID].IncomingRequests = append(r.users[toID].IncomingRequests, fromID)
	return nil
}

func (r *fakeUserRepo) AcceptFriendRequest(ctx context.Context, ownerID, senderID string) error {
	r.users[ownerID].IncomingRequests = remove(r.users[ownerID].IncomingRequests, senderID)
	r.users[senderID].SentRequests = remove(r.users[senderID].SentRequests, ownerID)
	r.users[ownerID].Friends = append(r.users[ownerID].Friends, senderID)
	r.users[senderID].Friends = append(r.users[senderID].Friends, ownerID)
	return nil
}

func (r *fakeUserRepo) RejectFriendRequest(ctx context.Context, ownerID, senderID string) error {
	r.users[ownerID].IncomingRequests = remove(r.users[ownerID].IncomingRequests, senderID)
	r.users[senderID].SentRequests = remove(r.users[senderID].SentRequests, ownerID)
	return nil
}

func (r *fakeUserRepo) RemoveFriend(ctx context.Context, ownerID, friendID string) error {
	r.users[ownerID].Friends = remove(r.users[ownerID].Friends, friendID)
	r.users[friendID].Friends = remove(r.users[friendID].Friends, ownerID)
	return nil
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type fakeRoomRepo struct {
	rooms map[string]*entity.Room
}

func newFakeRoomRepo(rooms ...*entity.Room) *fakeRoomRepo {
	repo := &fakeRoomRepo{rooms: make(map[string]*entity.Room)}
	for _, room := range rooms {
		repo.rooms[room.ID] = room
	}
	return repo
}

func (r *fakeRoomRepo) Create(ctx context.Context, room *entity.Room) error {
	if room.ID == "" {
		room.ID = fmt.Sprintf("room-%d", len(r.rooms)+1)
	}
	r.rooms[room.ID] = room
	return nil
}

func (r *fakeRoomRepo) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Room", nil)
	}
	return room, nil
}

func (r *fakeRoomRepo) GetByName(ctx context.Context, name string) (*entity.Room, error) {
	for _, room := range r.rooms {
		if room.Name == name {
			return room, nil
		}
	}
	return nil, errors.NotFound("Room", nil)
}

func (r *fakeRoomRepo) List(ctx context.Context) ([]*entity.Room, error) {
	rooms := make([]*entity.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (r *fakeRoomRepo) AddMember(ctx context.Context, roomID, userID string) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Room", nil)
	}
	if !room.HasMember(userID) {
		room.Members = append(room.Members, userID)
	}
	return nil
}

func (r *fakeRoomRepo) RemoveMember(ctx context.Context, roomID, userID string) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return errors.NotFound("Room", nil)
	}
	room.Members = remove(room.Members, userID)
	return nil
}

func (r *fakeRoomRepo) TouchLastMessageAt(ctx context.Context, roomID string, at time.Time) error {
	if room, ok := r.rooms[roomID]; ok {
		room.LastMessageAt = at
	}
	return nil
}

type fakeMessageRepo struct {
	messages []*entity.Message
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", len(r.messages)+1)
	}
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) ListBetweenUsers(ctx context.Context, userA, userB string) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) ListByRoom(ctx context.Context, roomID string) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, m := range r.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) LastBetweenUsers(ctx context.Context, userA, userB string) (*entity.Message, error) {
	var last *entity.Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			last = m
		}
	}
	return last, nil
}

type fakeLedger struct {
	counts map[string]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{counts: make(map[string]int)}
}

func ledgerKey(ownerID, counterpartID string, kind repository.CounterpartKind) string {
	return ownerID + "|" + counterpartID + "|" + string(kind)
}

func (l *fakeLedger) Increment(ctx context.Context, ownerID, counterpartID string, kind repository.CounterpartKind) error {
	l.counts[ledgerKey(ownerID, counterpartID, kind)]++
	return nil
}

func (l *fakeLedger) Reset(ctx context.Context, ownerID, counterpartID string, kind repository.CounterpartKind) error {
	l.counts[ledgerKey(ownerID, counterpartID, kind)] = 0
	return nil
}

func (l *fakeLedger) Get(ctx context.Context, ownerID, counterpartID string, kind repository.CounterpartKind) (int, error) {
	return l.counts[ledgerKey(ownerID, counterpartID, kind)], nil
}

func user(id string) *entity.User {
	return &entity.User{ID: id, Username: id, FullName: id, UnreadCounts: make(map[string]int)}
}

// connect registers a live session for the user and drains the registration
// presence event so tests only see what they trigger.
func connect(t *testing.T, hub *ws.Hub, userID string) *ws.Client {
	t.Helper()
	c := ws.NewClient(userID, nil)
	hub.Register(c)
	drain(t, c)
	return c
}

func drain(t *testing.T, c *ws.Client) []ws.Event {
	t.Helper()
	var events []ws.Event
	for {
		select {
		case raw := <-c.Send:
			var e ws.Event
			require.NoError(t, json.Unmarshal(raw, &e))
			events = append(events, e)
		default:
			return events
		}
	}
}

func eventTypes(events []ws.Event) []string {
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestSendDirectMessageDeliversAndCounts(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	userRepo := newFakeUserRepo(user("alice"), user("bob"))
	roomRepo := newFakeRoomRepo()
	messageRepo := &fakeMessageRepo{}
	ledger := newFakeLedger()
	hub := ws.NewHub()
	uc := NewMessageUseCase(messageRepo, userRepo, roomRepo, ledger, hub)

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")
	drain(t, alice) // bob's registration presence

	message, err := uc.SendDirectMessage(ctx, "alice", "bob", SendMessageInput{Text: "hello"})
	req.NoError(err)
	req.NotEmpty(message.ID)
	req.Equal("alice", message.SenderID)
	req.Equal("bob", message.ReceiverID)

	count, err := ledger.Get(ctx, "bob", "alice", repository.CounterpartUser)
	req.NoError(err)
	req.Equal(1, count)

	req.Equal([]string{ws.EventNewMessage, ws.EventActivityChanged}, eventTypes(drain(t, bob)))
	req.Equal([]string{ws.EventActivityChanged}, eventTypes(drain(t, alice)))
}

func TestSendDirectMessageToOfflineRecipientOnlyCounts(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	userRepo := newFakeUserRepo(user("alice"), user("bob"))
	ledger := newFakeLedger()
	hub := ws.NewHub()
	uc := NewMessageUseCase(&fakeMessageRepo{}, userRepo, newFakeRoomRepo(), ledger, hub)

	_, err := uc.SendDirectMessage(ctx, "alice", "bob", SendMessageInput{Text: "hi"})
	req.NoError(err)

	count, err := ledger.Get(ctx, "bob", "alice", repository.CounterpartUser)
	req.NoError(err)
	req.Equal(1, count)
}

func TestSendDirectMessageUnknownRecipient(t *testing.T) {
	req := require.New(t)

	uc := NewMessageUseCase(&fakeMessageRepo{}, newFakeUserRepo(user("alice")), newFakeRoomRepo(), newFakeLedger(), ws.NewHub())

	_, err := uc.SendDirectMessage(context.Background(), "alice", "ghost", SendMessageInput{Text: "hi"})
	req.Error(err)
	req.True(errors.Is(err, "NOT_FOUND"))
}

func TestSendDirectMessagePermitsEmptyText(t *testing.T) {
	req := require.New(t)

	uc := NewMessageUseCase(&fakeMessageRepo{}, newFakeUserRepo(user("alice"), user("bob")), newFakeRoomRepo(), newFakeLedger(), ws.NewHub())

	message, err := uc.SendDirectMessage(context.Background(), "alice", "bob", SendMessageInput{})
	req.NoError(err)
	req.Empty(message.Text)
	req.Empty(message.Image)
}

func TestSendRoomMessageFansOutToMembers(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	userRepo := newFakeUserRepo(user("alice"), user("bob"), user("carol"))
	roomRepo := newFakeRoomRepo(&entity.Room{ID: "room-1", Name: "general", Members: []string{"alice", "bob", "carol"}})
	ledger := newFakeLedger()
	hub := ws.NewHub()
	uc := NewMessageUseCase(&fakeMessageRepo{}, userRepo, roomRepo, ledger, hub)

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")
	drain(t, alice)
	// carol stays offline

	message, err := uc.SendRoomMessage(ctx, "alice", "room-1", SendMessageInput{Text: "hello room"})
	req.NoError(err)
	req.Equal("room-1", message.RoomID)
	req.Empty(message.ReceiverID)

	// Online member: push plus activity, counter still advanced.
	req.Equal([]string{ws.EventNewMessage, ws.EventActivityChanged}, eventTypes(drain(t, bob)))
	bobCount, err := ledger.Get(ctx, "bob", "room-1", repository.CounterpartRoom)
	req.NoError(err)
	req.Equal(1, bobCount)

	// Offline member: counter only.
	carolCount, err := ledger.Get(ctx, "carol", "room-1", repository.CounterpartRoom)
	req.NoError(err)
	req.Equal(1, carolCount)

	// Sender never gets their own message echoed back, and never a counter.
	req.Equal([]string{ws.EventActivityChanged}, eventTypes(drain(t, alice)))
	aliceCount, err := ledger.Get(ctx, "alice", "room-1", repository.CounterpartRoom)
	req.NoError(err)
	req.Zero(aliceCount)
}

func TestSendRoomMessageRequiresMembership(t *testing.T) {
	req := require.New(t)

	roomRepo := newFakeRoomRepo(&entity.Room{ID: "room-1", Name: "general", Members: []string{"bob"}})
	uc := NewMessageUseCase(&fakeMessageRepo{}, newFakeUserRepo(user("alice"), user("bob")), roomRepo, newFakeLedger(), ws.NewHub())

	_, err := uc.SendRoomMessage(context.Background(), "alice", "room-1", SendMessageInput{Text: "hi"})
	req.Error(err)
	req.True(errors.Is(err, "FORBIDDEN"))
}

func TestGetDirectMessagesResetsCounter(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	userRepo := newFakeUserRepo(user("alice"), user("bob"))
	ledger := newFakeLedger()
	hub := ws.NewHub()
	uc := NewMessageUseCase(&fakeMessageRepo{}, userRepo, newFakeRoomRepo(), ledger, hub)

	_, err := uc.SendDirectMessage(ctx, "alice", "bob", SendMessageInput{Text: "one"})
	req.NoError(err)
	_, err = uc.SendDirectMessage(ctx, "alice", "bob", SendMessageInput{Text: "two"})
	req.NoError(err)

	count, err := ledger.Get(ctx, "bob", "alice", repository.CounterpartUser)
	req.NoError(err)
	req.Equal(2, count)

	bob := connect(t, hub, "bob")

	messages, err := uc.GetDirectMessages(ctx, "bob", "alice")
	req.NoError(err)
	req.Len(messages, 2)

	count, err = ledger.Get(ctx, "bob", "alice", repository.CounterpartUser)
	req.NoError(err)
	req.Zero(count)

	// The reader's own badge clears through the same channel.
	req.Equal([]string{ws.EventActivityChanged}, eventTypes(drain(t, bob)))

	// Reset is idempotent.
	_, err = uc.GetDirectMessages(ctx, "bob", "alice")
	req.NoError(err)
	count, err = ledger.Get(ctx, "bob", "alice", repository.CounterpartUser)
	req.NoError(err)
	req.Zero(count)
}

func TestGetRoomMessagesRequiresMembership(t *testing.T) {
	req := require.New(t)

	roomRepo := newFakeRoomRepo(&entity.Room{ID: "room-1", Name: "general", Members: []string{"bob"}})
	uc := NewMessageUseCase(&fakeMessageRepo{}, newFakeUserRepo(user("alice"), user("bob")), roomRepo, newFakeLedger(), ws.NewHub())

	_, err := uc.GetRoomMessages(context.Background(), "alice", "room-1")
	req.Error(err)
	req.True(errors.Is(err, "FORBIDDEN"))
}

func TestGetRoomMessagesResetsRoomCounter(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	userRepo := newFakeUserRepo(user("alice"), user("bob"))
	roomRepo := newFakeRoomRepo(&entity.Room{ID: "room-1", Name: "general", Members: []string{"alice", "bob"}})
	ledger := newFakeLedger()
	uc := NewMessageUseCase(&fakeMessageRepo{}, userRepo, roomRepo, ledger, ws.NewHub())

	_, err := uc.SendRoomMessage(ctx, "alice", "room-1", SendMessageInput{Text: "hi"})
	req.NoError(err)

	count, err := ledger.Get(ctx, "bob", "room-1", repository.CounterpartRoom)
	req.NoError(err)
	req.Equal(1, count)

	messages, err := uc.GetRoomMessages(ctx, "bob", "room-1")
	req.NoError(err)
	req.Len(messages, 1)

	count, err = ledger.Get(ctx, "bob", "room-1", repository.CounterpartRoom)
	req.NoError(err)
	req.Zero(count)
}

func TestListConversationsOrdersByActivity(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	me := user("alice")
	me.UnreadCounts["carol"] = 3
	userRepo := newFakeUserRepo(me, user("bob"), user("carol"))
	messageRepo := &fakeMessageRepo{}
	uc := NewMessageUseCase(messageRepo, userRepo, newFakeRoomRepo(), newFakeLedger(), ws.NewHub())

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	messageRepo.messages = []*entity.Message{
		{ID: "m1", SenderID: "bob", ReceiverID: "alice", Text: "old", CreatedAt: older},
		{ID: "m2", SenderID: "carol", ReceiverID: "alice", Text: "new", CreatedAt: newer},
	}

	summaries, err := uc.ListConversations(ctx, "alice")
	req.NoError(err)
	req.Len(summaries, 2)

	req.Equal("carol", summaries[0].ID)
	req.Equal(3, summaries[0].UnreadCount)
	req.Equal(newer, summaries[0].LastMessageAt)

	req.Equal("bob", summaries[1].ID)
	req.Zero(summaries[1].UnreadCount)
}
