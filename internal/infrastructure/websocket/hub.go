package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/entity"
)

// MemberLister resolves a room's durable membership from storage. The hub's
// viewer sets say who to notify; the lister says who is a member.
type MemberLister interface {
	ListRoomMembers(ctx context.Context, roomID string) ([]entity.UserSummary, error)
}

// Hub owns the connection registry and the per-room viewer sets. It is created
// at process start, handed to collaborators by reference, and never accessed as
// ambient state. At most one live session is tracked per user: a new register
// for the same user replaces the previous mapping.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Client            // userID -> live session
	viewers  map[string]map[string]*Client // roomID -> sessionID -> client
	members  MemberLister
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Client),
		viewers:  make(map[string]map[string]*Client),
	}
}

// SetMemberLister breaks the construction cycle between the hub and the room
// service that needs the hub for rebroadcasts.
func (h *Hub) SetMemberLister(members MemberLister) {
	h.members = members
}

// Register installs the session as the user's only reachable connection.
// Overwriting an existing mapping is intentional: a reconnect replaces the
// stale session.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.sessions[c.UserID] = c
	h.mu.Unlock()

	log.Printf("Hub: session %s registered for user %s", c.SessionID, c.UserID)
	h.broadcastPresence()
}

// Unregister removes the user mapping only while the given session still owns
// it, so a slow disconnect from a replaced session is a no-op for the registry.
// The session always leaves every room it was viewing, each leave triggering a
// membership rebroadcast to the remaining viewers.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	owned := false
	if current, ok := h.sessions[c.UserID]; ok && current.SessionID == c.SessionID {
		delete(h.sessions, c.UserID)
		owned = true
	}

	var viewed []string
	for roomID, set := range h.viewers {
		if _, ok := set[c.SessionID]; ok {
			delete(set, c.SessionID)
			if len(set) == 0 {
				delete(h.viewers, roomID)
			}
			viewed = append(viewed, roomID)
		}
	}
	h.mu.Unlock()

	c.closeSend()

	for _, roomID := range viewed {
		h.BroadcastRoomMembership(context.Background(), roomID)
	}

	if owned {
		log.Printf("Hub: session %s unregistered for user %s", c.SessionID, c.UserID)
		h.broadcastPresence()
	}
}

// Lookup reports the session currently reachable for a user, if any.
func (h *Hub) Lookup(userID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.sessions[userID]
	if !ok {
		return "", false
	}
	return c.SessionID, true
}

// OnlineUserIDs derives the online set from the registry at the moment of
// call; it is never cached.
func (h *Hub) OnlineUserIDs() []string {
	h.mu.RLock()
	ids := lo.Keys(h.sessions)
	h.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

func (h *Hub) JoinRoom(ctx context.Context, c *Client, roomID string) {
	h.mu.Lock()
	set, ok := h.viewers[roomID]
	if !ok {
		set = make(map[string]*Client)
		h.viewers[roomID] = set
	}
	set[c.SessionID] = c
	h.mu.Unlock()

	h.BroadcastRoomMembership(ctx, roomID)
}

func (h *Hub) LeaveRoom(ctx context.Context, c *Client, roomID string) {
	h.mu.Lock()
	if set, ok := h.viewers[roomID]; ok {
		delete(set, c.SessionID)
		if len(set) == 0 {
			delete(h.viewers, roomID)
		}
	}
	h.mu.Unlock()

	h.BroadcastRoomMembership(ctx, roomID)
}

// IsViewing reports whether a session has joined a room's live channel.
func (h *Hub) IsViewing(sessionID, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set, ok := h.viewers[roomID]
	if !ok {
		return false
	}
	_, ok = set[sessionID]
	return ok
}

// BroadcastRoomMembership reconciles against storage and pushes the full
// member list to every current viewer of the room. A fetch failure degrades to
// an empty list; it never fails the caller's join/leave.
func (h *Hub) BroadcastRoomMembership(ctx context.Context, roomID string) {
	members := []entity.UserSummary{}
	if h.members != nil {
		fetched, err := h.members.ListRoomMembers(ctx, roomID)
		if err != nil {
			log.Printf("Hub: membership fetch failed for room %s: %v", roomID, err)
		} else {
			members = fetched
		}
	}

	payload, err := json.Marshal(NewEvent(EventRoomMembershipChanged, members))
	if err != nil {
		log.Printf("Hub: failed to marshal membership for room %s: %v", roomID, err)
		return
	}

	// Viewer set is snapshotted after the fetch so a join or leave that raced
	// the storage read still gets the freshest list we have.
	h.mu.RLock()
	targets := lo.Values(h.viewers[roomID])
	h.mu.RUnlock()

	for _, c := range targets {
		h.send(c, payload)
	}
}

// SendToUser pushes an event to the user's live session, if one exists. A
// missing session is not an error; delivery is best effort.
func (h *Hub) SendToUser(userID string, event Event) bool {
	h.mu.RLock()
	c, ok := h.sessions[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Hub: failed to marshal %s event for user %s: %v", event.Type, userID, err)
		return false
	}

	h.send(c, payload)
	return true
}

// NotifyActivity pushes the payload-less refresh signal for conversation
// summaries.
func (h *Hub) NotifyActivity(userID string) {
	h.SendToUser(userID, NewEvent(EventActivityChanged, nil))
}

func (h *Hub) broadcastPresence() {
	ids := h.OnlineUserIDs()

	// One marshal: every live connection receives the identical set.
	payload, err := json.Marshal(NewEvent(EventOnlineUsersChanged, ids))
	if err != nil {
		log.Printf("Hub: failed to marshal presence payload: %v", err)
		return
	}

	h.mu.RLock()
	targets := lo.Values(h.sessions)
	h.mu.RUnlock()

	for _, c := range targets {
		h.send(c, payload)
	}
}

func (h *Hub) send(c *Client, payload []byte) {
	if !c.trySend(payload) {
		log.Printf("Hub: send buffer full for user %s, dropping session %s", c.UserID, c.SessionID)
		go h.Unregister(c)
	}
}
