package websocket

import "time"

// Server -> client event types.
const (
	EventOnlineUsersChanged    = "online-users-changed"
	EventRoomMembershipChanged = "room-membership-changed"
	EventNewMessage            = "new-message"
	EventActivityChanged       = "activity-changed"
	EventFriendRequestReceived = "friend-request-received"
	EventFriendGraphChanged    = "friend-graph-changed"
)

// Client -> server command types.
const (
	CommandJoinRoom  = "join-room"
	CommandLeaveRoom = "leave-room"
)

// Event is the wire envelope for every push. Consumers treat payloads as full
// replacements, never deltas.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func NewEvent(eventType string, data interface{}) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

type clientCommand struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}
