package entity

import "time"

// Message is immutable once created. Exactly one of ReceiverID (direct) or
// RoomID (room) is set; a message with neither text nor image is permitted by
// the schema and treated as an empty message by consumers.
type Message struct {
	ID         string    `json:"id" firestore:"id"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	ReceiverID string    `json:"receiver_id,omitempty" firestore:"receiverId,omitempty"`
	RoomID     string    `json:"room_id,omitempty" firestore:"roomId,omitempty"`
	Text       string    `json:"text,omitempty" firestore:"text,omitempty"`
	Image      string    `json:"image,omitempty" firestore:"image,omitempty"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}

func (m *Message) IsRoomMessage() bool {
	return m.RoomID != ""
}
