package entity

import "time"

type Room struct {
	ID      string   `json:"id" firestore:"id"`
	Name    string   `json:"name" firestore:"name"`
	Members []string `json:"members" firestore:"members"`
	Avatar  string   `json:"avatar,omitempty" firestore:"avatar,omitempty"`

	// UnreadCounts maps a member user ID to the number of room messages that
	// member has not read yet.
	LastMessageAt time.Time      `json:"last_message_at" firestore:"lastMessageAt"`
	UnreadCounts  map[string]int `json:"unread_counts,omitempty" firestore:"unreadCounts,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

func (r *Room) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}
