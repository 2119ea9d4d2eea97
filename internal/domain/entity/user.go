package entity

import "time"

type User struct {
	ID         string `json:"id" firestore:"id"`
	Email      string `json:"email" firestore:"email"`
	Username   string `json:"username" firestore:"username"`
	FullName   string `json:"full_name" firestore:"fullName"`
	ProfilePic string `json:"profile_pic,omitempty" firestore:"profilePic,omitempty"`

	// Friend graph, maintained by the friend workflow.
	Friends          []string `json:"friends,omitempty" firestore:"friends,omitempty"`
	IncomingRequests []string `json:"incoming_requests,omitempty" firestore:"incomingRequests,omitempty"`
	SentRequests     []string `json:"sent_requests,omitempty" firestore:"sentRequests,omitempty"`

	// Direct-message activity metadata. UnreadCounts maps a peer user ID to the
	// number of messages from that peer this user has not read yet.
	LastMessageAt time.Time      `json:"last_message_at" firestore:"lastMessageAt"`
	UnreadCounts  map[string]int `json:"unread_counts,omitempty" firestore:"unreadCounts,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// Summary is the public projection pushed over the event channel and embedded
// in membership lists.
type UserSummary struct {
	ID         string `json:"id" firestore:"id"`
	Username   string `json:"username" firestore:"username"`
	FullName   string `json:"full_name" firestore:"fullName"`
	ProfilePic string `json:"profile_pic,omitempty" firestore:"profilePic,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
	}
}
