package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mohamedidrisssalhi/Convo/internal/domain/repository"
	"github.com/mohamedidrisssalhi/Convo/pkg/errors"
)

// firestoreUnreadLedger keeps direct-message counters on the owner's user
// document and room counters on the room document, both under an
// `unreadCounts` map keyed by user ID. All increments go through
// firestore.Increment so concurrent sends never lose an update.
type firestoreUnreadLedger struct {
	client *firestore.Client
}

func NewFirestoreUnreadLedger(client *firestore.Client) repository.UnreadLedger {
	return &firestoreUnreadLedger{
		client: client,
	}
}

func (r *firestoreUnreadLedger) docAndKey(ownerID, counterpartID string, kind repository.CounterpartKind) (*firestore.DocumentRef, string) {
	if kind == repository.CounterpartRoom {
		return r.client.Collection("rooms").Doc(counterpartID), ownerID
	}
	return r.client.Collection("users").Doc(ownerID), counterpartID
}

func (r *firestoreUnreadLedger) Increment(ctx context.Context, ownerID, counterpartID string, kind repository.CounterpartKind) error {
	doc, key := r.docAndKey(ownerID, counterpartID, kind)
	_, err := doc.Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"unreadCounts", key}, Value: firestore.Increment(1)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Counter owner", err)
		}
		return errors.Internal("Failed to increment unread counter", err)
	}
	return nil
}

func (r *firestoreUnreadLedger) Reset(ctx context.Context, ownerID, counterpartID string, kind repository.CounterpartKind) error {
	doc, key := r.docAndKey(ownerID, counterpartID, kind)
	_, err := doc.Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"unreadCounts", key}, Value: 0},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Counter owner", err)
		}
		return errors.Internal("Failed to reset unread counter", err)
	}
	return nil
}

func (r *firestoreUnreadLedger) Get(ctx context.Context, ownerID, counterpartID string, kind repository.CounterpartKind) (int, error) {
	doc, key := r.docAndKey(ownerID, counterpartID, kind)
	snap, err := doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, nil
		}
		return 0, errors.Internal("Failed to read unread counter", err)
	}

	var holder struct {
		UnreadCounts map[string]int `firestore:"unreadCounts"`
	}
	if err := snap.DataTo(&holder); err != nil {
		return 0, errors.Internal("Failed to parse unread counters", err)
	}

	return holder.UnreadCounts[key], nil
}
