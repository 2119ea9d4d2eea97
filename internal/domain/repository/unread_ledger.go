package repository

import "context"

type CounterpartKind string

const (
	CounterpartUser CounterpartKind = "user"
	CounterpartRoom CounterpartKind = "room"
)

// UnreadLedger tracks, per (owner, counterpart) pair, how many messages the
// owner has not read yet. Increment must be atomic at the storage layer; a
// read-modify-write from the application loses updates under concurrent sends.
type UnreadLedger interface {
	Increment(ctx context.Context, ownerID, counterpartID string, kind CounterpartKind) error
	Reset(ctx context.Context, ownerID, counterpartID string, kind CounterpartKind) error
	Get(ctx context.Context, ownerID, counterpartID string, kind CounterpartKind) (int, error)
}
