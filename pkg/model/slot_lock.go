package model

import "time"

// SlotLock is an advisory lock taken for the duration of a booking attempt.
// The lock id encodes the tenant, resource and slot start, so two concurrent
// attempts at the same slot collide on the unique _id. A TTL index on
// expires_at clears abandoned locks.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
