// Package storage is the canonical place for the key-value persistence layer.
// It should not include:
// 1. Any business logic on top of the stored collections
// 2. Any knowledge about which service owns which slot
package storage

import (
	"context"
	"errors"
)

// The five logical slots the services persist into. Key names are part of
// the on-disk layout and must stay stable across restarts.
const (
	KeySession  = "instagram_user_session"
	KeyPosts    = "instagram_posts"
	KeyLikes    = "instagram_likes"
	KeyProfiles = "instagram_profile"
	KeyFollows  = "instagram_follows"
)

// ErrNotFound is returned by Get when the slot has never been written or was
// removed. Any other error from a Store is a storage failure (I/O or
// serialization) and should be surfaced to the caller distinctly.
var ErrNotFound = errors.New("storage: key not found")

// Store is a generic key-value store with JSON-serialized values. Writers to
// the same key race (last write wins): callers needing atomic
// read-modify-write must serialize themselves.
type Store interface {
	// Set serializes value and stores it under key, overwriting any prior
	// value.
	Set(ctx context.Context, key string, value interface{}) error

	// Get deserializes the value stored under key into dest, which must be a
	// non-nil pointer. Returns ErrNotFound when the slot is absent.
	Get(ctx context.Context, key string, dest interface{}) error

	// Remove deletes the slot. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error

	// Clear deletes all slots owned by this store.
	Clear(ctx context.Context) error
}
