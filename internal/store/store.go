// Package store provides the memory storage interface and SQLite implementation.
package store

import (
	"context"

	"github.com/lethe-board/lethe/internal/model"
)

// Store is a capacity-bounded, time-ordered collection of memories.
//
// Capacity is enforced by EvictOldestIfFull, which callers run before
// Insert; the read-evict-insert sequence must be guarded by a single
// commit boundary (the submission pipeline owns that lock).
type Store interface {
	// Count returns the current number of stored memories.
	Count(ctx context.Context) (int, error)

	// Insert assigns the next id and the current timestamp, appends the
	// memory and returns it. Callers must have ensured capacity headroom.
	Insert(ctx context.Context, text string, thumbnail *string) (*model.Memory, error)

	// EvictOldestIfFull deletes the oldest memory (ties broken by the
	// smallest id) while the store is at or over capacity. Safe to call
	// any number of times.
	EvictOldestIfFull(ctx context.Context) error

	// ListOrderedByTime returns all memories ascending by creation time.
	ListOrderedByTime(ctx context.Context) ([]model.Memory, error)

	// ExistsWithText reports whether any stored memory has exactly this text.
	ExistsWithText(ctx context.Context, text string) (bool, error)

	// DeleteByID removes the memory with the given id. Deleting an absent
	// id is a no-op, not an error: a missing memory is already forgotten.
	DeleteByID(ctx context.Context, id int64) error

	// Close closes the store.
	Close() error
}
