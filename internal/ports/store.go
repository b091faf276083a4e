package ports

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no value exists at the path.
var ErrNotFound = errors.New("path not found")

// Delta marks a value inside a MultiPathUpdate as an atomic increment of the
// integer at that path rather than an overwrite.
type Delta int64

// Subscription is a live change feed for one path.
type Subscription interface {
	// Unsubscribe stops delivery. Safe to call more than once.
	Unsubscribe()
}

// StateStore is the replicated key-value store the game core runs against.
// Each path holds one JSON value with last-writer-wins semantics. There is no
// atomicity across paths: a MultiPathUpdate is submitted as one batch but a
// reader may observe its paths tearing.
type StateStore interface {
	// Read returns the raw JSON value at path, or ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores value (JSON-encoded) at path. A nil value deletes the path.
	Write(ctx context.Context, path string, value any) error

	// AtomicIncrement adds delta to the integer at path, creating it at zero
	// if absent, and returns the resulting value.
	AtomicIncrement(ctx context.Context, path string, delta int64) (int64, error)

	// MultiPathUpdate applies all updates as one submitted batch. Values of
	// type Delta increment in place; nil values delete.
	MultiPathUpdate(ctx context.Context, updates map[string]any) error

	// Subscribe delivers the new raw JSON value after every write to path,
	// in the order the store applies them. Delivery runs until Unsubscribe.
	Subscribe(ctx context.Context, path string, fn func(data []byte)) (Subscription, error)
}
