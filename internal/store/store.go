// Package store persists serialized model artifacts keyed by ticker symbol.
// An artifact is opaque to the store; existence of a key is the sole signal
// that a symbol is servable.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means no artifact exists for the requested ticker. The
	// serving layer maps this to the user-visible "Model not found." error.
	ErrNotFound = errors.New("model artifact not found")

	// ErrCorrupt means an artifact exists but could not be deserialized.
	// Kept distinct from ErrNotFound so operators can tell "never trained"
	// from "corrupted on disk".
	ErrCorrupt = errors.New("model artifact is corrupted")
)

// ArtifactStore is a symbol-keyed blob store. Keys are normalized ticker
// symbols. Save must replace atomically: a concurrent Load observes either
// the fully-old or fully-new artifact, never a partial write. Artifacts are
// immutable once written, so concurrent reads need no coordination.
type ArtifactStore interface {
	Exists(ctx context.Context, ticker string) (bool, error)
	Load(ctx context.Context, ticker string) ([]byte, error)
	Save(ctx context.Context, ticker string, artifact []byte) error
	List(ctx context.Context) ([]string, error)
}
