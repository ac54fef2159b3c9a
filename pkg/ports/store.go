package ports

import (
	"context"
)

// BlobStore is the opaque persistence slot of a spatial anchor.
// This allows the session to survive disconnects ("Stop & Resume").
type BlobStore interface {
	// Save persists the blob for a given anchor, replacing any previous one.
	Save(ctx context.Context, anchor string, blob []byte) error

	// Load retrieves the blob for a given anchor.
	// Returns domain.ErrAnchorNotFound if nothing was saved.
	Load(ctx context.Context, anchor string) ([]byte, error)

	// Delete removes the blob for a given anchor.
	Delete(ctx context.Context, anchor string) error

	// List returns the anchors that currently hold a blob.
	List(ctx context.Context) ([]string, error)
}
