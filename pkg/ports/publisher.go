package ports

import (
	"context"

	"github.com/aretw0/quill/pkg/domain"
)

// ScenePublisher is the scene-graph side of the pen: it renders polylines
// and moves the tool's root transform. Implementations must not retain or
// mutate the strokes slice after returning.
type ScenePublisher interface {
	// PublishStrokes replaces the rendered stroke set.
	PublishStrokes(ctx context.Context, strokes []domain.Stroke) error

	// PublishTransform moves the tool root to the worn pose.
	PublishTransform(ctx context.Context, pose domain.Pose) error

	// SetZoneable toggles whether zones may capture the tool root.
	SetZoneable(ctx context.Context, zoneable bool) error
}
