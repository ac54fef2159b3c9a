package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/quill/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log each event on logger.
// Point appends are logged at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGrabStart: func(ctx context.Context, e *domain.GrabEvent) {
			logger.InfoContext(ctx, "grab_start", "actor", e.ActorID, "elapsed", e.Elapsed)
		},
		OnGrabStop: func(ctx context.Context, e *domain.GrabEvent) {
			logger.InfoContext(ctx, "grab_stop", "actor", e.ActorID, "elapsed", e.Elapsed)
		},
		OnStrokeOpen: func(ctx context.Context, e *domain.StrokeEvent) {
			logger.DebugContext(ctx, "stroke_open", "stroke", e.Index, "segmented", e.Segmented)
		},
		OnStrokeSeal: func(ctx context.Context, e *domain.StrokeEvent) {
			logger.InfoContext(ctx, "stroke_seal",
				"stroke", e.Index,
				"points", e.Points,
				"segmented", e.Segmented,
			)
		},
		OnPointAppend: func(ctx context.Context, e *domain.PointEvent) {
			logger.DebugContext(ctx, "point_append", "stroke", e.Stroke, "thickness", e.Point.Thickness)
		},
		OnPublishError: func(ctx context.Context, e *domain.PublishErrorEvent) {
			logger.WarnContext(ctx, "publish_error", "target", e.Target, "err", e.Err)
		},
	}
}
