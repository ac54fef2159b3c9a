package ink

import (
	"fmt"
	"math"

	"github.com/aretw0/quill/pkg/domain"
)

// WornTransform is where the pen sits on an actor: between thumb and index
// with the palm orientation for hands, the pointer origin for tips.
func WornTransform(sample domain.InputSample) domain.Pose {
	switch in := sample.Input.(type) {
	case domain.Hand:
		return domain.Pose{
			Position:    in.ThumbTip.Midpoint(in.IndexTip),
			Orientation: in.Palm.Orientation,
		}
	case domain.Tip:
		return domain.Pose{Position: in.Origin, Orientation: in.Orientation}
	default:
		panic(fmt.Errorf("worn transform: %w: %T", domain.ErrUnsupportedInput, sample.Input))
	}
}

// LazyBrush advances the cursor toward raw only once raw is farther than
// threshold, and then by min(threshold, distance).
func LazyBrush(cursor, raw domain.Vec3, threshold float64) domain.Vec3 {
	d := cursor.Distance(raw)
	if d <= threshold {
		return cursor
	}
	return cursor.StepToward(raw, math.Min(threshold, d))
}
