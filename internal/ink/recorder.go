// Package ink records strokes for the current grab holder.
package ink

import (
	"context"
	"math"
	"time"

	"github.com/aretw0/quill/internal/gesture"
	"github.com/aretw0/quill/pkg/config"
	"github.com/aretw0/quill/pkg/domain"
)

// Update is what a frame changed.
type Update struct {
	// Pose is the worn transform, set on every frame the grab is held.
	Pose *domain.Pose

	// Changed reports that stroke buffers were mutated.
	Changed bool
}

// Recorder owns the stroke buffers of a session.
//
// The last stroke is current while open. A stopped stroke stays open for
// the debounce window so a flickering pinch resumes it; after that it is
// sealed and never touched again.
type Recorder struct {
	settings   config.Settings
	classifier gesture.Classifier
	hooks      domain.LifecycleHooks
	state      *domain.PenSessionState

	open    bool
	stopped bool
	// fresh marks a stroke whose cursor has not been seeded yet.
	fresh bool
	// owner is the actor that opened the current stroke.
	owner domain.ActorID
}

// NewRecorder wraps a session state. Strokes already present are sealed.
func NewRecorder(s config.Settings, state *domain.PenSessionState, hooks domain.LifecycleHooks) *Recorder {
	return &Recorder{
		settings:   s,
		classifier: gesture.NewClassifier(s),
		hooks:      hooks,
		state:      state,
	}
}

// State returns the live session state.
func (r *Recorder) State() *domain.PenSessionState { return r.state }

// Current returns the index of the stroke accepting points, if any.
func (r *Recorder) Current() (int, bool) {
	if !r.open || r.stopped {
		return 0, false
	}
	return len(r.state.Strokes) - 1, true
}

// Apply mutates the stroke buffers for one frame of engine output.
func (r *Recorder) Apply(ctx context.Context, res gesture.Result) Update {
	var up Update
	now := res.Elapsed

	if r.open && r.stopped && now-r.state.LastRelease >= r.settings.GrabDebounceWindow {
		r.seal(ctx, now, false)
	}

	if res.GrabStopped {
		r.stop(now)
	}

	if res.Holder != nil {
		pose := WornTransform(res.Holder.Sample)
		r.state.Pose = pose
		up.Pose = &pose
	}

	switch res.Draw {
	case gesture.DrawStarted:
		// Only the actor that let go may resume within the debounce window.
		if r.open && r.stopped && r.owner == res.Holder.ID &&
			now-r.state.LastRelease < r.settings.GrabDebounceWindow {
			r.stopped = false
		} else {
			r.seal(ctx, now, false)
			r.openStroke(ctx, now, false)
			r.owner = res.Holder.ID
			up.Changed = true
		}
		if r.append(ctx, now, res.Holder.Sample) {
			up.Changed = true
		}
	case gesture.DrawContinuing:
		if _, ok := r.Current(); !ok {
			// Grab captured mid-pinch or a missed start: nothing to extend.
			return up
		}
		if r.append(ctx, now, res.Holder.Sample) {
			up.Changed = true
		}
	case gesture.DrawStopped:
		r.stop(now)
	}
	return up
}

// SealStopped seals a stroke that is waiting out the debounce window.
func (r *Recorder) SealStopped(ctx context.Context, now time.Duration) {
	if r.open && r.stopped {
		r.seal(ctx, now, false)
	}
}

func (r *Recorder) stop(now time.Duration) {
	r.state.LastRelease = now
	if r.open {
		r.stopped = true
	}
}

func (r *Recorder) openStroke(ctx context.Context, now time.Duration, segmented bool) {
	r.state.Strokes = append(r.state.Strokes, domain.Stroke{})
	r.open = true
	r.stopped = false
	if !segmented {
		r.fresh = true
	}
	if r.hooks.OnStrokeOpen != nil {
		r.hooks.OnStrokeOpen(ctx, &domain.StrokeEvent{
			EventBase: domain.EventBase{Elapsed: now, Type: domain.EventStrokeOpen},
			Index:     len(r.state.Strokes) - 1,
			Segmented: segmented,
		})
	}
}

func (r *Recorder) seal(ctx context.Context, now time.Duration, segmented bool) {
	if !r.open {
		return
	}
	r.open = false
	r.stopped = false
	if r.hooks.OnStrokeSeal != nil {
		idx := len(r.state.Strokes) - 1
		r.hooks.OnStrokeSeal(ctx, &domain.StrokeEvent{
			EventBase: domain.EventBase{Elapsed: now, Type: domain.EventStrokeSeal},
			Index:     idx,
			Points:    r.state.Strokes[idx].Len(),
			Segmented: segmented,
		})
	}
}

// append commits one sample to the current stroke and reports whether a
// point was added.
func (r *Recorder) append(ctx context.Context, now time.Duration, sample domain.InputSample) bool {
	pos := WornTransform(sample).Position
	strength := r.classifier.MustStrength(sample)

	if r.settings.SmoothingThreshold > 0 {
		if r.fresh {
			r.state.Cursor = pos
		} else {
			r.state.Cursor = LazyBrush(r.state.Cursor, pos, r.settings.SmoothingThreshold)
		}
		pos = r.state.Cursor
	}
	r.fresh = false

	idx := len(r.state.Strokes) - 1
	if last, ok := r.state.Strokes[idx].Last(); ok && r.settings.MoveResolution > 0 &&
		last.Position.Distance(pos) < r.settings.MoveResolution {
		return false
	}

	point := domain.Point{
		Position:  pos,
		Thickness: math.Max(0, strength*r.state.Thickness),
		Color:     r.settings.Color,
	}

	if r.state.Strokes[idx].Len() >= r.settings.SegmentCeiling {
		r.seal(ctx, now, true)
		r.openStroke(ctx, now, true)
		idx++
	}
	r.state.Strokes[idx].Points = append(r.state.Strokes[idx].Points, point)

	if r.hooks.OnPointAppend != nil {
		r.hooks.OnPointAppend(ctx, &domain.PointEvent{
			EventBase: domain.EventBase{Elapsed: now, Type: domain.EventPointAppend},
			Stroke:    idx,
			Point:     point,
		})
	}
	return true
}
