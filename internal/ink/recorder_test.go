package ink

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/quill/internal/gesture"
	"github.com/aretw0/quill/pkg/config"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameStep = 16 * time.Millisecond

// rig drives an engine and a recorder the way the pen does.
type rig struct {
	engine   *gesture.Engine
	recorder *Recorder
	points   []domain.Point
	sealed   map[int][]domain.Point
	frame    int
}

func newRig(s config.Settings) *rig {
	r := &rig{sealed: map[int][]domain.Point{}}
	hooks := domain.LifecycleHooks{
		OnPointAppend: func(_ context.Context, e *domain.PointEvent) {
			r.points = append(r.points, e.Point)
		},
		OnStrokeSeal: func(_ context.Context, e *domain.StrokeEvent) {
			st := r.recorder.State().Strokes[e.Index]
			r.sealed[e.Index] = append([]domain.Point(nil), st.Points...)
		},
	}
	r.engine = gesture.NewEngine(s)
	r.recorder = NewRecorder(s, domain.NewPenSessionState(s.Thickness), hooks)
	return r
}

func (r *rig) step(actors ...domain.Actor) Update {
	res := r.engine.Step(domain.Frame{Elapsed: time.Duration(r.frame) * frameStep, Actors: actors})
	r.frame++
	return r.recorder.Apply(context.Background(), res)
}

func pen(x, sel, grab float64) domain.Actor {
	return domain.Actor{
		ID:       "a",
		Distance: 0.01,
		Sample: domain.InputSample{
			Input: domain.Tip{Origin: domain.Vec3{X: x}, Orientation: domain.IdentityQuat},
			Datamap: domain.Datamap{
				domain.ChannelSelect: sel,
				domain.ChannelGrab:   grab,
			},
		},
	}
}

func TestRecorder_FiveFrameStroke(t *testing.T) {
	s := config.Default()
	r := newRig(s)

	for i := 0; i < 5; i++ {
		r.step(pen(float64(i)*0.01, 1, 1))
	}

	strokes := r.recorder.State().Strokes
	require.Len(t, strokes, 1)
	require.Len(t, strokes[0].Points, 5)
	for i, p := range strokes[0].Points {
		assert.InDelta(t, s.Thickness, p.Thickness, 1e-12)
		assert.Equal(t, s.Color, p.Color)
		if i > 0 {
			assert.Greater(t, p.Position.X, strokes[0].Points[i-1].Position.X)
		}
	}
}

func TestRecorder_Segmentation(t *testing.T) {
	s := config.Default()
	require.Equal(t, 350, s.SegmentCeiling)
	r := newRig(s)

	for i := 0; i < 400; i++ {
		r.step(pen(float64(i)*0.01, 1, 1))
	}

	strokes := r.recorder.State().Strokes
	require.Len(t, strokes, 2)
	assert.Len(t, strokes[0].Points, 350)
	assert.Len(t, strokes[1].Points, 50)
	require.Len(t, r.points, 400)
	assert.Equal(t, r.points[350], strokes[1].Points[0])
}

func TestRecorder_SegmentationLegacyCeiling(t *testing.T) {
	s := config.Legacy()
	r := newRig(s)

	for i := 0; i < 300; i++ {
		r.step(pen(float64(i)*0.01, 1, 1))
	}

	for _, st := range r.recorder.State().Strokes {
		assert.LessOrEqual(t, st.Len(), s.SegmentCeiling)
	}
	assert.Len(t, r.recorder.State().Strokes, 3)
}

func TestRecorder_Debounce(t *testing.T) {
	draw := func(r *rig, x float64, sel float64) { r.step(pen(x, sel, 1)) }

	t.Run("Short Gap Continues", func(t *testing.T) {
		r := newRig(config.Default())
		draw(r, 0.00, 1)
		draw(r, 0.01, 1)
		draw(r, 0.02, 0) // stop at 32ms
		draw(r, 0.03, 1) // restart 16ms later
		draw(r, 0.04, 1)

		require.Len(t, r.recorder.State().Strokes, 1)
		assert.Len(t, r.recorder.State().Strokes[0].Points, 4)
	})

	t.Run("Long Gap Splits", func(t *testing.T) {
		r := newRig(config.Default())
		draw(r, 0.00, 1)
		draw(r, 0.01, 1)
		draw(r, 0.02, 0) // stop at 32ms
		draw(r, 0.02, 0)
		draw(r, 0.02, 0)
		draw(r, 0.03, 1) // restart 48ms later
		draw(r, 0.04, 1)

		require.Len(t, r.recorder.State().Strokes, 2)
		assert.Len(t, r.recorder.State().Strokes[0].Points, 2)
		assert.Len(t, r.recorder.State().Strokes[1].Points, 2)
	})

	t.Run("Regrab Continues", func(t *testing.T) {
		r := newRig(config.Default())
		r.step(pen(0.00, 1, 1))
		r.step(pen(0.01, 1, 1))
		r.step(pen(0.02, 1, 0)) // grab flickers off
		r.step(pen(0.03, 1, 1))
		r.step(pen(0.04, 1, 1))

		require.Len(t, r.recorder.State().Strokes, 1)
		assert.Len(t, r.recorder.State().Strokes[0].Points, 4)
	})
}

func TestRecorder_GrabHandoffStartsNewStroke(t *testing.T) {
	r := newRig(config.Default())
	other := func(x float64) domain.Actor {
		b := pen(x, 1, 1)
		b.ID = "b"
		return b
	}

	r.step(pen(0.00, 1, 1))
	r.step(pen(0.01, 1, 1))
	// "a" lets go and "b" captures mid-pinch in the same frame.
	r.step(pen(0.01, 1, 0), other(0.5))
	r.step(pen(0.01, 1, 0), other(0.51))

	strokes := r.recorder.State().Strokes
	require.Len(t, strokes, 2)
	assert.Equal(t, r.sealed[0], strokes[0].Points, "first owner's stroke is sealed")
	require.Len(t, strokes[0].Points, 2)
	assert.LessOrEqual(t, strokes[0].Points[1].Position.X, 0.01)

	require.Len(t, strokes[1].Points, 2)
	assert.Equal(t, 0.5, strokes[1].Points[0].Position.X, "new owner starts at its own tip")
	assert.Greater(t, strokes[1].Points[1].Position.X, 0.5)
}

func TestRecorder_SealedStrokesNeverChange(t *testing.T) {
	s := config.Default()
	s.SegmentCeiling = 8
	r := newRig(s)

	for i := 0; i < 120; i++ {
		sel := 1.0
		if i%25 > 20 {
			sel = 0
		}
		r.step(pen(float64(i)*0.01, sel, 1))

		for idx, pts := range r.sealed {
			assert.Equal(t, pts, r.recorder.State().Strokes[idx].Points, "sealed stroke %d mutated at frame %d", idx, i)
		}
	}
	assert.NotEmpty(t, r.sealed)
	for _, st := range r.recorder.State().Strokes {
		assert.LessOrEqual(t, st.Len(), s.SegmentCeiling)
	}
}

func TestRecorder_MinimumMotion(t *testing.T) {
	s := config.Legacy()
	s.MoveResolution = 0.001
	r := newRig(s)

	for i := 0; i < 10; i++ {
		r.step(pen(float64(i)*0.0001, 1, 1))
	}

	strokes := r.recorder.State().Strokes
	require.Len(t, strokes, 1)
	// Nothing moves 1mm away from the first point within 10 frames.
	assert.Len(t, strokes[0].Points, 1)
}

func TestRecorder_GrabbedWhilePinching(t *testing.T) {
	r := newRig(config.Default())

	// Pinching outside the field, then grabbing inside it.
	far := pen(0, 1, 0)
	far.Distance = 1
	r.step(far)
	up := r.step(pen(0.01, 1, 1))
	require.NotNil(t, up.Pose, "worn transform published on capture")
	assert.Equal(t, 0.01, up.Pose.Position.X)
	assert.True(t, up.Changed)

	up = r.step(pen(0.02, 1, 1))
	require.NotNil(t, up.Pose, "worn transform published every held frame")
	assert.Equal(t, 0.02, r.recorder.State().Pose.Position.X)
	require.Len(t, r.recorder.State().Strokes, 1)
	assert.Len(t, r.recorder.State().Strokes[0].Points, 2)
}

func TestRecorder_ContinuingWithoutStrokeIsNoop(t *testing.T) {
	s := config.Default()
	rec := NewRecorder(s, domain.NewPenSessionState(s.Thickness), domain.LifecycleHooks{})
	holder := pen(0.01, 1, 1)

	var up Update
	assert.NotPanics(t, func() {
		up = rec.Apply(context.Background(), gesture.Result{
			Elapsed: frameStep,
			Holder:  &holder,
			Draw:    gesture.DrawContinuing,
		})
	})
	assert.False(t, up.Changed)
	assert.Empty(t, rec.State().Strokes)
}

func TestRecorder_ThicknessFromStrength(t *testing.T) {
	s := config.Default()
	s.SmoothingThreshold = 0
	r := newRig(s)

	r.step(pen(0.00, 0.25, 1))
	r.step(pen(0.01, 1.00, 1))

	pts := r.recorder.State().Strokes[0].Points
	assert.InDelta(t, 0.5*s.Thickness, pts[0].Thickness, 1e-12)
	assert.InDelta(t, s.Thickness, pts[1].Thickness, 1e-12)
}

func TestRecorder_SealStopped(t *testing.T) {
	r := newRig(config.Default())
	r.step(pen(0.00, 1, 1))
	r.step(pen(0.01, 0, 1))
	_, ok := r.recorder.Current()
	assert.False(t, ok)

	r.recorder.SealStopped(context.Background(), 40*time.Millisecond)
	assert.Contains(t, r.sealed, 0)

	// A restart within the window now opens a fresh stroke.
	r.step(pen(0.02, 1, 1))
	assert.Len(t, r.recorder.State().Strokes, 2)
}
