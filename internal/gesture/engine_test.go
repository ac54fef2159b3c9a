package gesture

import (
	"testing"
	"time"

	"github.com/aretw0/quill/pkg/config"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameStep = 16 * time.Millisecond

func tip(id domain.ActorID, distance, grab, sel float64) domain.Actor {
	return domain.Actor{
		ID:       id,
		Distance: distance,
		Sample: domain.InputSample{
			Input: domain.Tip{Orientation: domain.IdentityQuat},
			Datamap: domain.Datamap{
				domain.ChannelGrab:   grab,
				domain.ChannelSelect: sel,
			},
		},
	}
}

func frame(i int, actors ...domain.Actor) domain.Frame {
	return domain.Frame{Elapsed: time.Duration(i) * frameStep, Actors: actors}
}

func TestEngine_GrabRequiresHover(t *testing.T) {
	e := NewEngine(config.Default())

	// Grabbing far from the field does not capture.
	res := e.Step(frame(0, tip("a", 1.0, 1, 0)))
	assert.False(t, res.GrabStarted)
	assert.Nil(t, res.Holder)

	// Moving into the field while already grabbing does not capture either.
	res = e.Step(frame(1, tip("a", 0.01, 1, 0)))
	assert.False(t, res.GrabStarted)

	// Re-grabbing inside the field does.
	e.Step(frame(2, tip("a", 0.01, 0, 0)))
	res = e.Step(frame(3, tip("a", 0.01, 1, 0)))
	require.True(t, res.GrabStarted)
	require.NotNil(t, res.Holder)
	assert.Equal(t, domain.ActorID("a"), res.Holder.ID)
	assert.Equal(t, GrabState{Held: true, Actor: "a", Since: 3 * frameStep}, e.Grab())
}

func TestEngine_GrabExclusive(t *testing.T) {
	e := NewEngine(config.Default())

	res := e.Step(frame(0, tip("b", 0.01, 1, 0), tip("a", 0.01, 1, 0)))
	require.True(t, res.GrabStarted)
	assert.Equal(t, domain.ActorID("a"), res.Holder.ID, "lowest id wins ties")

	// b lets go and grabs again; a still holds, no preemption.
	e.Step(frame(1, tip("b", 0.01, 0, 0), tip("a", 0.01, 1, 0)))
	res = e.Step(frame(2, tip("b", 0.01, 1, 0), tip("a", 0.01, 1, 0)))
	assert.False(t, res.GrabStarted)
	assert.Equal(t, domain.ActorID("a"), res.Holder.ID)

	// a releases; b is already grabbing so it must re-grab to capture.
	res = e.Step(frame(3, tip("b", 0.01, 1, 0), tip("a", 0.01, 0, 0)))
	assert.True(t, res.GrabStopped)
	assert.Equal(t, domain.ActorID("a"), res.Released)
	assert.Nil(t, res.Holder)
	assert.Equal(t, 3*frameStep, e.LastRelease())
}

func TestEngine_GrabExclusive_RandomSequence(t *testing.T) {
	e := NewEngine(config.Default())
	ids := []domain.ActorID{"a", "b", "c"}

	var holder domain.ActorID
	for i := 0; i < 500; i++ {
		var actors []domain.Actor
		for j, id := range ids {
			grab := float64((i*7 + j*3) % 5 / 4)
			dist := 0.01 + float64((i+j)%3)*0.03
			actors = append(actors, tip(id, dist, grab, 0))
		}
		res := e.Step(frame(i, actors...))

		if res.GrabStopped {
			assert.Equal(t, holder, res.Released)
			holder = ""
		}
		if res.GrabStarted {
			assert.Empty(t, holder, "captured while %s still held the grab", holder)
			holder = res.Holder.ID
		}
		if res.Holder != nil {
			assert.Equal(t, holder, res.Holder.ID, "holder changed without release at frame %d", i)
		}
	}
}

func TestEngine_DrawPhases(t *testing.T) {
	e := NewEngine(config.Default())

	res := e.Step(frame(0, tip("a", 0.01, 1, 0)))
	assert.Equal(t, DrawIdle, res.Draw)

	res = e.Step(frame(1, tip("a", 0.01, 1, 1)))
	assert.Equal(t, DrawStarted, res.Draw)

	res = e.Step(frame(2, tip("a", 0.01, 1, 1)))
	assert.Equal(t, DrawContinuing, res.Draw)

	res = e.Step(frame(3, tip("a", 0.01, 1, 0)))
	assert.Equal(t, DrawStopped, res.Draw)

	// Releasing the grab while drawing reports a stop.
	e.Step(frame(4, tip("a", 0.01, 1, 1)))
	res = e.Step(frame(5, tip("a", 0.01, 0, 1)))
	assert.True(t, res.GrabStopped)
	assert.Equal(t, DrawStopped, res.Draw)
}

func TestEngine_CaptureWhilePinchingStartsDraw(t *testing.T) {
	e := NewEngine(config.Default())

	e.Step(frame(0, tip("a", 1.0, 0, 1)))
	res := e.Step(frame(1, tip("a", 0.01, 1, 1)))
	require.True(t, res.GrabStarted)
	assert.Equal(t, DrawStarted, res.Draw)

	res = e.Step(frame(2, tip("a", 0.01, 1, 1)))
	assert.Equal(t, DrawContinuing, res.Draw)
}

func TestEngine_DrawIgnoredForNonHolder(t *testing.T) {
	e := NewEngine(config.Default())

	res := e.Step(frame(0, tip("a", 0.01, 1, 0), tip("b", 0.01, 0, 1)))
	assert.Equal(t, DrawIdle, res.Draw)
	assert.Equal(t, []domain.ActorID{"b"}, res.Drawn.Started)
}

func TestEngine_HandPredicates(t *testing.T) {
	e := NewEngine(config.Default())
	hand := domain.Actor{
		ID:       "left",
		Distance: 0.02,
		Sample: domain.InputSample{
			Input: domain.Hand{
				ThumbTip: domain.Vec3{},
				IndexTip: domain.Vec3{X: 0.01},
				Palm:     domain.IdentityPose,
			},
			Datamap: domain.Datamap{domain.ChannelGrabStrength: 0.95},
		},
	}

	res := e.Step(frame(0, hand))
	require.True(t, res.GrabStarted)
	assert.Equal(t, DrawStarted, res.Draw)
	assert.Equal(t, []domain.ActorID{"left"}, res.Hover.Started)
}

func TestEngine_OtherNeverActs(t *testing.T) {
	e := NewEngine(config.Default())
	other := domain.Actor{ID: "x", Distance: 0, Sample: domain.InputSample{Input: domain.Other{}}}

	res := e.Step(frame(0, other))
	assert.False(t, res.GrabStarted)
	assert.Equal(t, []domain.ActorID{"x"}, res.Hover.Started)
}

func TestEngine_MissingChannelPanics(t *testing.T) {
	e := NewEngine(config.Default())
	bad := domain.Actor{ID: "t", Sample: domain.InputSample{Input: domain.Tip{}}}

	assert.Panics(t, func() { e.Step(frame(0, bad)) })
}
