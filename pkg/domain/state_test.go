package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPenSessionState(t *testing.T) {
	s := domain.NewPenSessionState(0.004)
	assert.Equal(t, 0.004, s.Thickness)
	assert.Equal(t, domain.IdentityPose, s.Pose)
	assert.Empty(t, s.Strokes)
	assert.Zero(t, s.PointCount())
}

func TestPenSessionState_CloneIsDeep(t *testing.T) {
	s := domain.NewPenSessionState(0.005)
	s.Strokes = []domain.Stroke{
		{Points: []domain.Point{{Thickness: 1}, {Thickness: 2}}},
		{Points: []domain.Point{{Thickness: 3}}},
	}

	c := s.Clone()
	require.Equal(t, s, c)
	assert.Equal(t, 3, c.PointCount())

	c.Strokes[0].Points[0].Thickness = 99
	c.Strokes = append(c.Strokes, domain.Stroke{})
	assert.Equal(t, 1.0, s.Strokes[0].Points[0].Thickness)
	assert.Len(t, s.Strokes, 2)
}

func TestStroke_Last(t *testing.T) {
	_, ok := domain.Stroke{}.Last()
	assert.False(t, ok)

	p, ok := domain.Stroke{Points: []domain.Point{{Thickness: 1}, {Thickness: 2}}}.Last()
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Thickness)
}

func TestDatamap_Get(t *testing.T) {
	d := domain.Datamap{domain.ChannelGrab: 0.5}

	v, err := d.Get(domain.ChannelGrab)
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	_, err = d.Get(domain.ChannelSelect)
	assert.ErrorIs(t, err, domain.ErrMissingChannel)

	_, err = domain.Datamap(nil).Get(domain.ChannelSelect)
	assert.ErrorIs(t, err, domain.ErrMissingChannel)
}

func TestFrame_Find(t *testing.T) {
	f := domain.Frame{Actors: []domain.Actor{{ID: "a"}, {ID: "b", Distance: 2}}}

	a, ok := f.Find("b")
	require.True(t, ok)
	assert.Equal(t, 2.0, a.Distance)

	_, ok = f.Find("c")
	assert.False(t, ok)
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	first := domain.LifecycleHooks{
		OnGrabStart: func(context.Context, *domain.GrabEvent) { calls = append(calls, "first") },
	}
	second := domain.LifecycleHooks{
		OnGrabStart:  func(context.Context, *domain.GrabEvent) { calls = append(calls, "second") },
		OnStrokeSeal: func(context.Context, *domain.StrokeEvent) { calls = append(calls, "seal") },
	}

	merged := first.Merge(second)
	merged.OnGrabStart(context.Background(), &domain.GrabEvent{})
	merged.OnStrokeSeal(context.Background(), &domain.StrokeEvent{})

	assert.Equal(t, []string{"first", "second", "seal"}, calls)
	assert.Nil(t, merged.OnPointAppend, "unset hooks stay nil")
}
