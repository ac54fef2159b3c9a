package quill_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/internal/testutils"
	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/config"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameStep = 16 * time.Millisecond

// driver feeds frames to a pen with a fixed clock step.
type driver struct {
	t     *testing.T
	pen   *quill.Pen
	frame int
}

func (d *driver) step(actors ...domain.Actor) {
	d.t.Helper()
	err := d.pen.Frame(context.Background(), domain.Frame{
		Elapsed: time.Duration(d.frame) * frameStep,
		Actors:  actors,
	})
	require.NoError(d.t, err)
	d.frame++
}

func tip(id domain.ActorID, x, sel, grab float64) domain.Actor {
	return testutils.Tip(id, domain.Vec3{X: x, Y: 1}, sel, grab)
}

func newPen(t *testing.T, opts ...quill.Option) *driver {
	t.Helper()
	p, err := quill.New(config.Default(), opts...)
	require.NoError(t, err)
	require.NoError(t, p.Load(context.Background()))
	return &driver{t: t, pen: p}
}

func TestPen_DrawPublishesStrokesAndTransform(t *testing.T) {
	pub := memory.NewPublisher()
	d := newPen(t, quill.WithPublisher(pub))

	for i := 0; i < 5; i++ {
		d.step(tip("right", float64(i)*0.01, 1, 1))
	}

	assert.False(t, pub.Zoneable(), "pen is not zoneable while held")
	require.Len(t, pub.Strokes(), 1)
	assert.Len(t, pub.Strokes()[0].Points, 5)
	assert.Equal(t, domain.Vec3{X: 0.04, Y: 1}, pub.Pose().Position)
	assert.Equal(t, 5, pub.Calls().Transforms)

	grab := d.pen.Grab()
	assert.True(t, grab.Held)
	assert.Equal(t, domain.ActorID("right"), grab.Actor)

	d.step(tip("right", 0.04, 0, 0))
	assert.True(t, pub.Zoneable(), "released pen is zoneable again")
	assert.False(t, d.pen.Grab().Held)
}

func TestPen_HandPinchThickness(t *testing.T) {
	d := newPen(t)

	d.step(testutils.Hand("left", domain.Vec3{Y: 1}, 0.01, 0.95))
	d.step(testutils.Hand("left", domain.Vec3{Y: 1.01}, 0.02, 0.95))

	strokes := d.pen.Snapshot().Strokes
	require.Len(t, strokes, 1)
	require.Len(t, strokes[0].Points, 2)
	assert.InDelta(t, 0.005, strokes[0].Points[0].Thickness, 1e-9, "touching fingers draw at full thickness")
	assert.InDelta(t, 0.005*math.Sqrt(0.5), strokes[0].Points[1].Thickness, 1e-9)
}

func TestPen_FileStoreResume(t *testing.T) {
	_, store := testutils.SetupFileStore(t)

	d := newPen(t, quill.WithStore(store))
	d.step(tip("right", 0, 1, 1))
	d.step(tip("right", 0.01, 1, 1))
	require.NoError(t, d.pen.Save(context.Background()))

	resumed := newPen(t, quill.WithStore(store))
	assert.Equal(t, d.pen.Snapshot(), resumed.pen.Snapshot())
}

func TestPen_NoHoverNoGrab(t *testing.T) {
	pub := memory.NewPublisher()
	d := newPen(t, quill.WithPublisher(pub))

	far := tip("right", 0, 1, 1)
	far.Distance = 1
	for i := 0; i < 3; i++ {
		d.step(far)
	}

	assert.False(t, d.pen.Grab().Held)
	assert.Empty(t, d.pen.Snapshot().Strokes)
	assert.Equal(t, memory.PublisherCalls{}, pub.Calls())
}

func TestPen_SaveAndResume(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	d := newPen(t, quill.WithStore(store))
	for i := 0; i < 3; i++ {
		d.step(tip("right", float64(i)*0.01, 1, 1))
	}
	// Pinch released: the stroke lingers for the debounce window.
	d.step(tip("right", 0.03, 0, 1))
	require.NoError(t, d.pen.Save(ctx))

	saved := d.pen.Snapshot()
	require.Len(t, saved.Strokes, 1)
	assert.Len(t, saved.Strokes[0].Points, 3)

	pub := memory.NewPublisher()
	resumed := newPen(t, quill.WithStore(store), quill.WithPublisher(pub))
	assert.Equal(t, saved, resumed.pen.Snapshot())
	assert.Len(t, pub.Strokes(), 1, "loaded strokes are republished")
	assert.Equal(t, saved.Pose, pub.Pose(), "loaded pose is republished")
	assert.Equal(t, domain.Vec3{X: 0.03, Y: 1}, pub.Pose().Position)
	assert.Equal(t, 1, pub.Calls().Transforms)

	// A new draw never extends a stroke restored from storage.
	resumed.step(tip("right", 0.5, 1, 1))
	resumed.step(tip("right", 0.6, 1, 1))
	strokes := resumed.pen.Snapshot().Strokes
	require.Len(t, strokes, 2)
	assert.Len(t, strokes[0].Points, 3)
	assert.Len(t, strokes[1].Points, 2)
}

func TestPen_LoadCorruptBlobStartsEmpty(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Save(context.Background(), domain.DefaultAnchor, []byte("garbage")))

	d := newPen(t, quill.WithStore(store))
	state := d.pen.Snapshot()
	assert.Empty(t, state.Strokes)
	assert.Equal(t, config.Default().Thickness, state.Thickness)
}

type brokenStore struct{ ports.BlobStore }

var errBackend = errors.New("backend down")

func (brokenStore) Load(context.Context, string) ([]byte, error) { return nil, errBackend }
func (brokenStore) Save(context.Context, string, []byte) error   { return errBackend }

func TestPen_StoreFailures(t *testing.T) {
	p, err := quill.New(config.Default(), quill.WithStore(brokenStore{}))
	require.NoError(t, err)

	assert.ErrorIs(t, p.Load(context.Background()), errBackend)
	assert.ErrorIs(t, p.Save(context.Background()), errBackend)
}

func TestPen_PublishFailureDoesNotAbortFrame(t *testing.T) {
	pub := memory.NewPublisher()
	pub.FailWith(errors.New("scene gone"))

	var targets []string
	hooks := domain.LifecycleHooks{
		OnPublishError: func(_ context.Context, e *domain.PublishErrorEvent) {
			targets = append(targets, e.Target)
		},
	}
	d := newPen(t, quill.WithPublisher(pub), quill.WithLifecycleHooks(hooks))
	d.step(tip("right", 0, 1, 1))

	assert.Equal(t, []string{"zoneable", "transform", "strokes"}, targets)
	require.Len(t, d.pen.Snapshot().Strokes, 1, "strokes are recorded regardless")
}

func TestPen_LifecycleHooks(t *testing.T) {
	var events []domain.EventType
	record := func(typ domain.EventType) { events = append(events, typ) }
	hooks := domain.LifecycleHooks{
		OnGrabStart:  func(_ context.Context, e *domain.GrabEvent) { record(e.Type) },
		OnGrabStop:   func(_ context.Context, e *domain.GrabEvent) { record(e.Type) },
		OnStrokeOpen: func(_ context.Context, e *domain.StrokeEvent) { record(e.Type) },
		OnStrokeSeal: func(_ context.Context, e *domain.StrokeEvent) { record(e.Type) },
	}
	d := newPen(t, quill.WithLifecycleHooks(hooks))

	d.step(tip("right", 0, 1, 1))
	d.step(tip("right", 0, 0, 0))
	require.NoError(t, d.pen.Save(context.Background()))

	assert.Equal(t, []domain.EventType{
		domain.EventGrabStart,
		domain.EventStrokeOpen,
		domain.EventGrabStop,
		domain.EventStrokeSeal,
	}, events)
}

func TestPen_Anchor(t *testing.T) {
	store := memory.NewStore()
	d := newPen(t, quill.WithStore(store), quill.WithAnchor("desk"))

	require.NoError(t, d.pen.Save(context.Background()))
	assert.Equal(t, "desk", d.pen.Anchor())

	anchors, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"desk"}, anchors)
}

func TestNew_InvalidSettings(t *testing.T) {
	s := config.Default()
	s.SegmentCeiling = 1
	_, err := quill.New(s)
	assert.Error(t, err)
}
