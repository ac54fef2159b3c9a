package quill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/quill/internal/gesture"
	"github.com/aretw0/quill/internal/ink"
	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/codec"
	"github.com/aretw0/quill/pkg/config"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/ports"
)

// Pen is the high-level entry point for the Quill library.
// It owns one session state and steps it once per frame.
//
// A Pen is not safe for concurrent use; the host drives it from one loop.
type Pen struct {
	settings  config.Settings
	store     ports.BlobStore
	publisher ports.ScenePublisher
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	anchor    string

	engine   *gesture.Engine
	recorder *ink.Recorder
	elapsed  time.Duration
}

// Option defines a functional option for configuring the Pen.
type Option func(*Pen)

// WithStore sets where the session blob is persisted. Defaults to an in-memory store.
// Wrap it in a session.Manager when other processes share the backend.
func WithStore(s ports.BlobStore) Option {
	return func(p *Pen) {
		p.store = s
	}
}

// WithPublisher sets the scene collaborator that renders strokes.
func WithPublisher(pub ports.ScenePublisher) Option {
	return func(p *Pen) {
		p.publisher = pub
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pen) {
		p.hooks = p.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the pen.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pen) {
		p.logger = logger
	}
}

// WithAnchor binds the session blob to a different anchor name.
func WithAnchor(anchor string) Option {
	return func(p *Pen) {
		p.anchor = anchor
	}
}

// New initializes a Pen with an empty session. Call Load to resume a stored one.
func New(settings config.Settings, opts ...Option) (*Pen, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	p := &Pen{
		settings: settings,
		anchor:   settings.Anchor,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.anchor == "" {
		return nil, fmt.Errorf("anchor is required")
	}
	if p.store == nil {
		p.store = memory.NewStore()
	}
	if p.publisher == nil {
		p.publisher = nopPublisher{}
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	p.logger = p.logger.With("anchor", p.anchor)

	p.reset(domain.NewPenSessionState(settings.Thickness))
	return p, nil
}

func (p *Pen) reset(state *domain.PenSessionState) {
	p.engine = gesture.NewEngine(p.settings)
	p.recorder = ink.NewRecorder(p.settings, state, p.hooks)
	p.elapsed = state.LastRelease
}

// Anchor returns the anchor the session is bound to.
func (p *Pen) Anchor() string { return p.anchor }

// Load replaces the session with the stored blob for the anchor.
// A missing or undecodable blob yields an empty session; only store
// failures are returned.
func (p *Pen) Load(ctx context.Context) error {
	blob, err := p.store.Load(ctx, p.anchor)
	switch {
	case errors.Is(err, domain.ErrAnchorNotFound):
		p.logger.Info("no stored session, starting empty")
		p.reset(domain.NewPenSessionState(p.settings.Thickness))
		return nil
	case err != nil:
		return fmt.Errorf("failed to load session: %w", err)
	}

	state, err := codec.Unmarshal(blob)
	if err != nil {
		p.logger.Warn("discarding unreadable session", "err", err, "size", len(blob))
		p.reset(domain.NewPenSessionState(p.settings.Thickness))
		return nil
	}

	p.logger.Info("session loaded", "strokes", len(state.Strokes), "points", state.PointCount())
	p.reset(state)
	// Republish so the scene matches the resumed session.
	p.report(ctx, "transform", p.publisher.PublishTransform(ctx, state.Pose))
	if len(state.Strokes) > 0 {
		p.publishStrokes(ctx)
	}
	return nil
}

// Frame steps the pen with one frame of input: action resolution, then
// stroke mutation, then publishing.
func (p *Pen) Frame(ctx context.Context, frame domain.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.elapsed = frame.Elapsed

	res := p.engine.Step(frame)
	if res.GrabStopped {
		p.fireGrab(ctx, p.hooks.OnGrabStop, domain.EventGrabStop, res.Elapsed, res.Released)
	}
	if res.GrabStarted {
		p.fireGrab(ctx, p.hooks.OnGrabStart, domain.EventGrabStart, res.Elapsed, res.Holder.ID)
	}

	up := p.recorder.Apply(ctx, res)

	if res.GrabStopped && !res.GrabStarted {
		p.report(ctx, "zoneable", p.publisher.SetZoneable(ctx, true))
	}
	if res.GrabStarted {
		p.report(ctx, "zoneable", p.publisher.SetZoneable(ctx, false))
	}
	if up.Pose != nil {
		p.report(ctx, "transform", p.publisher.PublishTransform(ctx, *up.Pose))
	}
	if up.Changed {
		p.publishStrokes(ctx)
	}
	return nil
}

// Save seals a stroke waiting out the debounce window, then encodes and
// stores the session.
func (p *Pen) Save(ctx context.Context) error {
	p.recorder.SealStopped(ctx, p.elapsed)

	blob, err := codec.Marshal(p.recorder.State())
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := p.store.Save(ctx, p.anchor, blob); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	p.logger.Debug("session saved", "size", len(blob))
	return nil
}

// Snapshot returns a deep copy of the session state.
func (p *Pen) Snapshot() *domain.PenSessionState {
	return p.recorder.State().Clone()
}

// Grab returns the current grab state.
func (p *Pen) Grab() gesture.GrabState {
	return p.engine.Grab()
}

func (p *Pen) publishStrokes(ctx context.Context) {
	p.report(ctx, "strokes", p.publisher.PublishStrokes(ctx, p.recorder.State().Strokes))
}

func (p *Pen) fireGrab(ctx context.Context, hook func(context.Context, *domain.GrabEvent), typ domain.EventType, at time.Duration, id domain.ActorID) {
	p.logger.Debug(string(typ), "actor", id, "elapsed", at)
	if hook != nil {
		hook(ctx, &domain.GrabEvent{
			EventBase: domain.EventBase{Elapsed: at, Type: typ},
			ActorID:   id,
		})
	}
}

func (p *Pen) report(ctx context.Context, target string, err error) {
	if err == nil {
		return
	}
	p.logger.Warn("publish failed", "target", target, "err", err)
	if p.hooks.OnPublishError != nil {
		p.hooks.OnPublishError(ctx, &domain.PublishErrorEvent{
			EventBase: domain.EventBase{Elapsed: p.elapsed, Type: domain.EventPublishError},
			Target:    target,
			Err:       err,
		})
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishStrokes(context.Context, []domain.Stroke) error { return nil }
func (nopPublisher) PublishTransform(context.Context, domain.Pose) error   { return nil }
func (nopPublisher) SetZoneable(context.Context, bool) error               { return nil }
