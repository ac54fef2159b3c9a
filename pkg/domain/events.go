package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGrabStart    EventType = "grab_start"
	EventGrabStop     EventType = "grab_stop"
	EventStrokeOpen   EventType = "stroke_open"
	EventStrokeSeal   EventType = "stroke_seal"
	EventPointAppend  EventType = "point_append"
	EventPublishError EventType = "publish_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Elapsed time.Duration `json:"elapsed"`
	Type    EventType     `json:"type"`
}

// GrabEvent reports a change of grab holder.
type GrabEvent struct {
	EventBase
	ActorID ActorID `json:"actor_id"`
}

// StrokeEvent reports a stroke opening or being sealed.
type StrokeEvent struct {
	EventBase
	Index  int `json:"index"`
	Points int `json:"points"`
	// Segmented is set when the stroke was split by the point ceiling.
	Segmented bool `json:"segmented,omitempty"`
}

// PointEvent reports a point appended to the current stroke.
type PointEvent struct {
	EventBase
	Stroke int   `json:"stroke"`
	Point  Point `json:"point"`
}

// PublishErrorEvent reports a rejected update to the scene collaborator.
type PublishErrorEvent struct {
	EventBase
	Target string `json:"target"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// They run synchronously inside the frame step.
type LifecycleHooks struct {
	OnGrabStart    func(context.Context, *GrabEvent)
	OnGrabStop     func(context.Context, *GrabEvent)
	OnStrokeOpen   func(context.Context, *StrokeEvent)
	OnStrokeSeal   func(context.Context, *StrokeEvent)
	OnPointAppend  func(context.Context, *PointEvent)
	OnPublishError func(context.Context, *PublishErrorEvent)
}

// Merge returns hooks that call h first and then o.
func (h LifecycleHooks) Merge(o LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnGrabStart:    chain(h.OnGrabStart, o.OnGrabStart),
		OnGrabStop:     chain(h.OnGrabStop, o.OnGrabStop),
		OnStrokeOpen:   chain(h.OnStrokeOpen, o.OnStrokeOpen),
		OnStrokeSeal:   chain(h.OnStrokeSeal, o.OnStrokeSeal),
		OnPointAppend:  chain(h.OnPointAppend, o.OnPointAppend),
		OnPublishError: chain(h.OnPublishError, o.OnPublishError),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
