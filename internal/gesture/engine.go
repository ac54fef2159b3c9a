package gesture

import (
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/quill/pkg/config"
	"github.com/aretw0/quill/pkg/domain"
)

// DrawPhase is the draw transition of the current grab holder.
type DrawPhase int

const (
	DrawIdle DrawPhase = iota
	DrawStarted
	DrawContinuing
	DrawStopped
)

func (p DrawPhase) String() string {
	switch p {
	case DrawStarted:
		return "started"
	case DrawContinuing:
		return "continuing"
	case DrawStopped:
		return "stopped"
	}
	return "idle"
}

// Transition lists the actors that entered or left an action this frame.
// Both slices are sorted.
type Transition struct {
	Started []domain.ActorID
	Stopped []domain.ActorID
}

// GrabState is the exclusive grab machine: Idle, or Held(actor, since).
type GrabState struct {
	Held  bool
	Actor domain.ActorID
	Since time.Duration
}

// Result is the outcome of one frame.
type Result struct {
	Elapsed time.Duration

	// Holder is the grab holder after this frame, nil when idle.
	Holder *domain.Actor

	GrabStarted bool
	GrabStopped bool
	// Released is the actor that lost the grab when GrabStopped is set.
	Released domain.ActorID

	// Draw is the draw phase of the holder, or of the released actor on
	// the frame it let go. A holder captured while already pinching
	// reports DrawStarted.
	Draw DrawPhase

	Hover Transition
	Grab  Transition
	Drawn Transition
}

type actorSet map[domain.ActorID]struct{}

func (s actorSet) has(id domain.ActorID) bool {
	_, ok := s[id]
	return ok
}

// diff returns the sorted members of s missing from o.
func (s actorSet) diff(o actorSet) []domain.ActorID {
	var out []domain.ActorID
	for id := range s {
		if !o.has(id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Engine evaluates hover, grab and draw for every frame.
// Previous-frame membership is kept as explicit state.
type Engine struct {
	maxDistance         float64
	grabThreshold       float64
	drawPinchDistance   float64
	drawSelectThreshold float64

	hover    actorSet
	grabbing actorSet
	drawing  actorSet
	grab     GrabState
	released time.Duration
}

// NewEngine creates an engine in the Idle state.
func NewEngine(s config.Settings) *Engine {
	return &Engine{
		maxDistance:         s.MaxDistance,
		grabThreshold:       s.GrabThreshold,
		drawPinchDistance:   s.DrawPinchDistance,
		drawSelectThreshold: s.DrawSelectThreshold,
		hover:               actorSet{},
		grabbing:            actorSet{},
		drawing:             actorSet{},
	}
}

// Grab returns the current grab state.
func (e *Engine) Grab() GrabState { return e.grab }

// LastRelease returns the frame clock of the last grab release.
func (e *Engine) LastRelease() time.Duration { return e.released }

// Step advances the state machine by one frame.
func (e *Engine) Step(frame domain.Frame) Result {
	hover, grabbing, drawing := actorSet{}, actorSet{}, actorSet{}
	for _, a := range frame.Actors {
		if a.Distance < e.maxDistance {
			hover[a.ID] = struct{}{}
		}
		if e.isGrabbing(a) {
			grabbing[a.ID] = struct{}{}
		}
		if e.isDrawing(a) {
			drawing[a.ID] = struct{}{}
		}
	}

	res := Result{
		Elapsed: frame.Elapsed,
		Hover:   Transition{Started: hover.diff(e.hover), Stopped: e.hover.diff(hover)},
		Grab:    Transition{Started: grabbing.diff(e.grabbing), Stopped: e.grabbing.diff(grabbing)},
		Drawn:   Transition{Started: drawing.diff(e.drawing), Stopped: e.drawing.diff(drawing)},
	}

	if e.grab.Held && !grabbing.has(e.grab.Actor) {
		res.GrabStopped = true
		res.Released = e.grab.Actor
		if e.drawing.has(e.grab.Actor) {
			res.Draw = DrawStopped
		}
		e.grab = GrabState{}
		e.released = frame.Elapsed
	}

	if !e.grab.Held {
		// Grab.Started is sorted, so the lowest qualifying id wins.
		for _, id := range res.Grab.Started {
			if hover.has(id) {
				e.grab = GrabState{Held: true, Actor: id, Since: frame.Elapsed}
				res.GrabStarted = true
				break
			}
		}
	}

	if e.grab.Held {
		holder, _ := frame.Find(e.grab.Actor)
		res.Holder = &holder

		// A fresh capture mid-pinch counts as a draw start so the recorder
		// can debounce a flickering grab.
		was, is := e.drawing.has(holder.ID) && !res.GrabStarted, drawing.has(holder.ID)
		switch {
		case is && !was:
			res.Draw = DrawStarted
		case is && was:
			res.Draw = DrawContinuing
		case !is && was:
			res.Draw = DrawStopped
		case res.Draw != DrawStopped:
			res.Draw = DrawIdle
		}
	}

	e.hover, e.grabbing, e.drawing = hover, grabbing, drawing
	return res
}

func (e *Engine) isGrabbing(a domain.Actor) bool {
	var key string
	switch a.Sample.Input.(type) {
	case domain.Hand:
		key = domain.ChannelGrabStrength
	case domain.Tip:
		key = domain.ChannelGrab
	case domain.Other:
		return false
	default:
		panic(fmt.Errorf("actor %s: %w: %T", a.ID, domain.ErrUnsupportedInput, a.Sample.Input))
	}
	v, err := a.Sample.Datamap.Get(key)
	if err != nil {
		panic(fmt.Errorf("actor %s: %w", a.ID, err))
	}
	return v > e.grabThreshold
}

func (e *Engine) isDrawing(a domain.Actor) bool {
	switch in := a.Sample.Input.(type) {
	case domain.Hand:
		return in.ThumbTip.Distance(in.IndexTip) < e.drawPinchDistance
	case domain.Tip:
		v, err := a.Sample.Datamap.Get(domain.ChannelSelect)
		if err != nil {
			panic(fmt.Errorf("actor %s: %w", a.ID, err))
		}
		return v > e.drawSelectThreshold
	case domain.Other:
		return false
	default:
		panic(fmt.Errorf("actor %s: %w: %T", a.ID, domain.ErrUnsupportedInput, a.Sample.Input))
	}
}
