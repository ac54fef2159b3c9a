package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/quill/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Trace is a recorded frame sequence.
//
//	frames:
//	  - t: 0.016
//	    actors:
//	      - id: right
//	        distance: 0.01
//	        tip: {origin: {x: 0, y: 1, z: 0}}
//	        data: {select: 1, grab: 1}
type Trace struct {
	Frames []TraceFrame `yaml:"frames"`
}

// TraceFrame is one frame; T is the clock in seconds.
type TraceFrame struct {
	T      float64      `yaml:"t"`
	Actors []TraceActor `yaml:"actors"`
}

// TraceActor holds exactly one of Hand or Tip; neither means an untracked input.
type TraceActor struct {
	ID       string             `yaml:"id"`
	Distance float64            `yaml:"distance"`
	Hand     *TraceHand         `yaml:"hand,omitempty"`
	Tip      *TraceTip          `yaml:"tip,omitempty"`
	Data     map[string]float64 `yaml:"data,omitempty"`
}

type TraceHand struct {
	ThumbTip domain.Vec3  `yaml:"thumb_tip"`
	IndexTip domain.Vec3  `yaml:"index_tip"`
	Palm     *domain.Pose `yaml:"palm,omitempty"`
}

type TraceTip struct {
	Origin      domain.Vec3  `yaml:"origin"`
	Orientation *domain.Quat `yaml:"orientation,omitempty"`
}

// ParseTrace decodes a YAML trace.
func ParseTrace(data []byte) (*Trace, error) {
	var tr Trace
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse trace: %w", err)
	}
	for i, f := range tr.Frames {
		if i > 0 && f.T < tr.Frames[i-1].T {
			return nil, fmt.Errorf("frame %d: clock goes backwards", i)
		}
		for _, a := range f.Actors {
			if a.ID == "" {
				return nil, fmt.Errorf("frame %d: actor without id", i)
			}
			if a.Hand != nil && a.Tip != nil {
				return nil, fmt.Errorf("frame %d: actor %q is both hand and tip", i, a.ID)
			}
			for _, ch := range a.required() {
				if _, ok := a.Data[ch]; !ok {
					return nil, fmt.Errorf("frame %d: actor %q: %w %q", i, a.ID, domain.ErrMissingChannel, ch)
				}
			}
		}
	}
	return &tr, nil
}

// LoadTrace reads a YAML trace file into a source.
func LoadTrace(path string) (*TraceSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tr, err := ParseTrace(data)
	if err != nil {
		return nil, err
	}
	return NewTraceSource(tr), nil
}

// TraceSource is a FrameSource over a Trace.
type TraceSource struct {
	frames []TraceFrame
	next   int
}

func NewTraceSource(tr *Trace) *TraceSource {
	return &TraceSource{frames: tr.Frames}
}

// Len returns the number of frames in the trace.
func (s *TraceSource) Len() int { return len(s.frames) }

// Next returns the next frame or io.EOF.
func (s *TraceSource) Next(ctx context.Context) (domain.Frame, error) {
	if err := ctx.Err(); err != nil {
		return domain.Frame{}, err
	}
	if s.next >= len(s.frames) {
		return domain.Frame{}, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f.toDomain(), nil
}

func (f TraceFrame) toDomain() domain.Frame {
	frame := domain.Frame{
		Elapsed: time.Duration(f.T * float64(time.Second)),
		Actors:  make([]domain.Actor, 0, len(f.Actors)),
	}
	for _, a := range f.Actors {
		frame.Actors = append(frame.Actors, domain.Actor{
			ID:       domain.ActorID(a.ID),
			Distance: a.Distance,
			Sample: domain.InputSample{
				Input:   a.input(),
				Datamap: domain.Datamap(a.Data),
			},
		})
	}
	return frame
}

func (a TraceActor) required() []string {
	switch {
	case a.Hand != nil:
		return []string{domain.ChannelGrabStrength}
	case a.Tip != nil:
		return []string{domain.ChannelSelect, domain.ChannelGrab}
	}
	return nil
}

func (a TraceActor) input() domain.Input {
	switch {
	case a.Hand != nil:
		palm := domain.IdentityPose
		if a.Hand.Palm != nil {
			palm = *a.Hand.Palm
		}
		return domain.Hand{ThumbTip: a.Hand.ThumbTip, IndexTip: a.Hand.IndexTip, Palm: palm}
	case a.Tip != nil:
		orientation := domain.IdentityQuat
		if a.Tip.Orientation != nil {
			orientation = *a.Tip.Orientation
		}
		return domain.Tip{Origin: a.Tip.Origin, Orientation: orientation}
	}
	return domain.Other{}
}
