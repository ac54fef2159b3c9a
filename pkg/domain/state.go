package domain

import "time"

// DefaultAnchor is the spatial anchor the session blob is bound to.
const DefaultAnchor = "pen"

// DefaultThickness is the base line thickness in meters.
const DefaultThickness = 0.005

// Point is one sample of a stroke.
type Point struct {
	Position  Vec3    `json:"position"`
	Thickness float64 `json:"thickness"`
	Color     Color   `json:"color"`
}

// Stroke is one contiguous, non-cyclic polyline.
type Stroke struct {
	Points []Point `json:"points"`
}

// Len returns the number of points in the stroke.
func (s Stroke) Len() int { return len(s.Points) }

// Last returns the most recently appended point.
func (s Stroke) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// PenSessionState is the unit that survives a disconnect.
type PenSessionState struct {
	// Strokes is ordered oldest first. Only the last one may be current.
	Strokes []Stroke `json:"strokes"`

	// Thickness is the base line thickness scaled by pinch strength.
	Thickness float64 `json:"thickness"`

	// Pose is the last worn transform of the pen.
	Pose Pose `json:"pose"`

	// Cursor is the lazy-brush cursor position.
	Cursor Vec3 `json:"cursor"`

	// LastRelease is the frame clock value of the last draw stop or grab release.
	LastRelease time.Duration `json:"last_release"`
}

// NewPenSessionState creates an empty session with the given base thickness.
func NewPenSessionState(thickness float64) *PenSessionState {
	return &PenSessionState{
		Thickness: thickness,
		Pose:      IdentityPose,
	}
}

// PointCount returns the total number of points across all strokes.
func (s *PenSessionState) PointCount() int {
	n := 0
	for _, st := range s.Strokes {
		n += len(st.Points)
	}
	return n
}

// Clone returns a deep copy so callers cannot mutate the original buffers.
func (s *PenSessionState) Clone() *PenSessionState {
	c := *s
	if s.Strokes != nil {
		c.Strokes = make([]Stroke, len(s.Strokes))
		for i, st := range s.Strokes {
			c.Strokes[i] = Stroke{Points: append([]Point(nil), st.Points...)}
		}
	}
	return &c
}
