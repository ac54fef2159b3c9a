package domain

import "math"

// Vec3 is a position or direction in meters.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Length returns the euclidean norm.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the euclidean distance between two points.
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// Midpoint returns the point halfway between v and o.
func (v Vec3) Midpoint(o Vec3) Vec3 {
	return v.Add(o).Scale(0.5)
}

// StepToward moves v toward target by at most step.
// It returns target itself when it is closer than step.
func (v Vec3) StepToward(target Vec3, step float64) Vec3 {
	delta := target.Sub(v)
	dist := delta.Length()
	if dist <= step || dist == 0 {
		return target
	}
	return v.Add(delta.Scale(step / dist))
}

// Quat is a rotation quaternion.
type Quat struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
	W float64 `json:"w" yaml:"w"`
}

// IdentityQuat is the rotation that leaves vectors unchanged.
var IdentityQuat = Quat{W: 1}

// Pose is a position plus orientation.
type Pose struct {
	Position    Vec3 `json:"position" yaml:"position"`
	Orientation Quat `json:"orientation" yaml:"orientation"`
}

// IdentityPose is located at the origin with no rotation.
var IdentityPose = Pose{Orientation: IdentityQuat}

// Color is a linear RGBA color, each channel in [0,1].
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

// White is the default ink color.
var White = Color{R: 1, G: 1, B: 1, A: 1}
