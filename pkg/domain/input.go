package domain

import (
	"fmt"
	"time"
)

// ActorID distinguishes concurrent input sources within a frame.
type ActorID string

// Channel names reported in a Datamap.
const (
	ChannelSelect       = "select"
	ChannelGrab         = "grab"
	ChannelGrabStrength = "grab_strength"
)

// Input is the pose part of an InputSample.
// It is a closed set: Hand, Tip and Other are the only implementations.
type Input interface {
	isInput()
}

// Hand is a tracked hand reduced to the joints the pen needs.
type Hand struct {
	ThumbTip Vec3
	IndexTip Vec3
	Palm     Pose
}

// Tip is a tracked pointer such as a controller or stylus.
type Tip struct {
	Origin      Vec3
	Orientation Quat
}

// Other is any input kind the pen does not understand.
type Other struct{}

func (Hand) isInput()  {}
func (Tip) isInput()   {}
func (Other) isInput() {}

// Datamap holds the auxiliary scalar channels reported with a pose.
type Datamap map[string]float64

// Get returns the channel value or ErrMissingChannel.
func (d Datamap) Get(key string) (float64, error) {
	v, ok := d[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingChannel, key)
	}
	return v, nil
}

// InputSample is one actor's raw pose and channels for a frame.
type InputSample struct {
	Input   Input
	Datamap Datamap
}

// Actor is an input source as seen in one frame.
type Actor struct {
	ID     ActorID
	Sample InputSample
	// Distance is the distance from the actor to the pen's input field.
	Distance float64
}

// Frame is the snapshot of actors delivered by the host on one tick.
type Frame struct {
	// Elapsed is the host frame clock. It must not go backwards.
	Elapsed time.Duration
	Actors  []Actor
}

// Find returns the actor with the given id, if present.
func (f Frame) Find(id ActorID) (Actor, bool) {
	for _, a := range f.Actors {
		if a.ID == id {
			return a, true
		}
	}
	return Actor{}, false
}
