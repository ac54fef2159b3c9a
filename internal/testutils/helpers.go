// Package testutils holds fixtures shared by package tests.
package testutils

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/quill/pkg/adapters/file"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/stretchr/testify/require"
)

// HoverDistance is inside the default max_distance.
const HoverDistance = 0.01

// Tip builds a tracked-tip actor hovering over the pen.
func Tip(id domain.ActorID, origin domain.Vec3, sel, grab float64) domain.Actor {
	return domain.Actor{
		ID:       id,
		Distance: HoverDistance,
		Sample: domain.InputSample{
			Input: domain.Tip{Origin: origin, Orientation: domain.IdentityQuat},
			Datamap: domain.Datamap{
				domain.ChannelSelect: sel,
				domain.ChannelGrab:   grab,
			},
		},
	}
}

// Hand builds a hand actor hovering over the pen with the thumb and index
// tips pinch apart along X, centred on at.
func Hand(id domain.ActorID, at domain.Vec3, pinch, grabStrength float64) domain.Actor {
	half := domain.Vec3{X: pinch / 2}
	return domain.Actor{
		ID:       id,
		Distance: HoverDistance,
		Sample: domain.InputSample{
			Input: domain.Hand{
				ThumbTip: at.Sub(half),
				IndexTip: at.Add(half),
				Palm:     domain.IdentityPose,
			},
			Datamap: domain.Datamap{domain.ChannelGrabStrength: grabStrength},
		},
	}
}

// SetupFileStore creates a file store in a temporary directory.
// It returns the absolute path of the directory and the store.
func SetupFileStore(t *testing.T) (string, *file.Store) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	return absPath, file.New(absPath)
}
