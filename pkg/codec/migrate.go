package codec

import (
	"fmt"
	"math"

	"github.com/aretw0/quill/pkg/domain"
)

// migrate upgrades a decoded record one version at a time and returns the
// current-schema state. Versions newer than CurrentVersion are read as the
// current version: their extra fields were already skipped.
func migrate(rec *sessionRecord) (*domain.PenSessionState, error) {
	if rec.version == V1 {
		upgradeV1(rec)
	}
	return toState(rec)
}

// upgradeV1 fills the fields introduced in V2. The cursor resumes at the
// last drawn point so smoothing does not jump from the origin.
func upgradeV1(rec *sessionRecord) {
	if rec.pose == nil {
		p := domain.IdentityPose
		rec.pose = &p
	}
	if rec.cursor == nil {
		var c domain.Vec3
		if n := len(rec.strokes); n > 0 {
			if last, ok := rec.strokes[n-1].Last(); ok {
				c = last.Position
			}
		}
		rec.cursor = &c
	}
	rec.version = V2
}

// toState applies field defaults. An absent thickness is the default base
// thickness; a non-finite one is rejected.
func toState(rec *sessionRecord) (*domain.PenSessionState, error) {
	thickness := domain.DefaultThickness
	if rec.thickness != nil {
		thickness = *rec.thickness
	}
	if math.IsNaN(thickness) || math.IsInf(thickness, 0) {
		return nil, fmt.Errorf("thickness is not finite: %v", thickness)
	}

	state := domain.NewPenSessionState(math.Max(0, thickness))
	state.Strokes = rec.strokes
	if rec.pose != nil {
		state.Pose = *rec.pose
	}
	if rec.cursor != nil {
		state.Cursor = *rec.cursor
	}
	if rec.lastRelease != nil {
		state.LastRelease = *rec.lastRelease
	}
	return state, nil
}
