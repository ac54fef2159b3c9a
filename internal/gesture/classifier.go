// Package gesture turns raw actor snapshots into pinch strengths and the
// hover/grab/draw transitions the stroke recorder acts on.
package gesture

import (
	"fmt"
	"math"

	"github.com/aretw0/quill/pkg/config"
	"github.com/aretw0/quill/pkg/domain"
)

// Classifier maps one input sample to a pinch strength in [0,1].
type Classifier struct {
	TouchDistance float64
	OpenDistance  float64
	SelectCurve   bool
}

// NewClassifier builds a classifier from settings.
func NewClassifier(s config.Settings) Classifier {
	return Classifier{
		TouchDistance: s.TouchDistance,
		OpenDistance:  s.OpenDistance,
		SelectCurve:   s.SelectCurve,
	}
}

// PinchStrength maps a thumb/index distance to [0,1]: 1 at touch, 0 when
// open, square-rooted so strength ramps up quickly right after contact.
func (c Classifier) PinchStrength(distance float64) float64 {
	linear := (c.OpenDistance - distance) / (c.OpenDistance - c.TouchDistance)
	return math.Sqrt(clamp01(linear))
}

// Strength returns the pinch strength of a sample.
// Other samples and missing channels are contract violations.
func (c Classifier) Strength(sample domain.InputSample) (float64, error) {
	switch in := sample.Input.(type) {
	case domain.Hand:
		return c.PinchStrength(in.ThumbTip.Distance(in.IndexTip)), nil
	case domain.Tip:
		v, err := sample.Datamap.Get(domain.ChannelSelect)
		if err != nil {
			return 0, err
		}
		v = clamp01(v)
		if c.SelectCurve {
			v = math.Sqrt(v)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%w: %T", domain.ErrUnsupportedInput, sample.Input)
	}
}

// MustStrength is Strength for code paths where a bad sample is a defect.
func (c Classifier) MustStrength(sample domain.InputSample) float64 {
	v, err := c.Strength(sample)
	if err != nil {
		panic(fmt.Errorf("classify pinch: %w", err))
	}
	return v
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
