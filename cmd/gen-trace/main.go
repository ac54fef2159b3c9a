// Command gen-trace writes a synthetic input trace for `quill replay`.
//
// The trace holds a tip actor drawing a circle with one flickering pinch
// (debounced, so it stays one stroke), a real pause, and a second short
// stroke, followed by a release.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/runner"
	"gopkg.in/yaml.v3"
)

const (
	fps    = 60
	radius = 0.1
)

func main() {
	target := "trace.yaml"
	if len(os.Args) > 1 {
		target = os.Args[1]
	}

	fmt.Printf("Generating trace in: %s\n", target)

	var tr runner.Trace
	frame := 0
	add := func(x, y, sel, grab float64) {
		tr.Frames = append(tr.Frames, runner.TraceFrame{
			T: float64(frame) / fps,
			Actors: []runner.TraceActor{{
				ID:       "right",
				Distance: 0.01,
				Tip:      &runner.TraceTip{Origin: domain.Vec3{X: x, Y: y, Z: -0.3}},
				Data: map[string]float64{
					domain.ChannelSelect: sel,
					domain.ChannelGrab:   grab,
				},
			}},
		})
		frame++
	}

	// 1. Circle, with a one-frame pinch dropout halfway.
	for i := 0; i <= 120; i++ {
		a := 2 * math.Pi * float64(i) / 120
		sel := 1.0
		if i == 60 {
			sel = 0
		}
		add(radius*math.Cos(a), 1.2+radius*math.Sin(a), sel, 1)
	}

	// 2. Pause long enough to seal the circle.
	for i := 0; i < 10; i++ {
		add(radius, 1.2, 0, 1)
	}

	// 3. A short horizontal line, then release.
	for i := 0; i < 30; i++ {
		add(radius+float64(i)*0.005, 1.0, 1, 1)
	}
	add(radius+0.15, 1.0, 0, 0)

	data, err := yaml.Marshal(&tr)
	check(err)
	check(os.WriteFile(target, data, 0644))
	fmt.Printf("Wrote %d frames\n", len(tr.Frames))
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
