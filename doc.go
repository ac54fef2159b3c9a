/*
Package quill is a gesture-driven freehand drawing engine for a handheld 3D pen.

Each frame the host hands the Pen the tracked actors (hands and tracked tips)
that are near the pen. The Pen resolves which single actor holds it, decides
whether that actor is drawing, and records the drawing as polyline strokes.
The stroke set survives a disconnect as one blob bound to a spatial anchor.

# Concept

The work of a frame happens in a fixed order:

  - Action resolution: hover, grab and draw transitions are computed from
    membership sets of the previous and current frame. Only one actor holds
    the pen at a time.
  - Stroke mutation: the holder's draw phase opens, extends, or stops the
    current stroke. A stop within 1/30 s of a restart is debounced.
  - Publishing: the scene collaborator receives the zoneable flag, the worn
    transform and, when they changed, the strokes.

# Usage

	pen, err := quill.New(config.Default(),
		quill.WithStore(file.New(".quill/anchors")),
		quill.WithPublisher(scene),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := pen.Load(ctx); err != nil {
		log.Fatal(err)
	}
	for frame := range frames {
		_ = pen.Frame(ctx, frame)
	}
	_ = pen.Save(ctx)

Hosts that replay recorded input can use pkg/runner instead of writing the loop.
*/
package quill
