/*
Package domain contains the core domain models of the Quill drawing engine.

It defines the values that flow through a frame step: the input actors a host
reports, the strokes the recorder builds, and the session state that is
persisted to an anchor. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Actor: An identified input source (hand or tracked pointer) visible in a Frame.
  - InputSample: The pose of an actor (Hand, Tip or Other) plus its Datamap channels.
  - Stroke: One contiguous polyline of Points.
  - PenSessionState: The persisted unit (strokes, base thickness, pose, cursor).
*/
package domain
