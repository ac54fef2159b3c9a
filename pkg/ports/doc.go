/*
Package ports defines the driven ports (interfaces) for the Quill engine.

These interfaces decouple the drawing core from the host it runs in, allowing
the pen to persist to various storage backends and to publish to any scene
graph.

# Key Interfaces

  - BlobStore: The opaque persistence slot bound to a named spatial anchor.
  - ScenePublisher: Receives the stroke set, the worn transform and the zoneable flag.
*/
package ports
