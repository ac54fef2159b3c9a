/*
Package runner drives a Pen from a source of frames.

The Runner owns the loop a host would otherwise write: pull a frame, step the
pen, repeat until the source is exhausted or the context is cancelled, then
save the session synchronously. Recorded YAML traces can be replayed through
TraceSource.
*/
package runner
