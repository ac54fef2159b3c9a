/*
Package session serializes access to stored pen sessions.

A Manager is itself a ports.BlobStore: every operation on an anchor runs under
an in-process lock for that anchor and, when configured, a distributed lock so
that several processes sharing one backend (for example `quill replay` and
`quill serve` on the same Redis) never interleave writes.
*/
package session
