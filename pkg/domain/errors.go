package domain

import "errors"

// ErrUnsupportedInput is raised when an Other sample reaches a path that needs pose data.
var ErrUnsupportedInput = errors.New("unsupported input kind")

// ErrMissingChannel is raised when a required Datamap channel is absent.
var ErrMissingChannel = errors.New("missing datamap channel")

// ErrAnchorNotFound is returned when no blob is stored for an anchor.
var ErrAnchorNotFound = errors.New("anchor not found")

// ErrCorruptBlob is returned when a persisted blob cannot be decoded.
var ErrCorruptBlob = errors.New("corrupt session blob")
