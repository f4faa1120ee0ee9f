package domain

import "errors"

// ErrDuplicateID is returned when a node is added with an id already present in the graph.
var ErrDuplicateID = errors.New("duplicate node id")

// ErrNotFound is returned when a node or connection cannot be found in the graph.
var ErrNotFound = errors.New("not found")

// ErrInvalidEndpoint is returned when a connection references a missing node or port,
// or joins ports with mismatched directions.
var ErrInvalidEndpoint = errors.New("invalid connection endpoint")

// ErrPortOccupied is returned when a connection targets an input port that is already fed.
var ErrPortOccupied = errors.New("input port already connected")

// ErrCycle is returned when a connection would close a dependency cycle, or when
// evaluation reaches a node that is still being computed.
var ErrCycle = errors.New("dependency cycle")

// ErrUnknownKind is returned when a node carries a kind the engine cannot evaluate.
var ErrUnknownKind = errors.New("unknown node kind")

// ErrKindMismatch is returned when an operation targets a node of the wrong kind
// (e.g. setting the value of a Combinator).
var ErrKindMismatch = errors.New("node kind mismatch")
