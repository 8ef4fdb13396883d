// Package studio implements the client-side state machine of a visual
// workflow studio: the canonical graph of nodes and edges, selection
// and inspector binding, connection validation, and workflow document
// import/export. Networked concerns build on top of it in the api,
// discovery, execution, and collab subpackages.
package studio

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph operations.
var (
	// ErrNodeNotFound indicates an operation referenced a node id that is
	// not in the store.
	ErrNodeNotFound = errors.New("node not found")

	// ErrPortNotFound indicates a proposed connection referenced a port
	// name its node does not declare.
	ErrPortNotFound = errors.New("port not found")

	// ErrTypeMismatch indicates the source and target port types of a
	// proposed connection are incompatible.
	ErrTypeMismatch = errors.New("port types incompatible")

	// ErrNoSelection indicates an inspector operation was attempted with
	// no node selected.
	ErrNoSelection = errors.New("no node selected")

	// ErrMalformedDocument indicates a workflow import could not be
	// parsed. No partial state is applied.
	ErrMalformedDocument = errors.New("malformed workflow document")
)

// ConnectionError reports why a proposed connection was rejected.
type ConnectionError struct {
	// Source and Target are the endpoint node ids.
	Source string
	Target string
	// SourceType and TargetType are the compared port types, when the
	// rejection was a type mismatch.
	SourceType string
	TargetType string
	// Err is the underlying sentinel.
	Err error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if errors.Is(e.Err, ErrTypeMismatch) {
		return fmt.Sprintf("connect %s -> %s: %v: %s vs %s",
			e.Source, e.Target, e.Err, e.SourceType, e.TargetType)
	}
	return fmt.Sprintf("connect %s -> %s: %v", e.Source, e.Target, e.Err)
}

// Unwrap returns the underlying sentinel for errors.Is support.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}
