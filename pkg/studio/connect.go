package studio

import (
	"github.com/google/uuid"
)

// Connection is a proposed edge between two ports, before validation.
type Connection struct {
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle"`
}

// ValidateConnection decides whether a proposed connection is
// admissible against a node snapshot. It is a pure predicate: no side
// effects, no network.
//
// Rules: both endpoint nodes and ports must exist; the source port type
// and target port type must be equal, or either side must be the "Any"
// wildcard.
func ValidateConnection(nodes []Node, c Connection) error {
	var src, dst *Node
	for i := range nodes {
		switch nodes[i].ID {
		case c.Source:
			src = &nodes[i]
		case c.Target:
			dst = &nodes[i]
		}
	}
	if src == nil || dst == nil {
		return &ConnectionError{Source: c.Source, Target: c.Target, Err: ErrNodeNotFound}
	}

	out, ok := src.Data.Output(c.SourceHandle)
	if !ok {
		return &ConnectionError{Source: c.Source, Target: c.Target, Err: ErrPortNotFound}
	}
	in, ok := dst.Data.Input(c.TargetHandle)
	if !ok {
		return &ConnectionError{Source: c.Source, Target: c.Target, Err: ErrPortNotFound}
	}

	st, tt := out.PortType(), in.PortType()
	if st == PortAny || tt == PortAny || st == tt {
		return nil
	}
	return &ConnectionError{
		Source: c.Source, Target: c.Target,
		SourceType: st, TargetType: tt,
		Err: ErrTypeMismatch,
	}
}

// Connect validates a proposed connection against the current snapshot
// and, when accepted, inserts it with the default visual style.
// Rejection is an expected outcome of user action, reported through the
// returned error and never raised further.
func (s *Store) Connect(c Connection) (Edge, error) {
	if err := ValidateConnection(s.Nodes(), c); err != nil {
		return Edge{}, err
	}
	e := Edge{
		ID:           "e-" + uuid.NewString(),
		Source:       c.Source,
		SourceHandle: c.SourceHandle,
		Target:       c.Target,
		TargetHandle: c.TargetHandle,
		Animated:     true,
		Style:        DefaultEdgeStyle,
	}
	s.mu.Lock()
	s.edges = append(s.edges, e)
	s.mu.Unlock()
	s.notify()
	return e, nil
}
