package studio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateConnection covers the port compatibility matrix.
func TestValidateConnection(t *testing.T) {
	src := NewNode(smartDBTemplate(), Position{})   // output "records": Data
	dst := NewNode(agentTemplate(), Position{})     // input "context": Data, "prompt": str
	sink := NewNode(outputTemplate(), Position{})   // input "text": Text, "anything": untyped
	nodes := []Node{src, dst, sink}

	testCases := []struct {
		name    string
		conn    Connection
		wantErr error
	}{
		{
			"matching types",
			Connection{Source: src.ID, SourceHandle: "records", Target: dst.ID, TargetHandle: "context"},
			nil,
		},
		{
			"untyped target accepts anything",
			Connection{Source: src.ID, SourceHandle: "records", Target: sink.ID, TargetHandle: "anything"},
			nil,
		},
		{
			"type mismatch",
			Connection{Source: src.ID, SourceHandle: "records", Target: sink.ID, TargetHandle: "text"},
			ErrTypeMismatch,
		},
		{
			"missing source node",
			Connection{Source: "ghost", SourceHandle: "records", Target: dst.ID, TargetHandle: "context"},
			ErrNodeNotFound,
		},
		{
			"missing target node",
			Connection{Source: src.ID, SourceHandle: "records", Target: "ghost", TargetHandle: "context"},
			ErrNodeNotFound,
		},
		{
			"missing source handle",
			Connection{Source: src.ID, SourceHandle: "nope", Target: dst.ID, TargetHandle: "context"},
			ErrPortNotFound,
		},
		{
			"missing target handle",
			Connection{Source: src.ID, SourceHandle: "records", Target: dst.ID, TargetHandle: "nope"},
			ErrPortNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConnection(nodes, tc.conn)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// TestValidateConnection_AnyWildcard verifies "Any" matches on either
// side.
func TestValidateConnection_AnyWildcard(t *testing.T) {
	src := Node{ID: "s", Data: NodeData{Outputs: []Output{{Name: "out", Type: "Any"}}}}
	dst := Node{ID: "d", Data: NodeData{Inputs: []Field{{Name: "in", Type: "Text"}}}}
	nodes := []Node{src, dst}

	assert.NoError(t, ValidateConnection(nodes, Connection{
		Source: "s", SourceHandle: "out", Target: "d", TargetHandle: "in",
	}))
}

// TestStore_Connect verifies accepted connections produce a styled,
// animated edge.
func TestStore_Connect(t *testing.T) {
	s := NewStore()
	src := NewNode(smartDBTemplate(), Position{})
	dst := NewNode(agentTemplate(), Position{})
	s.AddNode(src)
	s.AddNode(dst)

	edge, err := s.Connect(Connection{
		Source: src.ID, SourceHandle: "records",
		Target: dst.ID, TargetHandle: "context",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(edge.ID, "e-"))
	assert.True(t, edge.Animated)
	assert.Equal(t, DefaultEdgeStyle, edge.Style)
	assert.Len(t, s.Edges(), 1)
}

// TestStore_Connect_Rejected verifies an invalid connection adds no
// edge and reports both ends.
func TestStore_Connect_Rejected(t *testing.T) {
	s := NewStore()
	src := NewNode(smartDBTemplate(), Position{})
	sink := NewNode(outputTemplate(), Position{})
	s.AddNode(src)
	s.AddNode(sink)

	_, err := s.Connect(Connection{
		Source: src.ID, SourceHandle: "records",
		Target: sink.ID, TargetHandle: "text",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "Data", connErr.SourceType)
	assert.Equal(t, "Text", connErr.TargetType)
	assert.Empty(t, s.Edges())
}
