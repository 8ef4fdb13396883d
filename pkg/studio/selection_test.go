package studio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBinder_Select verifies selecting opens the inspector over the
// node's current data.
func TestBinder_Select(t *testing.T) {
	s := NewStore()
	n := NewNode(agentTemplate(), Position{})
	s.AddNode(n)

	b := NewBinder(s)
	defer b.Close()

	assert.False(t, b.InspectorOpen())
	require.NoError(t, b.Select(n.ID))

	assert.True(t, b.InspectorOpen())
	assert.Equal(t, n.ID, b.SelectedID())
	data, ok := b.InspectorData()
	require.True(t, ok)
	assert.Equal(t, "agent", data.TemplateID)
}

// TestBinder_Select_UnknownNode tests the missing-node error.
func TestBinder_Select_UnknownNode(t *testing.T) {
	b := NewBinder(NewStore())
	defer b.Close()
	assert.ErrorIs(t, b.Select("ghost"), ErrNodeNotFound)
	assert.False(t, b.InspectorOpen())
}

// TestBinder_Deselect closes the inspector.
func TestBinder_Deselect(t *testing.T) {
	s := NewStore()
	n := NewNode(agentTemplate(), Position{})
	s.AddNode(n)
	b := NewBinder(s)
	defer b.Close()
	require.NoError(t, b.Select(n.ID))

	b.Deselect()

	assert.False(t, b.InspectorOpen())
	assert.Empty(t, b.SelectedID())
	_, ok := b.InspectorData()
	assert.False(t, ok)
}

// TestBinder_RefreshAfterMutation verifies the inspector view tracks
// store updates to the selected node.
func TestBinder_RefreshAfterMutation(t *testing.T) {
	s := NewStore()
	n := NewNode(agentTemplate(), Position{})
	s.AddNode(n)
	b := NewBinder(s)
	defer b.Close()
	require.NoError(t, b.Select(n.ID))

	require.NoError(t, s.UpdateValue(n.ID, "prompt", "updated"))

	data, ok := b.InspectorData()
	require.True(t, ok)
	assert.Equal(t, "updated", data.StringValue("prompt"))
}

// TestBinder_SelectionClearedOnRemoval verifies deleting the selected
// node closes the inspector.
func TestBinder_SelectionClearedOnRemoval(t *testing.T) {
	s := NewStore()
	n := NewNode(agentTemplate(), Position{})
	s.AddNode(n)
	b := NewBinder(s)
	defer b.Close()
	require.NoError(t, b.Select(n.ID))

	s.RemoveNode(n.ID)

	assert.False(t, b.InspectorOpen())
}

// TestBinder_UpdateField writes through to the store.
func TestBinder_UpdateField(t *testing.T) {
	s := NewStore()
	n := NewNode(agentTemplate(), Position{})
	s.AddNode(n)
	b := NewBinder(s)
	defer b.Close()
	require.NoError(t, b.Select(n.ID))

	require.NoError(t, b.UpdateField("prompt", "hello"))

	got, _ := s.Node(n.ID)
	assert.Equal(t, "hello", got.Data.StringValue("prompt"))
	data, _ := b.InspectorData()
	assert.Equal(t, "hello", data.StringValue("prompt"))
}

// TestBinder_UpdateField_NoSelection tests the no-selection error.
func TestBinder_UpdateField_NoSelection(t *testing.T) {
	b := NewBinder(NewStore())
	defer b.Close()
	assert.ErrorIs(t, b.UpdateField("prompt", "x"), ErrNoSelection)
}

// TestBinder_DeleteSelected removes the node, cascades its edges, and
// clears the selection.
func TestBinder_DeleteSelected(t *testing.T) {
	s, srcID, _ := twoNodeStore()
	b := NewBinder(s)
	defer b.Close()
	require.NoError(t, b.Select(srcID))

	require.NoError(t, b.DeleteSelected())

	_, ok := s.Node(srcID)
	assert.False(t, ok)
	assert.Empty(t, s.Edges())
	assert.False(t, b.InspectorOpen())
}

// TestBinder_OnChange fires when the selected node's data changes and
// stays quiet for unrelated mutations.
func TestBinder_OnChange(t *testing.T) {
	s := NewStore()
	selected := NewNode(agentTemplate(), Position{})
	other := NewNode(outputTemplate(), Position{})
	s.AddNode(selected)
	s.AddNode(other)

	b := NewBinder(s)
	defer b.Close()

	calls := 0
	cancel := b.OnChange(func() { calls++ })
	defer cancel()

	require.NoError(t, b.Select(selected.ID))
	assert.Equal(t, 1, calls)

	require.NoError(t, s.UpdateValue(selected.ID, "prompt", "x"))
	assert.Equal(t, 2, calls)

	// An update to an unselected node leaves the inspector view
	// untouched.
	require.NoError(t, s.UpdateValue(other.ID, "text", "y"))
	assert.Equal(t, 2, calls)
}
