package studio

import (
	"encoding/json"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewNode verifies instantiation: id format, canvas type, and an
// independent data clone.
func TestNewNode(t *testing.T) {
	tpl := agentTemplate()
	n := NewNode(tpl, Position{X: 250, Y: 300})

	assert.Regexp(t, regexp.MustCompile(`^agent-\d+$`), n.ID)
	assert.Equal(t, CanvasNodeType, n.Type)
	assert.Equal(t, Position{X: 250, Y: 300}, n.Position)

	// The node's data is a clone, not a reference to the template.
	n.Data.Values["prompt"] = "x"
	assert.Empty(t, tpl.Values)
}

// TestNewNode_UniqueIDs verifies rapid creation never collides.
func TestNewNode_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	tpl := agentTemplate()
	for i := 0; i < 200; i++ {
		n := NewNode(tpl, Position{})
		require.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

// TestOption_UnmarshalJSON accepts plain strings and label/value
// objects.
func TestOption_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want Option
	}{
		{"plain string", `"gpt-4o"`, Option{Label: "gpt-4o", Value: "gpt-4o"}},
		{"object", `{"label":"Alpha","value":"p1"}`, Option{Label: "Alpha", Value: "p1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var o Option
			require.NoError(t, json.Unmarshal([]byte(tc.in), &o))
			assert.Equal(t, tc.want, o)
		})
	}
}

// TestField_PortType verifies untyped ports default to the wildcard.
func TestField_PortType(t *testing.T) {
	assert.Equal(t, "Text", Field{Name: "text", Type: "Text"}.PortType())
	assert.Equal(t, PortAny, Field{Name: "anything"}.PortType())
	assert.Equal(t, PortAny, Output{Name: "out"}.PortType())
	assert.Equal(t, "Data", Output{Name: "out", Type: "Data"}.PortType())
}

// TestNodeData_Value falls back to the schema default when unset.
func TestNodeData_Value(t *testing.T) {
	d := NodeData{
		Inputs: []Field{{Name: "limit", Default: 10}},
		Values: map[string]any{"query": "x"},
	}
	assert.Equal(t, "x", d.Value("query"))
	assert.Equal(t, 10, d.Value("limit"))
	assert.Nil(t, d.Value("missing"))
}

// TestNodeData_Clone verifies the clone shares nothing with the source.
func TestNodeData_Clone(t *testing.T) {
	d := smartDBTemplate()
	d.Values = map[string]any{"base_url": "http://db"}
	d.Tags = map[string]string{"_projects_loaded_for": "k"}
	d.Mappings = map[string][]Option{"_project_mapping": {{Label: "A", Value: "1"}}}

	c := d.Clone()
	c.Values["base_url"] = "changed"
	c.Tags["_projects_loaded_for"] = "changed"
	c.Inputs[0].Options = append(c.Inputs[0].Options, Option{Label: "x", Value: "x"})
	c.Mappings["_project_mapping"][0].Value = "changed"

	assert.Equal(t, "http://db", d.Values["base_url"])
	assert.Equal(t, "k", d.Tags["_projects_loaded_for"])
	assert.Empty(t, d.Inputs[0].Options)
	assert.Equal(t, "1", d.Mappings["_project_mapping"][0].Value)
}

// TestNodeData_JSONRoundTrip verifies the flattened wire shape decodes
// back to an equal data bag.
func TestNodeData_JSONRoundTrip(t *testing.T) {
	d := smartDBTemplate()
	d.Values = map[string]any{"base_url": "http://db", "api_key": "secret"}
	d.Tags = map[string]string{"_projects_loaded_for": "http://db-secret"}
	d.Mappings = map[string][]Option{"_project_mapping": {{Label: "Alpha", Value: "p1"}}}

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var back NodeData
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.Equal(t, d.TemplateID, back.TemplateID)
	assert.Equal(t, d.Label, back.Label)
	assert.Equal(t, d.Values, back.Values)
	assert.Equal(t, d.Tags, back.Tags)
	assert.Equal(t, d.Mappings, back.Mappings)
	assert.Equal(t, len(d.Inputs), len(back.Inputs))
}

// TestNodeData_MarshalJSON_Flattened verifies values and markers live
// at the top level of the serialized object.
func TestNodeData_MarshalJSON_Flattened(t *testing.T) {
	d := NodeData{
		TemplateID: "smartDB",
		Label:      "SmartDB",
		Values:     map[string]any{"base_url": "http://db"},
		Tags:       map[string]string{"_projects_loaded_for": "k"},
	}
	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "smartDB", m["id"])
	assert.Equal(t, "http://db", m["base_url"])
	assert.Equal(t, "k", m["_projects_loaded_for"])
	_, hasValues := m["Values"]
	assert.False(t, hasValues, "data bag must be flat on the wire")
}

// TestEdge_StyleOmitted verifies an unstyled edge serializes without a
// style key.
func TestEdge_StyleOmitted(t *testing.T) {
	raw, err := json.Marshal(Edge{ID: "e-1", Source: "a", Target: "b"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"style"`)

	raw, err = json.Marshal(Edge{ID: "e-1", Source: "a", Target: "b", Style: DefaultEdgeStyle})
	require.NoError(t, err)
	assert.Contains(t, string(raw), fmt.Sprintf(`"stroke":%q`, DefaultEdgeStyle.Stroke))
}
