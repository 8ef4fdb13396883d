package studio

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// CanvasNodeType is the renderer type assigned to every node placed on
// the canvas. The backend's template library only produces one kind of
// canvas node.
const CanvasNodeType = "agentNode"

// PortAny is the wildcard port type. A port that declares no type is
// treated as PortAny and connects to anything.
const PortAny = "Any"

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Option is a selectable entry in a dropdown field. Discovery endpoints
// return label/value pairs; hand-written templates may declare plain
// strings, which decode with Label == Value.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// UnmarshalJSON accepts either a plain string or a {label, value} object.
func (o *Option) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Label = s
		o.Value = s
		return nil
	}
	type wire Option
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode option: %w", err)
	}
	*o = Option(w)
	return nil
}

// Field is one configurable input in a node's schema. Type is the raw
// type string declared by the template; it doubles as the port type for
// inputs that accept connections. Options are populated either by the
// template or by discovery.
type Field struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name,omitempty"`
	Type        string   `json:"type,omitempty"`
	Default     any      `json:"default,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Options     []Option `json:"options,omitempty"`
	Description string   `json:"description,omitempty"`
}

// PortType returns the field's connection type, defaulting to PortAny.
func (f Field) PortType() string {
	if f.Type == "" {
		return PortAny
	}
	return f.Type
}

// Output is a node's output port.
type Output struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// PortType returns the output's connection type, defaulting to PortAny.
func (o Output) PortType() string {
	if o.Type == "" {
		return PortAny
	}
	return o.Type
}

// NodeData is a node's data bag: template identity and presentation,
// the field schema, the configured values keyed by field name, and
// transient execution/discovery state.
//
// NodeData is updated copy-on-write: the Store never mutates a stored
// NodeData in place, it replaces the whole node with a cloned and
// modified copy. Consumers may therefore detect change by deep
// comparison of snapshots.
type NodeData struct {
	TemplateID  string
	Label       string
	Category    string
	Color       string
	Icon        string
	Description string
	Inputs      []Field
	Outputs     []Output

	// Values holds the configured value for each field, keyed by field name.
	Values map[string]any

	// IsExecuting is set while the backend reports the node as running.
	IsExecuting bool

	// Tags are discovery cache markers, e.g. "_projects_loaded_for".
	// Keys keep their underscore prefix to stay wire compatible.
	Tags map[string]string

	// Mappings are label-to-value tables recorded by discovery so that a
	// dependent fetch can translate a selected label back to its id.
	Mappings map[string][]Option
}

// Clone returns a deep copy of the data bag.
func (d NodeData) Clone() NodeData {
	c := d
	c.Inputs = make([]Field, len(d.Inputs))
	for i, f := range d.Inputs {
		f.Options = append([]Option(nil), f.Options...)
		c.Inputs[i] = f
	}
	c.Outputs = append([]Output(nil), d.Outputs...)
	c.Values = make(map[string]any, len(d.Values))
	for k, v := range d.Values {
		c.Values[k] = v
	}
	c.Tags = make(map[string]string, len(d.Tags))
	for k, v := range d.Tags {
		c.Tags[k] = v
	}
	c.Mappings = make(map[string][]Option, len(d.Mappings))
	for k, v := range d.Mappings {
		c.Mappings[k] = append([]Option(nil), v...)
	}
	return c
}

// Value returns the configured value for a field, falling back to the
// schema default when nothing has been set.
func (d NodeData) Value(name string) any {
	if v, ok := d.Values[name]; ok {
		return v
	}
	for _, f := range d.Inputs {
		if f.Name == name {
			return f.Default
		}
	}
	return nil
}

// StringValue returns the configured value for a field as a string, or
// "" when unset or not a string.
func (d NodeData) StringValue(name string) string {
	s, _ := d.Value(name).(string)
	return s
}

// Input returns the schema entry for a field name.
func (d NodeData) Input(name string) (Field, bool) {
	for _, f := range d.Inputs {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Output returns the output port with the given name.
func (d NodeData) Output(name string) (Output, bool) {
	for _, o := range d.Outputs {
		if o.Name == name {
			return o, true
		}
	}
	return Output{}, false
}

// reservedDataKeys are the wire keys that map to named NodeData fields.
// Everything else in a serialized data object is a configured value or,
// when underscore-prefixed, a discovery marker.
var reservedDataKeys = map[string]bool{
	"id": true, "label": true, "category": true, "color": true,
	"icon": true, "description": true, "inputs": true, "outputs": true,
	"isExecuting": true,
}

// MarshalJSON flattens the data bag into the wire shape used by the
// backend and by exported workflow documents: named fields, configured
// values, and discovery markers all live in one object.
func (d NodeData) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Values)+len(d.Tags)+len(d.Mappings)+8)
	for k, v := range d.Values {
		m[k] = v
	}
	for k, v := range d.Tags {
		m[k] = v
	}
	for k, v := range d.Mappings {
		m[k] = v
	}
	m["id"] = d.TemplateID
	m["label"] = d.Label
	if d.Category != "" {
		m["category"] = d.Category
	}
	if d.Color != "" {
		m["color"] = d.Color
	}
	if d.Icon != "" {
		m["icon"] = d.Icon
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Inputs != nil {
		m["inputs"] = d.Inputs
	}
	if d.Outputs != nil {
		m["outputs"] = d.Outputs
	}
	if d.IsExecuting {
		m["isExecuting"] = true
	}
	return json.Marshal(m)
}

// UnmarshalJSON is the inverse of MarshalJSON: named fields are lifted
// out, underscore-prefixed keys are routed to Tags or Mappings, and the
// remainder becomes Values.
func (d *NodeData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := NodeData{
		Values:   make(map[string]any),
		Tags:     make(map[string]string),
		Mappings: make(map[string][]Option),
	}
	for key, val := range raw {
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(val, &out.TemplateID)
		case "label":
			err = json.Unmarshal(val, &out.Label)
		case "category":
			err = json.Unmarshal(val, &out.Category)
		case "color":
			err = json.Unmarshal(val, &out.Color)
		case "icon":
			err = json.Unmarshal(val, &out.Icon)
		case "description":
			err = json.Unmarshal(val, &out.Description)
		case "inputs":
			err = json.Unmarshal(val, &out.Inputs)
		case "outputs":
			err = json.Unmarshal(val, &out.Outputs)
		case "isExecuting":
			err = json.Unmarshal(val, &out.IsExecuting)
		default:
			if len(key) > 0 && key[0] == '_' {
				var s string
				if json.Unmarshal(val, &s) == nil {
					out.Tags[key] = s
					continue
				}
				var opts []Option
				if json.Unmarshal(val, &opts) == nil {
					out.Mappings[key] = opts
					continue
				}
			}
			var v any
			if err = json.Unmarshal(val, &v); err == nil {
				out.Values[key] = v
			}
		}
		if err != nil {
			return fmt.Errorf("decode node data field %q: %w", key, err)
		}
	}
	*d = out
	return nil
}

// Node is a configured instance of a template on the canvas.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// lastNodeStamp makes generated node identifiers strictly increasing
// even when two nodes are created within the same millisecond.
var lastNodeStamp atomic.Int64

func nodeStamp() int64 {
	now := time.Now().UnixMilli()
	for {
		last := lastNodeStamp.Load()
		if now <= last {
			now = last + 1
		}
		if lastNodeStamp.CompareAndSwap(last, now) {
			return now
		}
	}
}

// NewNode instantiates a template at the given canvas position. The id
// is the template id plus a creation timestamp, the format existing
// workflow documents carry.
func NewNode(template NodeData, pos Position) Node {
	return Node{
		ID:       fmt.Sprintf("%s-%d", template.TemplateID, nodeStamp()),
		Type:     CanvasNodeType,
		Position: pos,
		Data:     template.Clone(),
	}
}

// EdgeStyle is the stroke presentation for a rendered edge.
type EdgeStyle struct {
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Edge connects an output port of one node to an input port of another.
// Edges are created only through Store.Connect, which validates port
// compatibility first.
type Edge struct {
	ID           string    `json:"id,omitempty"`
	Source       string    `json:"source"`
	SourceHandle string    `json:"sourceHandle,omitempty"`
	Target       string    `json:"target"`
	TargetHandle string    `json:"targetHandle,omitempty"`
	Animated     bool      `json:"animated,omitempty"`
	Style        EdgeStyle `json:"style,omitzero"`
}

// DefaultEdgeStyle is applied to every accepted connection.
var DefaultEdgeStyle = EdgeStyle{Stroke: "#3b82f6", StrokeWidth: 2}
