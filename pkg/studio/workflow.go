package studio

import (
	"encoding/json"
	"fmt"
)

// Document is the portable form of a workflow graph: what Export
// produces, Import consumes, and the snapshot/version endpoints carry.
type Document struct {
	Name  string `json:"name,omitempty"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Export captures the current graph as a document.
func (s *Store) Export(name string) Document {
	return Document{
		Name:  name,
		Nodes: s.Nodes(),
		Edges: s.Edges(),
	}
}

// ExportJSON serializes the current graph as an indented JSON document,
// ready to be written to a file.
func (s *Store) ExportJSON(name string) ([]byte, error) {
	data, err := json.MarshalIndent(s.Export(name), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export workflow: %w", err)
	}
	return data, nil
}

// ParseDocument decodes a workflow document, rejecting malformed input.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return doc, nil
}

// Import replaces the graph with a document's contents.
func (s *Store) Import(doc Document) {
	s.SetGraph(doc.Nodes, doc.Edges)
}

// ImportJSON parses and loads a serialized document. On parse failure
// the store is left untouched: no partial state is ever applied.
func (s *Store) ImportJSON(data []byte) error {
	doc, err := ParseDocument(data)
	if err != nil {
		return err
	}
	s.Import(doc)
	return nil
}
