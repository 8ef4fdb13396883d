package studio

import (
	"sort"
	"strings"

	"github.com/tyboo/studiograph/pkg/studio/registry"
)

// Library is the sidebar catalog: node templates grouped by category,
// with a secondary index by template id for drops and duplication.
type Library struct {
	categories map[string][]NodeData
	index      *registry.Registry[string, NodeData]
}

// NewLibrary builds a library from the category mapping served by the
// backend's /nodes endpoint.
func NewLibrary(categories map[string][]NodeData) *Library {
	l := &Library{
		categories: make(map[string][]NodeData, len(categories)),
		index:      registry.New[string, NodeData](),
	}
	for cat, templates := range categories {
		l.categories[cat] = append([]NodeData(nil), templates...)
		for _, t := range templates {
			l.index.Register(t.TemplateID, t)
		}
	}
	return l
}

// Categories returns the category names, sorted for stable display.
func (l *Library) Categories() []string {
	names := make([]string, 0, len(l.categories))
	for name := range l.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Templates returns the templates under a category.
func (l *Library) Templates(category string) []NodeData {
	return append([]NodeData(nil), l.categories[category]...)
}

// Find returns the template with the given id.
func (l *Library) Find(templateID string) (NodeData, bool) {
	return l.index.Get(templateID)
}

// Len returns the total number of templates.
func (l *Library) Len() int {
	return l.index.Len()
}

// Search filters templates by case-insensitive label substring,
// preserving the category grouping and skipping empty categories.
func (l *Library) Search(term string) map[string][]NodeData {
	term = strings.ToLower(term)
	out := make(map[string][]NodeData)
	for cat, templates := range l.categories {
		var hits []NodeData
		for _, t := range templates {
			if strings.Contains(strings.ToLower(t.Label), term) {
				hits = append(hits, t)
			}
		}
		if len(hits) > 0 {
			out[cat] = hits
		}
	}
	return out
}
