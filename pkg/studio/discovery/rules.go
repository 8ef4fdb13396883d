package discovery

import (
	"context"

	"github.com/tyboo/studiograph/pkg/studio"
	"github.com/tyboo/studiograph/pkg/studio/api"
)

// Backend is the slice of the API surface discovery calls. *api.Client
// satisfies it.
type Backend interface {
	SmartDBMetadata(ctx context.Context, baseURL, apiKey, projectID string) (api.SmartDBMetadata, error)
	SupabaseTables(ctx context.Context, supabaseURL, serviceKey string) ([]studio.Option, error)
	Credentials(ctx context.Context) ([]studio.Option, error)
}

// Rule describes one reactive fetch: when the watched values of a
// matching selected node change, call Fetch and replace the options of
// Field with the result.
type Rule struct {
	// Name identifies the rule in logs and metrics.
	Name string

	// Template restricts the rule to nodes of one template id.
	// Empty matches every node.
	Template string

	// Field is the input whose options the fetch result replaces.
	Field string

	// Watch lists the value keys that form the cache key, in order.
	// All must be non-empty for the rule to fire.
	Watch []string

	// Requires lists value keys that must be non-empty but do not
	// participate in the cache key. A dependent rule uses this for
	// inputs already covered by its parent's key.
	Requires []string

	// Tag names the marker key recording the applied cache key in the
	// node's data. Empty keeps the key in resolver memory only, for
	// fetches whose marker must not appear in exported documents.
	Tag string

	// Mapping names the key under which the fetched label-to-value
	// pairs are recorded, for dependent rules to translate through.
	Mapping string

	// Translate maps a watched key to the mapping key used to convert
	// its stored label into the value the fetch expects.
	Translate map[string]string

	// Fetch performs the call. inputs holds the watched and required
	// values, translation applied.
	Fetch func(ctx context.Context, inputs map[string]string) ([]studio.Option, error)
}

// Marker and mapping keys recorded in node data. They are prefixed so
// the wire codec keeps them out of the visible value bag.
const (
	TagProjectsLoaded = "_projects_loaded_for"
	TagTablesLoaded   = "_tables_loaded_for"
	MappingProjects   = "_project_mapping"
	MappingTables     = "_table_mapping"
)

// DefaultRules returns the built-in rule set.
//
// SmartDB is a two-stage cascade: connecting credentials load the
// project list, and a chosen project loads its table list. The project
// field stores the human label, so the table rule translates it back to
// the project id before fetching.
func DefaultRules(backend Backend) []Rule {
	return []Rule{
		{
			Name:     "smartdb-projects",
			Template: "smartDB",
			Field:    "project_id",
			Watch:    []string{"base_url", "api_key"},
			Tag:      TagProjectsLoaded,
			Mapping:  MappingProjects,
			Fetch: func(ctx context.Context, in map[string]string) ([]studio.Option, error) {
				meta, err := backend.SmartDBMetadata(ctx, in["base_url"], in["api_key"], "")
				if err != nil {
					return nil, err
				}
				return meta.Projects, nil
			},
		},
		{
			Name:      "smartdb-tables",
			Template:  "smartDB",
			Field:     "table_id",
			Watch:     []string{"project_id"},
			Requires:  []string{"base_url", "api_key"},
			Tag:       TagTablesLoaded,
			Mapping:   MappingTables,
			Translate: map[string]string{"project_id": MappingProjects},
			Fetch: func(ctx context.Context, in map[string]string) ([]studio.Option, error) {
				meta, err := backend.SmartDBMetadata(ctx, in["base_url"], in["api_key"], in["project_id"])
				if err != nil {
					return nil, err
				}
				return meta.Tables, nil
			},
		},
		{
			Name:     "supabase-tables",
			Template: "supabase_SupabaseVectorStore",
			Field:    "table_name",
			Watch:    []string{"supabase_url", "supabase_service_key"},
			Fetch: func(ctx context.Context, in map[string]string) ([]studio.Option, error) {
				tables, err := backend.SupabaseTables(ctx, in["supabase_url"], in["supabase_service_key"])
				if err != nil {
					return nil, err
				}
				all := studio.Option{Label: "🌐 All Tables", Value: "all"}
				return append([]studio.Option{all}, tables...), nil
			},
		},
	}
}
