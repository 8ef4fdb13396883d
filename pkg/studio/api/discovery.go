package api

import (
	"context"
	"net/url"

	"github.com/tyboo/studiograph/pkg/studio"
)

// SmartDBMetadata is the discovery payload for SmartDB nodes: projects
// when no project is given, tables once one is.
type SmartDBMetadata struct {
	Projects []studio.Option `json:"projects,omitempty"`
	Tables   []studio.Option `json:"tables,omitempty"`
}

// SmartDBMetadata discovers projects (projectID == "") or tables for a
// SmartDB connection.
func (c *Client) SmartDBMetadata(ctx context.Context, baseURL, apiKey, projectID string) (SmartDBMetadata, error) {
	query := url.Values{}
	query.Set("base_url", baseURL)
	query.Set("api_key", apiKey)
	if projectID != "" {
		query.Set("project_id", projectID)
	}
	var meta SmartDBMetadata
	err := c.get(ctx, "/nodes/smartdb/metadata", query, &meta)
	return meta, err
}

// SupabaseTables discovers the table list behind a Supabase project.
func (c *Client) SupabaseTables(ctx context.Context, supabaseURL, serviceKey string) ([]studio.Option, error) {
	query := url.Values{}
	query.Set("supabase_url", supabaseURL)
	query.Set("supabase_key", serviceKey)
	var resp struct {
		Tables []studio.Option `json:"tables"`
	}
	if err := c.get(ctx, "/nodes/supabase/tables", query, &resp); err != nil {
		return nil, err
	}
	return resp.Tables, nil
}
