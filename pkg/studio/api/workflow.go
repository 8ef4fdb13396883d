package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tyboo/studiograph/pkg/studio"
)

// runRequest is the body for both async and single-node execution.
type runRequest struct {
	Message string          `json:"message,omitempty"`
	NodeID  string          `json:"nodeId,omitempty"`
	Graph   studio.Document `json:"graph"`
}

// RunAsync submits the graph for queued server-side execution and
// returns the job id. Per-node progress arrives over the websocket.
func (c *Client) RunAsync(ctx context.Context, message string, doc studio.Document) (string, error) {
	var resp struct {
		JobID string `json:"job_id"`
	}
	err := c.post(ctx, "/run/async", nil, runRequest{Message: message, Graph: doc}, &resp)
	if err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// RunNode executes a single node immediately, bypassing the job queue.
func (c *Client) RunNode(ctx context.Context, nodeID string, doc studio.Document) (any, error) {
	var resp struct {
		Result any `json:"result"`
	}
	err := c.post(ctx, "/run/node", nil, runRequest{NodeID: nodeID, Graph: doc}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Snapshot creates an immutable server-side version of the document in
// the given workspace and returns the version id.
func (c *Client) Snapshot(ctx context.Context, doc studio.Document, workspaceID string) (string, error) {
	query := url.Values{}
	if workspaceID != "" {
		query.Set("workspace_id", workspaceID)
	}
	var resp struct {
		VersionID string `json:"version_id"`
	}
	if err := c.post(ctx, "/workflow/snapshot", query, doc, &resp); err != nil {
		return "", err
	}
	return resp.VersionID, nil
}

// VersionInfo is one entry in the workflow version history.
type VersionInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// Versions lists the stored workflow versions.
func (c *Client) Versions(ctx context.Context) ([]VersionInfo, error) {
	var resp struct {
		Versions []VersionInfo `json:"versions"`
	}
	if err := c.get(ctx, "/workflow/versions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Versions, nil
}

// Version fetches one full snapshot by id, ready to load into the store.
func (c *Client) Version(ctx context.Context, versionID string) (studio.Document, error) {
	var doc studio.Document
	err := c.get(ctx, fmt.Sprintf("/workflow/versions/%s", url.PathEscape(versionID)), nil, &doc)
	return doc, err
}
