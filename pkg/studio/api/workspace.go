package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bytedance/sonic"

	"github.com/tyboo/studiograph/pkg/studio"
)

// Workspace is a shared container for workflows and members.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Member is one user's membership in a workspace.
type Member struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Workspaces lists the workspaces the user belongs to.
func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	var resp struct {
		Workspaces []Workspace `json:"workspaces"`
	}
	if err := c.get(ctx, "/workspaces/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Workspaces, nil
}

// CreateWorkspace creates a workspace and returns it.
func (c *Client) CreateWorkspace(ctx context.Context, name string) (Workspace, error) {
	var ws Workspace
	err := c.post(ctx, "/workspaces/create", nil, map[string]string{"name": name}, &ws)
	return ws, err
}

// Members lists a workspace's members.
func (c *Client) Members(ctx context.Context, workspaceID string) ([]Member, error) {
	var resp struct {
		Members []Member `json:"members"`
	}
	path := fmt.Sprintf("/workspaces/%s/members", url.PathEscape(workspaceID))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// Invite adds a user to a workspace by email.
func (c *Client) Invite(ctx context.Context, workspaceID, email, role string) error {
	query := url.Values{}
	query.Set("email", email)
	query.Set("role", role)
	path := fmt.Sprintf("/workspaces/%s/invite", url.PathEscape(workspaceID))
	return c.post(ctx, path, query, nil, nil)
}

// ExportWorkspace downloads a workspace's full contents as a document
// bundle.
func (c *Client) ExportWorkspace(ctx context.Context, workspaceID string) ([]byte, error) {
	path := fmt.Sprintf("/workspaces/%s/export", url.PathEscape(workspaceID))
	var resp any
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	raw, err := sonic.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode workspace export: %w", err)
	}
	return raw, nil
}

// ImportWorkspace uploads a previously exported workspace bundle.
// Malformed bundles are rejected before anything reaches the backend.
func (c *Client) ImportWorkspace(ctx context.Context, bundle []byte) error {
	var body any
	if err := sonic.Unmarshal(bundle, &body); err != nil {
		return fmt.Errorf("%w: %v", studio.ErrMalformedDocument, err)
	}
	return c.post(ctx, "/workspaces/import", nil, body, nil)
}

// TemplateInfo is one marketplace template listing.
type TemplateInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Templates lists the marketplace templates.
func (c *Client) Templates(ctx context.Context) ([]TemplateInfo, error) {
	var resp struct {
		Templates []TemplateInfo `json:"templates"`
	}
	if err := c.get(ctx, "/templates/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Templates, nil
}

// CloneTemplate copies a marketplace template into a workspace and
// returns the resulting workflow document.
func (c *Client) CloneTemplate(ctx context.Context, templateID, workspaceID string) (studio.Document, error) {
	query := url.Values{}
	if workspaceID != "" {
		query.Set("workspace_id", workspaceID)
	}
	var doc studio.Document
	path := fmt.Sprintf("/templates/clone/%s", url.PathEscape(templateID))
	err := c.post(ctx, path, query, nil, &doc)
	return doc, err
}

// Usage is a workspace's billing consumption report.
type Usage struct {
	WorkspaceID string  `json:"workspace_id"`
	Runs        int     `json:"runs"`
	Tokens      int64   `json:"tokens"`
	CostUSD     float64 `json:"cost_usd"`
}

// BillingUsage fetches a workspace's usage report.
func (c *Client) BillingUsage(ctx context.Context, workspaceID string) (Usage, error) {
	var usage Usage
	err := c.get(ctx, fmt.Sprintf("/billing/usage/%s", url.PathEscape(workspaceID)), nil, &usage)
	return usage, err
}

// AuditEntry is one workspace audit-log record.
type AuditEntry struct {
	Action    string `json:"action"`
	Actor     string `json:"actor"`
	Timestamp string `json:"timestamp"`
	Detail    string `json:"detail,omitempty"`
}

// AuditLog lists a workspace's audit entries.
func (c *Client) AuditLog(ctx context.Context, workspaceID string) ([]AuditEntry, error) {
	var resp struct {
		Entries []AuditEntry `json:"entries"`
	}
	if err := c.get(ctx, fmt.Sprintf("/audit/list/%s", url.PathEscape(workspaceID)), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// Comment is workflow feedback, optionally anchored to a node.
type Comment struct {
	ID         string `json:"id,omitempty"`
	WorkflowID string `json:"workflow_id"`
	NodeID     string `json:"node_id,omitempty"`
	Author     string `json:"author,omitempty"`
	Text       string `json:"text"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// Comments lists a workflow's comments.
func (c *Client) Comments(ctx context.Context, workflowID string) ([]Comment, error) {
	var resp struct {
		Comments []Comment `json:"comments"`
	}
	path := fmt.Sprintf("/workspaces/workflows/%s/comments", url.PathEscape(workflowID))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

// AddComment posts a comment on a workflow.
func (c *Client) AddComment(ctx context.Context, comment Comment) error {
	return c.post(ctx, "/workspaces/workflows/comments", nil, comment, nil)
}
