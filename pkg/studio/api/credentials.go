package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tyboo/studiograph/pkg/studio"
)

// Credentials lists the user's stored credential references as
// label/value pairs ready for a credentials dropdown. Secret material
// never leaves the backend.
func (c *Client) Credentials(ctx context.Context) ([]studio.Option, error) {
	var resp struct {
		Credentials []studio.Option `json:"credentials"`
	}
	if err := c.get(ctx, "/credentials/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Credentials, nil
}

// NewCredential is the payload for storing a credential. The backend
// encrypts the secret at rest.
type NewCredential struct {
	Name    string `json:"name"`
	Service string `json:"service"`
	Secret  string `json:"secret"`
}

// AddCredential stores a credential and returns its id.
func (c *Client) AddCredential(ctx context.Context, cred NewCredential) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/credentials/add", nil, cred, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DeleteCredential removes a stored credential.
func (c *Client) DeleteCredential(ctx context.Context, id string) error {
	return c.delete(ctx, fmt.Sprintf("/credentials/%s", url.PathEscape(id)))
}

// TestCredential asks the backend to verify a stored credential against
// its service. Returns the backend's status message.
func (c *Client) TestCredential(ctx context.Context, id string) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	err := c.post(ctx, fmt.Sprintf("/credentials/%s/test", url.PathEscape(id)), nil, nil, &resp)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}
