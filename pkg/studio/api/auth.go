package api

import "context"

// authRequest is the login/register payload.
type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// authResponse carries the bearer token issued by the backend.
type authResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Profile is the authenticated user's account record.
type Profile struct {
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name"`
}

// Login exchanges credentials for a bearer token and records it on the
// session (persisting it when the session is store-backed). Subsequent
// requests carry the token automatically.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp authResponse
	if err := c.post(ctx, "/auth/login", nil, authRequest{Email: email, Password: password}, &resp); err != nil {
		return err
	}
	return c.session.SetAuth(resp.AccessToken, email)
}

// Register creates an account and records the issued token, so a fresh
// account is signed in immediately.
func (c *Client) Register(ctx context.Context, email, password, fullName string) error {
	var resp authResponse
	req := authRequest{Email: email, Password: password, FullName: fullName}
	if err := c.post(ctx, "/auth/register", nil, req, &resp); err != nil {
		return err
	}
	return c.session.SetAuth(resp.AccessToken, email)
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (Profile, error) {
	var p Profile
	err := c.get(ctx, "/auth/me", nil, &p)
	return p, err
}

// Logout clears the session locally. The backend holds no server-side
// session to invalidate.
func (c *Client) Logout() error {
	return c.session.Clear()
}
