package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// credentials is the JSON body for /register and /login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register completes account creation after a successful
// registration-time enrollment. The service binds the enrollment held
// in its session to the new account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.postJSON(ctx, "/register", credentials{Username: username, Password: password})
}

// Login authenticates with username and password.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.postJSON(ctx, "/login", credentials{Username: username, Password: password})
}

// Logout ends the remote session.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	return c.doJSON(req)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("transport: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(req)
}

// doJSON issues the request and maps non-2xx responses to *APIError,
// taking the message from the remote's "error" field when parseable.
func (c *Client) doJSON(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("transport: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	parsed, _ := decodeResponse(resp.Body)
	return &APIError{StatusCode: resp.StatusCode, Message: parsed.Error}
}
