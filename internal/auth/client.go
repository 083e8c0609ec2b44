// Package auth implements the Sign-In with Ethereum login gate: fetching a
// nonce, having the wallet sign the message, and verifying it with the API.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SessionInfo is the API's view of the current session.
type SessionInfo struct {
	Authenticated bool            `json:"authenticated"`
	User          json.RawMessage `json:"user,omitempty"`
}

type nonceResponse struct {
	Nonce string `json:"nonce"`
}

type verifyRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// Client talks to the SIWE endpoints. The session cookie lives in the
// client's cookie jar.
type Client struct {
	http *resty.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("User-Agent", "workbench/1.0")
	return &Client{http: r}
}

func checkResponse(op string, resp *resty.Response) error {
	if resp.IsError() {
		body := strings.TrimSpace(resp.String())
		if body == "" {
			body = resp.Status()
		}
		return fmt.Errorf("%s failed: %s", op, body)
	}
	return nil
}

// Nonce fetches a fresh nonce for the next sign-in message.
func (c *Client) Nonce(ctx context.Context) (string, error) {
	var out nonceResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/siwe/nonce")
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}
	if err := checkResponse("nonce", resp); err != nil {
		return "", err
	}
	if out.Nonce == "" {
		return "", fmt.Errorf("nonce response had no nonce")
	}
	return out.Nonce, nil
}

// Verify submits a signed message. Success establishes the session.
func (c *Client) Verify(ctx context.Context, message, signature string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(verifyRequest{Message: message, Signature: signature}).
		Post("/api/siwe/verify")
	if err != nil {
		return fmt.Errorf("failed to verify signature: %w", err)
	}
	return checkResponse("verification", resp)
}

// Session reports whether the cookie jar holds a live session.
func (c *Client) Session(ctx context.Context) (SessionInfo, error) {
	var out SessionInfo
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/siwe/session")
	if err != nil {
		return SessionInfo{}, fmt.Errorf("failed to check session: %w", err)
	}
	if err := checkResponse("session check", resp); err != nil {
		return SessionInfo{}, err
	}
	return out, nil
}

// Logout ends the session on the server.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post("/api/siwe/logout")
	if err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return checkResponse("logout", resp)
}
