// Package upstream implements the send protocol against the chatbot backend,
// which owns chat storage, reply generation and CSRF token issuance.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/eduterium/chatbot-web/internal/model/chat"
)

// ErrNoIdentity is returned when a state-changing call is attempted without a
// session identity. Checked before any network traffic.
var ErrNoIdentity = errors.New("session identity is required")

// Client is the HTTP client for the backend's chat endpoints.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New returns a Client for the backend at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// CSRFToken fetches a fresh anti-forgery token.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/csrf-token", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch csrf token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch csrf token: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode csrf token: %w", err)
	}
	return payload.CSRFToken, nil
}

// History fetches every stored chat turn for the given user, in the order the
// backend returns them.
func (c *Client) History(ctx context.Context, username string) ([]chat.Entry, error) {
	endpoint := c.baseURL + "/chats/user?username=" + url.QueryEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch chat history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch chat history: unexpected status %d", resp.StatusCode)
	}

	var entries []chat.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode chat history: %w", err)
	}
	return entries, nil
}

// Send posts one user turn and returns the bot reply. It first fetches a CSRF
// token; if that fails no post is attempted. There is no retry.
func (c *Client) Send(ctx context.Context, username, role, message string) (string, error) {
	if username == "" {
		return "", ErrNoIdentity
	}

	token, err := c.CSRFToken(ctx)
	if err != nil {
		log.Printf("[upstream] error retrieving csrf token: %v", err)
		return "", err
	}

	body, err := json.Marshal(chat.PendingMessage{ChatRole: role, Message: message})
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/chat/add?username=" + url.QueryEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-CSRF-Token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Printf("[upstream] error sending message: %v", err)
		return "", fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("send message: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode bot response: %w", err)
	}
	return payload.Response, nil
}
