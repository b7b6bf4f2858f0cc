// Package zoom is the client for the external scheduling provider. It is
// the source of truth for a meeting's remote existence: the lifecycle
// managers call it before touching local state.
package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"booking-api/internal/config"
)

// Meeting is the provider's view of a meeting.
type Meeting struct {
	ID        int64  `json:"id"`
	Topic     string `json:"topic"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	JoinURL   string `json:"join_url"`
}

// Client talks to the Zoom REST API using a server-to-server OAuth app.
// Access tokens are fetched lazily and refreshed shortly before expiry.
type Client struct {
	cfg        config.ZoomConfig
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg config.ZoomConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", fmt.Errorf("zoom client ID and secret must be configured")
	}

	data := url.Values{}
	data.Set("grant_type", "account_credentials")
	data.Set("account_id", c.cfg.AccountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	c.accessToken = tr.AccessToken
	// Refresh a bit before the actual expiry to avoid races at the edge.
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn-60) * time.Second)

	return c.accessToken, nil
}

type createMeetingRequest struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`
}

// CreateMeeting schedules a meeting and returns the provider-assigned id.
// Duration is in minutes. Any transport or API failure comes back as an
// error; there is no retry here, callers treat failure as final.
func (c *Client) CreateMeeting(ctx context.Context, topic string, start time.Time, durationMinutes int) (string, error) {
	payload, err := json.Marshal(createMeetingRequest{
		Topic:     topic,
		Type:      2, // scheduled meeting
		StartTime: start.UTC().Format(time.RFC3339),
		Duration:  durationMinutes,
		Timezone:  "UTC",
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode meeting request: %w", err)
	}

	body, status, err := c.do(ctx, http.MethodPost, "/users/me/meetings", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", fmt.Errorf("zoom API error (status %d): %s", status, string(body))
	}

	var m Meeting
	if err := json.Unmarshal(body, &m); err != nil {
		return "", fmt.Errorf("failed to parse meeting response: %w", err)
	}
	if m.ID == 0 {
		return "", fmt.Errorf("zoom API returned no meeting id")
	}
	return strconv.FormatInt(m.ID, 10), nil
}

// DeleteMeeting removes a remote meeting. Transient failures (transport
// errors and 5xx responses) are retried once before giving up.
func (c *Client) DeleteMeeting(ctx context.Context, remoteID string) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		body, status, err := c.do(ctx, http.MethodDelete, "/meetings/"+remoteID, nil)
		if err != nil {
			lastErr = err
			continue
		}
		if status == http.StatusNoContent || status == http.StatusOK {
			return nil
		}
		lastErr = fmt.Errorf("zoom API error (status %d): %s", status, string(body))
		if status < 500 {
			return lastErr
		}
	}
	return lastErr
}

// GetMeeting fetches remote meeting details. Not used by the lifecycle
// managers but part of the provider boundary contract.
func (c *Client) GetMeeting(ctx context.Context, remoteID string) (*Meeting, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/meetings/"+remoteID, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("zoom API error (status %d): %s", status, string(body))
	}
	var m Meeting
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("failed to parse meeting response: %w", err)
	}
	return &m, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, 0, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
