// Package api is the agent's HTTP client for the attendance backend. It
// speaks the server's response envelope and classifies failures into
// transient (network, 5xx) and permanent (the server understood the request
// and rejected it), which drives the queue's keep-or-discard decision.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
)

// ErrRejected marks a response the server produced deliberately: a conflict
// or a validation failure. Replaying the same request cannot succeed.
var ErrRejected = errors.New("request rejected by server")

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Ping probes connectivity against the server's heartbeat endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to build ping request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

type checkInBody struct {
	Device attendance.Device `json:"device"`
	At     *time.Time        `json:"at,omitempty"`
}

type checkOutBody struct {
	At *time.Time `json:"at,omitempty"`
}

// CheckIn replays a check-in with the instant it was originally taken.
func (c *Client) CheckIn(ctx context.Context, device attendance.Device, at time.Time) error {
	return c.post(ctx, "/api/v1/attendance/checkin", checkInBody{Device: device, At: &at})
}

// CheckOut replays a check-out with the instant it was originally taken.
func (c *Client) CheckOut(ctx context.Context, at time.Time) error {
	return c.post(ctx, "/api/v1/attendance/checkout", checkOutBody{At: &at})
}

// Today fetches the caller's record for the current day; nil when none.
func (c *Client) Today(ctx context.Context) (*attendance.RecordResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/attendance/today", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	var record attendance.RecordResponse
	if err := json.Unmarshal(env.Data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &record, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	_, err = decodeEnvelope(resp)
	return err
}

func decodeEnvelope(resp *http.Response) (envelope, error) {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return env, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if env.Success {
		return env, nil
	}

	message := env.Message
	if env.Error != nil {
		message = env.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusConflict, http.StatusBadRequest, http.StatusUnprocessableEntity:
		return env, fmt.Errorf("%s: %w", message, ErrRejected)
	default:
		return env, fmt.Errorf("server error (status %d): %s", resp.StatusCode, message)
	}
}
