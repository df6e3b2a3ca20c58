package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"numonce/internal/auth"
	"numonce/internal/game"
)

// Client is the thin HTTP client the nmo command uses against the numonce API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Signup(ctx context.Context, email, password, username string) (auth.Session, error) {
	var out auth.Session
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":    email,
		"password": password,
		"username": username,
	}, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (auth.Session, error) {
	var out auth.Session
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) SubmitPick(ctx context.Context, accessToken string, number int) (game.Submission, error) {
	var out game.Submission
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/picks", accessToken, map[string]any{
		"number": number,
	}, &out)
	return out, err
}

func (c *Client) Today(ctx context.Context, accessToken string) (game.TodayStatus, error) {
	var out game.TodayStatus
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/today", accessToken, nil, &out)
	return out, err
}

func (c *Client) WeeklyLeaderboard(ctx context.Context, accessToken string) (game.Leaderboard, error) {
	var out game.Leaderboard
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/leaderboard/week", accessToken, nil, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// APIError carries the status and the machine-readable kind from the server
// error body so callers can distinguish conflicts from real failures.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %d", e.StatusCode)
}

func apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	out := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		out.Message = payload.Error
		out.Kind = payload.Kind
	} else {
		out.Message = strings.TrimSpace(string(raw))
	}
	return out
}
