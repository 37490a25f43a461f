// Package api is the client for the activities HTTP service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"signup/internal/adapters/perf"
	"signup/internal/domain/activity"
)

// DefaultSlowCall is the duration above which calls are logged at WARN.
const DefaultSlowCall = 500 * time.Millisecond

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// LoginResult is the identity returned by a successful login.
type LoginResult struct {
	Token string
	Email string
	Role  string
}

// Client performs the four remote operations against the activities service.
type Client struct {
	baseURL   string
	http      *http.Client
	collector *perf.Collector
	slowCall  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCollector records call timings into collector.
func WithCollector(collector *perf.Collector) Option {
	return func(c *Client) { c.collector = collector }
}

// WithSlowCallThreshold sets the WARN threshold for call duration.
func WithSlowCallThreshold(d time.Duration) Option {
	return func(c *Client) { c.slowCall = d }
}

// New creates a Client for the service rooted at baseURL.
// PRE: baseURL is an absolute http(s) URL
// POST: Returns a ready client or an error for an unusable URL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api url must be absolute http(s), got %q", baseURL)
	}

	c := &Client{
		baseURL:  u.String(),
		http:     &http.Client{},
		slowCall: DefaultSlowCall,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Login exchanges credentials for a bearer token.
// PRE: email and password as typed by the user
// POST: Returns the token and identity, or an *Error
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	const op = "client.Login"
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return LoginResult{}, &Error{Kind: NetworkFailure, Op: op, Err: err}
	}

	var resp loginResponse
	if err := c.do(ctx, op, http.MethodPost, "/login", "", bytes.NewReader(body), &resp); err != nil {
		return LoginResult{}, err
	}
	if resp.AccessToken == "" || resp.Email == "" || resp.Role == "" {
		return LoginResult{}, &Error{Kind: NetworkFailure, Op: op, Err: fmt.Errorf("incomplete login response")}
	}
	return LoginResult{Token: resp.AccessToken, Email: resp.Email, Role: resp.Role}, nil
}

// ListActivities fetches every activity in the order the server lists them.
// PRE: none; no credential is required
// POST: Returns a fresh snapshot, or an *Error
func (c *Client) ListActivities(ctx context.Context) ([]activity.Activity, error) {
	const op = "client.ListActivities"
	var activities []activity.Activity
	err := c.doDecode(ctx, op, http.MethodGet, "/activities", "", nil, func(r io.Reader) error {
		var err error
		activities, err = decodeActivities(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// RegisterParticipant signs email up for the named activity.
// PRE: token is the current bearer credential
// POST: Returns the server's confirmation message, or an *Error
func (c *Client) RegisterParticipant(ctx context.Context, activityName, email, token string) (string, error) {
	const op = "client.RegisterParticipant"
	var resp messageResponse
	if err := c.do(ctx, op, http.MethodPost, participantPath(activityName, "signup", email), token, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UnregisterParticipant removes email from the named activity.
// PRE: token is the current bearer credential
// POST: Returns the server's confirmation message, or an *Error
func (c *Client) UnregisterParticipant(ctx context.Context, activityName, email, token string) (string, error) {
	const op = "client.UnregisterParticipant"
	var resp messageResponse
	if err := c.do(ctx, op, http.MethodDelete, participantPath(activityName, "unregister", email), token, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// participantPath builds /activities/{name}/{action}?email={email}. The name
// is a single escaped path segment even when it contains '/', '?' or '%'.
func participantPath(activityName, action, email string) string {
	q := url.Values{}
	q.Set("email", email)
	return "/activities/" + url.PathEscape(activityName) + "/" + action + "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body io.Reader, out any) error {
	return c.doDecode(ctx, op, method, path, token, body, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(out)
	})
}

func (c *Client) doDecode(ctx context.Context, op, method, path, token string, body io.Reader, decode func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Kind: NetworkFailure, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.record(op, status, start)
	if err != nil {
		slog.Warn("api_call_failed", "op", op, "error", err)
		return &Error{Kind: NetworkFailure, Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Kind: NetworkFailure, Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Kind: ServerRejection, Op: op, Status: resp.StatusCode, Detail: parseDetail(payload)}
		slog.Info("api_call_rejected", "op", op, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if err := decode(bytes.NewReader(payload)); err != nil {
		return &Error{Kind: NetworkFailure, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) record(op string, status int, start time.Time) {
	d := time.Since(start)
	if d >= c.slowCall {
		slog.Warn("slow_api_call", "op", op, "status", status, "duration_ms", d.Milliseconds())
	} else {
		slog.Debug("api_call", "op", op, "status", status, "duration_ms", d.Milliseconds())
	}
	c.collector.Record(perf.Entry{Kind: perf.KindCall, Label: op, Status: status, Duration: d, At: start})
}

// parseDetail extracts a string detail. Structured details (validation error
// lists) are ignored so callers fall back to their generic text.
func parseDetail(payload []byte) string {
	var er errorResponse
	if err := json.Unmarshal(payload, &er); err != nil || len(er.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(er.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
