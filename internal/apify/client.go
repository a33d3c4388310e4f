// Package apify is the HTTP client for the external lead-search executor.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Run statuses reported by the executor.
const (
	RunStatusReady     = "READY"
	RunStatusRunning   = "RUNNING"
	RunStatusSucceeded = "SUCCEEDED"
	RunStatusFailed    = "FAILED"
	RunStatusAborted   = "ABORTED"
	RunStatusTimedOut  = "TIMED-OUT"
)

// IsFailedStatus reports whether the executor status names a failed run.
func IsFailedStatus(status string) bool {
	return status == RunStatusFailed || status == RunStatusAborted || status == RunStatusTimedOut
}

// Config captures the subset of executor API behaviour we need.
type Config struct {
	BaseURL string
	ActorID string
	Timeout time.Duration
	Client  *http.Client
}

// Client calls the executor's actor-run and dataset endpoints.
//
// The API token is passed per call rather than held on the client because it
// is resolved per user at request time.
type Client struct {
	baseURL string
	actorID string
	client  *http.Client
}

// RunInfo is the slice of an actor run record the orchestrator cares about.
type RunInfo struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	StatusMessage string `json:"statusMessage"`
	DatasetID     string `json:"defaultDatasetId"`
}

type runEnvelope struct {
	Data RunInfo `json:"data"`
}

// NewClient builds an executor API client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("executor base url is required")
	}
	actorID := strings.TrimSpace(cfg.ActorID)
	if actorID == "" {
		return nil, errors.New("executor actor id is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		actorID: actorID,
		client:  hc,
	}, nil
}

// StartRun starts one actor run with the given input and returns its handles.
func (c *Client) StartRun(ctx context.Context, token string, input map[string]any) (RunInfo, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return RunInfo{}, fmt.Errorf("encode run input: %w", err)
	}

	endpoint := c.endpoint(token, "acts", c.actorID, "runs")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return RunInfo{}, fmt.Errorf("create run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var env runEnvelope
	if err := c.do(req, &env); err != nil {
		return RunInfo{}, err
	}
	if env.Data.ID == "" {
		return RunInfo{}, errors.New("executor response missing run id")
	}
	return env.Data, nil
}

// RunStatus fetches the current state of an actor run.
func (c *Client) RunStatus(ctx context.Context, token, runID string) (RunInfo, error) {
	endpoint := c.endpoint(token, "acts", c.actorID, "runs", runID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return RunInfo{}, fmt.Errorf("create status request: %w", err)
	}

	var env runEnvelope
	if err := c.do(req, &env); err != nil {
		return RunInfo{}, err
	}
	return env.Data, nil
}

// DatasetItems downloads the full result dataset of a finished run.
func (c *Client) DatasetItems(ctx context.Context, token, datasetID string) ([]map[string]any, error) {
	endpoint := c.endpoint(token, "datasets", datasetID, "items") + "&format=json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create dataset request: %w", err)
	}

	var items []map[string]any
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// VerifyToken probes the account endpoint to confirm the token is usable.
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	endpoint := c.endpoint(token, "users", "me")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create verify request: %w", err)
	}

	var ignored json.RawMessage
	return c.do(req, &ignored)
}

func (c *Client) endpoint(token string, parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return c.baseURL + "/" + strings.Join(escaped, "/") + "?token=" + url.QueryEscape(token)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executor request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return errors.Join(
				fmt.Errorf("decode executor response: %w", err),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("decode executor response: %w", err)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}
	return nil
}

// StatusError carries a non-2xx executor response. Callers use it to
// distinguish the executor rejecting a request from transport failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("executor status %d: %s", e.StatusCode, e.Body)
}

// IsStatusError reports whether err wraps a non-2xx executor response, and if
// so returns it.
func IsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func (c *Client) handleErrorResponse(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return errors.Join(
			fmt.Errorf("read executor error response: %w", readErr),
			closeErr,
		)
	}
	if closeErr != nil {
		return fmt.Errorf("close response body: %w", closeErr)
	}

	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(respBody)),
	}
}
