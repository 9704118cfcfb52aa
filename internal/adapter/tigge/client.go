// Package tigge retrieves ensemble forecasts from the TIGGE archive
// through the ECMWF data service API.
//
// A retrieval is asynchronous on the archive side: the client submits a
// request, polls its status href until the archive has staged the
// result, then streams the staged file to disk. Queue waits of minutes
// to hours are normal for TIGGE, so the poll loop sleeps on a clock and
// honors the caller's context.
package tigge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-forecast-skill/internal/observability"
)

// ErrAborted marks a retrieval the archive gave up on, typically a
// quota violation or a field combination the origin never archived.
var ErrAborted = errors.New("retrieval aborted by the archive")

// Archive retrieval lifecycle states.
const (
	statusQueued   = "queued"
	statusActive   = "active"
	statusComplete = "complete"
	statusAborted  = "aborted"
)

// retrievalState is the archive's JSON answer for a submitted or polled
// retrieval. Result is set once the status reaches complete.
type retrievalState struct {
	Href   string `json:"href"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Client talks to the ECMWF data service API.
type Client struct {
	baseURL    string
	key        string
	email      string
	httpClient *http.Client
	apiTimeout time.Duration
	pollEvery  time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger

	completed atomic.Int64
}

// NewClient creates an archive client. apiTimeout bounds the control
// calls (submit and poll); downloads are bounded only by the caller's
// context, since a staged GRIB file can take far longer than any
// sensible request timeout.
func NewClient(baseURL, key, email string, apiTimeout, pollEvery time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		key:        key,
		email:      email,
		httpClient: &http.Client{},
		apiTimeout: apiTimeout,
		pollEvery:  pollEvery,
		clock:      clockwork.NewRealClock(),
		metrics:    metrics,
		logger:     logger,
	}
}

// SetClock overrides the poll-wait clock. Passing nil restores the real
// clock.
func (c *Client) SetClock(clock clockwork.Clock) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	c.clock = clock
}

// Retrieve submits one request, waits for the archive to stage it, and
// streams the result to target. It returns the downloaded size in
// bytes.
func (c *Client) Retrieve(ctx context.Context, req Request, target string) (int64, error) {
	start := c.clock.Now()
	n, err := c.retrieve(ctx, req, target)
	c.metrics.ArchiveDuration.WithLabelValues(req.Origin).Observe(c.clock.Since(start).Seconds())

	switch {
	case err == nil:
		c.metrics.ArchiveRequests.WithLabelValues(req.Origin, "success").Inc()
		c.metrics.ArchiveBytes.Add(float64(n))
		c.completed.Add(1)
	case errors.Is(err, ErrAborted):
		c.metrics.ArchiveRequests.WithLabelValues(req.Origin, "aborted").Inc()
	default:
		c.metrics.ArchiveRequests.WithLabelValues(req.Origin, "error").Inc()
	}
	return n, err
}

func (c *Client) retrieve(ctx context.Context, req Request, target string) (int64, error) {
	state, err := c.submit(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("submit: %w", err)
	}

	state, err = c.await(ctx, state)
	if err != nil {
		return 0, err
	}

	n, err := c.download(ctx, state.Result, target)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	return n, nil
}

func (c *Client) submit(ctx context.Context, req Request) (retrievalState, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return retrievalState{}, fmt.Errorf("encode request: %w", err)
	}
	return c.apiCall(ctx, http.MethodPost, c.baseURL+"/datasets/tigge/requests", bytes.NewReader(body))
}

// await polls the retrieval's status href until the archive reports it
// complete or aborted.
func (c *Client) await(ctx context.Context, state retrievalState) (retrievalState, error) {
	for {
		switch state.Status {
		case statusComplete:
			if state.Result == "" {
				return retrievalState{}, fmt.Errorf("complete retrieval carries no result href")
			}
			return state, nil
		case statusAborted:
			if state.Error != "" {
				return retrievalState{}, fmt.Errorf("%w: %s", ErrAborted, state.Error)
			}
			return retrievalState{}, ErrAborted
		case statusQueued, statusActive:
		default:
			return retrievalState{}, fmt.Errorf("unknown retrieval status %q", state.Status)
		}

		if state.Href == "" {
			return retrievalState{}, fmt.Errorf("pending retrieval carries no status href")
		}

		select {
		case <-ctx.Done():
			return retrievalState{}, ctx.Err()
		case <-c.clock.After(c.pollEvery):
		}

		next, err := c.apiCall(ctx, http.MethodGet, state.Href, nil)
		if err != nil {
			return retrievalState{}, fmt.Errorf("poll: %w", err)
		}
		// Some poll answers omit the href; keep the one we have.
		if next.Href == "" {
			next.Href = state.Href
		}
		state = next
	}
}

// apiCall performs one control request against the archive API under
// the client's API timeout.
func (c *Client) apiCall(ctx context.Context, method, url string, body io.Reader) (retrievalState, error) {
	ctx, cancel := context.WithTimeout(ctx, c.apiTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return retrievalState{}, fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retrievalState{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return retrievalState{}, fmt.Errorf("archive API error: status %d: %s", resp.StatusCode, msg)
	}

	var state retrievalState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return retrievalState{}, fmt.Errorf("decode response: %w", err)
	}
	return state, nil
}

// download streams the staged result to target, creating parent
// directories as needed.
func (c *Client) download(ctx context.Context, href, target string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("archive API error: status %d: %s", resp.StatusCode, msg)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", target, err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write %s: %w", target, err)
	}
	return n, nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("X-ECMWF-KEY", c.key)
	req.Header.Set("From", c.email)
}
