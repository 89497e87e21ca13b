// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spaportal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HealthPath is the path of the backend's health-check endpoint, relative to
// the backend base URL.
const HealthPath = "/api/"

// RequestIDHeader carries the correlation ID of a health ping, so that backend
// logs can be matched with ours.
const RequestIDHeader = "X-Request-Id"

// DefaultPingTimeout bounds a single health ping, including reading the
// response body.
const DefaultPingTimeout = 10 * time.Second

// maxHealthBody limits how much of a health response we're willing to read.
const maxHealthBody = 64 << 10

// Pinger is what the portal needs from a health check: a fire-and-forget ping
// issued whenever the app view gets displayed.
type Pinger interface {
	Fire(ctx context.Context)
}

// PingState tells whether the last health ping succeeded.
type PingState int

const (
	PingUnknown PingState = iota // no ping has completed yet.
	PingHealthy
	PingFailed
)

// String returns the lower-case name of the ping state.
func (s PingState) String() string {
	switch s {
	case PingHealthy:
		return "healthy"
	case PingFailed:
		return "failed"
	}
	return "unknown"
}

// PingStatus is the outcome of the most recently completed health ping.
type PingStatus struct {
	State   PingState
	Message string    // message returned by the backend, if healthy.
	Err     error     // failure cause, if failed.
	At      time.Time // completion time; zero if no ping completed yet.
}

// healthResponse is the body returned by the backend's health endpoint.
// Message is a pointer so we can tell a missing field from an empty message.
type healthResponse struct {
	Message *string `json:"message"`
}

// HealthCheck pings the backend's health endpoint at "{backend}/api/" and logs
// the outcome. The outcome never influences what the portal renders.
type HealthCheck struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	status PingStatus
	closed bool // no more pings get fired once closed.
	wg     sync.WaitGroup
}

// HealthCheckOption sets optional properties at the time of creating a
// HealthCheck.
type HealthCheckOption func(*HealthCheck)

// WithHTTPClient sets the HTTP client used for pinging the backend.
func WithHTTPClient(client *http.Client) HealthCheckOption {
	return func(h *HealthCheck) { h.client = client }
}

// WithPingTimeout sets the timeout for individual pings; non-positive values
// are ignored.
func WithPingTimeout(timeout time.Duration) HealthCheckOption {
	return func(h *HealthCheck) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithHealthLogger sets the logger receiving the ping outcomes.
func WithHealthLogger(log *slog.Logger) HealthCheckOption {
	return func(h *HealthCheck) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHealthCheck returns a new HealthCheck for the backend at the specified
// base URL. An empty base URL results in a relative endpoint that fails on
// each ping; this is logged, but otherwise harmless.
func NewHealthCheck(backendURL string, opts ...HealthCheckOption) *HealthCheck {
	h := &HealthCheck{
		endpoint: HealthEndpoint(backendURL),
		client:   http.DefaultClient,
		timeout:  DefaultPingTimeout,
		log:      discardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthEndpoint returns the health-check endpoint URL for the specified
// backend base URL.
func HealthEndpoint(backendURL string) string {
	return strings.TrimRight(backendURL, "/") + HealthPath
}

// Endpoint returns the URL this HealthCheck pings.
func (h *HealthCheck) Endpoint() string { return h.endpoint }

// Ping synchronously pings the backend and returns the message it sent. All
// failures are wrapped in ErrHealthCheckFailed, regardless of whether the
// request failed, the backend answered with a non-2xx status, or the body was
// garbage.
func (h *HealthCheck) Ping(ctx context.Context) (string, error) {
	msg, _, err := h.ping(ctx)
	return msg, err
}

func (h *HealthCheck) ping(ctx context.Context) (msg string, id string, err error) {
	id = uuid.NewString()
	defer func() {
		h.record(msg, err)
	}()
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint, nil)
	if err != nil {
		return "", id, fmt.Errorf("%w: %w", ErrHealthCheckFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, id)
	resp, err := h.client.Do(req)
	if err != nil {
		return "", id, fmt.Errorf("%w: %w", ErrHealthCheckFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", id, fmt.Errorf("%w: unexpected status %s",
			ErrHealthCheckFailed, resp.Status)
	}
	var body healthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxHealthBody)).Decode(&body); err != nil {
		return "", id, fmt.Errorf("%w: malformed response body: %w",
			ErrHealthCheckFailed, err)
	}
	if body.Message == nil {
		return "", id, fmt.Errorf("%w: response lacks message",
			ErrHealthCheckFailed)
	}
	return *body.Message, id, nil
}

// Fire pings the backend in the background and logs the outcome, returning
// immediately. The ping outlives cancellation of ctx (as it is typically the
// context of a request that is already done by the time the backend answers),
// but is bounded by the ping timeout. There are no retries.
func (h *HealthCheck) Fire(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	// Adding to the wait group must never race with Close waiting on it, so
	// both happen under the lock guarding the closed flag.
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.log.Debug("health check closed, not pinging",
			slog.String("endpoint", h.endpoint))
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()
	go func() {
		defer h.wg.Done()
		msg, id, err := h.ping(ctx)
		if err != nil {
			h.log.Error("errored out requesting health endpoint",
				slog.String("endpoint", h.endpoint),
				slog.String("request_id", id),
				slog.String("error", err.Error()))
			return
		}
		h.log.Info(msg,
			slog.String("endpoint", h.endpoint),
			slog.String("request_id", id))
	}()
}

// Wait blocks until all pings fired so far have completed. Wait must not be
// called while other goroutines might still Fire; use Close instead.
func (h *HealthCheck) Wait() {
	h.wg.Wait()
}

// Close stops firing any further pings and then waits for the pings still in
// flight to complete. Fire turns into a no-op after Close.
func (h *HealthCheck) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.wg.Wait()
}

// Status returns the outcome of the most recently completed ping.
func (h *HealthCheck) Status() PingStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *HealthCheck) record(msg string, err error) {
	st := PingStatus{State: PingHealthy, Message: msg, At: time.Now()}
	if err != nil {
		st = PingStatus{State: PingFailed, Err: err, At: st.At}
	}
	h.mu.Lock()
	h.status = st
	h.mu.Unlock()
}
