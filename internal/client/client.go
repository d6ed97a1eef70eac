package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muhammad21236/limbic-devops-assessment/internal/backend"
)

// DefaultTimeout is the default per-call timeout.
const DefaultTimeout = 5000 * time.Millisecond

// maxPayloadBytes bounds the response body read from a backend.
const maxPayloadBytes = 1 << 20

// CallOutcome is the result of one outbound call. Failures are returned as
// data, never as panics, so callers can decide per-failure how to degrade.
type CallOutcome struct {
	Success     bool              `json:"success"`
	StatusCode  int               `json:"statusCode,omitempty"`
	Payload     []byte            `json:"payload,omitempty"`
	ErrorKind   ErrorKind         `json:"errorKind,omitempty"`
	ElapsedMs   int64             `json:"elapsedMs"`
	Diagnostics map[string]string `json:"diagnostics,omitempty"`
}

// Client issues single-attempt calls to named backends. Retry policy is a
// caller-level decision; the client never retries on its own.
type Client struct {
	registry  *backend.Registry
	transport http.RoundTripper
	logger    *zap.Logger
	metrics   *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithTransport overrides the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// New creates a resilient client over the given registry.
func New(registry *backend.Registry, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		registry:  registry,
		transport: http.DefaultTransport,
		logger:    logger,
		metrics:   GetMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallOption configures one call.
type CallOption func(*http.Request)

// WithHeader sets a request header on the call.
func WithHeader(name, value string) CallOption {
	return func(req *http.Request) {
		req.Header.Set(name, value)
	}
}

// Call issues a single GET to the named backend and classifies the outcome.
// The backend must exist in the registry and timeout must be positive; both
// are caller bugs and reported as errors rather than as a CallOutcome.
func (c *Client) Call(
	ctx context.Context,
	backendName, path string,
	timeout time.Duration,
	opts ...CallOption,
) (*CallOutcome, error) {
	target, ok := c.registry.Lookup(backendName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backendName)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeout, timeout)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := target.URL() + path

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	for _, opt := range opts {
		opt(req)
	}

	httpClient := &http.Client{Transport: c.transport}

	start := time.Now()
	resp, err := httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		return c.failure(target, classify(err), elapsed, map[string]string{
			"error":     err.Error(),
			"timeoutMs": strconv.FormatInt(timeout.Milliseconds(), 10),
		}), nil
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if readErr != nil {
		return c.failure(target, classify(readErr), time.Since(start), map[string]string{
			"error": readErr.Error(),
		}), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome := c.failure(target, ErrorKindBackendError, elapsed, map[string]string{
			"statusCode": strconv.Itoa(resp.StatusCode),
		})
		outcome.StatusCode = resp.StatusCode
		return outcome, nil
	}

	c.metrics.RecordCall(target.Name, "success", elapsed)
	c.logger.Debug("backend call succeeded",
		zap.String("backend", target.Name),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	return &CallOutcome{
		Success:    true,
		StatusCode: resp.StatusCode,
		Payload:    payload,
		ElapsedMs:  elapsed.Milliseconds(),
	}, nil
}

// failure builds a failed CallOutcome with the mandatory diagnostics: the
// target backend, the attempted address, and a remediation hint.
func (c *Client) failure(
	target backend.Backend,
	kind ErrorKind,
	elapsed time.Duration,
	extra map[string]string,
) *CallOutcome {
	diagnostics := map[string]string{
		"backend": target.Name,
		"address": target.HostPort(),
		"hint":    RemediationHint(kind),
	}
	for k, v := range extra {
		diagnostics[k] = v
	}

	c.metrics.RecordCall(target.Name, string(kind), elapsed)
	c.logger.Warn("backend call failed",
		zap.String("backend", target.Name),
		zap.String("address", target.HostPort()),
		zap.String("error_kind", string(kind)),
		zap.Duration("elapsed", elapsed))

	return &CallOutcome{
		Success:     false,
		ErrorKind:   kind,
		ElapsedMs:   elapsed.Milliseconds(),
		Diagnostics: diagnostics,
	}
}
