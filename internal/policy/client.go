// Package policy is the gateway's Policy Enforcement Point. It asks an external
// Policy Decision Point whether an action may proceed and reduces the answer to
// a boolean.
//
// Two failure paths are kept apart on purpose:
//   - no PDP endpoint configured: enforcement is not active, every check allows.
//   - PDP configured but unreachable or answering garbage: the check denies.
package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"recordgate/internal/platform/logger"
	"recordgate/pkg/requestcontext"
)

// maxResponseBytes bounds how much of a PDP answer is read.
const maxResponseBytes = 1 << 20

// decision is the internal outcome of a check before it is collapsed to a bool.
type decision int

const (
	decisionNotEnforced decision = iota
	decisionAllowed
	decisionDenied
	decisionUnavailable
)

func (d decision) String() string {
	switch d {
	case decisionNotEnforced:
		return "not_enforced"
	case decisionAllowed:
		return "allowed"
	case decisionDenied:
		return "denied"
	default:
		return "unavailable"
	}
}

func (d decision) allowed() bool {
	return d == decisionNotEnforced || d == decisionAllowed
}

// Client issues decision requests to a PDP over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the transport. The default client has no timeout of
// its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a logger for PDP transport failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a policy client. An empty endpoint puts the client in
// open-allow mode.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     logger.Discard(),
		tracer:     otel.Tracer("recordgate/policy"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enforcing reports whether a PDP endpoint is configured.
func (c *Client) Enforcing() bool {
	return c.endpoint != ""
}

// Check asks the PDP whether q may proceed. It never returns an error: callers
// only learn allow or deny. The caller's cancellation does not interrupt an
// in-flight round trip.
func (c *Client) Check(ctx context.Context, q Query) bool {
	return c.decide(context.WithoutCancel(ctx), q).allowed()
}

func (c *Client) decide(ctx context.Context, q Query) decision {
	if !c.Enforcing() {
		c.record(decisionNotEnforced, 0)
		return decisionNotEnforced
	}

	ctx, span := c.tracer.Start(ctx, "policy.check", trace.WithAttributes(
		attribute.String("policy.action", string(q.Action)),
		attribute.String("policy.resource", string(q.Resource)),
	))
	defer span.End()

	start := time.Now()
	allowed, err := c.post(ctx, q)
	elapsed := time.Since(start).Seconds()

	var d decision
	switch {
	case err != nil:
		d = decisionUnavailable
		span.RecordError(err)
		span.SetStatus(codes.Error, "pdp unavailable")
		c.logger.WarnContext(ctx, "policy decision point unavailable, denying",
			"request_id", requestcontext.RequestID(ctx),
			"action", q.Action,
			"resource", q.Resource,
			"error", err,
		)
	case allowed:
		d = decisionAllowed
	default:
		d = decisionDenied
	}
	span.SetAttributes(attribute.String("policy.outcome", d.String()))
	c.record(d, elapsed)
	return d
}

type decisionRequest struct {
	Input Query `json:"input"`
}

type decisionResponse struct {
	Result any `json:"result"`
}

// post sends the query to the PDP and reports whether the response carried a
// literal true result.
func (c *Client) post(ctx context.Context, q Query) (bool, error) {
	data, err := json.Marshal(decisionRequest{Input: q})
	if err != nil {
		return false, fmt.Errorf("encode decision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("build decision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("decision request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return false, fmt.Errorf("decision request returned status %d", resp.StatusCode)
	}

	var out decisionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return false, fmt.Errorf("decode decision response: %w", err)
	}

	result, ok := out.Result.(bool)
	return ok && result, nil
}

func (c *Client) record(d decision, seconds float64) {
	if c.metrics != nil {
		c.metrics.observe(d, seconds)
	}
}
