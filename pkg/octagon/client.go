// Package octagon is a client for the Octagon agents API.
package octagon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dukex/operion-octagon/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://api-gateway.octagonagents.com"
	ResponsesPath  = "/v1/responses"
	DefaultTimeout = 30 * time.Second
	UserAgent      = "operion-octagon-node/1.0.4"
)

// Authenticator applies credentials to an outgoing request.
type Authenticator func(req *http.Request) error

// Client posts queries to the agents API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	format     RequestFormat
	tracer     trace.Tracer
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithRequestFormat(format RequestFormat) Option {
	return func(c *Client) {
		c.format = format
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		format:     FormatResponses,
		tracer:     otelhelper.NoopTracer(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) RequestFormat() RequestFormat {
	return c.format
}

// Query sends one query to one agent. The query must not be blank.
func (c *Client) Query(ctx context.Context, auth Authenticator, req Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "octagon.query",
		attribute.String(otelhelper.AgentKey, req.Agent),
		attribute.String("octagon.request_format", string(c.format)),
	)
	defer span.End()

	resp, err := c.Post(ctx, auth, ResponsesPath, req.Body(c.format))
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ErrorKindKey, string(KindOf(err))))

		return nil, err
	}

	return resp, nil
}

// Post sends body as JSON to path and decodes the reply.
func (c *Client) Post(ctx context.Context, auth Authenticator, path string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", UserAgent)

	if auth != nil {
		if err := auth(httpReq); err != nil {
			return nil, fmt.Errorf("failed to authenticate request: %w", err)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int(otelhelper.StatusCodeKey, resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Detail:     statusDetail(respBody),
		}
	}

	decoded, err := DecodeResponse(respBody)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	return decoded, nil
}

func transportError(err error) error {
	if isTimeout(err) {
		return ErrRequestTimeout
	}

	return &NetworkError{Err: err}
}
