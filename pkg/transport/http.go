// Package transport provides the HTTP collaborator the data provider sends
// its JSON:API requests through.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/telhawk-systems/jsonapi-provider/internal/logging"
	"github.com/telhawk-systems/jsonapi-provider/internal/metrics"
	"github.com/telhawk-systems/jsonapi-provider/internal/requestid"
	"github.com/telhawk-systems/jsonapi-provider/pkg/dataprovider"
	"github.com/telhawk-systems/jsonapi-provider/pkg/jsonapi"
)

// DefaultTimeout bounds a single exchange when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// HTTP sends requests to a JSON:API server rooted at a base URL.
type HTTP struct {
	baseURL string
	token   string
	headers map[string]string
	client  *http.Client
	logger  *logging.Logger
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(h *HTTP) { h.token = token }
}

// WithHeaders adds static headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(h *HTTP) {
		for k, v := range headers {
			h.headers[k] = v
		}
	}
}

// WithTimeout sets the http.Client timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		if d > 0 {
			h.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

// WithLogger sets the logger. Request IDs carried by the context are added
// to every record.
func WithLogger(l *slog.Logger) Option {
	return func(h *HTTP) {
		if l != nil {
			h.logger = &logging.Logger{Logger: l}
		}
	}
}

// NewHTTP creates a transport pointing at baseURL.
func NewHTTP(baseURL string, opts ...Option) *HTTP {
	h := &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(map[string]string),
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Request implements dataprovider.Transport. The status code is not
// interpreted; any completed exchange is returned as a Response.
func (h *HTTP) Request(ctx context.Context, method, path string, query url.Values, body []byte) (*dataprovider.Response, error) {
	ctx, reqID := requestid.Ensure(ctx)

	target := h.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	var bodyReader io.Reader = http.NoBody
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	// Static headers go first so they cannot replace the protocol headers.
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", jsonapi.MediaType)
	if body != nil {
		req.Header.Set("Content-Type", jsonapi.MediaType)
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	req.Header.Set(requestid.Header, reqID)

	start := time.Now()
	resp, err := h.client.Do(req)
	elapsed := time.Since(start)
	metrics.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	if err != nil {
		metrics.RequestErrors.WithLabelValues(method).Inc()
		h.logger.ErrorContext(ctx, "request failed",
			logging.Method(method), logging.Path(path), logging.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RequestErrors.WithLabelValues(method).Inc()
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	metrics.RequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	h.logger.DebugContext(ctx, "request completed",
		logging.Method(method),
		logging.Path(path),
		logging.Status(resp.StatusCode),
		logging.Duration(elapsed.Milliseconds()),
	)

	return &dataprovider.Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}, nil
}
