// Package dataprovider translates a fixed set of data-provider verbs into
// JSON:API requests and resolves JSON:API documents back into flat records.
package dataprovider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/telhawk-systems/jsonapi-provider/internal/logging"
	"github.com/telhawk-systems/jsonapi-provider/pkg/jsonapi"
)

// DefaultTotalKey is the meta member read for collection counts.
const DefaultTotalKey = "total"

// Transport performs one HTTP exchange. Non-2xx statuses are returned as
// responses, not errors; only failures to complete the exchange are errors.
type Transport interface {
	Request(ctx context.Context, method, path string, query url.Values, body []byte) (*Response, error)
}

// Response is what a Transport hands back.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client dispatches verb calls. It holds no mutable state and is safe for
// concurrent use.
type Client struct {
	transport     Transport
	registry      Registry
	totalKey      string
	countDisabled bool
	updateMethod  string
	logger        *logging.Logger

	normalizer *Normalizer
	serializer *Serializer
}

// Option configures a Client.
type Option func(*Client)

// WithRegistry sets the relationship registry.
func WithRegistry(r Registry) Option {
	return func(c *Client) { c.registry = r }
}

// WithTotalKey sets the meta member holding the collection count. An empty
// key skips meta and counts the returned records.
func WithTotalKey(key string) Option {
	return func(c *Client) { c.totalKey = key }
}

// WithoutTotal makes collection results carry a null total.
func WithoutTotal() Option {
	return func(c *Client) { c.countDisabled = true }
}

// WithUpdateMethod sets the HTTP method used by UPDATE (PATCH by default).
func WithUpdateMethod(method string) Option {
	return func(c *Client) {
		if method != "" {
			c.updateMethod = strings.ToUpper(method)
		}
	}
}

// WithLogger sets the logger. Request IDs carried by the context are added
// to every record.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = &logging.Logger{Logger: l}
		}
	}
}

// New creates a Client on top of transport.
func New(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport:    transport,
		totalKey:     DefaultTotalKey,
		updateMethod: http.MethodPatch,
		logger:       logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.normalizer = NewNormalizer(c.registry, c.totalKey, c.countDisabled)
	c.serializer = NewSerializer(c.registry)
	return c
}

// Do runs one verb call. An unsupported verb fails before the transport is
// touched. The context is handed to the transport as is.
func (c *Client) Do(ctx context.Context, verb Verb, resource string, params Params) (*Result, error) {
	req, err := BuildRequest(verb, resource, params)
	if err != nil {
		return nil, err
	}

	var body []byte
	switch verb {
	case Create:
		body, err = c.serializer.Serialize(resource, params.Data)
	case Update:
		req.Method = c.updateMethod
		body, err = c.serializer.SerializeUpdate(resource, params.ID, params.Data)
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.transport.Request(ctx, req.Method, req.Path, req.Query, body)
	if err != nil {
		c.logger.WarnContext(ctx, "transport failed",
			logging.Verb(string(verb)), logging.Resource(resource), logging.Error(err))
		return nil, fmt.Errorf("%s %s: %w", verb, resource, err)
	}

	c.logger.DebugContext(ctx, "dispatched",
		logging.Verb(string(verb)),
		logging.Resource(resource),
		logging.Method(req.Method),
		logging.Path(req.Path),
		logging.Status(resp.Status),
		logging.Duration(time.Since(start).Milliseconds()),
	)

	if resp.Status < 200 || resp.Status > 299 {
		httpErr := newHTTPError(resp)
		c.logger.WarnContext(ctx, "request rejected",
			logging.Verb(string(verb)), logging.Resource(resource), logging.Status(resp.Status))
		return nil, httpErr
	}

	var doc *jsonapi.Document
	if verb != Delete {
		doc, err = jsonapi.Decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", verb, resource, err)
		}
	}

	res, err := c.normalizer.Normalize(verb, resource, doc, params)
	if err != nil {
		return nil, err
	}
	if verb.IsWrite() || verb == Delete {
		c.logger.InfoContext(ctx, "record written",
			logging.Verb(string(verb)), logging.Resource(resource), logging.Status(resp.Status))
	}
	return res, nil
}

// Dispatch is Do for callers holding the verb as a plain string.
func (c *Client) Dispatch(ctx context.Context, verb, resource string, params Params) (*Result, error) {
	v, err := ParseVerb(verb)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, v, resource, params)
}
