// Package httpapi implements ports.GraphService over the HTTP/JSON API of
// the call-graph service.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"callscope/internal/domain"
	"callscope/internal/ports"
)

// DefaultTimeout bounds every request
const DefaultTimeout = 30 * time.Second

const maxErrorBody = 4096

// StatusError is returned for a non-2xx response
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// NotFound reports whether the service answered 404
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Client talks to the graph service
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

var _ ports.GraphService = (*Client)(nil)

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListGraphs returns every graph stored by the service
func (c *Client) ListGraphs(ctx context.Context) ([]domain.GraphInfo, error) {
	var graphs []domain.GraphInfo
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "graphs"), &graphs); err != nil {
		return nil, err
	}
	return graphs, nil
}

// MethodTree returns the package/class/method tree of a graph
func (c *Client) MethodTree(ctx context.Context, graph string) (*domain.TreeNode, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "graphs", graph, "tree"), &raw); err != nil {
		return nil, err
	}
	return domain.ParseMethodTree(raw)
}

// FetchMethod returns a method with its ancestors and optionally its entrypoint path
func (c *Client) FetchMethod(ctx context.Context, graph, id string, withEntrypoint bool) (*domain.Response, error) {
	var query url.Values
	if withEntrypoint {
		query = url.Values{"with_entrypoint": {"true"}}
	}
	return c.fetch(ctx, c.endpoint(query, "graphs", graph, "method", id))
}

// FetchNeighbors returns the callers or callees of a method; a non-empty
// neighborID restricts the answer to that neighbor
func (c *Client) FetchNeighbors(ctx context.Context, graph, id string, rel domain.Relation, neighborID string) (*domain.Response, error) {
	segments := []string{"graphs", graph, "method", id, rel.String()}
	if neighborID != "" {
		segments = append(segments, neighborID)
	}
	return c.fetch(ctx, c.endpoint(nil, segments...))
}

// FetchEdge returns an edge and optionally its endpoints
func (c *Client) FetchEdge(ctx context.Context, graph, edgeID string, withNodes bool) (*domain.Response, error) {
	var query url.Values
	if withNodes {
		query = url.Values{"with_nodes": {"true"}}
	}
	return c.fetch(ctx, c.endpoint(query, "graphs", graph, "edge", edgeID))
}

// FetchTopEdges returns the n edges with the largest diff value
func (c *Client) FetchTopEdges(ctx context.Context, graph string, n int) (*domain.Response, error) {
	query := url.Values{"n": {strconv.Itoa(n)}}
	return c.fetch(ctx, c.endpoint(query, "graphs", graph, "diff", "edges"))
}

// StartDiff starts comparing graph against other
func (c *Client) StartDiff(ctx context.Context, graph, other string, maxIterations int) error {
	query := url.Values{"max_iterations": {strconv.Itoa(maxIterations)}}
	return c.do(ctx, http.MethodPost, c.endpoint(query, "graphs", graph, "diff", "start", other), nil)
}

// CancelDiff stops the running comparison of graph
func (c *Client) CancelDiff(ctx context.Context, graph string) error {
	return c.do(ctx, http.MethodPost, c.endpoint(nil, "graphs", graph, "diff", "cancel"), nil)
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*domain.Response, error) {
	var resp domain.Response
	if err := c.do(ctx, http.MethodGet, endpoint, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// endpoint joins escaped path segments onto the base URL
func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := *c.baseURL
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.Path, _ = url.PathUnescape(u.RawPath)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, method, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
