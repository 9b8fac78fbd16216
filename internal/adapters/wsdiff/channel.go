package wsdiff

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"callscope/internal/domain"
	"callscope/internal/logger"
	"callscope/internal/ports"
)

// Messages pushed by the service besides iteration counts
const savingMessage = "saving"

// DefaultHandshakeTimeout bounds the websocket handshake
const DefaultHandshakeTimeout = 10 * time.Second

var _ ports.DiffProgressSource = (*Source)(nil)

// result is the terminal message of a comparison job
type result struct {
	Message    string `json:"message"`
	Iterations int    `json:"iterations"`
	Error      string `json:"error,omitempty"`
}

// Option configures a Source
type Option func(*Source)

// WithDialer replaces the websocket dialer
func WithDialer(d *websocket.Dialer) Option {
	return func(s *Source) {
		if d != nil {
			s.dialer = d
		}
	}
}

// WithHeader adds headers sent on the handshake
func WithHeader(h http.Header) Option {
	return func(s *Source) {
		s.header = h.Clone()
	}
}

// Source reads diff progress from the service's websocket channel
type Source struct {
	baseURL *url.URL
	dialer  *websocket.Dialer
	header  http.Header
}

// New creates a Source for baseURL. An http(s) URL is mapped to ws(s).
func New(baseURL string, opts ...Option) (*Source, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid websocket url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("invalid websocket url %q: unsupported scheme", baseURL)
	}

	s := &Source{
		baseURL: u,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: DefaultHandshakeTimeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// URL returns the channel address of graph
func (s *Source) URL(graph string) string {
	u := *s.baseURL
	u.Path = u.Path + "/graphs/" + graph + "/diff/ws"
	u.RawPath = s.baseURL.EscapedPath() + "/graphs/" + url.PathEscape(graph) + "/diff/ws"
	return u.String()
}

// Watch connects to the progress channel of graph. The returned channel is
// closed after the terminal event, when the connection drops or when ctx is
// cancelled.
func (s *Source) Watch(ctx context.Context, graph string) (<-chan domain.DiffProgress, error) {
	endpoint := s.URL(graph)
	conn, resp, err := s.dialer.DialContext(ctx, endpoint, s.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	logger.Debug("diff channel connected", "graph", graph, "url", endpoint)

	events := make(chan domain.DiffProgress)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	go func() {
		defer close(events)
		defer close(done)
		s.read(ctx, graph, conn, events)
	}()

	return events, nil
}

func (s *Source) read(ctx context.Context, graph string, conn *websocket.Conn, events chan<- domain.DiffProgress) {
	send := func(p domain.DiffProgress) bool {
		select {
		case events <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("diff channel closed", "graph", graph)
				return
			}
			logger.Warn("diff channel failed", "graph", graph, "err", err)
			send(domain.DiffProgress{Done: true, Err: fmt.Errorf("diff channel failed: %w", err)})
			return
		}

		p, err := ParseMessage(data)
		if err != nil {
			logger.Warn("ignoring diff message", "graph", graph, "err", err)
			continue
		}
		if !send(p) || p.Done {
			if p.Done {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
			}
			return
		}
	}
}

// ParseMessage decodes one message of the progress channel: an iteration
// count, the saving marker, or the terminal JSON result.
func ParseMessage(data []byte) (domain.DiffProgress, error) {
	text := bytes.TrimSpace(data)
	if len(text) == 0 {
		return domain.DiffProgress{}, errors.New("empty message")
	}

	if text[0] == '{' {
		var r result
		if err := json.Unmarshal(text, &r); err != nil {
			return domain.DiffProgress{}, fmt.Errorf("failed to decode result: %w", err)
		}
		p := domain.DiffProgress{Done: true, Message: r.Message, Iterations: r.Iterations}
		if r.Error != "" {
			p.Err = errors.New(r.Error)
		}
		return p, nil
	}

	if strings.EqualFold(string(text), savingMessage) {
		return domain.DiffProgress{Saving: true}, nil
	}

	n, err := strconv.Atoi(string(text))
	if err != nil {
		return domain.DiffProgress{}, fmt.Errorf("unexpected message %q", text)
	}
	return domain.DiffProgress{Iterations: n}, nil
}
