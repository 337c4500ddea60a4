// Package ws posts signed actions to the exchange over its websocket
// endpoint and routes the responses back to the waiting callers.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/alinkon0207/hlsign/signing"
	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultPingInterval = 50 * time.Second
	writeTimeout        = 5 * time.Second
	connectedBanner     = "Websocket connection established."
)

// ErrClosed is returned for posts issued after Stop or after the connection
// dropped.
var ErrClosed = errors.New("websocket connection closed")

// Manager owns one websocket connection and its read and ping loops.
type Manager struct {
	baseURL      string
	pingInterval time.Duration
	log          zerolog.Logger

	conn    *websocket.Conn
	nextID  int64
	pending map[int64]chan postResult
	closed  bool

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for connection events.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithPingInterval overrides the keepalive interval.
func WithPingInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.pingInterval = d
	}
}

// New creates a new WebSocket manager for the API at baseURL.
func New(baseURL string, opts ...Option) *Manager {
	m := &Manager{
		baseURL:      baseURL,
		pingInterval: defaultPingInterval,
		log:          zerolog.Nop(),
		pending:      make(map[int64]chan postResult),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// URL converts an http(s) API URL into the matching websocket URL.
func URL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL %q: %w", baseURL, err)
	}

	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	// make sure we append "/ws" correctly, without double slashes
	u.Path = path.Join("/", u.Path, "ws")

	return u.String(), nil
}

// Start dials the websocket and starts the read/ping loops.
func (m *Manager) Start(ctx context.Context) error {
	wsURL, err := URL(m.baseURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to websocket: %w", err)
	}

	m.mu.Lock()
	m.conn = conn
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.mu.Unlock()

	m.log.Debug().Str("url", wsURL).Msg("websocket connected")

	m.wg.Add(2)
	go m.readLoop()
	go m.pingLoop()

	return nil
}

// Stop closes the connection, fails in-flight posts and waits for the loops
// to exit. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		conn, cancel := m.conn, m.cancel
		m.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if conn != nil {
			conn.Close(websocket.StatusNormalClosure, "closing")
		}

		m.wg.Wait()
		m.failPending(ErrClosed)
	})
}

// PostAction submits a signed action and returns the raw exchange response.
func (m *Manager) PostAction(
	ctx context.Context,
	signed signing.SignedAction,
) (json.RawMessage, error) {
	return m.Post(ctx, "action", signed)
}

// Post sends a request of the given type and waits for the response carrying
// the same id.
func (m *Manager) Post(
	ctx context.Context,
	requestType string,
	payload any,
) (json.RawMessage, error) {
	m.mu.Lock()
	if m.conn == nil || m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.nextID++
	id := m.nextID
	ch := make(chan postResult, 1)
	m.pending[id] = ch
	conn := m.conn
	m.mu.Unlock()

	data, err := json.Marshal(postRequest{
		Method:  "post",
		ID:      id,
		Request: postPayload{Type: requestType, Payload: payload},
	})
	if err != nil {
		m.forget(id)
		return nil, fmt.Errorf("marshal post request: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	err = conn.Write(writeCtx, websocket.MessageText, data)
	cancel()
	if err != nil {
		m.forget(id)
		return nil, fmt.Errorf("write post request: %w", err)
	}

	m.log.Debug().Int64("id", id).Str("type", requestType).Msg("websocket post sent")

	select {
	case res := <-ch:
		return res.payload, res.err
	case <-ctx.Done():
		m.forget(id)
		return nil, ctx.Err()
	}
}

func (m *Manager) forget(id int64) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

func (m *Manager) failPending(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for id, ch := range m.pending {
		ch <- postResult{err: err}
		delete(m.pending, id)
	}
}

// readLoop handles incoming messages from the WebSocket
func (m *Manager) readLoop() {
	defer m.wg.Done()

	for {
		_, data, err := m.conn.Read(m.ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && m.ctx.Err() == nil {
				m.log.Warn().Err(err).Msg("websocket read error")
			}
			m.failPending(ErrClosed)
			return
		}

		if string(data) == connectedBanner {
			m.log.Debug().Msg("websocket connection established")
			continue
		}

		m.handleMessage(data)
	}
}

// pingLoop sends periodic pings to keep the connection alive
func (m *Manager) pingLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()

	data, _ := json.Marshal(pingRequest{Method: "ping"})

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(m.ctx, writeTimeout)
			err := m.conn.Write(ctx, websocket.MessageText, data)
			cancel()

			if err != nil {
				if m.ctx.Err() == nil {
					m.log.Warn().Err(err).Msg("websocket ping error")
				}
				return
			}
		}
	}
}

// handleMessage routes a post response to the caller waiting on its id.
func (m *Manager) handleMessage(data []byte) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		m.log.Warn().Err(err).Msg("failed to unmarshal ws message")
		return
	}

	switch msg.Channel {
	case "pong":
		m.log.Trace().Msg("websocket received pong")
	case "post":
		m.handlePost(msg.Data)
	case "error":
		m.log.Warn().RawJSON("data", msg.Data).Msg("websocket error message")
	default:
		m.log.Debug().Str("channel", msg.Channel).Msg("websocket unknown channel")
	}
}

func (m *Manager) handlePost(data json.RawMessage) {
	var resp postResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		m.log.Warn().Err(err).Msg("failed to unmarshal post response")
		return
	}

	m.mu.Lock()
	ch, ok := m.pending[resp.ID]
	delete(m.pending, resp.ID)
	m.mu.Unlock()

	if !ok {
		m.log.Debug().Int64("id", resp.ID).Msg("post response without caller")
		return
	}

	if resp.Response.Type == "error" {
		var text string
		if err := json.Unmarshal(resp.Response.Payload, &text); err != nil {
			text = string(resp.Response.Payload)
		}
		ch <- postResult{err: &PostError{ID: resp.ID, Message: text}}
		return
	}

	ch <- postResult{payload: resp.Response.Payload}
}
