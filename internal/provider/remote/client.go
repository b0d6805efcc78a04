// Package remote implements hover and signature providers backed by an
// out-of-process capability server, spoken to over a websocket carrying
// JSON request/response frames.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

var (
	// ErrShutdown indicates a call on a closed client.
	ErrShutdown = errors.New("remote provider client closed")
)

// request is one outgoing frame.
type request struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// response is one incoming frame.
type response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Client multiplexes request/response frames over one websocket
// connection. Safe for concurrent use; responses are correlated to calls
// by frame ID.
type Client struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  atomic.Int64
	pending map[int64]chan *response

	closed atomic.Bool
	done   chan struct{}
}

// Dial connects to a capability server at url (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing capability server %s: %w", url, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection. The client owns the
// connection and closes it on Close.
func NewClient(conn *websocket.Conn) *Client {
	c := &Client{
		conn:    conn,
		pending: make(map[int64]chan *response),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Close tears the connection down. In-flight calls fail with ErrShutdown.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)

	c.mu.Lock()
	c.pending = make(map[int64]chan *response)
	c.mu.Unlock()

	return c.conn.Close()
}

// Call sends a request and decodes the response's result into out. A nil
// out discards the result. A null result leaves out untouched.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	if c.closed.Load() {
		return ErrShutdown
	}

	id := c.nextID.Add(1)
	ch := make(chan *response, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(request{ID: id, Method: method, Params: params})
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return fmt.Errorf("%s: %s", method, resp.Error)
		}
		if out == nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("decoding %s result: %w", method, err)
		}
		return nil
	case <-c.done:
		return ErrShutdown
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) readLoop() {
	for {
		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.Close()
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		c.mu.Unlock()
		if ok {
			ch <- &resp
		}
	}
}
