package sdk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"go.minekube.com/scriptsdk/pkg/util/errs"
)

// ErrClosed is returned for calls on a closed Client
// and for calls still pending when the Client closes.
var ErrClosed = errors.New("client closed")

// ClientOptions are options for Dial.
type ClientOptions struct {
	// Logger is used to log dropped frames and read errors.
	// If not set, the logger from the dial context is used.
	Logger logr.Logger
	// DialOptions are passed to the websocket dialer.
	DialOptions *websocket.DialOptions
	// ReadLimit is the max size of a response frame in bytes.
	// Defaults to 1 MiB.
	ReadLimit int64
}

// Client is a Sender talking to the bridge over a websocket.
// It is safe for concurrent use.
type Client struct {
	conn *websocket.Conn
	log  logr.Logger

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex // protects following fields
	pending map[string]chan *Result
	err     error // set once closed
}

var _ Sender = (*Client)(nil)

// Dial connects to the bridge websocket endpoint at url.
func Dial(ctx context.Context, url string, opts ClientOptions) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, opts.DialOptions)
	if err != nil {
		return nil, fmt.Errorf("error dialing bridge %q: %w", url, err)
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.FromContextOrDiscard(ctx)
	}
	return newClient(conn, log, opts.ReadLimit), nil
}

func newClient(conn *websocket.Conn, log logr.Logger, readLimit int64) *Client {
	if readLimit <= 0 {
		readLimit = 1 << 20
	}
	conn.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:    conn,
		log:     log,
		cancel:  cancel,
		done:    make(chan struct{}),
		pending: map[string]chan *Result{},
	}
	go c.readLoop(ctx)
	return c
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.done)
	for {
		var res Response
		if err := wsjson.Read(ctx, c.conn, &res); err != nil {
			c.fail(err)
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[res.ID]
		delete(c.pending, res.ID)
		c.mu.Unlock()
		if !ok {
			c.log.V(1).Info("dropping response for unknown request", "id", res.ID)
			continue
		}
		r := res.Result
		ch <- &r
	}
}

// fail marks the client as closed and releases all pending calls.
func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	if errs.IsConnClosedErr(err) {
		c.err = ErrClosed
	} else {
		c.log.Error(err, "bridge connection failed")
		c.err = fmt.Errorf("%w: %v", ErrClosed, err)
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// Send implements Sender.
func (c *Client) Send(ctx context.Context, command string, args []string, opts ...SendOption) (*Result, error) {
	o := ResolveOptions(opts...)
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	req := Request{
		ID:     uuid.NewString(),
		Action: command,
		Body:   EncodeBody(args),
	}
	ch := make(chan *Result, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	if err := wsjson.Write(ctx, c.conn, req); err != nil {
		c.forget(req.ID)
		return nil, fmt.Errorf("error writing %s request: %w", command, err)
	}

	select {
	case res, ok := <-ch:
		if !ok {
			return nil, c.closeErr()
		}
		return res, nil
	case <-ctx.Done():
		c.forget(req.ID)
		return nil, fmt.Errorf("waiting for %s response: %w", command, ctx.Err())
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return ErrClosed
	}
	return c.err
}

// Close closes the connection and fails all pending calls.
func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "client closing")
	c.cancel()
	<-c.done
	if websocket.CloseStatus(err) != -1 {
		return nil
	}
	return err
}
