// Package ws implements the outbound client connection to a nostr relay:
// dial, a serialized write queue, and OK tracking for published events.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/crisdut/gossip/pkg/encoders/envelopes"
	"github.com/crisdut/gossip/pkg/encoders/envelopes/eventenvelope"
	"github.com/crisdut/gossip/pkg/encoders/envelopes/okenvelope"
	"github.com/crisdut/gossip/pkg/encoders/event"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/context"
	"github.com/crisdut/gossip/pkg/utils/errorf"
	"github.com/crisdut/gossip/pkg/utils/log"
	"github.com/crisdut/gossip/pkg/utils/normalize"
)

// readLimit caps a single relay message.
const readLimit = 2 * 1024 * 1024

// Client is a connection to one relay.
type Client struct {
	URL string

	requestHeader http.Header
	httpClient    *http.Client
	noticeHandler func(string)

	conn        *websocket.Conn
	connCtx     context.T
	connCancel  context.F
	okCallbacks *xsync.MapOf[string, func(bool, string)]
	writeQueue  chan writeRequest

	// BytesRead counts payload bytes received, for the runtime counters.
	BytesRead func(n int)
}

type writeRequest struct {
	msg    []byte
	answer chan error
}

// Option mutates a Client at construction.
type Option interface {
	applyOption(c *Client)
}

// WithRequestHeader sets headers for the dial, e.g. an origin header.
type WithRequestHeader http.Header

func (w WithRequestHeader) applyOption(c *Client) { c.requestHeader = http.Header(w) }

// WithNoticeHandler receives NOTICE messages; when not given they are
// logged.
type WithNoticeHandler func(notice string)

func (w WithNoticeHandler) applyOption(c *Client) { c.noticeHandler = w }

// WithHTTPClient sets the http client used for the dial, which is how a
// SOCKS5 proxy gets underneath the websocket.
type WithHTTPClient struct{ Client *http.Client }

func (w WithHTTPClient) applyOption(c *Client) { c.httpClient = w.Client }

// New returns an unconnected client for a relay URL.
func New(url string, opts ...Option) (c *Client, err error) {
	var canonical string
	if canonical, err = normalize.ParseURL(url); chk.D(err) {
		return
	}
	c = &Client{
		URL:         canonical,
		okCallbacks: xsync.NewMapOf[string, func(bool, string)](),
		writeQueue:  make(chan writeRequest),
	}
	for _, opt := range opts {
		opt.applyOption(c)
	}
	return
}

// Connect dials the relay and starts the read and write pumps. The given
// context bounds the dial; the connection itself lives until Close or a
// read error.
func (c *Client) Connect(ctx context.T) (err error) {
	if c.conn != nil {
		return errorf.D("already connected to %s", c.URL)
	}
	dialOpts := &websocket.DialOptions{
		HTTPHeader: c.requestHeader,
		HTTPClient: c.httpClient,
	}
	var conn *websocket.Conn
	if conn, _, err = websocket.Dial(ctx, c.URL, dialOpts); err != nil {
		return errorf.D("dialing %s: %w", c.URL, err)
	}
	conn.SetReadLimit(readLimit)
	c.conn = conn
	c.connCtx, c.connCancel = context.Cancel(context.Bg())
	go c.writePump()
	go c.readPump()
	return
}

// IsConnected reports whether Connect has succeeded and the connection has
// not yet been torn down.
func (c *Client) IsConnected() (connected bool) {
	return c.conn != nil && c.connCtx.Err() == nil
}

// Write queues a message for the write pump and returns a channel carrying
// the write result.
func (c *Client) Write(msg []byte) (answer <-chan error) {
	ch := make(chan error, 1)
	select {
	case c.writeQueue <- writeRequest{msg: msg, answer: ch}:
	case <-c.connCtx.Done():
		ch <- errorf.D("connection to %s closed", c.URL)
	}
	return ch
}

func (c *Client) writePump() {
	for {
		select {
		case wr := <-c.writeQueue:
			ctx, cancel := context.Timeout(c.connCtx, 10*time.Second)
			err := c.conn.Write(ctx, websocket.MessageText, wr.msg)
			cancel()
			wr.answer <- err
		case <-c.connCtx.Done():
			return
		}
	}
}

func (c *Client) readPump() {
	defer c.connCancel()
	for {
		_, msg, err := c.conn.Read(c.connCtx)
		if err != nil {
			if c.connCtx.Err() == nil {
				log.D.F("read from %s failed: %v", c.URL, err)
			}
			return
		}
		if c.BytesRead != nil {
			c.BytesRead(len(msg))
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg []byte) {
	label, rest, err := envelopes.Identify(msg)
	if chk.D(err) {
		return
	}
	switch label {
	case okenvelope.Label:
		ok, err := okenvelope.Parse(rest)
		if chk.D(err) {
			return
		}
		if cb, found := c.okCallbacks.Load(ok.EventID.String()); found {
			cb(ok.OK, ok.Reason)
		}
	case "NOTICE":
		var notice string
		if len(rest) > 0 {
			if err = json.Unmarshal(rest[0], &notice); chk.D(err) {
				return
			}
		}
		if c.noticeHandler != nil {
			c.noticeHandler(notice)
		} else {
			log.I.F("NOTICE from %s: %s", c.URL, notice)
		}
	default:
		log.T.F("unhandled %s message from %s", label, c.URL)
	}
}

// Publish submits an event and waits for the relay's OK, the context
// deadline, or connection teardown, whichever is first.
func (c *Client) Publish(ctx context.T, ev *event.E) (err error) {
	if c.conn == nil {
		return errorf.D("not connected to %s", c.URL)
	}
	id := ev.IdString()
	result := make(chan error, 1)
	c.okCallbacks.Store(id, func(accepted bool, reason string) {
		if accepted {
			result <- nil
		} else {
			result <- errorf.D("event %s rejected by %s: %s", id, c.URL, reason)
		}
	})
	defer c.okCallbacks.Delete(id)

	msg := eventenvelope.NewSubmission(ev).Marshal(nil)
	select {
	case err = <-c.Write(msg):
		if err != nil {
			return
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err = <-result:
	case <-ctx.Done():
		err = ctx.Err()
	case <-c.connCtx.Done():
		err = errorf.D("connection to %s closed before OK", c.URL)
	}
	return
}

// Close tears the connection down.
func (c *Client) Close() (err error) {
	if c.conn == nil {
		return
	}
	c.connCancel()
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}
