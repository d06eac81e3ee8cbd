package wshub

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mb0/plotl/hub"
	"github.com/mb0/plotl/log"
)

// Client is a websocket client connection to a remote hub endpoint.
type Client struct {
	url  string
	id   int64
	send chan *hub.Msg
	*websocket.Dialer
	Hdr http.Header
	Log log.Logger
}

// NewClient returns a client for the websocket hub endpoint at url.
func NewClient(url string) *Client {
	return &Client{url: url, id: hub.NextID(), send: make(chan *hub.Msg, 32)}
}

func (c *Client) ID() int64             { return c.id }
func (c *Client) Chan() chan<- *hub.Msg { return c.send }

// Connect dials the endpoint and runs the read loop, routing received messages to r.
// The client signs on to r before and off after, and returns when the connection
// closes. Sending nil to the client channel closes the connection.
func (c *Client) Connect(r chan<- *hub.Msg) error {
	c.init()
	wc, _, err := c.Dial(c.url, c.Hdr)
	if err != nil {
		return err
	}
	cc := newConn(c.id, wc, c.send)
	t := time.NewTicker(60 * time.Second)
	defer t.Stop()
	r <- &hub.Msg{From: c, Subj: hub.SubjSignon}
	go cc.writeAll(t, c.Log)
	err = cc.readAll(r)
	r <- &hub.Msg{From: c, Subj: hub.SubjSignoff}
	return err
}

func (c *Client) init() {
	if c.Dialer == nil {
		c.Dialer = websocket.DefaultDialer
	}
	if c.Log == nil {
		c.Log = log.Root
	}
}
