// Package wshub provides a websocket transport for hub connections.
package wshub

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mb0/plotl/hub"
	"github.com/mb0/plotl/log"
)

// Serve returns a handler that upgrades requests to websocket connections and signs
// them on to hub h. Each connection gets a write loop with keep-alive pings, the
// handler itself runs the read loop until the client disconnects. A nil logger
// defaults to the root logger.
func Serve(h *hub.Hub, l log.Logger) http.HandlerFunc {
	if l == nil {
		l = log.Root
	}
	upgr := &websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		wc, err := upgr.Upgrade(w, r, nil)
		if err != nil {
			l.Error("wshub upgrade", "err", err)
			return
		}
		c := newConn(hub.NextID(), wc, make(chan *hub.Msg, 32))
		t := time.NewTicker(60 * time.Second)
		defer t.Stop()
		hub.Signon(h, c)
		go c.writeAll(t, l)
		err = c.readAll(h.Chan())
		hub.Signoff(h, c)
		if err != nil {
			l.Error("wshub read", "err", err)
		}
	}
}
