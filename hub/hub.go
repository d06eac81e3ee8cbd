// Package hub provides a transport agnostic connection hub.
package hub

import "sync"

const (
	SubjSignon  = "+"
	SubjSignoff = "-"
)

// Msg is the central data structure passed between connections.
//
// The from and subj fields must be populated. Tok can be set by the origin connection to match
// replies to requests and is otherwise passed along unprocessed. The message body is optional,
// depending on the subject, and is represented by raw bytes or typed data, or both. The body type
// should not vary for the same subject, other than between request and reply. If only data is
// populated, a transport may choose a serialization format, usually JSON. The data field can be
// used to avoid body serialization round trips for in-process messages.
type Msg struct {
	// From is the connection this message originates from.
	From Conn
	// Subj is the message header used for routing and determining the body type.
	Subj string
	Tok  []byte
	Raw  []byte
	Data interface{}
}

// Router routes received messages to connections.
type Router interface{ Route(*Msg) }

// Conn is the common interface for participants connected to a hub.
//
// Connections can represent one-off calls, connected clients of any kind, the hub itself or
// long-lived services. Services can hold on to received message sender connections.
type Conn interface {
	// ID is an internal connection identifier. The hub has id 0, transient connections have a
	// negative and normal connections positive ids.
	ID() int64
	// Chan returns an unchanging receiver channel. The hub sends a nil message to this
	// channel after a sign-off message from this conn was routed.
	Chan() chan<- *Msg
}

// Hub is the central participant that manages connection sign-ons and sign-offs and keeps a map
// of all signed on connections. Hub itself implements Conn with id 0.
//
// One-off connections used for simple request-response round trips skip sign-on and use the
// special id -1. They can only be responded to directly and must not be held on to. Acceptors
// that send messages to the hub for routing are responsible for sender sign-on and validation.
type Hub struct {
	sync.Mutex
	cmap map[int64]Conn
	mque chan *Msg
}

// NewHub creates and returns a new hub.
func NewHub() *Hub {
	return &Hub{
		cmap: make(map[int64]Conn, 64),
		mque: make(chan *Msg, 128),
	}
}

func (h *Hub) ID() int64         { return 0 }
func (h *Hub) Chan() chan<- *Msg { return h.mque }

// Run starts routing received messages with the given router. It is usually run in a go routine.
func (h *Hub) Run(r Router) {
	for m := range h.mque {
		if m == nil {
			break
		}
		if m.Subj == SubjSignon {
			h.Lock()
			h.cmap[m.From.ID()] = m.From
			h.Unlock()
		}
		r.Route(m)
		if m.Subj == SubjSignoff {
			h.Lock()
			delete(h.cmap, m.From.ID())
			m.From.Chan() <- nil
			h.Unlock()
		}
	}
}

// Signon sends a sign-on message for conn c to hub h.
func Signon(h *Hub, c Conn) {
	h.Chan() <- &Msg{From: c, Subj: SubjSignon}
}

// Signoff sends a sign-off message for conn c to hub h.
func Signoff(h *Hub, c Conn) {
	h.Chan() <- &Msg{From: c, Subj: SubjSignoff}
}
