package evt

import (
	"time"

	"github.com/mb0/plotl/hub"
)

// Subscriber tracks the watches and buffered events of one hub connection.
type Subscriber struct {
	hub.Conn
	Rev   time.Time
	Watch map[string]*Watch
	Bufr  []*Event
}

// Accept returns whether the subscriber wants to see ev.
func (s *Subscriber) Accept(ev *Event) bool {
	w := s.Watch[ev.Top]
	if w == nil {
		return false
	}
	if !ev.Rev.After(w.Rev) {
		return false
	}
	if len(w.IDs) > 0 {
		return hasID(w.IDs, ev.Key)
	}
	return true
}

// Update sends all buffered events up to revision rev to the subscriber and resets the buffer.
func (s *Subscriber) Update(from hub.Conn, rev time.Time) {
	s.Rev = rev
	res := Update{Rev: rev}
	if len(s.Bufr) > 0 {
		res.Evs = make([]*Event, len(s.Bufr))
		copy(res.Evs, s.Bufr)
		s.Bufr = s.Bufr[:0]
	}
	s.Chan() <- &hub.Msg{From: from, Subj: "update", Data: res}
}

// Subscribers manages subscriber bookkeeping for one serving loop.
// It is not thread-safe, all access must come from a single owner.
type Subscribers struct {
	smap  map[int64]*Subscriber
	tmap  map[string][]*Subscriber
	bcast time.Time
}

func NewSubscribers() *Subscribers {
	return &Subscribers{
		smap: make(map[int64]*Subscriber),
		tmap: make(map[string][]*Subscriber),
	}
}

// Show buffers evs for all accepting subscribers and returns the subscriber of conn c, the
// event sender, which never buffers its own events.
func (subs *Subscribers) Show(c hub.Conn, evs []*Event) (sender *Subscriber) {
	id := c.ID()
	for _, ev := range evs {
		for _, s := range subs.tmap[ev.Top] {
			if s.ID() == id {
				sender = s
			} else if s.Accept(ev) {
				s.Bufr = append(s.Bufr, ev)
			}
		}
	}
	return sender
}

// Sub adds or extends the watches of conn c and returns its subscriber. Watches for an
// already watched topic merge into the existing entry. Buffered events for topics in ws
// are dropped, the caller sends a catch-up update for those instead.
func (subs *Subscribers) Sub(c hub.Conn, ws []Watch) *Subscriber {
	if len(ws) == 0 {
		return nil
	}
	id := c.ID()
	s := subs.smap[id]
	if s == nil {
		s = &Subscriber{Conn: c, Watch: make(map[string]*Watch)}
		subs.smap[id] = s
	}
	for _, w := range ws {
		o := s.Watch[w.Top]
		if o != nil {
			o.Merge(w)
			continue
		}
		n := w
		s.Watch[w.Top] = &n
		subs.tmap[w.Top] = append(subs.tmap[w.Top], s)
	}
	s.Bufr = filter(s.Bufr, ws)
	return s
}

// Unsub removes the given watches of conn c, or all its watches if ws is empty.
func (subs *Subscribers) Unsub(c hub.Conn, ws []Watch) {
	id := c.ID()
	s := subs.smap[id]
	if s == nil {
		return
	}
	if len(ws) == 0 {
		for top := range s.Watch {
			subs.untangle(top, s)
		}
		delete(subs.smap, id)
		return
	}
	for _, w := range ws {
		if _, ok := s.Watch[w.Top]; !ok {
			continue
		}
		delete(s.Watch, w.Top)
		subs.untangle(w.Top, s)
	}
	if len(s.Watch) == 0 {
		delete(subs.smap, id)
	}
	s.Bufr = filter(s.Bufr, ws)
}

func (subs *Subscribers) untangle(top string, s *Subscriber) {
	list := subs.tmap[top]
	for i, el := range list {
		if s == el {
			subs.tmap[top] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(subs.tmap[top]) == 0 {
		delete(subs.tmap, top)
	}
}

// Bcast sends all buffered events up to revision rev out to subscribers.
func (subs *Subscribers) Bcast(from hub.Conn, rev time.Time) {
	if !rev.After(subs.bcast) {
		return
	}
	subs.bcast = rev
	for _, s := range subs.smap {
		s.Update(from, rev)
	}
}

func filter(evs []*Event, subs []Watch) []*Event {
	out := evs[:0] // reuse
Outer:
	for _, ev := range evs {
		for _, sub := range subs {
			if sub.Top == ev.Top {
				continue Outer
			}
		}
		out = append(out, ev)
	}
	return out
}
