// Package srv hosts live scale records and serves registry, state and change
// subjects over a message hub.
package srv

import (
	"sort"
	"strconv"
	"time"

	"github.com/mb0/plotl/evt"
	"github.com/mb0/plotl/hub"
	"github.com/mb0/plotl/log"
	"github.com/mb0/plotl/scl"
	"github.com/pkg/errors"
)

// Server owns a scale catalog, its live records, the event ledger and subscriber
// bookkeeping, and serves the scl subjects:
//
//	scl.reg    catalog name, hash and variant descriptors with defaults
//	scl.make   create a record by variant key or domain and range class
//	scl.state  read one record's current state
//	scl.set    apply field changes to a record
//	scl.drop   delete a record
//	scl.hist   read back published events
//	scl.sub    subscribe to topics with catch-up
//	scl.uns    remove subscriptions
//
// Record mutation and subscriber access is confined to the hub routing goroutine,
// Server therefore uses no locks and must be run by a single hub.
type Server struct {
	Log  log.Logger
	hub  *hub.Hub
	cat  *scl.Catalog
	ledg *evt.MemLedger
	subs *evt.Subscribers
	svc  hub.Services
	scls map[string]*scl.Scale
	last int64
}

// NewServer returns a server for hub h. A nil catalog defaults to the builtin
// variants, a nil logger to the root logger.
func NewServer(h *hub.Hub, cat *scl.Catalog, l log.Logger) *Server {
	if cat == nil {
		cat = scl.Std
	}
	if l == nil {
		l = log.Root
	}
	s := &Server{Log: l, hub: h, cat: cat,
		ledg: &evt.MemLedger{},
		subs: evt.NewSubscribers(),
		scls: make(map[string]*scl.Scale),
	}
	s.svc = hub.Services{
		"scl.reg":   RegFunc(s.reg),
		"scl.make":  MakeFunc(s.make),
		"scl.state": StateFunc(s.state),
		"scl.set":   SetFunc(s.set),
		"scl.drop":  DropFunc(s.drop),
		"scl.hist":  evt.HistFunc(s.hist),
		"scl.sub":   evt.SubFunc(s.sub),
		"scl.uns":   evt.UnsFunc(s.uns),
	}
	return s
}

// Route implements hub.Router for the scl subjects. Connection sign-off drops all
// subscriptions of the parting connection.
func (s *Server) Route(m *hub.Msg) {
	switch m.Subj {
	case hub.SubjSignon:
		return
	case hub.SubjSignoff:
		s.subs.Unsub(m.From, nil)
		return
	}
	err := s.svc.Handle(m, s.hub)
	if err != nil {
		s.Log.Error("routing scale message", "subj", m.Subj, "err", err)
	}
}

func (s *Server) reg(m *hub.Msg, req RegReq) (*RegCat, error) {
	ver := s.cat.Version()
	res := &RegCat{Name: ver.Name, Hash: ver.Hash,
		List: make([]*Info, 0, len(s.cat.List))}
	for _, v := range s.cat.List {
		d, err := s.cat.Defaults(v.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "defaults %s", v.Key)
		}
		res.List = append(res.List, &Info{
			Key: v.Key, Dom: v.Dom.String(), Rng: v.Rng.String(),
			View: v.View, Model: v.Model,
			Hash: v.Version().Hash, Defaults: d,
		})
	}
	return res, nil
}

func (s *Server) make(m *hub.Msg, req MakeReq) (*State, error) {
	var sc *scl.Scale
	var err error
	if req.Key != "" {
		sc, err = s.cat.New(req.Key)
	} else {
		var d scl.Dom
		var r scl.Rng
		d, err = scl.ParseDom(req.Dom)
		if err == nil {
			r, err = scl.ParseRng(req.Rng)
		}
		if err == nil {
			sc, err = s.cat.Make(d, r)
		}
	}
	if err != nil {
		return nil, err
	}
	if req.Arg != nil {
		// discard the record on any bad argument, make is all or nothing
		err = sc.FromDict(req.Arg)
		if err != nil {
			return nil, errors.Wrapf(err, "make %s", sc.Key)
		}
	}
	sc.Flush()
	s.last++
	id := "s" + strconv.FormatInt(s.last, 10)
	s.scls[id] = sc
	up, err := s.ledg.Publish([]evt.Action{{
		Sig: evt.Sig{Top: sc.Key, Key: id}, Cmd: "+", Arg: sc.Dict(),
	}})
	if err != nil {
		delete(s.scls, id)
		return nil, err
	}
	s.show(m.From, up)
	s.Log.Debug("scale made", "id", id, "key", sc.Key)
	return s.stateOf(id, sc), nil
}

func (s *Server) state(m *hub.Msg, req StateReq) (*State, error) {
	sc := s.scls[req.ID]
	if sc == nil {
		return nil, errors.Errorf("no scale record %s", req.ID)
	}
	return s.stateOf(req.ID, sc), nil
}

func (s *Server) stateOf(id string, sc *scl.Scale) *State {
	return &State{ID: id, Key: sc.Key, View: sc.View, Model: sc.Model,
		Vals: sc.Dict()}
}

// set applies the argument fields in order. Fields before the first bad entry stay
// applied and are published, so watchers always see the record state as it is.
// The sender receives the published update as reply and no extra broadcast echo.
func (s *Server) set(m *hub.Msg, req SetReq) (*evt.Update, error) {
	sc := s.scls[req.ID]
	if sc == nil {
		return nil, errors.Errorf("no scale record %s", req.ID)
	}
	err := sc.FromDict(req.Arg)
	up, perr := s.flush(m.From, req.ID, sc)
	if err != nil {
		return nil, errors.Wrapf(err, "set %s", req.ID)
	}
	if perr != nil {
		return nil, perr
	}
	return up, nil
}

func (s *Server) drop(m *hub.Msg, req DropReq) (*evt.Update, error) {
	sc := s.scls[req.ID]
	if sc == nil {
		return nil, errors.Errorf("no scale record %s", req.ID)
	}
	delete(s.scls, req.ID)
	up, err := s.ledg.Publish([]evt.Action{{
		Sig: evt.Sig{Top: sc.Key, Key: req.ID}, Cmd: "-",
	}})
	if err != nil {
		return nil, err
	}
	s.show(m.From, up)
	s.Log.Debug("scale dropped", "id", req.ID, "key", sc.Key)
	return up, nil
}

func (s *Server) hist(m *hub.Msg, req evt.HistReq) (*evt.Update, error) {
	var evs []*evt.Event
	var err error
	switch {
	case req.Key != "":
		if req.Top == "" {
			return nil, errors.Errorf("hist key %s without topic", req.Key)
		}
		evs, err = s.ledg.Events(req.Sig)
	case req.Top != "":
		evs, err = s.ledg.Since(time.Time{}, req.Top)
	default:
		evs, err = s.ledg.Events()
	}
	if err != nil {
		return nil, err
	}
	return &evt.Update{Rev: s.ledg.Rev(), Evs: evs}, nil
}

// sub registers the watches and returns the catch-up update with all events each
// watch has not yet seen. Later events arrive as update messages on the connection.
func (s *Server) sub(m *hub.Msg, req evt.SubReq) (*evt.Update, error) {
	sub := s.subs.Sub(m.From, req.List)
	if sub == nil {
		return nil, errors.Errorf("subscribe without watch")
	}
	res := &evt.Update{Rev: s.ledg.Rev()}
	for _, w := range req.List {
		evs, err := s.ledg.Since(w.Rev, w.Top)
		if err != nil {
			return nil, errors.Wrapf(err, "catch up %s", w.Top)
		}
		for _, ev := range evs {
			if len(w.IDs) > 0 && !hasKey(w.IDs, ev.Key) {
				continue
			}
			res.Evs = append(res.Evs, ev)
		}
	}
	sort.Sort(evt.ByID(res.Evs))
	return res, nil
}

func (s *Server) uns(m *hub.Msg, req evt.UnsReq) (bool, error) {
	s.subs.Unsub(m.From, req.List)
	return true, nil
}

// flush publishes the dirty fields of sc as modify event, or reports the latest
// revision when there is nothing to publish.
func (s *Server) flush(from hub.Conn, id string, sc *scl.Scale) (*evt.Update, error) {
	d := sc.Flush()
	if d == nil {
		return &evt.Update{Rev: s.ledg.Rev()}, nil
	}
	up, err := s.ledg.Publish([]evt.Action{{
		Sig: evt.Sig{Top: sc.Key, Key: id}, Cmd: "*", Arg: d,
	}})
	if err != nil {
		return nil, err
	}
	s.show(from, up)
	return up, nil
}

// show buffers the update for watching subscribers and broadcasts immediately.
// The sender is excluded, it gets the update as request reply instead.
func (s *Server) show(from hub.Conn, up *evt.Update) {
	if up == nil || len(up.Evs) == 0 {
		return
	}
	s.subs.Show(from, up.Evs)
	s.subs.Bcast(s.hub, up.Rev)
}

func hasKey(ids []string, id string) bool {
	for _, e := range ids {
		if e == id {
			return true
		}
	}
	return false
}
