package hub

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

type echoReq struct {
	Text string `json:"text"`
}

type echoRes struct {
	Res string `json:"res,omitempty"`
	Err string `json:"err,omitempty"`
}

type echoFunc func(*Msg, echoReq) (string, error)

func (f echoFunc) Serve(m *Msg) interface{} {
	var req echoReq
	if len(m.Raw) > 0 {
		err := json.Unmarshal(m.Raw, &req)
		if err != nil {
			return echoRes{Err: err.Error()}
		}
	}
	res, err := f(m, req)
	if err != nil {
		return echoRes{Err: err.Error()}
	}
	return echoRes{Res: res}
}

func TestHubReq(t *testing.T) {
	h := NewHub()
	svc := Services{"echo": echoFunc(func(m *Msg, req echoReq) (string, error) {
		return req.Text, nil
	})}
	go h.Run(RouterFunc(func(m *Msg) {
		switch m.Subj {
		case SubjSignon, SubjSignoff:
			return
		}
		err := svc.Handle(m, h)
		if err != nil {
			t.Errorf("handle %s: %v", m.Subj, err)
		}
	}))
	defer func() { h.Chan() <- nil }()
	res, err := Req(h, &Msg{Subj: "echo", Tok: []byte("4"),
		Raw: []byte(`{"text":"hello"}`)}, time.Second)
	if err != nil {
		t.Fatalf("req: %v", err)
	}
	if res.Subj != "echo" || string(res.Tok) != "4" {
		t.Errorf("want echo reply with token got %s %s", res.Subj, res.Tok)
	}
	if er, ok := res.Data.(echoRes); !ok || er.Res != "hello" {
		t.Errorf("want hello got %+v", res.Data)
	}
}

func TestHubSignoff(t *testing.T) {
	h := NewHub()
	var ons, offs int
	go h.Run(RouterFunc(func(m *Msg) {
		switch m.Subj {
		case SubjSignon:
			ons++
		case SubjSignoff:
			offs++
		}
	}))
	defer func() { h.Chan() <- nil }()
	ch := make(chan *Msg, 1)
	c := NewChanConn(NextID(), ch)
	Signon(h, c)
	Signoff(h, c)
	select {
	case m := <-ch:
		if m != nil {
			t.Fatalf("want nil sign-off ack got %v", m)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for sign-off ack")
	}
	if ons != 1 || offs != 1 {
		t.Errorf("want one sign-on and sign-off got %d %d", ons, offs)
	}
}

func TestFilters(t *testing.T) {
	var got []string
	rec := RouterFunc(func(m *Msg) { got = append(got, m.Subj) })
	r := Routers{
		NewMatchFilter(rec, "a", "b"),
		NewPrefixFilter(rec, "b."),
	}
	for _, subj := range []string{"a", "b", "b.c", "c", "a.b"} {
		r.Route(&Msg{Subj: subj})
	}
	if res := strings.Join(got, " "); res != "a b b.c" {
		t.Errorf("want routed a b b.c got %s", res)
	}
}
