package wshub

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mb0/plotl/hub"
	"github.com/mb0/plotl/log"
	"github.com/mb0/plotl/srv"
)

func startServer(t *testing.T) (*hub.Hub, string) {
	h := hub.NewHub()
	s := srv.NewServer(h, nil, &log.Testing{TB: t})
	go h.Run(s)
	t.Cleanup(func() { h.Chan() <- nil })
	ts := httptest.NewServer(Serve(h, &log.Testing{TB: t}))
	t.Cleanup(ts.Close)
	return h, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestServe(t *testing.T) {
	_, url := startServer(t)
	wc, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer wc.Close()
	reqs := []struct {
		raw  string
		want []string
	}{
		{"scl.reg#1", []string{"scl.reg#1\n", `"name":"scl"`, "LinearScale"}},
		{"scl.make#2\n{\"key\":\"lin\"}", []string{"scl.make#2\n", `"id":"s1"`}},
		{"scl.set#3\n{\"id\":\"s1\",\"arg\":{\"reverse\":true}}",
			[]string{"scl.set#3\n", `"cmd":"*"`}},
		{"scl.set#4\n{\"id\":\"s1\",\"arg\":{\"min\":\"low\"}}",
			[]string{"scl.set#4\n", `"err"`, "invalid scale field value"}},
	}
	for _, req := range reqs {
		err = wc.WriteMessage(websocket.TextMessage, []byte(req.raw))
		if err != nil {
			t.Fatalf("write %s: %v", req.raw, err)
		}
		wc.SetReadDeadline(time.Now().Add(time.Second))
		op, b, err := wc.ReadMessage()
		if err != nil {
			t.Fatalf("read reply to %s: %v", req.raw, err)
		}
		if op != websocket.TextMessage {
			t.Fatalf("want text message got %d", op)
		}
		got := string(b)
		if !strings.HasPrefix(got, req.want[0]) {
			t.Errorf("reply to %s wants prefix %s got %s", req.raw, req.want[0], got)
		}
		for _, w := range req.want[1:] {
			if !strings.Contains(got, w) {
				t.Errorf("reply to %s wants %s got %s", req.raw, w, got)
			}
		}
	}
}

func TestClient(t *testing.T) {
	_, url := startServer(t)
	cli := NewClient(url)
	cli.Log = &log.Testing{TB: t}
	route := make(chan *hub.Msg, 8)
	done := make(chan error, 1)
	go func() { done <- cli.Connect(route) }()
	m := next(t, route)
	if m.Subj != hub.SubjSignon {
		t.Fatalf("want sign-on got %s", m.Subj)
	}
	cli.Chan() <- &hub.Msg{From: cli, Subj: "scl.make", Tok: []byte("7"),
		Raw: []byte(`{"dom":"ord","rng":"color"}`)}
	m = next(t, route)
	if m.Subj != "scl.make" || string(m.Tok) != "7" {
		t.Fatalf("want make reply got %s %s", m.Subj, m.Tok)
	}
	if !strings.Contains(string(m.Raw), `"key":"ordcolor"`) {
		t.Errorf("make reply body %s", m.Raw)
	}
	cli.Chan() <- nil
	m = next(t, route)
	if m.Subj != hub.SubjSignoff {
		t.Fatalf("want sign-off got %s", m.Subj)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("connect: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for connect to return")
	}
}

func next(t *testing.T, route chan *hub.Msg) *hub.Msg {
	t.Helper()
	select {
	case m := <-route:
		return m
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for message")
	}
	return nil
}
