package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/mb0/plotl/evt"
	"github.com/mb0/plotl/hub"
	"github.com/mb0/plotl/srv"
	"github.com/mb0/xelf/cor"
	"github.com/mb0/xelf/lit"
	"github.com/peterh/liner"
)

const replUsage = `repl commands:
   reg                  print the variant registry
   make <key> [dict]    create a scale record, the dict holds initial fields
   state <id>           print a record's state
   set <id> <dict>      apply field changes to a record
   drop <id>            delete a record
   hist [top [key]]     print published events
   exit                 quit, same as ctrl-d
`

func repl(args []string) error {
	h := hub.NewHub()
	go h.Run(srv.NewServer(h, nil, nil))
	defer func() { h.Chan() <- nil }()
	lin := liner.NewLiner()
	defer lin.Close()
	lin.SetMultiLineMode(true)
	var got string
	var err error
	for i := 0; ; i++ {
		if i == 0 {
			got, err = lin.PromptWithSuggestion("> ", "make lin {min:0 max:1}", 5)
		} else {
			got, err = lin.Prompt("> ")
		}
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			log.Printf("unexpected error reading prompt: %v", err)
			continue
		}
		cmd, rest := split(got)
		if cmd == "" {
			continue
		}
		lin.AppendHistory(got)
		switch cmd {
		case "exit":
			fmt.Println()
			return nil
		case "help":
			fmt.Print(replUsage)
			continue
		}
		req, err := replReq(cmd, rest)
		if err != nil {
			log.Printf("error: %v", err)
			continue
		}
		res, err := call(h, "scl."+cmd, req)
		if err != nil {
			log.Printf("error calling %s: %v", cmd, err)
			continue
		}
		fmt.Printf("= %s\n\n", res)
	}
}

func replReq(cmd, rest string) (interface{}, error) {
	id, arg := split(rest)
	switch cmd {
	case "reg":
		return nil, nil
	case "make":
		d, err := parseArg(arg)
		if err != nil {
			return nil, err
		}
		return srv.MakeReq{Key: id, Arg: d}, nil
	case "state":
		return srv.StateReq{ID: id}, nil
	case "set":
		d, err := parseArg(arg)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, cor.Error("set needs a dict argument")
		}
		return srv.SetReq{ID: id, Arg: d}, nil
	case "drop":
		return srv.DropReq{ID: id}, nil
	case "hist":
		return evt.HistReq{Sig: evt.Sig{Top: id, Key: arg}}, nil
	}
	return nil, cor.Errorf("unknown command %s, try help", cmd)
}

func call(h *hub.Hub, subj string, req interface{}) ([]byte, error) {
	m := &hub.Msg{Subj: subj}
	if req != nil {
		raw, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}
		m.Raw = raw
	}
	res, err := hub.Req(h, m, time.Second)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(res.Data, "", "   ")
}

func parseArg(raw string) (*lit.Dict, error) {
	if raw == "" {
		return nil, nil
	}
	l, err := lit.Read(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	d, ok := l.(*lit.Dict)
	if !ok {
		return nil, cor.Errorf("want dict argument got %T", l)
	}
	return d, nil
}

func split(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
