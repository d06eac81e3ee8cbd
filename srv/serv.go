package srv

import (
	"encoding/json"

	"github.com/mb0/plotl/evt"
	"github.com/mb0/plotl/hub"
	"github.com/mb0/xelf/lit"
)

// Info describes one registered variant for clients, with its descriptor hash and
// canonical defaults.
type Info struct {
	Key      string    `json:"key"`
	Dom      string    `json:"dom"`
	Rng      string    `json:"rng"`
	View     string    `json:"view"`
	Model    string    `json:"model"`
	Hash     string    `json:"hash"`
	Defaults *lit.Dict `json:"defaults"`
}

// State describes one hosted scale record for clients.
type State struct {
	ID    string    `json:"id"`
	Key   string    `json:"key"`
	View  string    `json:"view"`
	Model string    `json:"model"`
	Vals  *lit.Dict `json:"vals"`
}

type RegReq struct{}

type RegCat struct {
	Name string  `json:"name"`
	Hash string  `json:"hash"`
	List []*Info `json:"list"`
}

type RegRes struct {
	Res *RegCat `json:"res,omitempty"`
	Err string  `json:"err,omitempty"`
}

type RegFunc func(*hub.Msg, RegReq) (*RegCat, error)

func (f RegFunc) Serve(m *hub.Msg) interface{} {
	var req RegReq
	if len(m.Raw) > 0 {
		err := json.Unmarshal(m.Raw, &req)
		if err != nil {
			return RegRes{Err: err.Error()}
		}
	}
	res, err := f(m, req)
	if err != nil {
		return RegRes{Err: err.Error()}
	}
	return RegRes{Res: res}
}

type MakeReq struct {
	Key string    `json:"key,omitempty"`
	Dom string    `json:"dom,omitempty"`
	Rng string    `json:"rng,omitempty"`
	Arg *lit.Dict `json:"arg,omitempty"`
}

type MakeRes struct {
	Res *State `json:"res,omitempty"`
	Err string `json:"err,omitempty"`
}

type MakeFunc func(*hub.Msg, MakeReq) (*State, error)

func (f MakeFunc) Serve(m *hub.Msg) interface{} {
	var req MakeReq
	if len(m.Raw) > 0 {
		err := json.Unmarshal(m.Raw, &req)
		if err != nil {
			return MakeRes{Err: err.Error()}
		}
	}
	res, err := f(m, req)
	if err != nil {
		return MakeRes{Err: err.Error()}
	}
	return MakeRes{Res: res}
}

type StateReq struct {
	ID string `json:"id"`
}

type StateRes struct {
	Res *State `json:"res,omitempty"`
	Err string `json:"err,omitempty"`
}

type StateFunc func(*hub.Msg, StateReq) (*State, error)

func (f StateFunc) Serve(m *hub.Msg) interface{} {
	var req StateReq
	if len(m.Raw) > 0 {
		err := json.Unmarshal(m.Raw, &req)
		if err != nil {
			return StateRes{Err: err.Error()}
		}
	}
	res, err := f(m, req)
	if err != nil {
		return StateRes{Err: err.Error()}
	}
	return StateRes{Res: res}
}

type SetReq struct {
	ID  string    `json:"id"`
	Arg *lit.Dict `json:"arg"`
}

type SetRes struct {
	Res *evt.Update `json:"res,omitempty"`
	Err string      `json:"err,omitempty"`
}

type SetFunc func(*hub.Msg, SetReq) (*evt.Update, error)

func (f SetFunc) Serve(m *hub.Msg) interface{} {
	var req SetReq
	if len(m.Raw) > 0 {
		err := json.Unmarshal(m.Raw, &req)
		if err != nil {
			return SetRes{Err: err.Error()}
		}
	}
	res, err := f(m, req)
	if err != nil {
		return SetRes{Err: err.Error()}
	}
	return SetRes{Res: res}
}

type DropReq struct {
	ID string `json:"id"`
}

type DropRes struct {
	Res *evt.Update `json:"res,omitempty"`
	Err string      `json:"err,omitempty"`
}

type DropFunc func(*hub.Msg, DropReq) (*evt.Update, error)

func (f DropFunc) Serve(m *hub.Msg) interface{} {
	var req DropReq
	if len(m.Raw) > 0 {
		err := json.Unmarshal(m.Raw, &req)
		if err != nil {
			return DropRes{Err: err.Error()}
		}
	}
	res, err := f(m, req)
	if err != nil {
		return DropRes{Err: err.Error()}
	}
	return DropRes{Res: res}
}
