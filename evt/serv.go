package evt

import (
	"encoding/json"

	"github.com/mb0/plotl/hub"
)

// Service funcs wrap handlers for the generic event subjects with request parsing and
// response shaping, for use with hub services.

type HistReq struct {
	Sig
}

type HistRes struct {
	Res *Update `json:"res,omitempty"`
	Err string  `json:"err,omitempty"`
}

type HistFunc func(*hub.Msg, HistReq) (*Update, error)

func (f HistFunc) Serve(m *hub.Msg) interface{} {
	var req HistReq
	if len(m.Raw) > 0 {
		err := json.Unmarshal(m.Raw, &req)
		if err != nil {
			return HistRes{Err: err.Error()}
		}
	}
	res, err := f(m, req)
	if err != nil {
		return HistRes{Err: err.Error()}
	}
	return HistRes{Res: res}
}

type SubReq struct {
	List []Watch `json:"list"`
}

type SubRes struct {
	Res *Update `json:"res,omitempty"`
	Err string  `json:"err,omitempty"`
}

type SubFunc func(*hub.Msg, SubReq) (*Update, error)

func (f SubFunc) Serve(m *hub.Msg) interface{} {
	var req SubReq
	if len(m.Raw) > 0 {
		err := json.Unmarshal(m.Raw, &req)
		if err != nil {
			return SubRes{Err: err.Error()}
		}
	}
	res, err := f(m, req)
	if err != nil {
		return SubRes{Err: err.Error()}
	}
	return SubRes{Res: res}
}

type UnsReq struct {
	List []Watch `json:"list"`
}

type UnsRes struct {
	Res bool   `json:"res,omitempty"`
	Err string `json:"err,omitempty"`
}

type UnsFunc func(*hub.Msg, UnsReq) (bool, error)

func (f UnsFunc) Serve(m *hub.Msg) interface{} {
	var req UnsReq
	if len(m.Raw) > 0 {
		err := json.Unmarshal(m.Raw, &req)
		if err != nil {
			return UnsRes{Err: err.Error()}
		}
	}
	res, err := f(m, req)
	if err != nil {
		return UnsRes{Err: err.Error()}
	}
	return UnsRes{Res: res}
}
