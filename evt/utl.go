package evt

import (
	"github.com/mb0/xelf/cor"
	"github.com/mb0/xelf/lit"
	"github.com/mb0/xelf/utl"
)

type ByRev []*Event

func (s ByRev) Len() int           { return len(s) }
func (s ByRev) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s ByRev) Less(i, j int) bool { return s[j].Rev.After(s[i].Rev) }

type ByID []*Event

func (s ByID) Len() int           { return len(s) }
func (s ByID) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s ByID) Less(i, j int) bool { return s[i].ID < s[j].ID }

// Collect returns all events matching signature s in ledger order.
func Collect(evs []*Event, s Sig) (res []*Event) {
	for _, ev := range evs {
		if ev.Sig == s {
			res = append(res, ev)
		}
	}
	return res
}

// CollectAll returns all events grouped by signature.
func CollectAll(evs []*Event) map[Sig][]*Event {
	res := make(map[Sig][]*Event)
	for _, ev := range evs {
		res[ev.Sig] = append(res[ev.Sig], ev)
	}
	return res
}

// Merge merges action b into a and returns the merged action or an error for signature
// mismatches and impossible command sequences.
func Merge(a, b Action) (_ Action, err error) {
	if a.Sig != b.Sig {
		return a, cor.Errorf("event signature mismatch %v != %v", a.Sig, b.Sig)
	}
	switch a.Cmd {
	case "-":
		switch b.Cmd {
		case "+":
			return Action{Sig: a.Sig, Cmd: "*", Arg: b.Arg}, nil
		case "*":
			return a, cor.Errorf("modify after delete action for %v", a.Sig)
		case "-":
			return a, cor.Errorf("double delete action for %v", a.Sig)
		}
	case "+", "*":
		switch b.Cmd {
		case "+":
			return a, cor.Errorf("create action for existing %v", a.Sig)
		case "*":
			if a.Cmd == "+" {
				err = utl.ApplyDelta(a.Arg, b.Arg)
			} else {
				err = utl.MergeDeltas(a.Arg, b.Arg)
			}
			return a, err
		case "-":
			return b, nil
		}
	default:
		return a, cor.Errorf("unresolved action %s", a.Cmd)
	}
	return a, cor.Errorf("unresolved action %s", b.Cmd)
}

// Coalesce merges all events into one action per signature, in order of first occurrence.
// The result represents the current state of each record and is what late joining
// subscribers receive instead of the full event sequence.
func Coalesce(evs []*Event) ([]Action, error) {
	idx := make(map[Sig]int, len(evs))
	var res []Action
	for _, ev := range evs {
		i, ok := idx[ev.Sig]
		if !ok {
			// merging mutates the arg dict, keep the ledger's copy intact
			act := ev.Action
			if act.Arg != nil {
				act.Arg = &lit.Dict{List: append([]lit.Keyed(nil),
					act.Arg.List...)}
			}
			idx[ev.Sig] = len(res)
			res = append(res, act)
			continue
		}
		m, err := Merge(res[i], ev.Action)
		if err != nil {
			return nil, err
		}
		res[i] = m
	}
	return res, nil
}
