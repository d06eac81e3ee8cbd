package evt

import (
	"time"

	"github.com/mb0/xelf/cor"
)

// NextRev returns rev truncated to ms, or if rev is not after last, the next possible revision
// one millisecond after last.
func NextRev(last, rev time.Time) time.Time {
	rev = rev.Truncate(time.Millisecond)
	if rev.After(last) {
		return rev
	}
	return last.Add(time.Millisecond)
}

// Ledger abstracts over the event storage. It allows to access the latest revision and read
// back events. Ledger implementations are usually not thread-safe unless explicitly documented.
type Ledger interface {
	// Rev returns the latest event revision or the zero time.
	Rev() time.Time
	// Events returns events matching any of the given signatures, or all events when
	// called without signature.
	Events(sigs ...Sig) ([]*Event, error)
	// Since returns events with a revision after rev, filtered by topic when tops
	// are given.
	Since(rev time.Time, tops ...string) ([]*Event, error)
}

// Publisher is a ledger that can publish actions.
type Publisher interface {
	Ledger
	// Publish validates the actions, assigns the next revision and event ids and
	// returns the written events as update.
	Publish(acts []Action) (*Update, error)
}

// MemLedger is an in-memory ledger for record state that lives and dies with its owner.
// It is not thread-safe, all access must come from a single owner.
type MemLedger struct {
	rev  time.Time
	evs  []*Event
	last int64
}

func (l *MemLedger) Rev() time.Time { return l.rev }

func (l *MemLedger) Events(sigs ...Sig) ([]*Event, error) {
	if len(sigs) == 0 {
		res := make([]*Event, len(l.evs))
		copy(res, l.evs)
		return res, nil
	}
	var res []*Event
	for _, ev := range l.evs {
		for _, s := range sigs {
			if ev.Sig == s {
				res = append(res, ev)
				break
			}
		}
	}
	return res, nil
}

func (l *MemLedger) Since(rev time.Time, tops ...string) ([]*Event, error) {
	var res []*Event
	for _, ev := range l.evs {
		if !ev.Rev.After(rev) {
			continue
		}
		if len(tops) == 0 || hasID(tops, ev.Top) {
			res = append(res, ev)
		}
	}
	return res, nil
}

func (l *MemLedger) Publish(acts []Action) (*Update, error) {
	for _, act := range acts {
		if act.Top == "" || act.Key == "" {
			return nil, cor.Errorf("publish action without signature")
		}
		switch act.Cmd {
		case "+", "*", "-":
		default:
			return nil, cor.Errorf("publish unknown command %q for %v",
				act.Cmd, act.Sig)
		}
	}
	res := &Update{Rev: l.rev}
	if len(acts) == 0 {
		return res, nil
	}
	res.Rev = NextRev(l.rev, time.Now())
	res.Evs = make([]*Event, 0, len(acts))
	for _, act := range acts {
		l.last++
		res.Evs = append(res.Evs, &Event{ID: l.last, Rev: res.Rev, Action: act})
	}
	l.rev = res.Rev
	l.evs = append(l.evs, res.Evs...)
	return res, nil
}
