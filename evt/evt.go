package evt

import (
	"time"

	"github.com/mb0/xelf/lit"
)

// Sig is the event signature consisting of a record topic and key.
type Sig struct {
	Top string `json:"top"`
	Key string `json:"key"`
}

// Action is an unpublished event represented by a command string and argument dict.
// It usually is a data operation on a record identified by topic and primary key.
type Action struct {
	Sig
	Cmd string    `json:"cmd"`
	Arg *lit.Dict `json:"arg,omitempty"`
}

// Event is an action published to a ledger with revision and unique id.
type Event struct {
	ID  int64     `json:"id"`
	Rev time.Time `json:"rev"`
	Action
}

// Update is a list of published events up to a revision, sent to subscribers.
type Update struct {
	Rev time.Time `json:"rev"`
	Evs []*Event  `json:"evs"`
}

// Watch describes a subscriber's interest in one topic, optionally narrowed to record ids.
// Rev is the revision already seen by the subscriber, older events are not delivered again.
type Watch struct {
	Top string    `json:"top"`
	Rev time.Time `json:"rev,omitempty"`
	IDs []string  `json:"ids,omitempty"`
}

// Merge folds the other watch into w. The newer seen revision wins and id filters are
// joined, where an unrestricted watch on either side lifts the id filter entirely.
func (w *Watch) Merge(o Watch) {
	if o.Rev.After(w.Rev) {
		w.Rev = o.Rev
	}
	if len(w.IDs) == 0 || len(o.IDs) == 0 {
		w.IDs = nil
		return
	}
	for _, id := range o.IDs {
		if !hasID(w.IDs, id) {
			w.IDs = append(w.IDs, id)
		}
	}
}

func hasID(ids []string, id string) bool {
	for _, e := range ids {
		if e == id {
			return true
		}
	}
	return false
}
