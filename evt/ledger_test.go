package evt

import (
	"testing"
	"time"
)

func TestMemLedger(t *testing.T) {
	l := &MemLedger{}
	if !l.Rev().IsZero() {
		t.Fatalf("fresh ledger rev want zero got %v", l.Rev())
	}
	_, err := l.Publish([]Action{{Cmd: "+"}})
	if err == nil {
		t.Errorf("publish without signature want error")
	}
	_, err = l.Publish([]Action{{Sig: Sig{Top: "lin", Key: "s1"}, Cmd: "?"}})
	if err == nil {
		t.Errorf("publish unknown command want error")
	}
	up, err := l.Publish(nil)
	if err != nil || len(up.Evs) != 0 {
		t.Errorf("empty publish want no events got %v %v", up, err)
	}
	up1, err := l.Publish([]Action{
		{Sig: Sig{Top: "lin", Key: "s1"}, Cmd: "+",
			Arg: mustDict(t, "{reverse:false}")},
		{Sig: Sig{Top: "ord", Key: "s2"}, Cmd: "+",
			Arg: mustDict(t, "{domain:['a']}")},
	})
	if err != nil {
		t.Fatalf("publish got error: %v", err)
	}
	if len(up1.Evs) != 2 || up1.Evs[0].ID != 1 || up1.Evs[1].ID != 2 {
		t.Fatalf("publish want event ids 1 2 got %v", up1.Evs)
	}
	if up1.Rev.IsZero() || !l.Rev().Equal(up1.Rev) {
		t.Errorf("publish rev want %v got ledger rev %v", up1.Rev, l.Rev())
	}
	up2, err := l.Publish([]Action{
		{Sig: Sig{Top: "lin", Key: "s1"}, Cmd: "*", Arg: mustDict(t, "{min:1}")},
	})
	if err != nil {
		t.Fatalf("publish got error: %v", err)
	}
	if !up2.Rev.After(up1.Rev) {
		t.Errorf("second publish rev %v must be after %v", up2.Rev, up1.Rev)
	}
	if up2.Evs[0].ID != 3 {
		t.Errorf("event id want 3 got %d", up2.Evs[0].ID)
	}
	all, err := l.Events()
	if err != nil || len(all) != 3 {
		t.Fatalf("events want 3 got %v %v", all, err)
	}
	one, err := l.Events(Sig{Top: "lin", Key: "s1"})
	if err != nil || len(one) != 2 {
		t.Errorf("events for lin s1 want 2 got %v %v", one, err)
	}
	none, err := l.Events(Sig{Top: "lin", Key: "s9"})
	if err != nil || len(none) != 0 {
		t.Errorf("events for lin s9 want none got %v %v", none, err)
	}
	since, err := l.Since(up1.Rev)
	if err != nil || len(since) != 1 || since[0].ID != 3 {
		t.Errorf("since %v want event 3 got %v %v", up1.Rev, since, err)
	}
	ords, err := l.Since(time.Time{}, "ord")
	if err != nil || len(ords) != 1 || ords[0].ID != 2 {
		t.Errorf("since zero ord want event 2 got %v %v", ords, err)
	}
}
