package scl

import (
	"errors"
	"strings"
	"testing"

	"github.com/mb0/xelf/lit"
)

func mustDict(t *testing.T, raw string) *lit.Dict {
	t.Helper()
	l, err := lit.Read(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse %s err: %v", raw, err)
	}
	d, ok := l.(*lit.Dict)
	if !ok {
		t.Fatalf("parse %s want dict got %T", raw, l)
	}
	return d
}

func TestDefaults(t *testing.T) {
	tests := []struct{ key, want string }{
		{"lin", "{reverse:false allow_padding:true scale_range_type:'numerical'}"},
		{"log", "{reverse:false allow_padding:true scale_range_type:'numerical'}"},
		{"time", "{reverse:false allow_padding:true date_format:'' " +
			"scale_range_type:'numerical'}"},
		{"ord", "{reverse:false allow_padding:true domain:[] " +
			"scale_range_type:'numerical'}"},
		{"color", "{reverse:false allow_padding:true scale_type:'linear' colors:[] " +
			"scheme:'RdYlGn' scale_range_type:'Color'}"},
		{"timecolor", "{reverse:false allow_padding:true scale_type:'linear' colors:[] " +
			"scheme:'RdYlGn' date_format:'' scale_range_type:'Color'}"},
		{"ordcolor", "{reverse:false allow_padding:true scale_type:'linear' colors:[] " +
			"scheme:'RdYlGn' domain:[] scale_range_type:'Color'}"},
	}
	for _, test := range tests {
		d, err := Defaults(test.key)
		if err != nil {
			t.Errorf("defaults %s got error: %v", test.key, err)
			continue
		}
		got := d.String()
		want := mustDict(t, test.want).String()
		if got != want {
			t.Errorf("defaults %s want %s got %s", test.key, want, got)
		}
	}
}

func TestScaleDict(t *testing.T) {
	tests := []struct{ key, raw, want string }{
		{"lin", "{min:0 max:100}",
			"{reverse:false allow_padding:true min:0 max:100 " +
				"scale_range_type:'numerical'}"},
		{"log", "{reverse:true min:1}",
			"{reverse:true allow_padding:true min:1 " +
				"scale_range_type:'numerical'}"},
		{"time", "{min:'2020-01-02T00:00:00Z' date_format:'%Y-%m'}",
			"{reverse:false allow_padding:true min:'2020-01-02T00:00:00Z' " +
				"date_format:'%Y-%m' scale_range_type:'numerical'}"},
		{"ord", "{domain:['a' 'b' 'c']}",
			"{reverse:false allow_padding:true domain:['a' 'b' 'c'] " +
				"scale_range_type:'numerical'}"},
		{"color", "{colors:['red' 'green'] scheme:'viridis'}",
			"{reverse:false allow_padding:true scale_type:'linear' " +
				"colors:['red' 'green'] scheme:'viridis' " +
				"scale_range_type:'Color'}"},
		{"timecolor", "{mid:'2020-06-01' max:'2020-12-31T00:00:00Z'}",
			"{reverse:false allow_padding:true scale_type:'linear' colors:[] " +
				"max:'2020-12-31T00:00:00Z' mid:'2020-06-01' scheme:'RdYlGn' " +
				"date_format:'' scale_range_type:'Color'}"},
		{"ordcolor", "{domain:[3 1 2]}",
			"{reverse:false allow_padding:true scale_type:'linear' colors:[] " +
				"scheme:'RdYlGn' domain:[3 1 2] scale_range_type:'Color'}"},
	}
	for _, test := range tests {
		s, err := New(test.key)
		if err != nil {
			t.Errorf("new %s got error: %v", test.key, err)
			continue
		}
		err = s.FromDict(mustDict(t, test.raw))
		if err != nil {
			t.Errorf("apply %s %s got error: %v", test.key, test.raw, err)
			continue
		}
		got := s.Dict().String()
		want := mustDict(t, test.want).String()
		if got != want {
			t.Errorf("dict %s want %s got %s", test.key, want, got)
			continue
		}
		r, err := New(test.key)
		if err != nil {
			t.Errorf("new %s got error: %v", test.key, err)
			continue
		}
		err = r.FromDict(s.Dict())
		if err != nil {
			t.Errorf("round trip %s got error: %v", test.key, err)
			continue
		}
		if rr := r.Dict().String(); rr != got {
			t.Errorf("round trip %s want %s got %s", test.key, got, rr)
		}
	}
}

func TestScaleErrs(t *testing.T) {
	tests := []struct {
		key, raw string
		want     error
	}{
		{"nope", "", ErrNoVariant},
		{"lin", "{slope:1}", ErrNoField},
		{"lin", "{min:'low'}", ErrFieldValue},
		{"lin", "{reverse:1}", ErrFieldValue},
		{"lin", "{reverse:null}", ErrFieldValue},
		{"lin", "{scale_range_type:'Color'}", ErrReadOnly},
		{"time", "{min:'yesterday'}", ErrFieldValue},
		{"ord", "{domain:['a' 'b' 'a']}", ErrFieldValue},
		{"ord", "{domain:5}", ErrFieldValue},
		{"color", "{scale_type:'log'}", ErrFieldValue},
		{"color", "{mid:'half'}", ErrFieldValue},
	}
	for _, test := range tests {
		s, err := New(test.key)
		if err == nil && test.raw != "" {
			err = s.FromDict(mustDict(t, test.raw))
		}
		if err == nil {
			t.Errorf("apply %s %s want error %v", test.key, test.raw, test.want)
			continue
		}
		if !errors.Is(err, test.want) {
			t.Errorf("apply %s %s want error %v got %v",
				test.key, test.raw, test.want, err)
		}
	}
}

func TestScaleSet(t *testing.T) {
	s, err := New("lin")
	if err != nil {
		t.Fatalf("new lin got error: %v", err)
	}
	if d := s.Flush(); d != nil {
		t.Fatalf("fresh scale flush want nil got %s", d)
	}
	err = s.Set("min", lit.Int(0))
	if err != nil {
		t.Fatalf("set min got error: %v", err)
	}
	err = s.Set("max", lit.Int(10))
	if err != nil {
		t.Fatalf("set max got error: %v", err)
	}
	// setting the same value again must not mark the field dirty twice
	err = s.Set("min", lit.Real(0))
	if err != nil {
		t.Fatalf("set min got error: %v", err)
	}
	before := s.Dict().String()
	err = s.Set("slope", lit.Int(1))
	if err == nil || !errors.Is(err, ErrNoField) {
		t.Fatalf("set slope want field error got %v", err)
	}
	if got := s.Dict().String(); got != before {
		t.Errorf("failed set changed state want %s got %s", before, got)
	}
	if got := strings.Join(s.Dirty(), " "); got != "min max" {
		t.Errorf("dirty want min max got %s", got)
	}
	got := s.Flush().String()
	want := mustDict(t, "{min:0 max:10}").String()
	if got != want {
		t.Errorf("flush want %s got %s", want, got)
	}
	if d := s.Flush(); d != nil {
		t.Errorf("flushed scale flush want nil got %s", d)
	}
	err = s.Set("reverse", lit.Bool(true))
	if err != nil {
		t.Fatalf("set reverse got error: %v", err)
	}
	err = s.Set("min", nil)
	if err != nil {
		t.Fatalf("clear min got error: %v", err)
	}
	got = s.Flush().String()
	want = mustDict(t, "{reverse:true min:null}").String()
	if got != want {
		t.Errorf("flush want %s got %s", want, got)
	}
	got = s.Dict().String()
	want = mustDict(t, "{reverse:true allow_padding:true max:10 "+
		"scale_range_type:'numerical'}").String()
	if got != want {
		t.Errorf("dict want %s got %s", want, got)
	}
	// assigning the fixed value to a read-only field is a no-op
	err = s.Set("scale_range_type", lit.Str("numerical"))
	if err != nil {
		t.Errorf("set fixed range type got error: %v", err)
	}
	if len(s.Dirty()) != 0 {
		t.Errorf("dirty want none got %v", s.Dirty())
	}
}

func TestScaleGet(t *testing.T) {
	s, err := New("color")
	if err != nil {
		t.Fatalf("new color got error: %v", err)
	}
	l, err := s.Get("scale_range_type")
	if err != nil || l.(lit.Character).Char() != "Color" {
		t.Errorf("get range type want Color got %v %v", l, err)
	}
	l, err = s.Get("mid")
	if err != nil || !l.IsZero() {
		t.Errorf("get unset mid want null got %v %v", l, err)
	}
	_, err = s.Get("slope")
	if !errors.Is(err, ErrNoField) {
		t.Errorf("get slope want field error got %v", err)
	}
}
