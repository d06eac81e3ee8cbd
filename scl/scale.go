package scl

import (
	"github.com/mb0/xelf/bfr"
	"github.com/mb0/xelf/cor"
	"github.com/mb0/xelf/lit"
)

// Scale is a configured instance of a scale variant.
//
// Scales are not safe for concurrent use, all access must come from a single owner.
type Scale struct {
	*Variant
	vals  map[string]lit.Lit
	dirty []string
}

// New returns a new scale with defaults applied for the variant registered under key
// or an error if the catalog has no such variant.
func (c *Catalog) New(key string) (*Scale, error) {
	v := c.Lookup(key)
	if v == nil {
		return nil, cor.Errorf("%w %s", ErrNoVariant, key)
	}
	return newScale(v), nil
}

// Make returns a new scale of the first variant covering the domain and range class
// or an error if no registered variant covers the combination.
func (c *Catalog) Make(d Dom, r Rng) (*Scale, error) {
	v := c.Match(d, r)
	if v == nil {
		return nil, cor.Errorf("%w for %s to %s", ErrNoVariant, d, r)
	}
	return newScale(v), nil
}

// Defaults returns the canonical default dict for the variant registered under key.
func (c *Catalog) Defaults(key string) (*lit.Dict, error) {
	s, err := c.New(key)
	if err != nil {
		return nil, err
	}
	return s.Dict(), nil
}

// New returns a new scale of the builtin variant for key or an error.
func New(key string) (*Scale, error) { return Std.New(key) }

// Make returns a new scale of the first builtin variant covering the domain and range class.
func Make(d Dom, r Rng) (*Scale, error) { return Std.Make(d, r) }

// Defaults returns the canonical default dict of the builtin variant for key.
func Defaults(key string) (*lit.Dict, error) { return Std.Defaults(key) }

func newScale(v *Variant) *Scale {
	s := &Scale{Variant: v, vals: make(map[string]lit.Lit, len(v.Fields))}
	for _, f := range v.Fields {
		if f.RO() || f.Opt() {
			continue
		}
		if d := f.def(); d != nil {
			s.vals[f.Name] = d
		}
	}
	return s
}

// FromDict applies all entries of d as field updates in order and stops on the first
// failed field. Failed updates leave the already applied fields in place, callers that
// need all-or-nothing semantics discard the scale on error.
func (s *Scale) FromDict(d *lit.Dict) error {
	if d == nil {
		return nil
	}
	for _, x := range d.List {
		err := s.Set(x.Key, x.Lit)
		if err != nil {
			return err
		}
	}
	return nil
}

// Set assigns the value l to the field declared for key or returns an error.
//
// Unknown keys fail with ErrNoField, read-only fields with ErrReadOnly unless the value
// equals the fixed one, and values that do not match the field declaration with
// ErrFieldValue. A nil or null value clears an optional field. On failure the scale is
// unchanged. Changed keys are recorded until flushed, assignments that do not change
// the current value are not recorded.
func (s *Scale) Set(key string, l lit.Lit) error {
	f := s.Field(key)
	if f == nil {
		return cor.Errorf("%w %s for %s", ErrNoField, key, s.Key)
	}
	if f.RO() {
		if !isNull(l) {
			v, err := f.norm(l)
			if err == nil && v.String() == f.Def.String() {
				return nil
			}
		}
		return cor.Errorf("%w %s for %s", ErrReadOnly, key, s.Key)
	}
	if isNull(l) {
		if !f.Opt() {
			return cor.Errorf("%w for %s, %s is required", ErrFieldValue, s.Key, key)
		}
		if _, ok := s.vals[key]; ok {
			delete(s.vals, key)
			s.touch(key)
		}
		return nil
	}
	v, err := f.norm(l)
	if err != nil {
		return err
	}
	if old, ok := s.vals[key]; ok && old.String() == v.String() {
		return nil
	}
	s.vals[key] = v
	s.touch(key)
	return nil
}

// Get returns the current value of the field declared for key. Read-only fields return
// their fixed value, unset optional fields a null literal.
func (s *Scale) Get(key string) (lit.Lit, error) {
	f := s.Field(key)
	if f == nil {
		return nil, cor.Errorf("%w %s for %s", ErrNoField, key, s.Key)
	}
	if f.RO() {
		return f.Def, nil
	}
	if v, ok := s.vals[key]; ok {
		return v, nil
	}
	return lit.Nil, nil
}

// Dict returns the current scale state as flat dict in declared field order.
// Required fields always appear, optional fields only when set and read-only
// fields always with their fixed value.
func (s *Scale) Dict() *lit.Dict {
	kl := make([]lit.Keyed, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.RO() {
			kl = append(kl, lit.Keyed{Key: f.Name, Lit: f.Def})
			continue
		}
		if v, ok := s.vals[f.Name]; ok {
			kl = append(kl, lit.Keyed{Key: f.Name, Lit: v})
		}
	}
	return &lit.Dict{List: kl}
}

// Dirty returns the keys changed since the last flush in first-change order.
// The returned slice is owned by the scale and only valid until the next update.
func (s *Scale) Dirty() []string { return s.dirty }

// Flush returns the pending changes as dict and resets the dirty state, or nil if no
// field changed. Cleared optional fields appear with a null value so consumers can
// propagate the reset.
func (s *Scale) Flush() *lit.Dict {
	if len(s.dirty) == 0 {
		return nil
	}
	kl := make([]lit.Keyed, 0, len(s.dirty))
	for _, k := range s.dirty {
		if v, ok := s.vals[k]; ok {
			kl = append(kl, lit.Keyed{Key: k, Lit: v})
		} else {
			kl = append(kl, lit.Keyed{Key: k, Lit: lit.Nil})
		}
	}
	s.dirty = nil
	return &lit.Dict{List: kl}
}

func (s *Scale) String() string { return bfr.String(s) }
func (s *Scale) WriteBfr(b *bfr.Ctx) error {
	b.WriteString("{key:")
	b.Quote(s.Key)
	b.WriteString(" vals:")
	err := s.Dict().WriteBfr(b)
	if err != nil {
		return err
	}
	b.WriteByte('}')
	return nil
}

func (s *Scale) touch(key string) {
	for _, k := range s.dirty {
		if k == key {
			return
		}
	}
	s.dirty = append(s.dirty, key)
}

func isNull(l lit.Lit) bool {
	return l == nil || l == lit.Nil || l.String() == "null"
}
