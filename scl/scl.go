package scl

import (
	"strings"
	"time"

	"github.com/mb0/xelf/bfr"
	"github.com/mb0/xelf/cor"
	"github.com/mb0/xelf/lit"
)

// Common errors returned by catalog and scale operations. Call sites wrap them
// with details, use errors.Is to test for them.
var (
	ErrNoVariant  = cor.Error("no scale variant")
	ErrNoField    = cor.Error("no scale field")
	ErrFieldValue = cor.Error("invalid scale field value")
	ErrReadOnly   = cor.Error("read-only scale field")
)

// Dom is the domain value class of a scale variant.
type Dom uint32

const (
	DomNum Dom = 1 << iota
	DomTime
	DomOrd
)

func (d Dom) String() string {
	switch d {
	case DomNum:
		return "num"
	case DomTime:
		return "time"
	case DomOrd:
		return "ord"
	}
	return "invalid"
}

// Rng is the range value class of a scale variant.
type Rng uint32

const (
	RngNum Rng = 1 << iota
	RngColor
)

func (r Rng) String() string {
	switch r {
	case RngNum:
		return "num"
	case RngColor:
		return "color"
	}
	return "invalid"
}

// RangeType returns the synced range type tag. The values are wire constants
// expected by the renderer.
func (r Rng) RangeType() string {
	if r == RngColor {
		return "Color"
	}
	return "numerical"
}

// ParseDom returns the domain class named s or an error.
func ParseDom(s string) (Dom, error) {
	switch s {
	case "num":
		return DomNum, nil
	case "time":
		return DomTime, nil
	case "ord":
		return DomOrd, nil
	}
	return 0, cor.Errorf("unknown domain class %q", s)
}

// ParseRng returns the range class named s or an error.
func ParseRng(s string) (Rng, error) {
	switch s {
	case "num":
		return RngNum, nil
	case "color":
		return RngColor, nil
	}
	return 0, cor.Errorf("unknown range class %q", s)
}

// Bit is a bit set used for a number of field options.
type Bit uint64

const (
	// BitOpt marks a field without value that is only synced once set.
	BitOpt Bit = 1 << iota
	// BitUniq rejects duplicate elements in list fields.
	BitUniq
	// BitRO marks a field fixed by the variant that cannot be assigned.
	BitRO
)

// Typ identifies the literal kind a field accepts.
type Typ uint32

const (
	TypBool Typ = 1 << iota
	TypReal
	TypStr
	TypTime
	TypList
)

func (t Typ) String() string {
	switch t {
	case TypBool:
		return "bool"
	case TypReal:
		return "real"
	case TypStr:
		return "str"
	case TypTime:
		return "time"
	case TypList:
		return "list"
	}
	return "invalid"
}

// Field declares one synced scale parameter.
type Field struct {
	Name string
	Typ  Typ
	Bits Bit
	// Def is the default value for required fields and the fixed value for read-only fields.
	Def lit.Lit
	// Enum restricts str fields to a list of allowed values.
	Enum []string
}

func (f *Field) Opt() bool { return f.Bits&BitOpt != 0 }
func (f *Field) RO() bool  { return f.Bits&BitRO != 0 }

// def returns the value a new scale starts with for this field.
func (f *Field) def() lit.Lit {
	if f.Typ == TypList {
		return &lit.List{}
	}
	return f.Def
}

// norm checks l against the field declaration and returns the value in canonical form.
// Time values are character literals in RFC 3339 form, the shape they sync in.
func (f *Field) norm(l lit.Lit) (lit.Lit, error) {
	switch f.Typ {
	case TypBool:
		if v, ok := l.(lit.Bool); ok {
			return v, nil
		}
	case TypReal:
		if v, ok := l.(lit.Numeric); ok {
			return lit.Real(v.Num()), nil
		}
	case TypStr:
		if v, ok := l.(lit.Character); ok {
			s := v.Char()
			if len(f.Enum) > 0 && !hasStr(f.Enum, s) {
				return nil, cor.Errorf("%w %s for %s, expect one of %s",
					ErrFieldValue, s, f.Name, strings.Join(f.Enum, ", "))
			}
			return lit.Str(s), nil
		}
	case TypTime:
		if v, ok := l.(lit.Character); ok {
			s := v.Char()
			_, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, cor.Errorf("%w for %s: %v", ErrFieldValue, f.Name, err)
			}
			return lit.Str(s), nil
		}
	case TypList:
		if v, ok := l.(lit.Indexer); ok {
			return f.normList(v)
		}
	}
	return nil, cor.Errorf("%w for %s, expect %s got %T", ErrFieldValue, f.Name, f.Typ, l)
}

// normList normalizes list elements to character or numeric values and checks uniqueness
// for fields with the uniq bit. Element order is meaningful and preserved.
func (f *Field) normList(idx lit.Indexer) (lit.Lit, error) {
	res := &lit.List{Data: make([]lit.Lit, 0, idx.Len())}
	var seen map[string]struct{}
	if f.Bits&BitUniq != 0 {
		seen = make(map[string]struct{}, idx.Len())
	}
	err := idx.IterIdx(func(i int, el lit.Lit) error {
		var v lit.Lit
		switch e := el.(type) {
		case lit.Character:
			v = lit.Str(e.Char())
		case lit.Numeric:
			v = lit.Real(e.Num())
		default:
			return cor.Errorf("%w for %s, element %d is %T", ErrFieldValue, f.Name, i, el)
		}
		if seen != nil {
			k := v.String()
			if _, ok := seen[k]; ok {
				return cor.Errorf("%w for %s, duplicate element %s", ErrFieldValue, f.Name, v)
			}
			seen[k] = struct{}{}
		}
		res.Data = append(res.Data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (f *Field) WriteBfr(b *bfr.Ctx) error {
	b.WriteString("{name:")
	b.Quote(f.Name)
	b.Fmt(" typ:'%s'", f.Typ)
	if f.Bits != 0 {
		b.Fmt(" bits:%d", f.Bits)
	}
	if f.Def != nil {
		b.WriteString(" def:")
		err := f.Def.WriteBfr(b)
		if err != nil {
			return err
		}
	}
	if len(f.Enum) > 0 {
		b.WriteString(" enum:[")
		for i, s := range f.Enum {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.Quote(s)
		}
		b.WriteByte(']')
	}
	b.WriteByte('}')
	return nil
}

// Variant describes one concrete scale kind with its synced fields.
//
// The view and model tags are wire names expected by the browser side renderer and must be
// passed along unchanged when routing state to view implementations.
type Variant struct {
	Key    string
	Dom    Dom
	Rng    Rng
	View   string
	Model  string
	Fields []*Field
}

// Field returns the field declared for key or nil.
func (v *Variant) Field(key string) *Field {
	if v != nil {
		for _, f := range v.Fields {
			if f.Name == key {
				return f
			}
		}
	}
	return nil
}

func (v *Variant) String() string { return bfr.String(v) }
func (v *Variant) WriteBfr(b *bfr.Ctx) error {
	b.WriteString("{key:")
	b.Quote(v.Key)
	b.Fmt(" dom:'%s' rng:'%s' view:", v.Dom, v.Rng)
	b.Quote(v.View)
	b.WriteString(" model:")
	b.Quote(v.Model)
	b.WriteString(" fields:[")
	for i, f := range v.Fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		err := f.WriteBfr(b)
		if err != nil {
			return err
		}
	}
	b.WriteString("]}")
	return nil
}

// Catalog is a named, ordered collection of registered scale variants.
type Catalog struct {
	Name string
	List []*Variant
}

// Lookup returns the variant registered for key or nil. Key matches are checked against the
// variant key and case-insensitively against the view and model tags, so the names the renderer
// sends can be resolved directly.
func (c *Catalog) Lookup(key string) *Variant {
	if c == nil || key == "" {
		return nil
	}
	k := strings.ToLower(key)
	for _, v := range c.List {
		if v.Key == k || strings.ToLower(v.View) == k || strings.ToLower(v.Model) == k {
			return v
		}
	}
	return nil
}

// Match returns the first variant covering the domain and range class or nil.
func (c *Catalog) Match(d Dom, r Rng) *Variant {
	if c != nil {
		for _, v := range c.List {
			if v.Dom == d && v.Rng == r {
				return v
			}
		}
	}
	return nil
}

// Register adds variant v to the catalog or returns an error for malformed or
// conflicting descriptors.
func (c *Catalog) Register(v *Variant) error {
	if v == nil || v.Key == "" || v.View == "" || v.Model == "" {
		return cor.Errorf("register: incomplete variant descriptor")
	}
	if !cor.IsKey(v.Key) {
		return cor.Errorf("register: invalid variant key %s", v.Key)
	}
	if len(v.Fields) == 0 {
		return cor.Errorf("register: variant %s has no fields", v.Key)
	}
	if o := c.Lookup(v.Key); o != nil {
		return cor.Errorf("register: variant %s already registered", v.Key)
	}
	names := make(map[string]struct{}, len(v.Fields))
	for _, f := range v.Fields {
		if f.Name == "" || !cor.IsKey(f.Name) {
			return cor.Errorf("register: invalid field name %q in %s", f.Name, v.Key)
		}
		if _, ok := names[f.Name]; ok {
			return cor.Errorf("register: duplicate field %s in %s", f.Name, v.Key)
		}
		names[f.Name] = struct{}{}
		if f.RO() && f.Def == nil {
			return cor.Errorf("register: read-only field %s in %s needs a value",
				f.Name, v.Key)
		}
		if len(f.Enum) > 0 && f.Typ != TypStr {
			return cor.Errorf("register: enum on %s field %s in %s",
				f.Typ, f.Name, v.Key)
		}
		if f.Bits&BitUniq != 0 && f.Typ != TypList {
			return cor.Errorf("register: uniq on %s field %s in %s",
				f.Typ, f.Name, v.Key)
		}
	}
	c.List = append(c.List, v)
	return nil
}

// Std holds the builtin scale variants.
var Std = stdCatalog()

// Lookup returns the builtin variant for key or nil.
func Lookup(key string) *Variant { return Std.Lookup(key) }

// Match returns the first builtin variant covering the domain and range class or nil.
func Match(d Dom, r Rng) *Variant { return Std.Match(d, r) }

// Register adds variant v to the builtin catalog.
func Register(v *Variant) error { return Std.Register(v) }

func stdCatalog() *Catalog {
	c := &Catalog{Name: "scl"}
	vs := []*Variant{
		{Key: "lin", Dom: DomNum, Rng: RngNum,
			View: "LinearScale", Model: "LinearScaleModel",
			Fields: fields(base(),
				opt("min", TypReal), opt("max", TypReal), rng(RngNum))},
		{Key: "log", Dom: DomNum, Rng: RngNum,
			View: "LogScale", Model: "LogScaleModel",
			Fields: fields(base(),
				opt("min", TypReal), opt("max", TypReal), rng(RngNum))},
		{Key: "time", Dom: DomTime, Rng: RngNum,
			View: "DateScale", Model: "DateScaleModel",
			Fields: fields(base(),
				opt("min", TypTime), opt("max", TypTime),
				&Field{Name: "date_format", Typ: TypStr, Def: lit.Str("")},
				rng(RngNum))},
		{Key: "ord", Dom: DomOrd, Rng: RngNum,
			View: "OrdinalScale", Model: "OrdinalScaleModel",
			Fields: fields(base(),
				&Field{Name: "domain", Typ: TypList, Bits: BitUniq},
				rng(RngNum))},
		{Key: "color", Dom: DomNum, Rng: RngColor,
			View: "LinearColorScale", Model: "LinearColorScaleModel",
			Fields: fields(colorBase(), rng(RngColor))},
		{Key: "timecolor", Dom: DomTime, Rng: RngColor,
			View: "DateColorScale", Model: "DateColorScaleModel",
			Fields: fields(base(),
				&Field{Name: "scale_type", Typ: TypStr,
					Def: lit.Str("linear"), Enum: []string{"linear"}},
				&Field{Name: "colors", Typ: TypList},
				opt("min", TypTime), opt("max", TypTime), opt("mid", TypStr),
				&Field{Name: "scheme", Typ: TypStr, Def: lit.Str("RdYlGn")},
				&Field{Name: "date_format", Typ: TypStr, Def: lit.Str("")},
				rng(RngColor))},
		{Key: "ordcolor", Dom: DomOrd, Rng: RngColor,
			View: "OrdinalColorScale", Model: "OrdinalScaleModel",
			Fields: fields(colorBase(),
				&Field{Name: "domain", Typ: TypList, Bits: BitUniq},
				rng(RngColor))},
	}
	for _, v := range vs {
		err := c.Register(v)
		if err != nil {
			panic(err)
		}
	}
	return c
}

func base() []*Field {
	return []*Field{
		{Name: "reverse", Typ: TypBool, Def: lit.Bool(false)},
		{Name: "allow_padding", Typ: TypBool, Def: lit.Bool(true)},
	}
}

func colorBase() []*Field {
	return fields(base(),
		&Field{Name: "scale_type", Typ: TypStr,
			Def: lit.Str("linear"), Enum: []string{"linear"}},
		&Field{Name: "colors", Typ: TypList},
		opt("min", TypReal), opt("max", TypReal), opt("mid", TypReal),
		&Field{Name: "scheme", Typ: TypStr, Def: lit.Str("RdYlGn")},
	)
}

func fields(head []*Field, tail ...*Field) []*Field { return append(head, tail...) }

func opt(name string, t Typ) *Field { return &Field{Name: name, Typ: t, Bits: BitOpt} }

func rng(r Rng) *Field {
	return &Field{Name: "scale_range_type", Typ: TypStr, Bits: BitRO,
		Def: lit.Str(r.RangeType())}
}

func hasStr(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
