package scriptvars

import "strconv"

// Kind is the type tag of a Value.
type Kind uint8

const (
	KindNone Kind = iota // never written
	KindInt
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindText:
		return "text"
	default:
		return "none"
	}
}

// Value is a script variable value: either a signed 64-bit integer or text.
// The zero Value is unset; it reads as 0 for integer ops and "" for text ops.
type Value struct {
	kind Kind
	n    int64
	s    string
}

// Int returns an integer Value.
func Int(n int64) Value {
	return Value{kind: KindInt, n: n}
}

// Text returns a text Value.
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// Kind returns the type tag.
func (v Value) Kind() Kind { return v.kind }

// IsSet reports whether the value was ever written.
func (v Value) IsSet() bool { return v.kind != KindNone }

// Int returns the integer payload (0 for non-integer values).
func (v Value) Int() int64 { return v.n }

// Text returns the text payload ("" for non-text values).
func (v Value) Text() string { return v.s }

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.n, 10)
	case KindText:
		return strconv.Quote(v.s)
	default:
		return "<unset>"
	}
}

// accepts reports whether v may be used where kind k is expected.
func (v Value) accepts(k Kind) bool {
	return v.kind == KindNone || v.kind == k
}
