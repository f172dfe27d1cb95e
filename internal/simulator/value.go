package simulator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "str"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "raw"
	}
}

// Value is a literal bound by an assignment. Exactly one of the typed
// constructors produces it; the zero Value is an empty string.
type Value struct {
	kind  Kind
	str   string
	num   float64
	n     int64
	isInt bool
	b     bool
}

func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func IntValue(n int64) Value { return Value{kind: KindNumber, n: n, isInt: true} }

func FloatValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// RawValue holds text that did not classify as any literal, usually an
// unresolved symbol or an expression the simulator does not evaluate.
func RawValue(s string) Value { return Value{kind: KindRaw, str: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) Render() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindNumber:
		if v.isInt {
			return strconv.FormatInt(v.n, 10)
		}
		return renderFloat(v.num)
	default:
		return v.str
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if v.isInt && o.isInt {
			return v.n == o.n
		}
		return v.float() == o.float()
	default:
		return v.str == o.str
	}
}

func (v Value) float() float64 {
	if v.isInt {
		return float64(v.n)
	}
	return v.num
}

var numberLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Classify coerces the right-hand side of an assignment. Order matters:
// double quotes, single quotes, booleans, numbers, then raw text.
func Classify(literal string) Value {
	s := strings.TrimSpace(literal)
	if isQuoted(s, '"') || isQuoted(s, '\'') {
		return StringValue(s[1 : len(s)-1])
	}
	switch s {
	case "True":
		return BoolValue(true)
	case "False":
		return BoolValue(false)
	}
	if numberLiteral.MatchString(s) {
		if !strings.ContainsAny(s, ".eE") {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return IntValue(n)
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return FloatValue(f)
		}
	}
	return RawValue(s)
}

func isQuoted(s string, q byte) bool {
	return len(s) >= 2 && s[0] == q && s[len(s)-1] == q
}

// renderFloat follows Python's repr for floats: shortest round-trip digits,
// integral values keep a trailing ".0".
func renderFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		digits := strings.TrimLeft(exp[1:], "0")
		if len(digits) < 2 {
			digits = strings.Repeat("0", 2-len(digits)) + digits
		}
		return mant + "e" + string(sign) + digits
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
