// Package runtime implements the deterministic cyclic runtime core of
// §4.6: the I/O image, forced-variable overlay, standard library,
// and bytecode evaluator that execute a loaded bundle one cycle at a time.
package runtime

import (
	"fmt"
	"math"
)

// ValueKind tags the elementary runtime representation a Value holds, the
// same string-tagged-union shape as tunascript's Value, narrowed to the ST
// elementary type set instead of tunascript's three-way Str/Num/Bool split.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindInt
	KindReal
	KindString
)

// Value is a dynamically-typed runtime value produced by the bytecode
// evaluator or read from the I/O image.
type Value struct {
	Kind ValueKind
	I    int64
	F    float64
	S    string
	B    bool
}

func BoolValue(b bool) Value   { return Value{Kind: KindBool, B: b} }
func IntValue(i int64) Value   { return Value{Kind: KindInt, I: i} }
func RealValue(f float64) Value { return Value{Kind: KindReal, F: f} }
func StringValue(s string) Value { return Value{Kind: KindString, S: s} }

// Bool returns v coerced to bool, following the same widen-on-read
// convention as tunascript's Value.Bool: numeric zero is false, any other
// numeric value is true.
func (v Value) Bool() bool {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindInt:
		return v.I != 0
	case KindReal:
		return v.F != 0
	case KindString:
		return v.S != ""
	}
	return false
}

// Real returns v coerced to float64.
func (v Value) Real() float64 {
	switch v.Kind {
	case KindReal:
		return v.F
	case KindInt:
		return float64(v.I)
	case KindBool:
		if v.B {
			return 1
		}
		return 0
	}
	return 0
}

// Int returns v coerced to int64.
func (v Value) Int() int64 {
	switch v.Kind {
	case KindInt:
		return v.I
	case KindReal:
		return int64(v.F)
	case KindBool:
		if v.B {
			return 1
		}
		return 0
	}
	return 0
}

// String renders v for diagnostic messages (ASSERT_* text, event logs).
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("%v", v.B)
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindReal:
		return fmt.Sprintf("%g", v.F)
	case KindString:
		return v.S
	}
	return "<invalid>"
}

// Equal reports value equality after the same common-type coercion
// ASSERT_EQUAL uses: numeric kinds compare as float64, others compare
// same-kind.
func (v Value) Equal(other Value) bool {
	if (v.Kind == KindInt || v.Kind == KindReal) && (other.Kind == KindInt || other.Kind == KindReal) {
		return v.Real() == other.Real()
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.B == other.B
	case KindString:
		return v.S == other.S
	}
	return false
}

// IsFinite reports whether a real Value is neither NaN nor infinite, used by
// ASSERT_NEAR to reject non-finite inputs with Overflow.
func (v Value) IsFinite() bool {
	if v.Kind != KindReal && v.Kind != KindInt {
		return true
	}
	f := v.Real()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
