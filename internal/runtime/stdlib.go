package runtime

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Fault is the distinguished runtime-evaluator error family of §7:
// AssertionFailed, TypeMismatch, Overflow, DivisionByZero. Each carries a
// Kind so the scheduler's fault policy can be consulted without string
// matching on Error().
type Fault struct {
	Kind    FaultKind
	Message string
}

type FaultKind string

const (
	FaultAssertionFailed FaultKind = "AssertionFailed"
	FaultTypeMismatch    FaultKind = "TypeMismatch"
	FaultOverflow        FaultKind = "Overflow"
	FaultDivisionByZero  FaultKind = "DivisionByZero"
)

func (f *Fault) Error() string { return fmt.Sprintf("%s: %s", f.Kind, f.Message) }

func assertionFailed(format string, args ...any) *Fault {
	return &Fault{Kind: FaultAssertionFailed, Message: fmt.Sprintf(format, args...)}
}

// BuiltinFunc is one standard-library function, dispatched by name the same
// way tunascript's builtIn_* table is: a flat name-keyed registry of
// fixed-arity Go functions operating on the tagged Value type.
type BuiltinFunc func(args []Value) (Value, error)

// Builtins is the standard library exposed to bytecode: arithmetic, string,
// time, and assertion functions (§4.6).
var Builtins = map[string]BuiltinFunc{
	"ADD": func(a []Value) (Value, error) { return arith(a, func(x, y float64) float64 { return x + y }) },
	"SUB": func(a []Value) (Value, error) { return arith(a, func(x, y float64) float64 { return x - y }) },
	"MUL": func(a []Value) (Value, error) { return arith(a, func(x, y float64) float64 { return x * y }) },
	"DIV": builtinDiv,
	"MOD": builtinMod,

	"CONCAT":  builtinConcat,
	"LEN":     builtinLen,
	"UPPER":   func(a []Value) (Value, error) { return StringValue(strings.ToUpper(a[0].S)), nil },
	"LOWER":   func(a []Value) (Value, error) { return StringValue(strings.ToLower(a[0].S)), nil },

	"TIME_MS": func(a []Value) (Value, error) { return IntValue(time.Now().UnixMilli()), nil },

	"ASSERT_TRUE":  builtinAssertTrue,
	"ASSERT_FALSE": builtinAssertFalse,
	"ASSERT_EQUAL": builtinAssertEqual,
	"ASSERT_NEAR":  builtinAssertNear,

	"EQ": func(a []Value) (Value, error) { return cmp2(a, func(x, y Value) bool { return x.Equal(y) }) },
	"NE": func(a []Value) (Value, error) { return cmp2(a, func(x, y Value) bool { return !x.Equal(y) }) },
	"LT": func(a []Value) (Value, error) { return ordered(a, func(x, y float64) bool { return x < y }) },
	"GT": func(a []Value) (Value, error) { return ordered(a, func(x, y float64) bool { return x > y }) },
	"LE": func(a []Value) (Value, error) { return ordered(a, func(x, y float64) bool { return x <= y }) },
	"GE": func(a []Value) (Value, error) { return ordered(a, func(x, y float64) bool { return x >= y }) },

	"AND": func(a []Value) (Value, error) { return logic2(a, func(x, y bool) bool { return x && y }) },
	"OR":  func(a []Value) (Value, error) { return logic2(a, func(x, y bool) bool { return x || y }) },
	"XOR": func(a []Value) (Value, error) { return logic2(a, func(x, y bool) bool { return x != y }) },
	"NOT": builtinNot,
}

func cmp2(args []Value, pred func(x, y Value) bool) (Value, error) {
	if len(args) != 2 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "comparison builtin requires 2 arguments"}
	}
	return BoolValue(pred(args[0], args[1])), nil
}

// ordered implements the relational operators (<, >, <=, >=) over the
// common float64 widening arith already uses for +-*/.
func ordered(args []Value, pred func(x, y float64) bool) (Value, error) {
	if len(args) != 2 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "comparison builtin requires 2 arguments"}
	}
	return BoolValue(pred(args[0].Real(), args[1].Real())), nil
}

func logic2(args []Value, op func(x, y bool) bool) (Value, error) {
	if len(args) != 2 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "boolean builtin requires 2 arguments"}
	}
	return BoolValue(op(args[0].Bool(), args[1].Bool())), nil
}

func builtinNot(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "NOT requires 1 argument"}
	}
	return BoolValue(!args[0].Bool()), nil
}

func arith(args []Value, op func(x, y float64) float64) (Value, error) {
	if len(args) != 2 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "arithmetic builtin requires 2 arguments"}
	}
	x, y := args[0], args[1]
	if x.Kind == KindInt && y.Kind == KindInt {
		return IntValue(int64(op(float64(x.I), float64(y.I)))), nil
	}
	return RealValue(op(x.Real(), y.Real())), nil
}

func builtinDiv(args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "DIV requires 2 arguments"}
	}
	x, y := args[0], args[1]
	if y.Real() == 0 {
		return Value{}, &Fault{Kind: FaultDivisionByZero, Message: "division by zero"}
	}
	if x.Kind == KindInt && y.Kind == KindInt {
		return IntValue(x.I / y.I), nil
	}
	return RealValue(x.Real() / y.Real()), nil
}

func builtinMod(args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "MOD requires 2 arguments"}
	}
	x, y := args[0], args[1]
	if y.Int() == 0 {
		return Value{}, &Fault{Kind: FaultDivisionByZero, Message: "modulo by zero"}
	}
	return IntValue(x.Int() % y.Int()), nil
}

func builtinConcat(args []Value) (Value, error) {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(a.String())
	}
	return StringValue(sb.String()), nil
}

func builtinLen(args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KindString {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "LEN requires 1 string argument"}
	}
	return IntValue(int64(len(args[0].S))), nil
}

// builtinAssertTrue implements §4.6's ASSERT_TRUE(x).
func builtinAssertTrue(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "ASSERT_TRUE requires 1 argument"}
	}
	x := args[0]
	if x.Kind != KindBool {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "ASSERT_TRUE requires a BOOL argument"}
	}
	if !x.B {
		return Value{}, assertionFailed("expected TRUE, got FALSE")
	}
	return BoolValue(true), nil
}

// builtinAssertFalse is ASSERT_TRUE's symmetric counterpart.
func builtinAssertFalse(args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "ASSERT_FALSE requires 1 argument"}
	}
	x := args[0]
	if x.Kind != KindBool {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "ASSERT_FALSE requires a BOOL argument"}
	}
	if x.B {
		return Value{}, assertionFailed("expected FALSE, got TRUE")
	}
	return BoolValue(true), nil
}

// builtinAssertEqual implements ASSERT_EQUAL(expected, actual): numeric,
// boolean, or enum equality after common-type coercion.
func builtinAssertEqual(args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "ASSERT_EQUAL requires 2 arguments"}
	}
	expected, actual := args[0], args[1]
	if !expected.Equal(actual) {
		return Value{}, assertionFailed("expected %s, got %s", expected.String(), actual.String())
	}
	return BoolValue(true), nil
}

// builtinAssertNear implements ASSERT_NEAR(expected, actual, delta): f64
// comparison, rejecting a negative delta or non-finite inputs with Overflow.
func builtinAssertNear(args []Value) (Value, error) {
	if len(args) != 3 {
		return Value{}, &Fault{Kind: FaultTypeMismatch, Message: "ASSERT_NEAR requires 3 arguments"}
	}
	expected, actual, delta := args[0], args[1], args[2]
	if !expected.IsFinite() || !actual.IsFinite() || !delta.IsFinite() {
		return Value{}, &Fault{Kind: FaultOverflow, Message: "ASSERT_NEAR requires finite operands"}
	}
	if delta.Real() < 0 {
		return Value{}, &Fault{Kind: FaultOverflow, Message: "ASSERT_NEAR delta must not be negative"}
	}
	diff := math.Abs(expected.Real() - actual.Real())
	if diff > delta.Real() {
		return Value{}, assertionFailed("expected %s near %s (delta %s), got %s", expected.String(), expected.String(), delta.String(), actual.String())
	}
	return BoolValue(true), nil
}
