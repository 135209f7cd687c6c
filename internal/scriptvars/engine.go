package scriptvars

import (
	"errors"
	"fmt"
)

// Recoverable operation errors. The affected value is always left unchanged.
var (
	ErrTypeMismatch = errors.New("scriptvars: type mismatch")
	ErrDivideByZero = errors.New("scriptvars: division by zero")
	ErrUnknownOp    = errors.New("scriptvars: unknown op")
	ErrUnknownComp  = errors.New("scriptvars: unknown comparator")
)

// ApplyOp applies op with operand to cur and returns the new value.
// On error cur is returned unchanged, so replaying saved history never corrupts state.
// Integer arithmetic wraps on overflow.
func ApplyOp(cur Value, op Op, operand Value) (Value, error) {
	switch op {
	case Assign:
		if !operand.IsSet() || !cur.accepts(operand.kind) {
			return cur, mismatch(op.String(), cur, operand)
		}
		return operand, nil

	case AssignText, AppendText:
		if operand.kind != KindText || !cur.accepts(KindText) {
			return cur, mismatch(op.String(), cur, operand)
		}
		if op == AssignText {
			return operand, nil
		}
		return Text(cur.s + operand.s), nil

	case Inc, Dec, MultiplyBy, DivideBy, Mod:
		if operand.kind != KindInt || !cur.accepts(KindInt) {
			return cur, mismatch(op.String(), cur, operand)
		}
		a, b := cur.n, operand.n
		switch op {
		case Inc:
			return Int(a + b), nil
		case Dec:
			return Int(a - b), nil
		case MultiplyBy:
			return Int(a * b), nil
		}
		if b == 0 {
			return cur, fmt.Errorf("%w: %s %d by 0", ErrDivideByZero, op, a)
		}
		// MinInt64 / -1 wraps to MinInt64 and MinInt64 % -1 is 0; neither traps.
		if op == DivideBy {
			return Int(a / b), nil
		}
		return Int(a % b), nil
	}

	return cur, fmt.Errorf("%w: %d", ErrUnknownOp, uint8(op))
}

// ApplyComp evaluates v <comp> operand.
// Type mismatches and unknown comparators evaluate to false with an error.
func ApplyComp(v Value, comp Comp, operand Value) (bool, error) {
	switch comp {
	case EqualsText:
		if operand.kind != KindText || !v.accepts(KindText) {
			return false, mismatch(comp.String(), v, operand)
		}
		return v.s == operand.s, nil

	case Equals, Greater, Less, LessThanOrEqual, GreaterThanOrEqual, Inequal:
		if operand.kind != KindInt || !v.accepts(KindInt) {
			return false, mismatch(comp.String(), v, operand)
		}
		a, b := v.n, operand.n
		switch comp {
		case Equals:
			return a == b, nil
		case Greater:
			return a > b, nil
		case Less:
			return a < b, nil
		case LessThanOrEqual:
			return a <= b, nil
		case GreaterThanOrEqual:
			return a >= b, nil
		default:
			return a != b, nil
		}
	}

	return false, fmt.Errorf("%w: %d", ErrUnknownComp, uint8(comp))
}

// ApplyKeyOp is ApplyOp for the variable k. Predefined variables have a fixed
// kind: an unset value starts as that kind's zero value and operands of the
// other kind are rejected. Custom variables behave exactly like ApplyOp.
func ApplyKeyOp(k Key, cur Value, op Op, operand Value) (Value, error) {
	typed, err := typedFor(k, cur, op.String())
	if err != nil {
		return cur, err
	}
	next, err := ApplyOp(typed, op, operand)
	if err != nil {
		return cur, err
	}
	return next, nil
}

// ApplyKeyComp is ApplyComp for the variable k, with the same kind rules as ApplyKeyOp.
func ApplyKeyComp(k Key, v Value, comp Comp, operand Value) (bool, error) {
	typed, err := typedFor(k, v, comp.String())
	if err != nil {
		return false, err
	}
	return ApplyComp(typed, comp, operand)
}

func typedFor(k Key, v Value, what string) (Value, error) {
	kind := k.Kind()
	switch {
	case kind == KindNone:
		return v, nil
	case v.IsSet() && v.kind != kind:
		return v, fmt.Errorf("%w: %s on %s holding %s value", ErrTypeMismatch, what, k, v.kind)
	case v.IsSet():
		return v, nil
	case kind == KindText:
		return Text(""), nil
	default:
		return Int(0), nil
	}
}

func mismatch(what string, cur, operand Value) error {
	return fmt.Errorf("%w: %s with %s operand on %s value", ErrTypeMismatch, what, operand.kind, cur.kind)
}
