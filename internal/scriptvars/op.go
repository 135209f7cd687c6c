package scriptvars

import "fmt"

// Op is a variable mutation opcode. Codes are persisted in scripts.
type Op uint8

const (
	Assign     Op = 0
	Inc        Op = 1
	Dec        Op = 2
	AssignText Op = 3
	AppendText Op = 4
	MultiplyBy Op = 5
	DivideBy   Op = 6
	Mod        Op = 7
)

// Comp is a variable comparator. Codes are persisted in scripts.
// 4..7 are reserved so comparator codes never collide with Op codes.
type Comp uint8

const (
	Equals             Comp = 0
	Greater            Comp = 1
	Less               Comp = 2
	EqualsText         Comp = 3
	LessThanOrEqual    Comp = 8
	GreaterThanOrEqual Comp = 9
	Inequal            Comp = 10
)

var opNames = map[Op]string{
	Assign:     "Assign",
	Inc:        "Inc",
	Dec:        "Dec",
	AssignText: "AssignText",
	AppendText: "AppendText",
	MultiplyBy: "MultiplyBy",
	DivideBy:   "DivideBy",
	Mod:        "Mod",
}

var compNames = map[Comp]string{
	Equals:             "Equals",
	Greater:            "Greater",
	Less:               "Less",
	EqualsText:         "EqualsText",
	LessThanOrEqual:    "LessThanOrEqual",
	GreaterThanOrEqual: "GreaterThanOrEqual",
	Inequal:            "Inequal",
}

// Valid reports whether op is a known opcode.
func (op Op) Valid() bool {
	_, ok := opNames[op]
	return ok
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// IsText reports whether op works on text values.
func (op Op) IsText() bool {
	return op == AssignText || op == AppendText
}

// Valid reports whether c is a known comparator.
func (c Comp) Valid() bool {
	_, ok := compNames[c]
	return ok
}

func (c Comp) String() string {
	if name, ok := compNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Comp(%d)", uint8(c))
}

// ParseOp returns the opcode named name.
func ParseOp(name string) (Op, error) {
	for op, n := range opNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, name)
}

// ParseComp returns the comparator named name.
func ParseComp(name string) (Comp, error) {
	for c, n := range compNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownComp, name)
}
