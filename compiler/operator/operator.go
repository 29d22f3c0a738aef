// Package operator describes SQL operators and functions: their syntax,
// precedence, arity and the strategies used to infer and check types.
package operator

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Operator describes an operator or function.  Operators are values; the
// behavior that varies between them is carried by the strategy fields.
type Operator struct {
	Name      string
	Kind      Kind
	Syntax    Syntax
	LeftPrec  int
	RightPrec int
	Count     OperandCount
	// Return infers the type of a call.  Operators with a nil Return
	// have their type derived by the validator according to Kind.
	Return ReturnTypeInference
	// Infer computes types for operands whose own type is unknown.
	Infer OperandTypeInference
	// Checker checks operand types.  A nil Checker admits anything.
	Checker OperandTypeChecker
	// Monotonic operators preserve the sort order of a monotonic operand
	// when their other operands are constant.
	Monotonic bool
	// Slots names the operand positions of special operators such as
	// SELECT so that they may be addressed by name.
	Slots []string

	unresolved bool
}

func (o *Operator) String() string {
	return o.Name
}

// IsAggregate is true for aggregate and ranking functions.
func (o *Operator) IsAggregate() bool {
	return o.Kind.IsAggregate()
}

// Slot returns the operand position of the named slot or -1.
func (o *Operator) Slot(name string) int {
	return slices.Index(o.Slots, name)
}

// Signature renders a call template with the given operand descriptions,
// e.g. "<NUMERIC> + <NUMERIC>" or "ABS(<NUMERIC>)".
func (o *Operator) Signature(operands []string) string {
	switch o.Syntax {
	case Binary:
		if len(operands) == 2 {
			return fmt.Sprintf("%s %s %s", operands[0], o.Name, operands[1])
		}
	case Prefix:
		if len(operands) == 1 {
			return fmt.Sprintf("%s %s", o.Name, operands[0])
		}
	case Postfix:
		if len(operands) == 1 {
			return fmt.Sprintf("%s %s", operands[0], o.Name)
		}
	case FunctionID:
		if len(operands) == 0 {
			return o.Name
		}
	}
	return fmt.Sprintf("%s(%s)", o.Name, strings.Join(operands, ", "))
}

var ErrPrecedence = errors.New("left precedence exceeds right precedence")

func (o *Operator) validate() error {
	if o.Name == "" {
		return errors.New("operator has no name")
	}
	if o.LeftPrec > o.RightPrec {
		return fmt.Errorf("operator %s: %w", o.Name, ErrPrecedence)
	}
	return nil
}

// precedence encodes a binding strength and associativity.  Left
// associative operators bind one step tighter on their right.
func precedence(prec int, leftAssoc bool) (int, int) {
	left := 2 * prec
	if leftAssoc {
		return left, left + 1
	}
	return left, left
}

// OperandCount constrains the number of operands of a call.
type OperandCount struct {
	Min int
	// Max is -1 when the count is unbounded.
	Max int
	// Set, when non-empty, enumerates the allowed counts.
	Set []int
}

func Exactly(n int) OperandCount { return OperandCount{Min: n, Max: n} }
func Range(min, max int) OperandCount { return OperandCount{Min: min, Max: max} }
func AtLeast(n int) OperandCount { return OperandCount{Min: n, Max: -1} }
func OneOf(counts ...int) OperandCount {
	return OperandCount{Min: slices.Min(counts), Max: slices.Max(counts), Set: counts}
}

// Allows reports whether a call with n operands satisfies c.
func (c OperandCount) Allows(n int) bool {
	if len(c.Set) > 0 {
		return slices.Contains(c.Set, n)
	}
	return n >= c.Min && (c.Max < 0 || n <= c.Max)
}

func (c OperandCount) String() string {
	switch {
	case len(c.Set) > 0:
		var s []string
		for _, n := range c.Set {
			s = append(s, fmt.Sprint(n))
		}
		return strings.Join(s, " or ")
	case c.Max < 0:
		return fmt.Sprintf("at least %d", c.Min)
	case c.Min == c.Max:
		return fmt.Sprint(c.Min)
	}
	return fmt.Sprintf("%d to %d", c.Min, c.Max)
}
