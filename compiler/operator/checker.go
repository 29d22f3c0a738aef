package operator

import (
	"fmt"

	"github.com/brimdata/sqlsem/types"
)

// OperandTypeChecker decides whether a call's operand types are
// admissible and describes the admissible signatures for diagnostics.
type OperandTypeChecker interface {
	Check(*CallBinding) bool
	Signatures(*Operator) []string
}

// Families is a positional checker: operand i must belong to family i.
// When there are more operands than families the last family repeats.
type Families []types.Family

func (f Families) family(i int) types.Family {
	if i < len(f) {
		return f[i]
	}
	return f[len(f)-1]
}

func (f Families) Check(b *CallBinding) bool {
	if len(f) == 0 {
		return b.Count() == 0
	}
	for k, t := range b.Operands {
		if !f.family(k).Contains(t) {
			return false
		}
	}
	return true
}

func (f Families) Signatures(op *Operator) []string {
	var operands []string
	for _, fam := range f {
		operands = append(operands, fmt.Sprintf("<%s>", fam))
	}
	return []string{op.Signature(operands)}
}

// AnyOf passes when any of its checkers passes.
type AnyOf []OperandTypeChecker

func (o AnyOf) Check(b *CallBinding) bool {
	for _, c := range o {
		if c.Check(b) {
			return true
		}
	}
	return false
}

func (o AnyOf) Signatures(op *Operator) []string {
	var sigs []string
	for _, c := range o {
		sigs = append(sigs, c.Signatures(op)...)
	}
	return sigs
}

// Comparable requires all operands to be mutually comparable.  Ordered
// additionally excludes types with no ordering.
type Comparable struct {
	N       int
	Ordered bool
}

func (c Comparable) Check(b *CallBinding) bool {
	if b.Count() != c.N {
		return false
	}
	for k := range b.Operands {
		t := b.Type(k)
		if c.Ordered && t.IsMultiset() {
			return false
		}
		for j := k + 1; j < b.Count(); j++ {
			if !types.CanCompare(t, b.Type(j)) {
				return false
			}
		}
	}
	return true
}

func (c Comparable) Signatures(op *Operator) []string {
	label := "<COMPARABLE_TYPE>"
	if c.Ordered {
		label = "<COMPARABLE_ORDERED_TYPE>"
	}
	operands := make([]string, c.N)
	for k := range operands {
		operands[k] = label
	}
	return []string{op.Signature(operands)}
}

// SameString requires N operands that are all character strings or all
// binary strings.
type SameString struct {
	N int
}

func (s SameString) Check(b *CallBinding) bool {
	if b.Count() != s.N {
		return false
	}
	var want types.Family = -1
	for _, t := range b.Operands {
		if t.IsNull() {
			continue
		}
		var fam types.Family
		switch {
		case t.IsChar():
			fam = types.FamilyCharacter
		case t.IsBinary():
			fam = types.FamilyBinary
		case t.Name == types.Any:
			continue
		default:
			return false
		}
		if want >= 0 && fam != want {
			return false
		}
		want = fam
	}
	return true
}

func (s SameString) Signatures(op *Operator) []string {
	operands := make([]string, s.N)
	for k := range operands {
		operands[k] = "<STRING>"
	}
	return []string{op.Signature(operands)}
}

// SameInterval requires two intervals of the same kind.
type SameInterval struct{}

func (SameInterval) Check(b *CallBinding) bool {
	if b.Count() != 2 {
		return false
	}
	l, r := b.Type(0), b.Type(1)
	if !types.FamilyInterval.Contains(l) || !types.FamilyInterval.Contains(r) {
		return false
	}
	return l.IsNull() || r.IsNull() || l.Name == r.Name || l.Name == types.Any || r.Name == types.Any
}

func (SameInterval) Signatures(op *Operator) []string {
	return []string{op.Signature([]string{"<INTERVAL>", "<INTERVAL>"})}
}

// Commonly used checkers.
var (
	BooleanX2         = Families{types.FamilyBoolean, types.FamilyBoolean}
	BooleanX1         = Families{types.FamilyBoolean}
	NumericX1         = Families{types.FamilyNumeric}
	NumericX2         = Families{types.FamilyNumeric, types.FamilyNumeric}
	CharX1            = Families{types.FamilyCharacter}
	AnyX1             = Families{types.FamilyAny}
	AnyX2             = Families{types.FamilyAny, types.FamilyAny}
	NumericOrInterval = AnyOf{NumericX1, Families{types.FamilyInterval}}

	PlusChecker = AnyOf{
		NumericX2,
		SameInterval{},
		Families{types.FamilyDatetime, types.FamilyInterval},
		Families{types.FamilyInterval, types.FamilyDatetime},
	}
	MinusChecker = AnyOf{
		NumericX2,
		SameInterval{},
		Families{types.FamilyDatetime, types.FamilyInterval},
	}
	MultiplyChecker = AnyOf{
		NumericX2,
		Families{types.FamilyInterval, types.FamilyNumeric},
		Families{types.FamilyNumeric, types.FamilyInterval},
	}
	DivideChecker = AnyOf{
		NumericX2,
		Families{types.FamilyInterval, types.FamilyNumeric},
	}
	BetweenChecker = AnyOf{
		Families{types.FamilyNumeric, types.FamilyNumeric, types.FamilyNumeric},
		Families{types.FamilyCharacter, types.FamilyCharacter, types.FamilyCharacter},
		Families{types.FamilyBinary, types.FamilyBinary, types.FamilyBinary},
		Families{types.FamilyDatetime, types.FamilyDatetime, types.FamilyDatetime},
		Families{types.FamilyInterval, types.FamilyInterval, types.FamilyInterval},
	}
)
