package operator

import "github.com/brimdata/sqlsem/types"

// CallBinding presents a call's operator and its derived operand types to
// the type strategies.
type CallBinding struct {
	Op    *Operator
	Types *types.Factory
	// Operands holds the derived type of each operand.
	Operands []*types.Type
	// Nulls marks operands that are NULL literals.
	Nulls []bool
}

func (b *CallBinding) Count() int {
	return len(b.Operands)
}

func (b *CallBinding) Type(i int) *types.Type {
	return b.Operands[i]
}

// IsNull reports whether operand i is a NULL literal.
func (b *CallBinding) IsNull(i int) bool {
	return i < len(b.Nulls) && b.Nulls[i]
}
