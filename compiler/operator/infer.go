package operator

import "github.com/brimdata/sqlsem/types"

// OperandTypeInference fills out with the expected type of each operand
// given the call's known return type.  Entries for operands whose type is
// already known may be left as is.
type OperandTypeInference func(b *CallBinding, ret *types.Type, out []*types.Type)

// FirstKnown gives every operand the type of the first operand whose type
// is known.
func FirstKnown(b *CallBinding, _ *types.Type, out []*types.Type) {
	known := types.Unknown
	for _, t := range b.Operands {
		if !t.IsUnknown() && !t.IsNull() {
			known = t
			break
		}
	}
	for k := range out {
		out[k] = known
	}
}

// ReturnType gives every operand the call's return type.  If the return
// type is a record with one field per operand, each operand gets the type
// of its field.
func ReturnType(_ *CallBinding, ret *types.Type, out []*types.Type) {
	if ret.IsRow() && len(ret.Fields) == len(out) {
		for k := range out {
			out[k] = ret.Fields[k].Type
		}
		return
	}
	for k := range out {
		out[k] = ret
	}
}

// BooleanOperands gives every operand type BOOLEAN.
func BooleanOperands(b *CallBinding, _ *types.Type, out []*types.Type) {
	for k := range out {
		out[k] = b.Types.Nullable(b.Types.Sql(types.Boolean), true)
	}
}

// Varchar1024 gives every operand type VARCHAR(1024).  It serves operators
// such as IS NULL that accept any operand.
func Varchar1024(b *CallBinding, _ *types.Type, out []*types.Type) {
	for k := range out {
		out[k] = b.Types.Nullable(b.Types.SqlPrecision(types.Varchar, 1024), true)
	}
}
