package semantic

import (
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/types"
)

// inferUnknownTypes pushes target, the type the context of id expects,
// down into the dynamic parameters and NULL literals of id.  Nested
// queries are skipped; they infer their own types when validated.
func (a *analyzer) inferUnknownTypes(scope *Scope, id ast.ID, target *types.Type) error {
	if id == ast.Nil {
		return nil
	}
	switch n := a.tree.Node(id).(type) {
	case *ast.DynamicParam:
		if target.IsUnknown() {
			return a.errorf(id, IllegalNullLiteral, "Illegal use of dynamic parameter")
		}
		t := a.types.Nullable(target, true)
		a.setType(id, t)
		a.params[n.Index] = t
	case *ast.Literal:
		if !n.IsNull() {
			return nil
		}
		if target.IsUnknown() || target.IsNull() {
			return a.errorf(id, IllegalNullLiteral, "Illegal use of 'NULL'")
		}
		a.setType(id, a.types.Nullable(target, true))
	case *ast.List:
		if target.IsRow() && len(target.Fields) != len(n.Items) {
			// A degree mismatch is reported by the caller.
			return nil
		}
		for k, item := range n.Items {
			t := target
			if target.IsRow() {
				t = target.Fields[k].Type
			}
			if err := a.inferUnknownTypes(scope, item, t); err != nil {
				return err
			}
		}
	case *ast.Call:
		return a.inferCall(scope, id, n, target)
	}
	return nil
}

func (a *analyzer) inferCall(scope *Scope, id ast.ID, call *ast.Call, target *types.Type) error {
	kind := call.Op.Kind
	if kind.IsQuery() || kind.IsDML() {
		return nil
	}
	switch kind {
	case operator.MultisetQuery, operator.ScalarQuery, operator.Exists:
		return nil
	case operator.As, operator.Descending:
		return a.inferUnknownTypes(scope, call.Arg(0), target)
	case operator.Case:
		return a.inferCase(scope, id, call)
	case operator.Cast:
		t, err := a.deriveType(scope, call.Arg(1))
		if err != nil {
			return err
		}
		if a.isNull(call.Arg(0)) {
			a.setType(call.Arg(0), a.types.Nullable(t, true))
			return nil
		}
		return a.inferUnknownTypes(scope, call.Arg(0), t)
	case operator.Over:
		if agg := a.tree.Call(call.Arg(0)); agg != nil {
			if err := a.inferOperands(scope, agg, target); err != nil {
				return err
			}
		}
		return a.inferUnknownTypes(scope, call.Arg(1), types.Unknown)
	case operator.Window:
		for _, slot := range []int{operator.WindowPartition, operator.WindowOrder} {
			if err := a.inferUnknownTypes(scope, call.Arg(slot), types.Unknown); err != nil {
				return err
			}
		}
		return nil
	case operator.Preceding, operator.Following:
		return nil
	}
	if call.Op.IsAggregate() {
		scope = scope.operandScope(true)
	}
	return a.inferOperands(scope, call, target)
}

// inferOperands pushes the operand types computed by the operator's
// inference strategy into the operands of call.
func (a *analyzer) inferOperands(scope *Scope, call *ast.Call, target *types.Type) error {
	out := make([]*types.Type, len(call.Args))
	for k := range out {
		out[k] = types.Unknown
	}
	if call.Op.Infer != nil {
		b := &operator.CallBinding{Op: call.Op, Types: a.types, Operands: make([]*types.Type, len(call.Args))}
		for k, arg := range call.Args {
			b.Operands[k] = types.Unknown
			if arg != ast.Nil && !a.tree.Kind(arg).IsQuery() {
				b.Operands[k] = a.deriveSoft(scope, arg)
			}
		}
		call.Op.Infer(b, target, out)
	}
	for k, arg := range call.Args {
		if err := a.inferUnknownTypes(scope, arg, out[k]); err != nil {
			return err
		}
	}
	return nil
}

// inferCase gives WHEN conditions the boolean type and THEN and ELSE
// branches the type of the CASE itself.  A NULL ELSE is stamped directly.
func (a *analyzer) inferCase(scope *Scope, id ast.ID, call *ast.Call) error {
	boolean := a.types.Nullable(a.types.Sql(types.Boolean), true)
	for _, w := range a.items(call.Arg(operator.CaseWhen)) {
		if err := a.inferUnknownTypes(scope, w, boolean); err != nil {
			return err
		}
	}
	t, err := a.deriveType(scope, id)
	if err != nil {
		return err
	}
	for _, branch := range a.items(call.Arg(operator.CaseThen)) {
		if err := a.inferUnknownTypes(scope, branch, t); err != nil {
			return err
		}
	}
	els := call.Arg(operator.CaseElse)
	if a.isNull(els) {
		a.setType(els, t)
		return nil
	}
	return a.inferUnknownTypes(scope, els, t)
}
