package semantic

import (
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/types"
)

// validateJoin validates both sides of a join, checks that its condition
// agrees with the join type and validates the condition in the join's
// scope.
func (a *analyzer) validateJoin(id ast.ID, join *ast.Call) error {
	left, right := join.Arg(operator.JoinLeft), join.Arg(operator.JoinRight)
	if err := a.validateFrom(left); err != nil {
		return err
	}
	if err := a.validateFrom(right); err != nil {
		return err
	}
	natural := a.truth(join.Arg(operator.JoinNatural))
	condType := a.symbol(join.Arg(operator.JoinConditionType))
	if condType == "" {
		condType = operator.SymNone
	}
	cond := join.Arg(operator.JoinCondition)
	switch a.symbol(join.Arg(operator.JoinType)) {
	case operator.SymCross, operator.SymComma:
		if natural {
			return a.errorf(id, NaturalDisallowed, "Cannot specify NATURAL keyword with CROSS JOIN")
		}
		if condType != operator.SymNone {
			return a.errorf(cond, JoinConditionDisallowed, "Cannot specify condition (NATURAL keyword, or ON or USING clause) following CROSS JOIN")
		}
	default:
		if natural && condType != operator.SymNone {
			return a.errorf(cond, NaturalDisallowsOnOrUsing, "Cannot specify NATURAL keyword with ON or USING clause")
		}
		if !natural && condType == operator.SymNone {
			return a.errorf(id, JoinConditionRequired, "INNER, LEFT, RIGHT or FULL join requires a condition (NATURAL keyword or ON or USING clause)")
		}
	}
	leftNs, rightNs := a.fromNamespace(left), a.fromNamespace(right)
	if leftNs == nil || rightNs == nil {
		return a.errorf(id, Internal, "join input is not registered")
	}
	switch condType {
	case operator.SymOn:
		if err := a.validateCondition(a.joinScopes[id], cond, "ON", ConditionNotBoolean); err != nil {
			return err
		}
	case operator.SymUsing:
		for _, col := range a.items(cond) {
			ident := a.tree.Identifier(col)
			if ident == nil || !ident.IsSimple() {
				return a.errorf(col, Internal, "USING column must be a simple identifier")
			}
			if err := a.checkCommonColumn(col, ident.Last(), leftNs.rowType, rightNs.rowType); err != nil {
				return err
			}
		}
	}
	if natural {
		for _, f := range leftNs.rowType.Fields {
			if _, ok := a.field(rightNs.rowType, f.Name); ok {
				if err := a.checkCommonColumn(id, f.Name, leftNs.rowType, rightNs.rowType); err != nil {
					return err
				}
			}
		}
	}
	return a.validateNamespace(a.namespaces[id], nil)
}

// checkCommonColumn checks a USING or NATURAL column: it must appear on
// both sides with comparable types.
func (a *analyzer) checkCommonColumn(id ast.ID, name string, left, right *types.Type) error {
	l, lok := a.field(left, name)
	r, rok := a.field(right, name)
	if !lok || !rok {
		return a.errorf(id, UnknownIdentifier, "Column '%s' not found in any table", name)
	}
	if !types.CanCompare(l.Type, r.Type) {
		return a.errorf(id, ColumnTypeMismatch, "Column '%s' matched using NATURAL keyword or USING clause has incompatible types", name)
	}
	return nil
}

// joinRowType concatenates the row types of the two sides of a join.  The
// columns of a null-supplying side become nullable.
func (a *analyzer) joinRowType(id ast.ID) (*types.Type, error) {
	join := a.tree.Call(id)
	if join == nil {
		return nil, a.errorf(id, Internal, "join namespace on a non-join")
	}
	leftNullable, rightNullable := false, false
	switch a.symbol(join.Arg(operator.JoinType)) {
	case operator.SymLeft:
		rightNullable = true
	case operator.SymRight:
		leftNullable = true
	case operator.SymFull:
		leftNullable, rightNullable = true, true
	}
	var fields []types.Field
	for _, side := range []struct {
		id       ast.ID
		nullable bool
	}{{join.Arg(operator.JoinLeft), leftNullable}, {join.Arg(operator.JoinRight), rightNullable}} {
		ns := a.fromNamespace(side.id)
		if ns == nil {
			return nil, a.errorf(side.id, Internal, "join input is not registered")
		}
		if err := a.validateNamespace(ns, nil); err != nil {
			return nil, err
		}
		row := ns.rowType
		if side.nullable {
			row = a.types.Nullable(row, true)
		}
		fields = append(fields, row.Fields...)
	}
	return a.types.Row(fields), nil
}

// fromNamespace returns the namespace of a FROM item, looking through
// LATERAL.
func (a *analyzer) fromNamespace(id ast.ID) *Namespace {
	for id != ast.Nil {
		if ns := a.namespaces[id]; ns != nil {
			return ns
		}
		if !a.tree.Is(id, operator.As, operator.Lateral) {
			return nil
		}
		id = a.tree.Operand(id, 0)
	}
	return nil
}
