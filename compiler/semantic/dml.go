package semantic

import (
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/types"
)

// validateDML validates an INSERT, UPDATE or DELETE: its target table, the
// synthesized source SELECT and the assignment of source columns to
// target columns.
func (a *analyzer) validateDML(id ast.ID) error {
	ns := a.namespaces[id]
	if ns == nil || ns.Kind != DMLNamespace {
		return a.errorf(id, Internal, "statement is not registered")
	}
	if err := a.validateNamespace(ns, nil); err != nil {
		return err
	}
	call := a.tree.Call(id)
	table := a.namespaces[a.dmlTarget(call)].rowType
	switch call.Op.Kind {
	case operator.Insert:
		return a.validateInsert(call, table)
	case operator.Update:
		return a.validateUpdate(call, table)
	}
	return a.validateSource(call.Arg(operator.DeleteSourceSelect), nil)
}

func (a *analyzer) dmlTarget(call *ast.Call) ast.ID {
	switch call.Op.Kind {
	case operator.Insert:
		return call.Arg(operator.InsertTarget)
	case operator.Update:
		return call.Arg(operator.UpdateTarget)
	}
	return call.Arg(operator.DeleteTarget)
}

// validateTarget validates the target table of a DML statement.  The
// statement itself produces a row count.
func (a *analyzer) validateTarget(ns *Namespace) (*types.Type, error) {
	call := a.tree.Call(ns.Node)
	target := a.namespaces[a.dmlTarget(call)]
	if target == nil {
		return nil, a.errorf(ns.Node, Internal, "%s target is not registered", call.Op.Name)
	}
	if err := a.validateNamespace(target, nil); err != nil {
		return nil, err
	}
	ns.table = target.table
	return a.types.Row([]types.Field{{Name: "ROWCOUNT", Type: a.types.Sql(types.Bigint)}}), nil
}

func (a *analyzer) validateSource(id ast.ID, target *types.Type) error {
	ns := a.namespaces[id]
	if ns == nil {
		return a.errorf(id, Internal, "DML source is not registered")
	}
	return a.validateNamespace(ns, target)
}

// targetColumns returns the record of the listed target columns of table
// or, when the list is absent, table itself.
func (a *analyzer) targetColumns(table *types.Type, list ast.ID) (*types.Type, error) {
	if list == ast.Nil {
		return table, nil
	}
	var fields []types.Field
	seen := make(map[string]bool)
	for _, col := range a.items(list) {
		ident := a.tree.Identifier(col)
		if ident == nil {
			return nil, a.errorf(col, Internal, "target column must be an identifier")
		}
		f, ok := a.field(table, ident.Last())
		if !ok {
			e := a.errorf(col, UnknownField, "Unknown target column '%s'", ident.Last())
			e.Suggestions = suggest(ident.Last(), table.FieldNames(), a.config.Suggestions)
			return nil, e
		}
		if seen[f.Name] {
			return nil, a.errorf(col, DuplicateTargetColumn, "Target column '%s' is assigned more than once", f.Name)
		}
		seen[f.Name] = true
		a.setType(col, f.Type)
		fields = append(fields, f)
	}
	return a.types.Row(fields), nil
}

func (a *analyzer) validateInsert(call *ast.Call, table *types.Type) error {
	target, err := a.targetColumns(table, call.Arg(operator.InsertColumns))
	if err != nil {
		return err
	}
	source := call.Arg(operator.InsertSourceSelect)
	if err := a.validateSource(source, target); err != nil {
		return err
	}
	row := a.namespaces[source].rowType
	if len(row.Fields) != len(target.Fields) {
		return a.errorf(source, ColumnCountMismatch, "Number of INSERT target columns (%d) does not equal number of source items (%d)",
			len(target.Fields), len(row.Fields))
	}
	for k, f := range target.Fields {
		if err := a.checkAssign(source, f, row.Fields[k]); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) validateUpdate(call *ast.Call, table *types.Type) error {
	target, err := a.targetColumns(table, call.Arg(operator.UpdateColumns))
	if err != nil {
		return err
	}
	sources := a.items(call.Arg(operator.UpdateSources))
	if len(sources) != len(target.Fields) {
		return a.errorf(call.Arg(operator.UpdateSources), ColumnCountMismatch,
			"Number of UPDATE target columns (%d) does not equal number of source items (%d)", len(target.Fields), len(sources))
	}
	// The source select is SELECT *, e0 AS EXPR$0, ... so the expected row
	// is the table followed by the target columns.
	expected := append(append([]types.Field(nil), table.Fields...), target.Fields...)
	source := call.Arg(operator.UpdateSourceSelect)
	if err := a.validateSource(source, a.types.Row(expected)); err != nil {
		return err
	}
	row := a.namespaces[source].rowType
	for k, f := range target.Fields {
		if err := a.checkAssign(sources[k], f, row.Fields[len(table.Fields)+k]); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) checkAssign(id ast.ID, to, from types.Field) error {
	if !types.CanAssign(to.Type, from.Type) {
		return a.errorf(id, TypeNotAssignable, "Cannot assign to target field '%s' of type %s from source field '%s' of type %s",
			to.Name, to.Type.FullString(), from.Name, from.Type.FullString())
	}
	return nil
}

// validateValues types a table constructor.  Every row must have the same
// degree and each column a common type across the rows; NULL cells take
// the column type.
func (a *analyzer) validateValues(ns *Namespace, target *types.Type) (*types.Type, error) {
	call := a.tree.Call(ns.Node)
	rows := make([][]ast.ID, len(call.Args))
	for k, row := range call.Args {
		if a.tree.Is(row, operator.Row) {
			rows[k] = a.tree.Call(row).Args
		} else {
			rows[k] = []ast.ID{row}
		}
		if len(rows[k]) != len(rows[0]) {
			return nil, a.errorf(row, ColumnCountMismatch, "Values passed to VALUES operator must have the same number of columns")
		}
	}
	width := len(rows[0])
	var expected *types.Type
	if target.IsRow() && len(target.Fields) == width {
		expected = target
	}
	columns := make([]*types.Type, width)
	for c := range columns {
		if expected != nil {
			columns[c] = expected.Fields[c].Type
			continue
		}
		var known []*types.Type
		for _, row := range rows {
			cell := a.cell(row[c])
			if a.isNull(cell) || a.tree.DynamicParam(cell) != nil {
				continue
			}
			t, err := a.deriveType(ns.scope, cell)
			if err != nil {
				return nil, err
			}
			if !t.IsUnknown() {
				known = append(known, t)
			}
		}
		columns[c] = types.Unknown
		if len(known) > 0 {
			if columns[c] = a.types.LeastRestrictive(known...); columns[c] == nil {
				return nil, a.errorf(ns.Node, IncompatibleValueType, "Values passed to VALUES operator must have compatible types")
			}
		}
	}
	fields := make([]types.Field, width)
	for c := range fields {
		var ts []*types.Type
		for _, row := range rows {
			cell := a.cell(row[c])
			if err := a.inferUnknownTypes(ns.scope, cell, columns[c]); err != nil {
				return nil, err
			}
			t, err := a.deriveType(ns.scope, row[c])
			if err != nil {
				return nil, err
			}
			ts = append(ts, t)
		}
		t := a.types.LeastRestrictive(ts...)
		if t == nil {
			return nil, a.errorf(ns.Node, IncompatibleValueType, "Values passed to VALUES operator must have compatible types")
		}
		_, name := a.splitAlias(rows[0][c], c)
		fields[c] = types.Field{Name: name, Type: t}
	}
	for _, row := range call.Args {
		if a.tree.Is(row, operator.Row) {
			a.setType(row, a.types.Row(fields))
		}
	}
	return a.types.Row(fields), nil
}

// cell strips the alias of a VALUES cell.
func (a *analyzer) cell(id ast.ID) ast.ID {
	if a.tree.Is(id, operator.As) {
		return a.tree.Operand(id, 0)
	}
	return id
}

// validateSetOp types UNION, EXCEPT and INTERSECT: the branches must have
// the same degree and pairwise compatible column types.  Column names come
// from the first branch.
func (a *analyzer) validateSetOp(ns *Namespace, target *types.Type) (*types.Type, error) {
	call := a.tree.Call(ns.Node)
	var rows []*types.Type
	for _, branch := range call.Args {
		bns := a.namespaces[branch]
		if bns == nil {
			return nil, a.errorf(branch, Internal, "%s branch is not registered", call.Op.Name)
		}
		if err := a.validateNamespace(bns, target); err != nil {
			return nil, err
		}
		rows = append(rows, bns.rowType)
	}
	first := rows[0]
	fields := make([]types.Field, len(first.Fields))
	for c, f := range first.Fields {
		ts := []*types.Type{f.Type}
		for k, row := range rows[1:] {
			if len(row.Fields) != len(first.Fields) {
				return nil, a.errorf(call.Args[k+1], ColumnCountMismatch, "Column count mismatch in %s", call.Op.Name)
			}
			ts = append(ts, row.Fields[c].Type)
		}
		t := a.types.LeastRestrictive(ts...)
		if t == nil {
			return nil, a.errorf(ns.Node, IncompatibleValueType, "Type mismatch in column %d of %s", c+1, call.Op.Name)
		}
		fields[c] = types.Field{Name: f.Name, Type: t}
	}
	return a.types.Row(fields), nil
}

// validateUnnest types UNNEST of a multiset: the element's fields, or a
// single column for a multiset of scalars.
func (a *analyzer) validateUnnest(ns *Namespace) (*types.Type, error) {
	arg := a.tree.Operand(ns.Node, 0)
	if err := a.inferUnknownTypes(ns.scope, arg, types.Unknown); err != nil {
		return nil, err
	}
	t, err := a.deriveType(ns.scope, arg)
	if err != nil {
		return nil, err
	}
	if !t.IsMultiset() {
		return nil, a.errorf(arg, OperandTypeMismatch, "Cannot apply 'UNNEST' to arguments of type '%s'", t)
	}
	if t.Elem.IsRow() {
		return a.types.Row(t.Elem.Fields), nil
	}
	return a.types.Row([]types.Field{{Name: "EXPR$0", Type: t.Elem}}), nil
}

// validateCollect types MULTISET(query) as one column holding a multiset
// of the query's rows.
func (a *analyzer) validateCollect(ns *Namespace) (*types.Type, error) {
	query := a.tree.Operand(ns.Node, 0)
	inner := a.namespaces[query]
	if inner == nil {
		return nil, a.errorf(query, Internal, "multiset query is not registered")
	}
	if err := a.validateNamespace(inner, nil); err != nil {
		return nil, err
	}
	return a.types.Row([]types.Field{{Name: "EXPR$0", Type: a.types.Multiset(inner.rowType)}}), nil
}
