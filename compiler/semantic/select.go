package semantic

import (
	"fmt"
	"strconv"

	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/types"
)

// validateSelect validates the clauses of a SELECT in order and returns
// its row type.  target, if not nil, supplies the types of NULL and
// parameter items in the select list.
func (a *analyzer) validateSelect(ns *Namespace, target *types.Type) (*types.Type, error) {
	sel := ns.Node
	from := a.clauses[clauseKey{sel, FromClause}]
	if item := a.tree.Operand(sel, operator.SelectFrom); item != ast.Nil {
		if err := a.validateFrom(item); err != nil {
			return nil, err
		}
	}
	if where := a.tree.Operand(sel, operator.SelectWhere); where != ast.Nil {
		if err := a.validateCondition(from, where, "WHERE", WhereOrHavingNotBoolean); err != nil {
			return nil, err
		}
	}
	if err := a.validateGroupBy(sel, from); err != nil {
		return nil, err
	}
	list := a.clauses[clauseKey{sel, SelectClause}]
	if having := a.tree.Operand(sel, operator.SelectHaving); having != ast.Nil {
		if err := a.validateCondition(list, having, "HAVING", WhereOrHavingNotBoolean); err != nil {
			return nil, err
		}
		if err := a.checkGroup(list, having); err != nil {
			return nil, err
		}
	}
	if err := a.validateWindowClause(sel, from); err != nil {
		return nil, err
	}
	row, err := a.validateSelectList(ns, list, target)
	if err != nil {
		return nil, err
	}
	// ORDER BY sees the output columns before the namespace is valid.
	ns.rowType = row
	if err := a.validateOrderBy(sel, row); err != nil {
		return nil, err
	}
	return row, nil
}

// validateExpr validates a scalar expression in scope.
func (a *analyzer) validateExpr(scope *Scope, id ast.ID) (*types.Type, error) {
	return a.deriveType(scope, id)
}

// validateFrom validates a FROM item and, for joins, the join conditions.
func (a *analyzer) validateFrom(id ast.ID) error {
	if call := a.tree.Call(id); call != nil {
		switch call.Op.Kind {
		case operator.As, operator.Lateral:
			return a.validateFrom(call.Arg(0))
		case operator.Join:
			return a.validateJoin(id, call)
		}
	}
	ns := a.namespaces[id]
	if ns == nil {
		return a.errorf(id, Internal, "FROM item is not registered")
	}
	return a.validateNamespace(ns, nil)
}

// validateCondition validates a WHERE, HAVING or ON condition.
func (a *analyzer) validateCondition(scope *Scope, id ast.ID, clause string, code Code) error {
	if err := a.validateNoAggs(id, clause, clause != "HAVING"); err != nil {
		return err
	}
	boolean := a.types.Nullable(a.types.Sql(types.Boolean), true)
	if err := a.inferUnknownTypes(scope, id, boolean); err != nil {
		return err
	}
	t, err := a.validateExpr(scope, id)
	if err != nil {
		return err
	}
	if !t.IsBoolean() {
		return a.errorf(id, code, "%s clause must be a condition", clause)
	}
	return nil
}

func (a *analyzer) validateGroupBy(sel ast.ID, scope *Scope) error {
	for _, g := range a.items(a.tree.Operand(sel, operator.SelectGroup)) {
		if err := a.validateNoAggs(g, "GROUP BY", true); err != nil {
			return err
		}
		if err := a.inferUnknownTypes(scope, g, types.Unknown); err != nil {
			return err
		}
		if _, err := a.validateExpr(scope, g); err != nil {
			return err
		}
	}
	return nil
}

// validateSelectList expands stars, derives the type of each item and
// names each output column.  The expanded list, with every item aliased,
// is recorded for the plan builder.
func (a *analyzer) validateSelectList(ns *Namespace, scope *Scope, target *types.Type) (*types.Type, error) {
	sel := ns.Node
	var items []ast.ID
	var fields []types.Field
	seen := make(map[string]bool)
	for _, item := range a.items(a.tree.Operand(sel, operator.SelectList)) {
		if ident := a.tree.Identifier(item); ident != nil && ident.IsStar() {
			cols, err := a.expandStar(scope, item, ident)
			if err != nil {
				return nil, err
			}
			for _, col := range cols {
				if err := a.checkGroup(scope, col); err != nil {
					return nil, err
				}
				name := a.uniqueAlias(seen, a.tree.Identifier(col).Last())
				items = append(items, a.alias(col, name))
				fields = append(fields, types.Field{Name: name, Type: a.nodeTypes[col]})
			}
			continue
		}
		expr, alias := a.splitAlias(item, len(fields))
		expected := types.Unknown
		if target.IsRow() && len(fields) < len(target.Fields) {
			expected = target.Fields[len(fields)].Type
		}
		if err := a.inferUnknownTypes(scope, expr, expected); err != nil {
			return nil, err
		}
		t, err := a.deriveType(scope, item)
		if err != nil {
			return nil, err
		}
		if t.IsUnknown() {
			return nil, a.errorf(expr, IllegalNullLiteral, "Illegal use of dynamic parameter")
		}
		if err := a.checkGroup(scope, expr); err != nil {
			return nil, err
		}
		if a.config.ExpandIdentifiers {
			expr = a.expandIdentifier(scope, expr)
		}
		name := a.uniqueAlias(seen, alias)
		items = append(items, a.alias(expr, name))
		fields = append(fields, types.Field{Name: name, Type: t})
	}
	a.selectLists[sel] = items
	a.markMonotonic(ns, scope, items, fields)
	return a.types.Row(fields), nil
}

// expandStar replaces * or t.* with qualified references to the visible
// columns.
func (a *analyzer) expandStar(scope *Scope, star ast.ID, ident *ast.Identifier) ([]ast.ID, error) {
	sel := scope.selectScope()
	var children []*Child
	if ident.IsSimple() {
		if sel == nil || len(sel.children) == 0 {
			return nil, a.errorf(star, UnknownIdentifier, "SELECT * requires a FROM clause")
		}
		children = sel.children
	} else {
		prefix := ident.Names[:len(ident.Names)-1]
		child := a.findTable(sel, prefix)
		if child == nil {
			return nil, a.errorf(star, TableNotFound, "Table '%s' not found", (&ast.Identifier{Names: prefix}).String())
		}
		children = []*Child{child}
	}
	loc := a.tree.Loc(star)
	var cols []ast.ID
	for _, child := range children {
		row, err := a.childRowType(child)
		if err != nil {
			return nil, err
		}
		for _, f := range row.Fields {
			names := []string{child.Alias, f.Name}
			id := a.tree.Add(&ast.Identifier{Names: names, Loc: loc})
			a.setType(id, f.Type)
			a.qualified[id] = names
			a.exprScopes[id] = scope
			cols = append(cols, id)
		}
	}
	return cols, nil
}

// expandIdentifier returns a fully-qualified copy of a column reference.
func (a *analyzer) expandIdentifier(scope *Scope, id ast.ID) ast.ID {
	ident := a.tree.Identifier(id)
	names := a.qualified[id]
	if ident == nil || len(names) <= len(ident.Names) {
		return id
	}
	out := a.tree.Add(&ast.Identifier{Names: names, Collation: ident.Collation, Loc: ident.Loc})
	a.setType(out, a.nodeTypes[id])
	a.qualified[out] = names
	a.exprScopes[out] = scope
	return out
}

// splitAlias separates a select item into its expression and output name:
// the AS alias, else the last segment of an identifier, else EXPR$n.
func (a *analyzer) splitAlias(item ast.ID, ordinal int) (ast.ID, string) {
	switch n := a.tree.Node(item).(type) {
	case *ast.Call:
		switch n.Op.Kind {
		case operator.As:
			if alias := a.tree.Identifier(n.Arg(1)); alias != nil {
				return n.Arg(0), alias.Last()
			}
		case operator.Dot:
			if field := a.tree.Identifier(n.Arg(1)); field != nil {
				return item, field.Last()
			}
		}
	case *ast.Identifier:
		return item, n.Last()
	}
	return item, fmt.Sprintf("EXPR$%d", ordinal)
}

// uniqueAlias makes name distinct from the names already in seen by
// appending an ordinal.
func (a *analyzer) uniqueAlias(seen map[string]bool, name string) string {
	out := name
	for k := 0; seen[a.matcher.key(out)]; k++ {
		out = name + strconv.Itoa(k)
	}
	seen[a.matcher.key(out)] = true
	return out
}

// alias wraps expr in AS name.
func (a *analyzer) alias(expr ast.ID, name string) ast.ID {
	id := a.tree.NewAlias(a.ops.ByKind(operator.As), expr, name)
	if t, ok := a.nodeTypes[expr]; ok {
		a.setType(id, t)
	}
	return id
}

func (a *analyzer) validateOrderBy(sel ast.ID, row *types.Type) error {
	order := a.tree.Operand(sel, operator.SelectOrder)
	if order == ast.Nil {
		return nil
	}
	scope := a.clauses[clauseKey{sel, OrderClause}]
	for _, item := range a.items(order) {
		expr := item
		if a.tree.Is(item, operator.Descending) {
			expr = a.tree.Operand(item, 0)
		}
		if lit := a.tree.Literal(expr); lit != nil && lit.Tag == ast.ExactLit {
			d, _ := lit.Decimal()
			if !d.IsInteger() || d.IntPart() < 1 || d.IntPart() > int64(len(row.Fields)) {
				return a.errorf(expr, OrdinalOutOfRange, "Ordinal out of range")
			}
			if _, err := a.deriveType(scope, item); err != nil {
				return err
			}
			continue
		}
		if err := a.inferUnknownTypes(scope, expr, types.Unknown); err != nil {
			return err
		}
		if _, err := a.deriveType(scope, item); err != nil {
			return err
		}
		if err := a.checkGroup(scope, expr); err != nil {
			return err
		}
	}
	return nil
}

// markMonotonic records which output columns of a SELECT preserve the
// sort order of a monotonic input column.
func (a *analyzer) markMonotonic(ns *Namespace, scope *Scope, items []ast.ID, fields []types.Field) {
	ns.monotonic = make(map[string]bool)
	for k, item := range items {
		if a.isMonotonic(scope, a.tree.Operand(item, 0)) {
			ns.monotonic[fields[k].Name] = true
		}
	}
}

func (a *analyzer) isMonotonic(scope *Scope, id ast.ID) bool {
	switch n := a.tree.Node(id).(type) {
	case *ast.Identifier:
		ident := n
		if ident.IsStar() {
			return false
		}
		r, err := a.resolveIdentifier(scope, id, ident)
		if err != nil || r.child == nil || len(r.names) != 2 {
			return false
		}
		return r.child.Namespace.Monotonic(r.names[1])
	case *ast.Call:
		if !n.Op.Monotonic {
			return false
		}
		monotonic := 0
		for _, arg := range n.Args {
			switch {
			case a.tree.Literal(arg) != nil:
			case a.isMonotonic(scope, arg):
				monotonic++
			default:
				return false
			}
		}
		return monotonic == 1
	}
	return false
}
