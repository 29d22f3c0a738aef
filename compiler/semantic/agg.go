package semantic

import (
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
)

// validateNoAggs rejects windowed aggregates in clause and, when aggs is
// set, plain aggregates too.
func (a *analyzer) validateNoAggs(id ast.ID, clause string, aggs bool) error {
	if aggs {
		if agg := a.findAggregate(id); agg != ast.Nil {
			code := AggregateIllegalInWhere
			if clause == "GROUP BY" {
				code = AggregateIllegalInGroupBy
			}
			return a.errorf(agg, code, "Aggregate expression is illegal in %s clause", clause)
		}
	}
	if over := a.findOver(id); over != ast.Nil {
		return a.errorf(over, WindowedAggregateIllegal, "Windowed aggregate expression is illegal in %s clause", clause)
	}
	return nil
}

// checkGroup verifies that an expression of an aggregating SELECT refers
// only to grouped expressions, aggregates, constants and nested queries.
func (a *analyzer) checkGroup(scope *Scope, id ast.ID) error {
	agg := scope.aggregating()
	if agg == nil {
		return nil
	}
	c := &groupChecker{a: a, scope: scope, agg: agg, sel: agg.selectScope()}
	return c.check(id)
}

type groupChecker struct {
	a     *analyzer
	scope *Scope
	agg   *Scope
	sel   *Scope
}

func (c *groupChecker) check(id ast.ID) error {
	if id == ast.Nil || c.isGroupExpr(id) {
		return nil
	}
	a := c.a
	switch n := a.tree.Node(id).(type) {
	case *ast.Identifier:
		return c.checkIdentifier(id, n)
	case *ast.List:
		return c.checkAll(n.Items)
	case *ast.Call:
		return c.checkCall(id, n)
	}
	return nil
}

func (c *groupChecker) checkAll(ids []ast.ID) error {
	for _, id := range ids {
		if err := c.check(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *groupChecker) checkIdentifier(id ast.ID, ident *ast.Identifier) error {
	a := c.a
	if _, ok := a.overloads[id]; ok {
		return nil
	}
	if c.scope.Kind == OrderByScope && ident.IsSimple() {
		if r, _ := a.resolveSelectAlias(c.scope, id, ident.Names[0]); r != nil {
			return nil
		}
	}
	r, err := a.resolveIdentifier(c.scope, id, ident)
	if err == nil && !c.local(r.child) {
		// Outer references are constant within a group.
		return nil
	}
	return a.errorf(id, NotAGroupExpression, "Expression '%s' is not being grouped", ident.String())
}

// local reports whether child belongs to the FROM clause of the SELECT
// being checked.
func (c *groupChecker) local(child *Child) bool {
	if child == nil || c.sel == nil {
		return true
	}
	for _, ch := range c.sel.children {
		if ch == child {
			return true
		}
	}
	return false
}

func (c *groupChecker) checkCall(id ast.ID, call *ast.Call) error {
	a := c.a
	kind := call.Op.Kind
	switch {
	case kind.IsQuery(), kind == operator.MultisetQuery, kind == operator.ScalarQuery, kind == operator.Exists:
		return nil
	case call.Op.IsAggregate():
		return nil
	}
	switch kind {
	case operator.Over:
		if agg := a.tree.Call(call.Arg(0)); agg != nil {
			if err := c.checkAll(a.tree.Children(call.Arg(0))); err != nil {
				return err
			}
		}
		return c.checkWindow(call.Arg(1))
	case operator.As, operator.Descending, operator.Cast:
		return c.check(call.Arg(0))
	}
	return c.checkAll(a.tree.Children(id))
}

// checkWindow checks the partitioning and ordering keys of an inline or
// named window.
func (c *groupChecker) checkWindow(id ast.ID) error {
	a := c.a
	if ident := a.tree.Identifier(id); ident != nil {
		if w := a.findWindow(c.scope, ident.Last()); w != ast.Nil {
			id = w
		}
	}
	if !a.tree.Is(id, operator.Window) {
		return nil
	}
	for _, slot := range []int{operator.WindowPartition, operator.WindowOrder} {
		if err := c.checkAll(a.items(a.tree.Operand(id, slot))); err != nil {
			return err
		}
	}
	return nil
}

// isGroupExpr reports whether id matches a GROUP BY expression term for
// term.  Identifiers match when their fully-qualified forms agree.
func (c *groupChecker) isGroupExpr(id ast.ID) bool {
	a := c.a
	for _, g := range c.agg.groups {
		if a.tree.EqualFunc(g, id, c.sameColumn) {
			return true
		}
	}
	return false
}

func (c *groupChecker) sameColumn(x, y *ast.Identifier) bool {
	a := c.a
	if a.matcher.matchAll(x.Names, y.Names) {
		return true
	}
	qx, qy := c.qualify(x), c.qualify(y)
	return qx != nil && qy != nil && a.matcher.matchAll(qx, qy)
}

func (c *groupChecker) qualify(ident *ast.Identifier) []string {
	if ident.IsStar() || c.sel == nil {
		return nil
	}
	r, err := c.a.resolveIdentifier(c.sel, ast.Nil, ident)
	if err != nil {
		return nil
	}
	return r.names
}
