package semantic

import (
	"fmt"

	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
)

// Clause names the part of a SELECT whose expressions a scope serves.
type Clause int

const (
	FromClause Clause = iota
	WhereClause
	GroupClause
	HavingClause
	SelectClause
	OrderClause
)

type clauseKey struct {
	node   ast.ID
	clause Clause
}

// registerQuery creates the namespace and scopes of a relation-valued
// node.  parent is the scope the query's expressions may see through to
// and using, if not nil, the scope in which the query is visible as
// alias.  A node registered twice keeps its first namespace.
func (a *analyzer) registerQuery(parent, using *Scope, id, enclosing ast.ID, alias string, nullable bool) error {
	if ns, ok := a.namespaces[id]; ok && ns.Node == id {
		if using != nil {
			using.addChild(alias, ns, nullable)
		}
		return nil
	}
	call := a.tree.Call(id)
	if call == nil {
		return a.errorf(id, Internal, "not a query")
	}
	switch call.Op.Kind {
	case operator.Select:
		return a.registerSelect(parent, using, id, enclosing, alias, nullable)
	case operator.Union, operator.Except, operator.Intersect:
		ns := a.newNamespace(SetOpNamespace, id, enclosing, parent)
		if using != nil {
			using.addChild(alias, ns, nullable)
		}
		for _, branch := range call.Args {
			if err := a.registerQuery(parent, nil, branch, branch, "", false); err != nil {
				return err
			}
		}
		return nil
	case operator.Values:
		ns := a.newNamespace(ValuesNamespace, id, enclosing, parent)
		if using != nil {
			using.addChild(alias, ns, nullable)
		}
		for _, row := range call.Args {
			if err := a.registerSubqueries(parent, row); err != nil {
				return err
			}
		}
		return nil
	case operator.Insert, operator.Update, operator.Delete:
		return a.registerDML(parent, using, id, call)
	case operator.MultisetQuery:
		ns := a.newNamespace(CollectNamespace, id, enclosing, parent)
		if using != nil {
			using.addChild(alias, ns, nullable)
		}
		return a.registerQuery(parent, nil, call.Arg(0), call.Arg(0), "", false)
	}
	return a.errorf(id, Internal, "%s is not a query", call.Op.Name)
}

func (a *analyzer) registerSelect(parent, using *Scope, id, enclosing ast.ID, alias string, nullable bool) error {
	sel := newScope(SelectScope, parent, id)
	ns := a.newNamespace(SelectNamespace, id, enclosing, sel)
	if using != nil {
		using.addChild(alias, ns, nullable)
	}
	a.clauses[clauseKey{id, FromClause}] = sel
	if from := a.tree.Operand(id, operator.SelectFrom); from != ast.Nil {
		if err := a.registerFrom(parent, sel, from, from, "", false, false); err != nil {
			return err
		}
	}
	a.clauses[clauseKey{id, WhereClause}] = sel
	if err := a.registerSubqueries(sel, a.tree.Operand(id, operator.SelectWhere)); err != nil {
		return err
	}
	a.clauses[clauseKey{id, GroupClause}] = sel
	groups := a.items(a.tree.Operand(id, operator.SelectGroup))
	for _, g := range groups {
		if err := a.registerSubqueries(sel, g); err != nil {
			return err
		}
	}
	list := sel
	if a.isAggregating(id) {
		list = newScope(AggregatingScope, sel, id)
		list.groups = groups
	}
	a.clauses[clauseKey{id, SelectClause}] = list
	a.clauses[clauseKey{id, HavingClause}] = list
	for _, slot := range []int{operator.SelectList, operator.SelectHaving} {
		if err := a.registerSubqueries(list, a.tree.Operand(id, slot)); err != nil {
			return err
		}
	}
	if err := a.registerSubqueries(sel, a.tree.Operand(id, operator.SelectWindow)); err != nil {
		return err
	}
	order := newScope(OrderByScope, list, id)
	a.clauses[clauseKey{id, OrderClause}] = order
	return a.registerSubqueries(order, a.tree.Operand(id, operator.SelectOrder))
}

// registerFrom registers a FROM item.  Items are registered with the
// scope enclosing the SELECT as parent so that one item cannot see
// another unless they are joined or the item is LATERAL.
func (a *analyzer) registerFrom(parent, using *Scope, id, enclosing ast.ID, alias string, nullable, lateral bool) error {
	if lateral {
		parent = using
	}
	switch n := a.tree.Node(id).(type) {
	case *ast.Identifier:
		if alias == "" {
			alias = n.Last()
		}
		ns := a.newNamespace(TableNamespace, id, enclosing, parent)
		using.addChild(alias, ns, nullable)
		return nil
	case *ast.Call:
		switch n.Op.Kind {
		case operator.As:
			name := a.tree.Identifier(n.Arg(1))
			if name == nil {
				return a.errorf(n.Arg(1), Internal, "alias must be an identifier")
			}
			return a.registerFrom(parent, using, n.Arg(0), id, name.Last(), nullable, lateral)
		case operator.Join:
			return a.registerJoin(parent, using, id, n, nullable, lateral)
		case operator.Lateral:
			return a.registerFrom(parent, using, n.Arg(0), enclosing, alias, nullable, true)
		case operator.Unnest:
			if alias == "" {
				alias = a.generateAlias()
			}
			ns := a.newNamespace(UnnestNamespace, id, enclosing, parent)
			using.addChild(alias, ns, nullable)
			return a.registerSubqueries(parent, n.Arg(0))
		case operator.Select, operator.Union, operator.Except, operator.Intersect, operator.Values:
			if alias == "" {
				alias = a.generateAlias()
			}
			return a.registerQuery(parent, using, id, enclosing, alias, nullable)
		}
	}
	return a.errorf(id, Internal, "unsupported FROM item")
}

func (a *analyzer) registerJoin(parent, using *Scope, id ast.ID, join *ast.Call, nullable, lateral bool) error {
	scope := newScope(JoinScope, parent, id)
	scope.using = using
	a.joinScopes[id] = scope
	leftNullable, rightNullable := nullable, nullable
	switch a.symbol(join.Arg(operator.JoinType)) {
	case operator.SymLeft:
		rightNullable = true
	case operator.SymRight:
		leftNullable = true
	case operator.SymFull:
		leftNullable, rightNullable = true, true
	}
	left, right := join.Arg(operator.JoinLeft), join.Arg(operator.JoinRight)
	if err := a.registerFrom(parent, scope, left, left, "", leftNullable, lateral); err != nil {
		return err
	}
	if err := a.registerFrom(parent, scope, right, right, "", rightNullable, false); err != nil {
		return err
	}
	a.newNamespace(JoinNamespace, id, id, scope)
	return a.registerSubqueries(scope, join.Arg(operator.JoinCondition))
}

func (a *analyzer) registerDML(parent, using *Scope, id ast.ID, call *ast.Call) error {
	var target, source ast.ID
	switch call.Op.Kind {
	case operator.Insert:
		target, source = call.Arg(operator.InsertTarget), call.Arg(operator.InsertSourceSelect)
	case operator.Delete:
		target, source = call.Arg(operator.DeleteTarget), call.Arg(operator.DeleteSourceSelect)
	case operator.Update:
		target, source = call.Arg(operator.UpdateTarget), call.Arg(operator.UpdateSourceSelect)
	}
	a.newNamespace(DMLNamespace, id, id, parent)
	if a.tree.Identifier(target) == nil {
		return a.errorf(target, Internal, "%s target must be a table name", call.Op.Name)
	}
	a.newNamespace(TableNamespace, target, id, parent)
	if source == ast.Nil {
		return a.errorf(id, Internal, "%s has no source", call.Op.Name)
	}
	return a.registerQuery(parent, using, source, source, "", false)
}

// registerSubqueries registers the queries nested in expression id.
func (a *analyzer) registerSubqueries(scope *Scope, id ast.ID) error {
	var err error
	a.tree.Walk(id, func(n ast.ID) bool {
		if err != nil {
			return false
		}
		switch a.tree.Kind(n) {
		case operator.Select, operator.Union, operator.Except, operator.Intersect, operator.Values, operator.MultisetQuery:
			err = a.registerQuery(scope, nil, n, n, "", false)
			return false
		}
		return true
	})
	return err
}

// isAggregating reports whether a SELECT groups its input: it has GROUP
// BY or HAVING or an aggregate call in its select list.
func (a *analyzer) isAggregating(sel ast.ID) bool {
	if a.tree.Operand(sel, operator.SelectGroup) != ast.Nil || a.tree.Operand(sel, operator.SelectHaving) != ast.Nil {
		return true
	}
	return a.findAggregate(a.tree.Operand(sel, operator.SelectList)) != ast.Nil
}

// findAggregate returns the first aggregate call in id that is not
// windowed and not inside a nested query.
func (a *analyzer) findAggregate(id ast.ID) ast.ID {
	found := ast.Nil
	a.tree.Walk(id, func(n ast.ID) bool {
		if found != ast.Nil {
			return false
		}
		call := a.tree.Call(n)
		if call == nil {
			return true
		}
		switch {
		case call.Op.Kind == operator.Over, call.Op.Kind.IsQuery():
			return false
		case call.Op.IsAggregate():
			found = n
			return false
		}
		return true
	})
	return found
}

// findOver returns the first windowed aggregate in id outside nested
// queries.
func (a *analyzer) findOver(id ast.ID) ast.ID {
	found := ast.Nil
	a.tree.Walk(id, func(n ast.ID) bool {
		if found != ast.Nil || a.tree.Kind(n).IsQuery() {
			return false
		}
		if a.tree.Kind(n) == operator.Over {
			found = n
			return false
		}
		return true
	})
	return found
}

func (a *analyzer) generateAlias() string {
	alias := fmt.Sprintf("EXPR$%d", a.aliases)
	a.aliases++
	return alias
}

// items returns the items of a list node, or the node itself when it is
// not a list.
func (a *analyzer) items(id ast.ID) []ast.ID {
	if id == ast.Nil {
		return nil
	}
	if l := a.tree.List(id); l != nil {
		return l.Items
	}
	return []ast.ID{id}
}

func (a *analyzer) symbol(id ast.ID) string {
	if lit := a.tree.Literal(id); lit != nil {
		if s, ok := lit.Symbol(); ok {
			return s
		}
	}
	return ""
}

func (a *analyzer) truth(id ast.ID) bool {
	if lit := a.tree.Literal(id); lit != nil {
		if t, ok := lit.Truth(); ok {
			return t == ast.True
		}
	}
	return false
}
