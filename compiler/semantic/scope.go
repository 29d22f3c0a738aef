package semantic

import (
	"fmt"

	"github.com/brimdata/sqlsem/compiler/ast"
)

type ScopeKind int

const (
	// RootScope sees nothing.  It is the parent of a top-level statement.
	RootScope ScopeKind = iota
	// SelectScope sees the relations in a SELECT's FROM clause.
	SelectScope
	// JoinScope sees the two sides of a JOIN and is the scope of its ON
	// condition.
	JoinScope
	// AggregatingScope wraps a SelectScope for the SELECT list and HAVING
	// clause of an aggregating query.
	AggregatingScope
	// OrderByScope sees the select-list aliases of its SELECT before
	// delegating to the select-list scope.
	OrderByScope
)

func (k ScopeKind) String() string {
	switch k {
	case RootScope:
		return "root"
	case SelectScope:
		return "select"
	case JoinScope:
		return "join"
	case AggregatingScope:
		return "aggregating"
	case OrderByScope:
		return "order by"
	}
	return fmt.Sprintf("ScopeKind(%d)", int(k))
}

// Scope is a name-visibility context.  Every scope but the root has a
// parent to which lookups fall through.
type Scope struct {
	Kind   ScopeKind
	Node   ast.ID
	parent *Scope
	// using receives the children registered in a join scope so that the
	// enclosing SELECT sees every leaf of a join tree.
	using    *Scope
	children []*Child
	// groups holds the GROUP BY expressions of an aggregating scope.
	groups []ast.ID
}

// Child is a relation visible in a scope under an alias.  Nullable is set
// for the null-supplying side of an outer join.
type Child struct {
	Alias     string
	Namespace *Namespace
	Nullable  bool
}

func newScope(kind ScopeKind, parent *Scope, node ast.ID) *Scope {
	return &Scope{Kind: kind, parent: parent, Node: node}
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

func (s *Scope) Children() []*Child {
	return s.children
}

// Groups returns the GROUP BY expressions of an aggregating scope.
func (s *Scope) Groups() []ast.ID {
	return s.groups
}

func (s *Scope) addChild(alias string, ns *Namespace, nullable bool) {
	s.children = append(s.children, &Child{Alias: alias, Namespace: ns, Nullable: nullable})
	if s.Kind == JoinScope && s.using != nil && s.using != s.parent {
		s.using.addChild(alias, ns, nullable)
	}
}

// holdsChildren is true for scopes that own relations rather than
// delegating to their parent.
func (s *Scope) holdsChildren() bool {
	return s.Kind == SelectScope || s.Kind == JoinScope
}

// Select returns the SELECT node whose clauses s belongs to, or Nil.
func (s *Scope) Select() ast.ID {
	for sc := s; sc != nil; sc = sc.parent {
		switch sc.Kind {
		case SelectScope, AggregatingScope, OrderByScope:
			return sc.Node
		}
	}
	return ast.Nil
}

// selectScope returns the nearest enclosing SelectScope.
func (s *Scope) selectScope() *Scope {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.Kind == SelectScope {
			return sc
		}
	}
	return nil
}

// aggregating returns the aggregating scope whose rules apply to
// expressions validated in s, or nil.
func (s *Scope) aggregating() *Scope {
	switch s.Kind {
	case AggregatingScope:
		return s
	case OrderByScope:
		return s.parent.aggregating()
	}
	return nil
}

// operandScope returns the scope in which the operands of a call are
// validated.  Aggregate operands see the ungrouped relation.
func (s *Scope) operandScope(aggregate bool) *Scope {
	switch s.Kind {
	case OrderByScope:
		if aggregate {
			return s.parent.operandScope(true)
		}
	case AggregatingScope:
		if aggregate {
			return s.parent
		}
	}
	return s
}

// findChild looks for a relation with the given alias in s and its
// ancestors.
func (s *Scope) findChild(m nameMatcher, alias string) (*Child, *Scope) {
	for sc := s; sc != nil; sc = sc.parent {
		if !sc.holdsChildren() {
			continue
		}
		for _, c := range sc.children {
			if m.match(c.Alias, alias) {
				return c, sc
			}
		}
	}
	return nil, nil
}

// visibleChildren returns the relations visible from s, nearest first.
func (s *Scope) visibleChildren() []*Child {
	var out []*Child
	for sc := s; sc != nil; sc = sc.parent {
		if sc.holdsChildren() {
			out = append(out, sc.children...)
		}
	}
	return out
}
