package semantic

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
)

// LookupHints returns completion candidates for the identifier at source
// offset pos of the statement rooted at root.  A table name in a FROM
// clause completes against the catalog; a column reference completes
// against the relations visible where it appears.  The statement need not
// be valid.
func (v *Validator) LookupHints(tree *ast.Tree, root ast.ID, pos int) ([]string, error) {
	out, newRoot, err := Rewrite(v.ops, tree, root)
	if err != nil {
		return nil, err
	}
	a := v.newAnalyzer(out, v.logger)
	kind := out.Kind(newRoot)
	if kind.IsQuery() || kind.IsDML() || kind == operator.MultisetQuery {
		err = a.registerQuery(a.root, nil, newRoot, newRoot, "", false)
	} else {
		err = a.registerSubqueries(a.root, newRoot)
	}
	if err != nil {
		return nil, err
	}
	id := out.NodeAt(pos)
	var prefix string
	var qualifier []string
	if ident := out.Identifier(id); ident != nil {
		prefix = ident.Last()
		qualifier = ident.Names[:len(ident.Names)-1]
	}
	if ns := a.namespaces[id]; ns != nil && ns.Kind == TableNamespace && ns.Node == id {
		names, err := a.catalog.SchemaObjects(qualifier)
		if err != nil {
			return nil, err
		}
		return rankHints(prefix, names), nil
	}
	scope := a.scopeAt(id, a.parents(newRoot))
	var candidates []string
	if len(qualifier) > 0 {
		if child := a.findTable(scope, qualifier); child != nil {
			if a.validateNamespace(child.Namespace, nil) == nil {
				candidates = child.Namespace.rowType.FieldNames()
			}
		} else if r, err := a.resolveIdentifier(scope, ast.Nil, &ast.Identifier{Names: qualifier}); err == nil && r.typ.IsRow() {
			candidates = r.typ.FieldNames()
		}
	} else {
		for _, child := range scope.visibleChildren() {
			// Hints are offered for invalid statements too.
			_ = a.validateNamespace(child.Namespace, nil)
		}
		candidates = a.visibleNames(scope)
	}
	return rankHints(prefix, candidates), nil
}

// LookupQualifiedName returns the fully qualified name of the identifier
// at source offset pos of the most recently validated statement.
func (v *Validator) LookupQualifiedName(pos int) ([]string, bool) {
	if v.last == nil {
		return nil, false
	}
	id := v.last.Tree.NodeAt(pos)
	names, ok := v.last.a.qualified[id]
	return names, ok
}

// parents maps each node under root to its parent.
func (a *analyzer) parents(root ast.ID) map[ast.ID]ast.ID {
	m := make(map[ast.ID]ast.ID)
	a.tree.Walk(root, func(id ast.ID) bool {
		for _, child := range a.tree.Children(id) {
			m[child] = id
		}
		return true
	})
	return m
}

var clauseSlots = []struct {
	slot   int
	clause Clause
}{
	{operator.SelectList, SelectClause},
	{operator.SelectFrom, FromClause},
	{operator.SelectWhere, WhereClause},
	{operator.SelectGroup, GroupClause},
	{operator.SelectHaving, HavingClause},
	{operator.SelectWindow, FromClause},
	{operator.SelectOrder, OrderClause},
}

// scopeAt returns the scope serving the clause that contains id.
func (a *analyzer) scopeAt(id ast.ID, parents map[ast.ID]ast.ID) *Scope {
	for child, parent := id, parents[id]; parent != ast.Nil; child, parent = parent, parents[parent] {
		if a.tree.Is(parent, operator.Join) && a.tree.Operand(parent, operator.JoinCondition) == child {
			if s := a.joinScopes[parent]; s != nil {
				return s
			}
		}
		if !a.tree.Is(parent, operator.Select) || a.namespaces[parent] == nil {
			continue
		}
		for _, cs := range clauseSlots {
			if a.tree.Operand(parent, cs.slot) == child {
				if s := a.clauses[clauseKey{parent, cs.clause}]; s != nil {
					return s
				}
			}
		}
	}
	return a.root
}

// rankHints keeps the candidates starting with prefix, ignoring case, and
// orders them by edit distance from prefix then by name.
func rankHints(prefix string, candidates []string) []string {
	upper := strings.ToUpper(prefix)
	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		if c == "" || seen[c] || !strings.HasPrefix(strings.ToUpper(c), upper) {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		di := levenshtein.ComputeDistance(upper, strings.ToUpper(out[i]))
		dj := levenshtein.ComputeDistance(upper, strings.ToUpper(out[j]))
		if di != dj {
			return di < dj
		}
		return out[i] < out[j]
	})
	return out
}
