package semantic

import (
	"slices"
	"strings"

	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/types"
)

// resolved is the referent of an identifier.
type resolved struct {
	// child is the relation supplying the column, or nil for a
	// reference to a select-list alias.
	child *Child
	// names is the fully qualified form of the identifier.
	names []string
	typ   *types.Type
}

// resolveIdentifier resolves a column, field or relation reference in
// scope.
func (a *analyzer) resolveIdentifier(scope *Scope, id ast.ID, ident *ast.Identifier) (*resolved, error) {
	if ident.IsStar() {
		return nil, a.errorf(id, UnknownIdentifier, "Unknown identifier '%s'", ident.String())
	}
	if ident.IsSimple() {
		return a.resolveSimple(scope, id, ident.Names[0])
	}
	return a.resolveCompound(scope, id, ident.Names)
}

func (a *analyzer) resolveSimple(scope *Scope, id ast.ID, name string) (*resolved, error) {
	if scope.Kind == OrderByScope {
		r, err := a.resolveSelectAlias(scope, id, name)
		if r != nil || err != nil {
			return r, err
		}
	}
	r, err := a.resolveColumn(scope, id, name)
	if r != nil || err != nil {
		return r, err
	}
	if child, _ := scope.findChild(a.matcher, name); child != nil {
		row, err := a.childRowType(child)
		if err != nil {
			return nil, err
		}
		return &resolved{child: child, names: []string{child.Alias}, typ: row}, nil
	}
	e := a.errorf(id, UnknownIdentifier, "Column '%s' not found in any table", name)
	e.Suggestions = suggest(name, a.visibleNames(scope), a.config.Suggestions)
	return nil, e
}

// resolveSelectAlias looks name up among the output columns of the
// SELECT an ORDER BY belongs to.
func (a *analyzer) resolveSelectAlias(scope *Scope, id ast.ID, name string) (*resolved, error) {
	ns := a.namespaces[scope.Node]
	if ns == nil || ns.rowType == nil {
		return nil, nil
	}
	var match *types.Field
	for k, f := range ns.rowType.Fields {
		if !a.matcher.match(f.Name, name) {
			continue
		}
		if match != nil {
			return nil, a.errorf(id, AmbiguousColumn, "Column '%s' is ambiguous", name)
		}
		match = &ns.rowType.Fields[k]
	}
	if match == nil {
		return nil, nil
	}
	return &resolved{names: []string{match.Name}, typ: match.Type}, nil
}

// resolveColumn finds the single relation owning column name, searching
// from scope outward.  It returns nil, nil when no relation owns it.
func (a *analyzer) resolveColumn(scope *Scope, id ast.ID, name string) (*resolved, error) {
	for sc := scope; sc != nil; sc = sc.parent {
		if !sc.holdsChildren() {
			continue
		}
		var found *resolved
		for _, child := range sc.children {
			if child.Namespace.status == inProgress {
				// A LATERAL item cannot see its own columns.
				continue
			}
			row, err := a.childRowType(child)
			if err != nil {
				return nil, err
			}
			f, ok := a.field(row, name)
			if !ok {
				continue
			}
			if found != nil {
				return nil, a.errorf(id, AmbiguousColumn, "Column '%s' is ambiguous", name)
			}
			found = &resolved{child: child, names: []string{child.Alias, f.Name}, typ: f.Type}
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, nil
}

func (a *analyzer) resolveCompound(scope *Scope, id ast.ID, names []string) (*resolved, error) {
	for k := len(names) - 1; k >= 1; k-- {
		child := a.findTable(scope, names[:k])
		if child == nil {
			continue
		}
		row, err := a.childRowType(child)
		if err != nil {
			return nil, err
		}
		r := &resolved{child: child, names: []string{child.Alias}, typ: row}
		return a.resolveFields(id, r, names[k:], strings.Join(names[:k], "."))
	}
	if r, err := a.resolveColumn(scope, id, names[0]); err != nil || r != nil {
		if err != nil {
			return nil, err
		}
		return a.resolveFields(id, r, names[1:], names[0])
	}
	table := names[0]
	e := a.errorf(id, TableNotFound, "Table '%s' not found", table)
	var aliases []string
	for _, c := range scope.visibleChildren() {
		aliases = append(aliases, c.Alias)
	}
	e.Suggestions = suggest(table, aliases, a.config.Suggestions)
	return nil, e
}

// resolveFields descends from r through the named record fields.
func (a *analyzer) resolveFields(id ast.ID, r *resolved, fields []string, owner string) (*resolved, error) {
	for _, name := range fields {
		if !r.typ.IsRow() {
			return nil, a.errorf(id, UnknownField, "Column '%s' not found in table '%s'", name, owner)
		}
		f, ok := a.field(r.typ, name)
		if !ok {
			e := a.errorf(id, UnknownField, "Column '%s' not found in table '%s'", name, owner)
			e.Suggestions = suggest(name, r.typ.FieldNames(), a.config.Suggestions)
			return nil, e
		}
		typ := f.Type
		if r.typ.Nullable {
			typ = a.types.Nullable(typ, true)
		}
		r = &resolved{child: r.child, names: append(slices.Clone(r.names), f.Name), typ: typ}
		owner = f.Name
	}
	return r, nil
}

// findTable returns the visible relation named by prefix: an alias when
// prefix has one segment, otherwise a table whose qualified name ends
// with prefix.
func (a *analyzer) findTable(scope *Scope, prefix []string) *Child {
	if len(prefix) == 1 {
		child, _ := scope.findChild(a.matcher, prefix[0])
		return child
	}
	for _, child := range scope.visibleChildren() {
		if child.Namespace.Kind != TableNamespace {
			continue
		}
		if err := a.validateNamespace(child.Namespace, nil); err != nil {
			continue
		}
		qname := child.Namespace.table.QualifiedName()
		if len(qname) >= len(prefix) && a.matcher.matchAll(qname[len(qname)-len(prefix):], prefix) {
			return child
		}
	}
	return nil
}

// childRowType validates the namespace of child and returns its row type
// as seen through child, i.e. with every column nullable for the
// null-supplying side of an outer join.
func (a *analyzer) childRowType(child *Child) (*types.Type, error) {
	if err := a.validateNamespace(child.Namespace, nil); err != nil {
		return nil, err
	}
	row := child.Namespace.rowType
	if child.Nullable {
		row = a.types.Nullable(row, true)
	}
	return row, nil
}

func (a *analyzer) field(row *types.Type, name string) (types.Field, bool) {
	for _, f := range row.Fields {
		if a.matcher.match(f.Name, name) {
			return f, true
		}
	}
	return types.Field{}, false
}

// fullyQualify returns the qualified form of an identifier or nil if it
// does not resolve.
func (a *analyzer) fullyQualify(scope *Scope, id ast.ID) []string {
	if names, ok := a.qualified[id]; ok {
		return names
	}
	ident := a.tree.Identifier(id)
	if ident == nil {
		return nil
	}
	r, err := a.resolveIdentifier(scope, id, ident)
	if err != nil {
		return nil
	}
	return r.names
}

// visibleNames lists the columns and aliases visible from scope.
func (a *analyzer) visibleNames(scope *Scope) []string {
	var names []string
	for _, child := range scope.visibleChildren() {
		names = append(names, child.Alias)
		if child.Namespace.IsValid() {
			names = append(names, child.Namespace.rowType.FieldNames()...)
		}
	}
	return names
}
