package semantic

import (
	"fmt"

	"github.com/brimdata/sqlsem/catalog"
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/types"
	"go.uber.org/zap"
)

type NamespaceKind int

const (
	TableNamespace NamespaceKind = iota
	SelectNamespace
	JoinNamespace
	SetOpNamespace
	ValuesNamespace
	UnnestNamespace
	CollectNamespace
	DMLNamespace
)

func (k NamespaceKind) String() string {
	switch k {
	case TableNamespace:
		return "table"
	case SelectNamespace:
		return "select"
	case JoinNamespace:
		return "join"
	case SetOpNamespace:
		return "setop"
	case ValuesNamespace:
		return "values"
	case UnnestNamespace:
		return "unnest"
	case CollectNamespace:
		return "collect"
	case DMLNamespace:
		return "dml"
	}
	return fmt.Sprintf("NamespaceKind(%d)", int(k))
}

type status int

const (
	unvalidated status = iota
	inProgress
	valid
)

// Namespace describes the row type of a relation-valued node.  Its row
// type is set once, when the namespace is validated.
type Namespace struct {
	Kind NamespaceKind
	// Node is the relation-valued node and Enclosing the node that
	// introduced it, e.g. an AS call.
	Node      ast.ID
	Enclosing ast.ID
	status    status
	rowType   *types.Type
	table     catalog.Table
	// scope is the scope in which the node's own expressions are
	// validated.
	scope     *Scope
	monotonic map[string]bool
}

func (n *Namespace) RowType() *types.Type {
	return n.rowType
}

func (n *Namespace) IsValid() bool {
	return n.status == valid
}

// Table returns the catalog table of a table or DML namespace.
func (n *Namespace) Table() catalog.Table {
	return n.table
}

// Monotonic reports whether the named column is known to be sorted.
func (n *Namespace) Monotonic(column string) bool {
	if n.table != nil && n.Kind == TableNamespace {
		return n.table.Monotonic(column)
	}
	return n.monotonic[column]
}

func (n *Namespace) anyMonotonic() bool {
	if n.rowType == nil {
		return false
	}
	for _, f := range n.rowType.Fields {
		if n.Monotonic(f.Name) {
			return true
		}
	}
	return false
}

func (a *analyzer) newNamespace(kind NamespaceKind, node, enclosing ast.ID, scope *Scope) *Namespace {
	ns := &Namespace{Kind: kind, Node: node, Enclosing: enclosing, scope: scope}
	a.namespaces[node] = ns
	if enclosing != ast.Nil && enclosing != node {
		if _, ok := a.namespaces[enclosing]; !ok {
			a.namespaces[enclosing] = ns
		}
	}
	return ns
}

// validateNamespace computes the row type of ns.  target, when known, is
// the row type the relation is expected to conform to, e.g. the target of
// an INSERT.
func (a *analyzer) validateNamespace(ns *Namespace, target *types.Type) error {
	switch ns.status {
	case valid:
		return nil
	case inProgress:
		return a.errorf(ns.Node, ValidationCycle, "Cycle detected during type-checking")
	}
	ns.status = inProgress
	typ, err := a.validateNamespaceImpl(ns, target)
	if err != nil {
		ns.status = unvalidated
		ns.rowType = nil
		return err
	}
	ns.rowType = typ
	ns.status = valid
	a.setType(ns.Node, typ)
	if a.tree.Is(ns.Enclosing, operator.As) {
		a.setType(ns.Enclosing, typ)
	}
	a.logger.Debug("namespace validated",
		zap.Stringer("kind", ns.Kind),
		zap.Int32("node", int32(ns.Node)),
		zap.Stringer("type", typ))
	return nil
}

func (a *analyzer) validateNamespaceImpl(ns *Namespace, target *types.Type) (*types.Type, error) {
	switch ns.Kind {
	case TableNamespace:
		return a.validateTable(ns)
	case SelectNamespace:
		return a.validateSelect(ns, target)
	case JoinNamespace:
		return a.joinRowType(ns.Node)
	case SetOpNamespace:
		return a.validateSetOp(ns, target)
	case ValuesNamespace:
		return a.validateValues(ns, target)
	case UnnestNamespace:
		return a.validateUnnest(ns)
	case CollectNamespace:
		return a.validateCollect(ns)
	case DMLNamespace:
		return a.validateTarget(ns)
	}
	return nil, a.errorf(ns.Node, Internal, "unknown namespace kind %s", ns.Kind)
}

// validateTable looks up the table named by an identifier in the
// catalog.
func (a *analyzer) validateTable(ns *Namespace) (*types.Type, error) {
	id := a.tree.Identifier(ns.Node)
	if id == nil {
		return nil, a.errorf(ns.Node, Internal, "table namespace on a non-identifier")
	}
	table, err := a.catalog.Table(id.Names)
	if err != nil {
		return nil, err
	}
	if table == nil {
		e := a.errorf(ns.Node, TableNotFound, "Object '%s' not found", id.String())
		prefix := id.Names[:len(id.Names)-1]
		if objects, err := a.catalog.SchemaObjects(prefix); err == nil {
			e.Suggestions = suggest(id.Last(), objects, a.config.Suggestions)
		}
		return nil, e
	}
	ns.table = table
	return a.types.Import(table.RowType()), nil
}
