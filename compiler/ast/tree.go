package ast

import (
	"bytes"
	"slices"
	"time"

	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/shopspring/decimal"
)

// Tree is an arena of nodes.  Nodes are never modified once added; a
// rewrite produces a new Tree.
type Tree struct {
	nodes []Node
}

func NewTree() *Tree {
	// Slot zero holds the Nil node.
	return &Tree{nodes: []Node{nil}}
}

// Add appends n to the arena and returns its ID.
func (t *Tree) Add(n Node) ID {
	t.nodes = append(t.nodes, n)
	return ID(len(t.nodes) - 1)
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// Node returns the node with the given ID or nil for Nil or an ID not in
// the tree.
func (t *Tree) Node(id ID) Node {
	if id <= Nil || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

func (t *Tree) Call(id ID) *Call {
	c, _ := t.Node(id).(*Call)
	return c
}

func (t *Tree) Identifier(id ID) *Identifier {
	i, _ := t.Node(id).(*Identifier)
	return i
}

func (t *Tree) Literal(id ID) *Literal {
	l, _ := t.Node(id).(*Literal)
	return l
}

func (t *Tree) List(id ID) *List {
	l, _ := t.Node(id).(*List)
	return l
}

func (t *Tree) DynamicParam(id ID) *DynamicParam {
	p, _ := t.Node(id).(*DynamicParam)
	return p
}

func (t *Tree) DataTypeSpec(id ID) *DataTypeSpec {
	d, _ := t.Node(id).(*DataTypeSpec)
	return d
}

// Kind returns the operator kind of a call or Other for any other node.
func (t *Tree) Kind(id ID) operator.Kind {
	if c := t.Call(id); c != nil {
		return c.Op.Kind
	}
	return operator.Other
}

// Is reports whether id is a call of one of the given kinds.
func (t *Tree) Is(id ID, kinds ...operator.Kind) bool {
	c := t.Call(id)
	return c != nil && slices.Contains(kinds, c.Op.Kind)
}

// Operand returns operand i of call id or Nil.
func (t *Tree) Operand(id ID, i int) ID {
	if c := t.Call(id); c != nil {
		return c.Arg(i)
	}
	return Nil
}

// Items returns the items of list id.  A Nil id yields no items.
func (t *Tree) Items(id ID) []ID {
	if l := t.List(id); l != nil {
		return l.Items
	}
	return nil
}

// IsNullLiteral reports whether id is the NULL literal, possibly wrapped
// in a CAST.
func (t *Tree) IsNullLiteral(id ID) bool {
	switch n := t.Node(id).(type) {
	case *Literal:
		return n.Tag == NullLit
	case *Call:
		return n.Op.Kind == operator.Cast && t.IsNullLiteral(n.Arg(0))
	}
	return false
}

// Loc returns the location of id or NoLoc.
func (t *Tree) Loc(id ID) Loc {
	switch n := t.Node(id).(type) {
	case *Call:
		return n.Loc
	case *Identifier:
		return n.Loc
	case *Literal:
		return n.Loc
	case *List:
		return n.Loc
	case *DataTypeSpec:
		return n.Loc
	case *DynamicParam:
		return n.Loc
	case *IntervalQualifier:
		return n.Loc
	}
	return NoLoc
}

// Children returns the non-Nil operands of a call or the items of a list.
func (t *Tree) Children(id ID) []ID {
	var out []ID
	switch n := t.Node(id).(type) {
	case *Call:
		for _, a := range n.Args {
			if a != Nil {
				out = append(out, a)
			}
		}
	case *List:
		out = n.Items
	}
	return out
}

// Walk visits id and its descendants in preorder.  When visit returns
// false the children of that node are skipped.
func (t *Tree) Walk(id ID, visit func(ID) bool) {
	if id == Nil || !visit(id) {
		return
	}
	for _, child := range t.Children(id) {
		t.Walk(child, visit)
	}
}

// Import deep-copies node id of src into t and returns the new ID.
func (t *Tree) Import(src *Tree, id ID) ID {
	switch n := src.Node(id).(type) {
	case nil:
		return Nil
	case *Call:
		args := make([]ID, len(n.Args))
		for k, a := range n.Args {
			args[k] = t.Import(src, a)
		}
		return t.Add(&Call{Op: n.Op, Args: args, Loc: n.Loc})
	case *List:
		items := make([]ID, len(n.Items))
		for k, item := range n.Items {
			items[k] = t.Import(src, item)
		}
		return t.Add(&List{Items: items, Loc: n.Loc})
	case *Identifier:
		c := *n
		c.Names = slices.Clone(n.Names)
		return t.Add(&c)
	case *Literal:
		c := *n
		return t.Add(&c)
	case *DataTypeSpec:
		c := *n
		c.Names = slices.Clone(n.Names)
		return t.Add(&c)
	case *DynamicParam:
		c := *n
		return t.Add(&c)
	case *IntervalQualifier:
		c := *n
		return t.Add(&c)
	}
	panic("ast.Import: unknown node type")
}

// Equal reports whether a and b are structurally equal, ignoring
// locations.
func (t *Tree) Equal(a, b ID) bool {
	return t.EqualFunc(a, b, func(x, y *Identifier) bool {
		return slices.Equal(x.Names, y.Names)
	})
}

// EqualFunc is like Equal but compares identifiers with eq.
func (t *Tree) EqualFunc(a, b ID, eq func(x, y *Identifier) bool) bool {
	if a == b {
		return true
	}
	switch x := t.Node(a).(type) {
	case nil:
		return t.Node(b) == nil
	case *Call:
		y, ok := t.Node(b).(*Call)
		if !ok || x.Op != y.Op || len(x.Args) != len(y.Args) {
			return false
		}
		for k := range x.Args {
			if !t.EqualFunc(x.Args[k], y.Args[k], eq) {
				return false
			}
		}
		return true
	case *List:
		y, ok := t.Node(b).(*List)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for k := range x.Items {
			if !t.EqualFunc(x.Items[k], y.Items[k], eq) {
				return false
			}
		}
		return true
	case *Identifier:
		y, ok := t.Node(b).(*Identifier)
		return ok && eq(x, y)
	case *Literal:
		y, ok := t.Node(b).(*Literal)
		return ok && x.Tag == y.Tag && equalValues(x.Value, y.Value)
	case *DataTypeSpec:
		y, ok := t.Node(b).(*DataTypeSpec)
		return ok && slices.Equal(x.Names, y.Names) && x.Precision == y.Precision && x.Scale == y.Scale && x.Charset == y.Charset
	case *DynamicParam:
		y, ok := t.Node(b).(*DynamicParam)
		return ok && x.Index == y.Index
	case *IntervalQualifier:
		y, ok := t.Node(b).(*IntervalQualifier)
		return ok && x.Qualifier == y.Qualifier
	}
	return false
}

func equalValues(a, b any) bool {
	switch x := a.(type) {
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.Equal(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case CharValue:
		y, ok := b.(CharValue)
		if !ok || x.Value != y.Value || x.Charset != y.Charset {
			return false
		}
		return x.Collation == nil && y.Collation == nil ||
			x.Collation != nil && y.Collation != nil && *x.Collation == *y.Collation
	case IntervalValue:
		y, ok := b.(IntervalValue)
		return ok && x.Sign == y.Sign && x.Qualifier == y.Qualifier && slices.Equal(x.Fields, y.Fields)
	}
	return a == b
}

// NodeAt returns the innermost node whose location contains offset pos,
// or Nil.
func (t *Tree) NodeAt(pos int) ID {
	best := Nil
	width := -1
	for k := 1; k < len(t.nodes); k++ {
		loc := t.Loc(ID(k))
		if !loc.Contains(pos) {
			continue
		}
		if w := loc.Last - loc.First; width < 0 || w < width {
			best, width = ID(k), w
		}
	}
	return best
}
