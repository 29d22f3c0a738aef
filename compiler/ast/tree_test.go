package ast_test

import (
	"testing"

	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plus(t *testing.T) *operator.Operator {
	ops := operator.NewStdCatalog(types.NewFactory()).Lookup("+", operator.Binary)
	require.Len(t, ops, 1)
	return ops[0]
}

func TestIdentity(t *testing.T) {
	tree := ast.NewTree()
	a := tree.NewIdentifier("x")
	b := tree.NewIdentifier("x")
	assert.NotEqual(t, a, b)
	assert.True(t, tree.Equal(a, b))
	assert.Nil(t, tree.Node(ast.Nil))
	assert.Nil(t, tree.Call(a))
	assert.Equal(t, operator.Other, tree.Kind(a))
}

func TestEqualIgnoresLocation(t *testing.T) {
	op := plus(t)
	tree := ast.NewTree()
	one := tree.Add(&ast.Literal{Tag: ast.ExactLit, Value: decimal.RequireFromString("1.0"), Loc: ast.NewLoc(3, 6)})
	a := tree.NewCall(op, one, tree.NewIdentifier("x"))
	b := tree.NewCall(op, tree.NewInt(1), tree.NewIdentifier("x"))
	c := tree.NewCall(op, tree.NewInt(2), tree.NewIdentifier("x"))
	assert.True(t, tree.Equal(a, b))
	assert.False(t, tree.Equal(a, c))
	assert.False(t, tree.Equal(a, tree.NewIdentifier("x")))
}

func TestEqualFunc(t *testing.T) {
	tree := ast.NewTree()
	a := tree.NewIdentifier("EMP", "ENAME")
	b := tree.NewIdentifier("ENAME")
	last := func(x, y *ast.Identifier) bool { return x.Last() == y.Last() }
	assert.False(t, tree.Equal(a, b))
	assert.True(t, tree.EqualFunc(a, b, last))
}

func TestWalkAndImport(t *testing.T) {
	op := plus(t)
	src := ast.NewTree()
	root := src.NewCall(op, src.NewInt(1), src.NewCall(op, src.NewIdentifier("a"), src.NewNull()))
	var visited int
	src.Walk(root, func(ast.ID) bool {
		visited++
		return true
	})
	assert.Equal(t, 5, visited)

	dst := ast.NewTree()
	dst.NewSymbol("pad")
	copied := dst.Import(src, root)
	assert.Equal(t, 6, dst.Len())
	assert.True(t, dst.IsNullLiteral(dst.Operand(dst.Operand(copied, 1), 1)))
	assert.Equal(t, "a", dst.Identifier(dst.Operand(dst.Operand(copied, 1), 0)).String())
}

func TestWalkSkipsChildren(t *testing.T) {
	op := plus(t)
	tree := ast.NewTree()
	root := tree.NewCall(op, tree.NewInt(1), tree.NewCall(op, tree.NewInt(2), tree.NewInt(3)))
	var visited []ast.ID
	tree.Walk(root, func(id ast.ID) bool {
		visited = append(visited, id)
		return id == root
	})
	assert.Len(t, visited, 3)
}

func TestNodeAt(t *testing.T) {
	tree := ast.NewTree()
	x := tree.Add(&ast.Identifier{Names: []string{"x"}, Loc: ast.NewLoc(3, 4)})
	y := tree.Add(&ast.Identifier{Names: []string{"y"}, Loc: ast.NewLoc(5, 6)})
	call := tree.Add(&ast.Call{Op: plus(t), Args: []ast.ID{x, y}, Loc: ast.NewLoc(0, 7)})
	assert.Equal(t, x, tree.NodeAt(3))
	assert.Equal(t, call, tree.NodeAt(4))
	assert.Equal(t, ast.Nil, tree.NodeAt(9))
}
