package sexpr_test

import (
	"testing"
	"time"

	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/compiler/sexpr"
	"github.com/brimdata/sqlsem/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ops = operator.NewStdCatalog(types.NewFactory())

func parse(t *testing.T, text string) *sexpr.AST {
	t.Helper()
	p, err := sexpr.Parse(ops, text)
	require.NoError(t, err)
	return p
}

func TestSelectSlots(t *testing.T) {
	p := parse(t, `
-- a comment
(SELECT :list [ENAME (AS (+ SAL 1) BONUS)]
        :from EMP
        :where (> SAL 1000))`)
	tree := p.Tree()
	root := p.Root()
	require.Equal(t, operator.Select, tree.Kind(root))
	assert.Len(t, tree.Call(root).Args, 8)
	assert.Len(t, tree.Items(tree.Operand(root, operator.SelectList)), 2)
	assert.Equal(t, "EMP", tree.Identifier(tree.Operand(root, operator.SelectFrom)).String())
	assert.Equal(t, operator.GreaterThan, tree.Kind(tree.Operand(root, operator.SelectWhere)))
	assert.Equal(t, ast.Nil, tree.Operand(root, operator.SelectGroup))
}

func TestRoundTrip(t *testing.T) {
	for _, text := range []string{
		"(SELECT :list [ENAME (AS (+ SAL 1) BONUS)] :from EMP :where (> SAL 1000))",
		"(SELECT :list [(- SAL) (- SAL 1) (IS_NOT_NULL COMM)] :from EMP)",
		"(LIKE ENAME 'A%' '!')",
		"(CAST ? {TYPE DECIMAL 7 2})",
		"(+ {DATE '2024-01-31'} {INTERVAL '-1-2' YEAR TO MONTH})",
		"(EXTRACT #DAY {INTERVAL '3 04:05:06' DAY TO SECOND})",
		"(= {COLLATE ENAME ISO-8859-1$en_US$primary} {CHARSET 'it''s' UTF-8})",
		"(VALUES (ROW 1 1.5E+00 null true {TIMESTAMP '2024-01-31 10:30:00'}))",
		"(FOO 1 2)",
		"(OVER (SUM SAL) (WINDOW :partition [DEPTNO] :order [EMPNO] :rows true :lower #UNBOUNDED_PRECEDING :upper (PRECEDING 3)))",
	} {
		t.Run(text, func(t *testing.T) {
			p := parse(t, text)
			assert.Equal(t, text, sexpr.Format(p.Tree(), p.Root()))
		})
	}
}

func TestOperatorSyntax(t *testing.T) {
	p := parse(t, "(+ (- 1) (- 2 3))")
	tree := p.Tree()
	assert.Equal(t, operator.Binary, tree.Call(p.Root()).Op.Syntax)
	assert.Equal(t, operator.Prefix, tree.Call(tree.Operand(p.Root(), 0)).Op.Syntax)
	assert.Equal(t, operator.Binary, tree.Call(tree.Operand(p.Root(), 1)).Op.Syntax)
}

func TestUnresolvedFunction(t *testing.T) {
	p := parse(t, "(nosuch 1)")
	op := p.Tree().Call(p.Root()).Op
	assert.True(t, op.IsUnresolved())
	assert.Equal(t, "NOSUCH", op.Name)
}

func TestLiterals(t *testing.T) {
	p := parse(t, "[1 2.50 1e3 'x' #BOTH ? ? {TIME '10:30:00.25'}]")
	tree := p.Tree()
	items := tree.Items(p.Root())
	require.Len(t, items, 8)
	tags := []ast.LiteralTag{ast.ExactLit, ast.ExactLit, ast.ApproxLit, ast.CharLit, ast.SymbolLit}
	for k, tag := range tags {
		assert.Equal(t, tag, tree.Literal(items[k]).Tag)
	}
	assert.Equal(t, 0, tree.DynamicParam(items[5]).Index)
	assert.Equal(t, 1, tree.DynamicParam(items[6]).Index)
	tm, ok := tree.Literal(items[7]).Time()
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, time.Duration(tm.Nanosecond()))
	assert.Equal(t, 2, tree.Literal(items[7]).Precision)
}

func TestLocations(t *testing.T) {
	p := parse(t, "(+ SAL 1)")
	tree := p.Tree()
	sal := tree.Operand(p.Root(), 0)
	assert.Equal(t, ast.NewLoc(3, 6), tree.Loc(sal))
	assert.Equal(t, sal, tree.NodeAt(4))
	assert.Equal(t, p.Root(), tree.NodeAt(0))
}

func TestErrors(t *testing.T) {
	for _, c := range []struct {
		text string
		msg  string
	}{
		{"(SELECT :bogus 1)", "SELECT has no operand :bogus at line 1, column 9"},
		{"(+ 1", "syntax error: unexpected end of input"},
		{"'abc", "unterminated string literal"},
		{"(+ 1 2) 3", "syntax error: unexpected \"3\" after statement"},
		{"{DATE 'not a date'}", "malformed DATE literal"},
		{"{INTERVAL '1' MONTH TO DAY}", "invalid interval qualifier MONTH TO DAY"},
	} {
		_, err := sexpr.Parse(ops, c.text)
		require.Error(t, err, c.text)
		assert.Contains(t, err.Error(), c.msg, c.text)
	}
}
