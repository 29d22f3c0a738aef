package semantic_test

import (
	"testing"

	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/compiler/semantic"
	"github.com/brimdata/sqlsem/compiler/sexpr"
	"github.com/brimdata/sqlsem/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
	}{
		{
			"order by pushed into select",
			"(ORDER_BY :query (SELECT :list [ENAME] :from EMP) :order [ENAME])",
			"(SELECT :list [ENAME] :from EMP :order [ENAME])",
		},
		{
			"order by over union",
			"(ORDER_BY :query (UNION (SELECT :list [ENAME] :from EMP) (SELECT :list [NAME] :from DEPT)) :order [1])",
			"(SELECT :list [*] :from (UNION (SELECT :list [ENAME] :from EMP) (SELECT :list [NAME] :from DEPT)) :order [1])",
		},
		{
			"top level values",
			"(VALUES (ROW 1 2))",
			"(SELECT :list [*] :from (VALUES (ROW 1 2)))",
		},
		{
			"delete",
			"(DELETE :target EMP :condition (= EMPNO 1))",
			"(DELETE :target EMP :condition (= EMPNO 1) :source_select (SELECT :list [*] :from EMP :where (= EMPNO 1)))",
		},
		{
			"update",
			"(UPDATE :target EMP :columns [SAL] :sources [0])",
			"(UPDATE :target EMP :columns [SAL] :sources [0] :source_select (SELECT :list [* (AS 0 EXPR$0)] :from EMP))",
		},
		{
			"simple case",
			"(CASE :value DEPTNO :when [10 20] :then ['a' 'b'])",
			"(CASE :when [(= DEPTNO 10) (= DEPTNO 20)] :then ['a' 'b'])",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ops := operator.NewStdCatalog(types.NewFactory())
			p, err := sexpr.Parse(ops, c.in)
			require.NoError(t, err)
			out, root, err := semantic.Rewrite(ops, p.Tree(), p.Root())
			require.NoError(t, err)
			assert.Equal(t, c.out, sexpr.Format(out, root))
			assert.Equal(t, c.in, sexpr.Format(p.Tree(), p.Root()))
		})
	}
}

func TestRewriteSharesUpdateSources(t *testing.T) {
	ops := operator.NewStdCatalog(types.NewFactory())
	p, err := sexpr.Parse(ops, "(UPDATE :target EMP :columns [SAL] :sources [(+ SAL 1)])")
	require.NoError(t, err)
	out, root, err := semantic.Rewrite(ops, p.Tree(), p.Root())
	require.NoError(t, err)
	src := out.Items(out.Operand(root, operator.UpdateSources))[0]
	sel := out.Operand(root, operator.UpdateSourceSelect)
	as := out.Items(out.Operand(sel, operator.SelectList))[1]
	assert.Equal(t, src, out.Operand(as, 0))
	assert.Equal(t, out.Loc(src), out.Loc(as))
}
