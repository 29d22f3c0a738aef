package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupHints(t *testing.T) {
	cases := []struct {
		name string
		text string
		pos  int
		want []string
	}{
		{"column prefix", "(SELECT :list [EN] :from EMP)", 16, []string{"ENAME"}},
		{"aliases and columns", "(SELECT :list [E] :from EMP)", 15, []string{"EMP", "EMPNO", "ENAME"}},
		{"qualified column", "(SELECT :list [E.SA] :from (AS EMP E))", 18, []string{"SAL"}},
		{"table", "(SELECT :list [ENAME] :from DE)", 29, []string{"DEPT"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x := newFixture(t)
			p := x.parse(t, c.text)
			hints, err := x.v.LookupHints(p.Tree(), p.Root(), c.pos)
			require.NoError(t, err)
			assert.Equal(t, c.want, hints)
		})
	}
}

func TestLookupHintsInvalidStatement(t *testing.T) {
	x := newFixture(t)
	p := x.parse(t, "(SELECT :list [SA] :from EMP :where (= NOSUCH 1))")
	hints, err := x.v.LookupHints(p.Tree(), p.Root(), 16)
	require.NoError(t, err)
	assert.Equal(t, []string{"SAL"}, hints)
}
