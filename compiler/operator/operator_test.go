package operator_test

import (
	"errors"
	"testing"

	"github.com/brimdata/sqlsem/collation"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binding(f *types.Factory, op *operator.Operator, ts ...*types.Type) *operator.CallBinding {
	return &operator.CallBinding{Op: op, Types: f, Operands: ts}
}

func TestPrecedenceInvariant(t *testing.T) {
	c := operator.NewStdCatalog(types.NewFactory())
	for _, op := range c.Operators() {
		assert.LessOrEqual(t, op.LeftPrec, op.RightPrec, op.Name)
	}
	err := c.Register(&operator.Operator{Name: "BAD", LeftPrec: 3, RightPrec: 2})
	assert.ErrorIs(t, err, operator.ErrPrecedence)
}

func TestLookup(t *testing.T) {
	c := operator.NewStdCatalog(types.NewFactory())
	minus := c.Lookup("-", operator.Binary)
	require.Len(t, minus, 1)
	assert.Equal(t, operator.Minus, minus[0].Kind)
	neg := c.Lookup("-", operator.Prefix)
	require.Len(t, neg, 1)
	assert.Equal(t, operator.MinusPrefix, neg[0].Kind)
	assert.Len(t, c.Lookup("log", operator.FunctionSyntax), 2)
	assert.Len(t, c.Lookup("current_date", operator.FunctionSyntax), 1)
	assert.Empty(t, c.Lookup("NO_SUCH_FUNCTION", operator.FunctionSyntax))
	assert.Equal(t, "SELECT", c.MustKind(operator.Select).Name)
	assert.Contains(t, c.FunctionNames(), "UPPER")
}

func TestOperandCount(t *testing.T) {
	assert.True(t, operator.Exactly(2).Allows(2))
	assert.False(t, operator.Exactly(2).Allows(3))
	assert.True(t, operator.Range(2, 3).Allows(3))
	assert.True(t, operator.AtLeast(1).Allows(10))
	assert.False(t, operator.AtLeast(1).Allows(0))
	assert.True(t, operator.OneOf(1, 3).Allows(3))
	assert.False(t, operator.OneOf(1, 3).Allows(2))
	assert.Equal(t, "1 or 3", operator.OneOf(1, 3).String())
	assert.Equal(t, "at least 1", operator.AtLeast(1).String())
}

func TestOrChecker(t *testing.T) {
	f := types.NewFactory()
	c := operator.NewStdCatalog(f)
	between := c.Lookup("BETWEEN", operator.Special)[0]
	num, str := f.Sql(types.Integer), f.SqlPrecision(types.Varchar, 5)
	assert.True(t, between.Checker.Check(binding(f, between, num, num, num)))
	assert.True(t, between.Checker.Check(binding(f, between, str, str, str)))
	assert.False(t, between.Checker.Check(binding(f, between, num, str, num)))
	// An OR succeeds iff at least one alternative succeeds.
	or := between.Checker.(operator.AnyOf)
	for _, args := range [][]*types.Type{{num, num, num}, {num, str, num}, {str, str, str}} {
		b := binding(f, between, args...)
		ok := false
		for _, alt := range or {
			ok = ok || alt.Check(b)
		}
		assert.Equal(t, ok, or.Check(b))
	}
	assert.Len(t, between.Checker.Signatures(between), 5)
}

func TestFamiliesSignature(t *testing.T) {
	f := types.NewFactory()
	c := operator.NewStdCatalog(f)
	plus := c.Lookup("+", operator.Binary)[0]
	sigs := plus.Checker.Signatures(plus)
	assert.Contains(t, sigs, "<NUMERIC> + <NUMERIC>")
	abs := c.Lookup("ABS", operator.FunctionSyntax)[0]
	assert.Contains(t, abs.Checker.Signatures(abs), "ABS(<NUMERIC>)")
}

func TestReturnTypes(t *testing.T) {
	f := types.NewFactory()
	c := operator.NewStdCatalog(f)
	eq := c.Lookup("=", operator.Binary)[0]
	i := f.Sql(types.Integer)
	ni := f.Nullable(i, true)
	typ, err := eq.Return(binding(f, eq, i, i))
	require.NoError(t, err)
	assert.Equal(t, "BOOLEAN NOT NULL", typ.String())
	typ, err = eq.Return(binding(f, eq, i, ni))
	require.NoError(t, err)
	assert.Equal(t, "BOOLEAN", typ.String())

	times := c.Lookup("*", operator.Binary)[0]
	typ, err = times.Return(binding(f, times, f.Decimal(5, 2), f.Decimal(4, 1)))
	require.NoError(t, err)
	assert.Same(t, f.Decimal(9, 3), typ)
}

func TestConcatCollation(t *testing.T) {
	f := types.NewFactory()
	c := operator.NewStdCatalog(f)
	concat := c.Lookup("||", operator.Binary)[0]
	a := f.Char(types.Char, 3, collation.Collation{Name: "A", Charset: collation.DefaultCharset, Coercibility: collation.Implicit})
	b := f.Char(types.Char, 4, collation.Collation{Name: "B", Charset: collation.DefaultCharset, Coercibility: collation.Implicit})
	typ, err := concat.Return(binding(f, concat, a, b))
	require.NoError(t, err)
	assert.Equal(t, types.Varchar, typ.Name)
	assert.Equal(t, 7, typ.Precision)
	assert.Equal(t, collation.None, typ.Collation.Coercibility)

	x := f.Char(types.Char, 3, collation.Collation{Name: "A", Charset: collation.DefaultCharset, Coercibility: collation.Explicit})
	y := f.Char(types.Char, 3, collation.Collation{Name: "B", Charset: collation.DefaultCharset, Coercibility: collation.Explicit})
	_, err = concat.Return(binding(f, concat, x, y))
	var incompat *collation.IncompatibleError
	assert.True(t, errors.As(err, &incompat))
}

func TestOperandInference(t *testing.T) {
	f := types.NewFactory()
	i := f.Sql(types.Integer)
	out := make([]*types.Type, 2)
	operator.FirstKnown(&operator.CallBinding{Types: f, Operands: []*types.Type{types.Unknown, i}}, nil, out)
	assert.Equal(t, []*types.Type{i, i}, out)

	row := f.Row([]types.Field{{Name: "A", Type: i}, {Name: "B", Type: f.Sql(types.Date)}})
	operator.ReturnType(nil, row, out)
	assert.Same(t, f.Sql(types.Date), out[1])
}
