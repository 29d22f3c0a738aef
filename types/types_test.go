package types_test

import (
	"testing"

	"github.com/brimdata/sqlsem/collation"
	"github.com/brimdata/sqlsem/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterning(t *testing.T) {
	f := types.NewFactory()
	assert.Same(t, f.Sql(types.Integer), f.Sql(types.Integer))
	assert.NotSame(t, f.Sql(types.Integer), f.Nullable(f.Sql(types.Integer), true))
	a := f.Row([]types.Field{{Name: "A", Type: f.Sql(types.Integer)}})
	b := f.Row([]types.Field{{Name: "A", Type: f.Sql(types.Integer)}})
	assert.Same(t, a, b)
	assert.Same(t, types.Unknown, f.Sql(types.UnknownName))
}

func TestString(t *testing.T) {
	f := types.NewFactory()
	assert.Equal(t, "INTEGER NOT NULL", f.Sql(types.Integer).String())
	assert.Equal(t, "VARCHAR(20)", f.Nullable(f.SqlPrecision(types.Varchar, 20), true).String())
	assert.Equal(t, "DECIMAL(7, 2) NOT NULL", f.Decimal(7, 2).String())
	row := f.Row([]types.Field{
		{Name: "EMPNO", Type: f.Sql(types.Integer)},
		{Name: "ENAME", Type: f.Nullable(f.SqlPrecision(types.Varchar, 20), true)},
	})
	assert.Equal(t, "RecordType(INTEGER NOT NULL EMPNO, VARCHAR(20) ENAME)", row.String())
	iv := f.Interval(types.IntervalQualifier{Start: types.Day, End: types.Second})
	assert.Equal(t, "INTERVAL DAY TO SECOND NOT NULL", iv.String())
}

func TestNullableRow(t *testing.T) {
	f := types.NewFactory()
	row := f.Row([]types.Field{{Name: "X", Type: f.Sql(types.Integer)}})
	n := f.Nullable(row, true)
	assert.True(t, n.Fields[0].Type.Nullable)
}

func TestLeastRestrictive(t *testing.T) {
	f := types.NewFactory()
	i := f.Sql(types.Integer)
	assert.Same(t, f.Sql(types.Bigint), f.LeastRestrictive(i, f.Sql(types.Bigint)))
	assert.Same(t, f.Sql(types.Double), f.LeastRestrictive(i, f.Sql(types.Double)))
	assert.Same(t, f.Decimal(12, 2), f.LeastRestrictive(i, f.Decimal(5, 2)))
	assert.Same(t, f.Nullable(i, true), f.LeastRestrictive(i, f.Null()))
	assert.Same(t, f.Null(), f.LeastRestrictive(f.Null(), f.Null()))
	assert.Nil(t, f.LeastRestrictive(i, f.Sql(types.Boolean)))
	assert.Nil(t, f.LeastRestrictive(i, types.Unknown))

	c3 := f.SqlPrecision(types.Char, 3)
	c5 := f.SqlPrecision(types.Char, 5)
	vc := f.LeastRestrictive(c3, c5)
	require.NotNil(t, vc)
	assert.Equal(t, types.Varchar, vc.Name)
	assert.Equal(t, 5, vc.Precision)
	assert.Same(t, c5, f.LeastRestrictive(c5, c5))
}

func TestCompareAssign(t *testing.T) {
	f := types.NewFactory()
	i := f.Sql(types.Integer)
	s := f.SqlPrecision(types.Varchar, 10)
	assert.True(t, types.CanCompare(i, f.Decimal(5, 2)))
	assert.False(t, types.CanCompare(i, s))
	assert.True(t, types.CanCompare(i, f.Null()))
	assert.False(t, types.CanAssign(i, s))
	assert.True(t, types.CanAssign(s, f.Null()))
	assert.True(t, types.CanCast(i, s))
	assert.False(t, types.CanCast(f.Sql(types.Date), i))
}

func TestFamilies(t *testing.T) {
	f := types.NewFactory()
	assert.True(t, types.FamilyNumeric.Contains(f.Decimal(5, 2)))
	assert.True(t, types.FamilyNumeric.Contains(f.Null()))
	assert.False(t, types.FamilyNumeric.Contains(f.Sql(types.Date)))
	assert.True(t, types.FamilyDatetime.Contains(f.Sql(types.Timestamp)))
	assert.True(t, types.FamilyInterval.Contains(f.Sql(types.IntervalYearMonth)))
	assert.False(t, types.FamilyCharacter.Contains(types.Unknown))
}

func TestCollationOnChar(t *testing.T) {
	f := types.NewFactory()
	c := f.SqlPrecision(types.Varchar, 10)
	assert.Equal(t, collation.Coercible, c.Collation.Coercibility)
	imp := f.WithCollation(c, collation.Default(collation.Implicit))
	assert.Equal(t, collation.Implicit, imp.Collation.Coercibility)
	assert.NotSame(t, c, imp)
}

func TestLookupName(t *testing.T) {
	n, ok := types.LookupName("int")
	require.True(t, ok)
	assert.Equal(t, types.Integer, n)
	_, ok = types.LookupName("unknown")
	assert.False(t, ok)
	_, ok = types.LookupName("blob")
	assert.False(t, ok)
}
