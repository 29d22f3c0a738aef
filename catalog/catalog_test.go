package catalog_test

import (
	"testing"

	"github.com/brimdata/sqlsem/catalog"
	"github.com/brimdata/sqlsem/catalog/mock"
	"github.com/brimdata/sqlsem/collation"
	"github.com/brimdata/sqlsem/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func load(t *testing.T, opts ...catalog.Option) (*types.Factory, *catalog.Memory) {
	f := types.NewFactory()
	m, err := catalog.Load(f, "testdata/sales.yaml", opts...)
	require.NoError(t, err)
	return f, m
}

func TestTable(t *testing.T) {
	_, m := load(t)
	emp, err := m.Table([]string{"EMP"})
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, []string{"SALES", "EMP"}, emp.QualifiedName())
	row := emp.RowType()
	assert.Len(t, row.Fields, 9)
	assert.Equal(t, "VARCHAR(20) NOT NULL", row.Fields[1].Type.String())
	assert.Equal(t, collation.Implicit, row.Fields[1].Type.Collation.Coercibility)
	assert.True(t, row.Fields[3].Type.Nullable)

	same, err := m.Table([]string{"SALES", "EMP"})
	require.NoError(t, err)
	assert.Same(t, emp, same)

	missing, err := m.Table([]string{"NOSUCH"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCaseInsensitive(t *testing.T) {
	_, m := load(t)
	missing, err := m.Table([]string{"emp"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, m = load(t, catalog.CaseInsensitive())
	emp, err := m.Table([]string{"sales", "emp"})
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, []string{"SALES", "EMP"}, emp.QualifiedName())
}

func TestCaseInsensitiveUnicode(t *testing.T) {
	f := types.NewFactory()
	doc := catalog.Document{
		DefaultSchema: "S",
		Schemas: []catalog.Schema{{
			Name: "S",
			Tables: []catalog.TableSpec{
				{Name: "STRASSE", Columns: []catalog.Column{{Name: "ID", Type: "INTEGER"}}},
				{Name: "Caf\u00e9", Columns: []catalog.Column{{Name: "ID", Type: "INTEGER"}}},
			},
		}},
	}
	m, err := catalog.New(f, doc, catalog.CaseInsensitive())
	require.NoError(t, err)
	street, err := m.Table([]string{"stra\u00dfe"})
	require.NoError(t, err)
	require.NotNil(t, street)
	assert.Equal(t, []string{"S", "STRASSE"}, street.QualifiedName())
	cafe, err := m.Table([]string{"CAFE\u0301"})
	require.NoError(t, err)
	require.NotNil(t, cafe)
	assert.Equal(t, []string{"S", "Caf\u00e9"}, cafe.QualifiedName())
}

func TestMonotonicAndCollation(t *testing.T) {
	_, m := load(t)
	orders, err := m.Table([]string{"ORDERS"})
	require.NoError(t, err)
	assert.True(t, orders.Monotonic("ROWTIME"))
	assert.False(t, orders.Monotonic("ORDERID"))
	note, _, ok := orders.RowType().Field("NOTE")
	require.True(t, ok)
	assert.Equal(t, "ISO-8859-1$en_US$secondary", note.Type.Collation.Name)
	assert.Equal(t, "DECIMAL(7, 2)", orders.RowType().Fields[3].Type.String())
}

func TestNamedTypeAndObjects(t *testing.T) {
	_, m := load(t)
	money, err := m.NamedType([]string{"MONEY"})
	require.NoError(t, err)
	assert.Equal(t, "DECIMAL(10, 2)", money.String())
	names, err := m.SchemaObjects(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"BONUS", "DEPT", "EMP", "ORDERS", "SALES", "SALGRADE"}, names)
	names, err = m.SchemaObjects([]string{"SALES"})
	require.NoError(t, err)
	assert.Contains(t, names, "DEPT")
}

func TestBadDocument(t *testing.T) {
	_, err := catalog.Parse(types.NewFactory(), []byte(`
schemas:
  - name: S
    tables:
      - name: T
        columns:
          - {name: X, type: WIDGET}
`))
	assert.ErrorContains(t, err, `unknown type "WIDGET"`)
}

func TestCachedReader(t *testing.T) {
	f := types.NewFactory()
	ctrl := gomock.NewController(t)
	reader := mock.NewMockReader(ctrl)
	_, m := load(t)
	emp, err := m.Table([]string{"EMP"})
	require.NoError(t, err)

	reader.EXPECT().Table([]string{"EMP"}).Return(emp, nil).Times(1)
	reader.EXPECT().Table([]string{"NOSUCH"}).Return(nil, nil).Times(1)
	reader.EXPECT().NamedType([]string{"MONEY"}).Return(f.Decimal(10, 2), nil).Times(1)

	cached, err := catalog.NewCached(reader, 8)
	require.NoError(t, err)
	for range 3 {
		got, err := cached.Table([]string{"EMP"})
		require.NoError(t, err)
		assert.Same(t, emp, got)
		missing, err := cached.Table([]string{"NOSUCH"})
		require.NoError(t, err)
		assert.Nil(t, missing)
		typ, err := cached.NamedType([]string{"MONEY"})
		require.NoError(t, err)
		assert.Equal(t, "DECIMAL(10, 2) NOT NULL", typ.String())
	}
}
