package collation_test

import (
	"errors"
	"testing"

	"github.com/brimdata/sqlsem/collation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coll(name string, c collation.Coercibility) collation.Collation {
	return collation.Collation{Name: name, Charset: collation.DefaultCharset, Coercibility: c}
}

func TestMergeLattice(t *testing.T) {
	a := coll("A", collation.Explicit)
	c, err := collation.Merge(a, coll("A", collation.Explicit))
	require.NoError(t, err)
	assert.Equal(t, a, c)

	_, err = collation.Merge(a, coll("B", collation.Explicit))
	var incompat *collation.IncompatibleError
	require.True(t, errors.As(err, &incompat))
	assert.Equal(t, "A", incompat.Left)
	assert.Equal(t, "B", incompat.Right)

	x := coll("X", collation.Implicit)
	c, err = collation.Merge(coll("", collation.Coercible), x)
	require.NoError(t, err)
	assert.Equal(t, x, c)

	_, err = collation.Merge(coll("", collation.None), coll("", collation.Coercible))
	assert.ErrorIs(t, err, collation.ErrNoCommonCollation)
}

func TestMergeTable(t *testing.T) {
	cases := []struct {
		left, right collation.Collation
		want        collation.Collation
		soft        bool
	}{
		{coll("L", collation.Coercible), coll("R", collation.Coercible), coll("L", collation.Coercible), false},
		{coll("L", collation.Coercible), coll("R", collation.Explicit), coll("R", collation.Explicit), false},
		{coll("L", collation.Coercible), coll("R", collation.None), collation.Collation{}, true},
		{coll("L", collation.Implicit), coll("R", collation.Coercible), coll("L", collation.Implicit), false},
		{coll("L", collation.Implicit), coll("L", collation.Implicit), coll("L", collation.Implicit), false},
		{coll("L", collation.Implicit), coll("R", collation.Implicit), collation.Collation{}, true},
		{coll("L", collation.Implicit), coll("R", collation.None), collation.Collation{}, true},
		{coll("L", collation.Implicit), coll("R", collation.Explicit), coll("R", collation.Explicit), false},
		{coll("L", collation.None), coll("R", collation.Explicit), coll("R", collation.Explicit), false},
		{coll("L", collation.None), coll("R", collation.Implicit), collation.Collation{}, true},
		{coll("L", collation.None), coll("R", collation.None), collation.Collation{}, true},
		{coll("L", collation.Explicit), coll("R", collation.None), coll("L", collation.Explicit), false},
		{coll("L", collation.Explicit), coll("R", collation.Implicit), coll("L", collation.Explicit), false},
	}
	for _, c := range cases {
		got, err := collation.Merge(c.left, c.right)
		if c.soft {
			assert.ErrorIs(t, err, collation.ErrNoCommonCollation, "%s with %s", c.left, c.right)
			continue
		}
		require.NoError(t, err, "%s with %s", c.left, c.right)
		assert.Equal(t, c.want, got, "%s with %s", c.left, c.right)
	}
}

func TestParse(t *testing.T) {
	charset, tag, strength, err := collation.Parse(collation.DefaultName)
	require.NoError(t, err)
	assert.Equal(t, collation.DefaultCharset, charset)
	assert.Equal(t, "en-US", tag.String())
	assert.Equal(t, "primary", strength)

	_, _, _, err = collation.Parse("nodollar")
	assert.Error(t, err)
	_, _, _, err = collation.Parse("ISO-8859-1$en_US$loud")
	assert.Error(t, err)
	_, _, _, err = collation.Parse("no-such-charset$en_US")
	assert.Error(t, err)
}

func TestCanonicalCharset(t *testing.T) {
	a, err := collation.CanonicalCharset("latin1")
	require.NoError(t, err)
	b, err := collation.CanonicalCharset("ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	_, err = collation.CanonicalCharset("klingon-7")
	assert.Error(t, err)
}
