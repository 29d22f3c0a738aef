package srcfiles_test

import (
	"errors"
	"testing"

	"github.com/brimdata/sqlsem/compiler/srcfiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanError(t *testing.T) {
	list := srcfiles.New("", "(SELECT\n  :list (foo))")
	cause := errors.New("Column 'foo' not found in any table")
	err := list.Locate(cause, 17, 20)
	expected := "Column 'foo' not found in any table at line 2, column 10:\n  :list (foo))\n         ~~~"
	assert.Equal(t, expected, err.Error())
	assert.ErrorIs(t, list.Error(), cause)
	pos := err.Position()
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 10, pos.Column)
}

func TestPointError(t *testing.T) {
	list := srcfiles.New("q.sexpr", "(+ 1 x)")
	err := list.Locate(errors.New("bad"), 5, 5)
	assert.Equal(t, "bad in q.sexpr at line 1, column 6:\n(+ 1 x)\n === ^ ===", err.Error())
}

func TestUnlocated(t *testing.T) {
	err := srcfiles.Errorf("no location %d", 1)
	assert.Equal(t, "no location 1", err.Error())
	located, ok := srcfiles.AsError(err)
	require.True(t, ok)
	assert.Equal(t, -1, located.Position().Line)
}
