package ast

import (
	"time"

	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/shopspring/decimal"
)

// The builders below add synthesized nodes that carry NoLoc.

func (t *Tree) NewCall(op *operator.Operator, args ...ID) ID {
	return t.Add(&Call{Op: op, Args: args, Loc: NoLoc})
}

func (t *Tree) NewIdentifier(names ...string) ID {
	return t.Add(&Identifier{Names: names, Loc: NoLoc})
}

func (t *Tree) NewList(items ...ID) ID {
	return t.Add(&List{Items: items, Loc: NoLoc})
}

func (t *Tree) NewSymbol(s string) ID {
	return t.Add(&Literal{Tag: SymbolLit, Value: s, Loc: NoLoc})
}

func (t *Tree) NewNull() ID {
	return t.Add(&Literal{Tag: NullLit, Loc: NoLoc})
}

func (t *Tree) NewBool(b bool) ID {
	v := False
	if b {
		v = True
	}
	return t.Add(&Literal{Tag: BooleanLit, Value: v, Loc: NoLoc})
}

func (t *Tree) NewString(s string) ID {
	return t.Add(&Literal{Tag: CharLit, Value: CharValue{Value: s}, Loc: NoLoc})
}

// NewNumber adds an exact numeric literal.
func (t *Tree) NewNumber(d decimal.Decimal) ID {
	return t.Add(&Literal{Tag: ExactLit, Value: d, Loc: NoLoc})
}

func (t *Tree) NewInt(n int64) ID {
	return t.NewNumber(decimal.NewFromInt(n))
}

func (t *Tree) NewDate(d time.Time) ID {
	return t.Add(&Literal{Tag: DateLit, Value: d, Loc: NoLoc})
}

func (t *Tree) NewParam(index int) ID {
	return t.Add(&DynamicParam{Index: index, Loc: NoLoc})
}

// NewAlias wraps expr in an AS call naming it alias.
func (t *Tree) NewAlias(as *operator.Operator, expr ID, alias string) ID {
	return t.NewCall(as, expr, t.NewIdentifier(alias))
}
