package operator

import (
	"errors"
	"fmt"

	"github.com/brimdata/sqlsem/collation"
	"github.com/brimdata/sqlsem/types"
)

// ReturnTypeInference computes the type of a call from its operand types.
type ReturnTypeInference func(*CallBinding) (*types.Type, error)

// Transform adjusts a type inferred by another strategy.
type Transform func(*CallBinding, *types.Type) *types.Type

// Cascade applies transforms to the result of rule.
func Cascade(rule ReturnTypeInference, transforms ...Transform) ReturnTypeInference {
	return func(b *CallBinding) (*types.Type, error) {
		t, err := rule(b)
		if err != nil || t == nil {
			return t, err
		}
		for _, tf := range transforms {
			t = tf(b, t)
		}
		return t, nil
	}
}

// ToNullable makes the result nullable if any operand is nullable.
func ToNullable(b *CallBinding, t *types.Type) *types.Type {
	return b.Types.Nullable(t, t.Nullable || types.AnyNullable(b.Operands...))
}

// ToVarying turns CHAR into VARCHAR and BINARY into VARBINARY.
func ToVarying(b *CallBinding, t *types.Type) *types.Type {
	switch t.Name {
	case types.Char:
		return b.Types.Nullable(b.Types.Char(types.Varchar, t.Precision, t.Collation), t.Nullable)
	case types.Binary:
		return b.Types.Nullable(b.Types.SqlPrecision(types.Varbinary, t.Precision), t.Nullable)
	}
	return t
}

// Explicit returns a strategy that always yields the type built by fn.
func Explicit(fn func(*types.Factory) *types.Type) ReturnTypeInference {
	return func(b *CallBinding) (*types.Type, error) {
		return fn(b.Types), nil
	}
}

func explicitName(name types.Name) ReturnTypeInference {
	return Explicit(func(f *types.Factory) *types.Type { return f.Sql(name) })
}

var (
	Boolean              = explicitName(types.Boolean)
	NullableBoolean      = Cascade(Boolean, ToNullable)
	Integer              = explicitName(types.Integer)
	NullableInteger      = Cascade(Integer, ToNullable)
	Bigint               = explicitName(types.Bigint)
	Double               = explicitName(types.Double)
	NullableDouble       = Cascade(Double, ToNullable)
	Date                 = explicitName(types.Date)
	Time                 = explicitName(types.Time)
	Timestamp            = explicitName(types.Timestamp)
	NullableFirstArg     = Cascade(FirstArgType, ToNullable)
	NullableLeastRestr   = Cascade(LeastRestrictive, ToNullable)
	NullableProduct      = Cascade(Product, ToNullable)
	NullableQuotient     = Cascade(Quotient, ToNullable)
	NullableDyadicConcat = Cascade(DyadicStringSumPrecision, ToNullable, ToVarying)
	Varchar2000          = Explicit(func(f *types.Factory) *types.Type {
		return f.SqlPrecision(types.Varchar, 2000)
	})
)

// FirstArgType returns the type of the first operand.
func FirstArgType(b *CallBinding) (*types.Type, error) {
	if b.Count() == 0 {
		return nil, errors.New("no operands")
	}
	return b.Type(0), nil
}

// FirstKnownArgType returns the first operand type that is neither
// unknown nor NULL.
func FirstKnownArgType(b *CallBinding) (*types.Type, error) {
	for _, t := range b.Operands {
		if !t.IsUnknown() && !t.IsNull() {
			return t, nil
		}
	}
	return nil, nil
}

// LeastRestrictive returns the least restrictive type of all operands.
func LeastRestrictive(b *CallBinding) (*types.Type, error) {
	return b.Types.LeastRestrictive(b.Operands...), nil
}

// Product types a multiplication.  Two decimals produce a decimal whose
// precision and scale are the sums of the operands'.
func Product(b *CallBinding) (*types.Type, error) {
	if b.Count() == 2 {
		l, r := b.Type(0), b.Type(1)
		if l.Name == types.Decimal && r.Name == types.Decimal {
			return b.Types.Decimal(l.Precision+r.Precision, l.Scale+r.Scale), nil
		}
		if l.IsInterval() && r.IsNumeric() {
			return l, nil
		}
		if r.IsInterval() && l.IsNumeric() {
			return r, nil
		}
	}
	return LeastRestrictive(b)
}

// Quotient types a division.
func Quotient(b *CallBinding) (*types.Type, error) {
	if b.Count() == 2 {
		l, r := b.Type(0), b.Type(1)
		if l.Name == types.Decimal && r.Name == types.Decimal {
			return b.Types.Decimal(l.Precision+r.Scale, max(l.Scale, r.Scale)), nil
		}
		if l.IsInterval() && r.IsNumeric() {
			return l, nil
		}
	}
	return LeastRestrictive(b)
}

// DyadicStringSumPrecision types the concatenation of two strings of the
// same family: the precision is the sum of the operands' and the
// collation is chosen by the coercibility rules.  A missing common
// collation yields a collation of coercibility NONE; incompatible explicit
// collations are an error.
func DyadicStringSumPrecision(b *CallBinding) (*types.Type, error) {
	if b.Count() != 2 {
		return nil, fmt.Errorf("%s: expected two operands", b.Op.Name)
	}
	l, r := b.Type(0), b.Type(1)
	if l.IsNull() {
		l = r
	}
	if r.IsNull() {
		r = l
	}
	if l.IsNull() {
		return b.Types.Nullable(b.Types.Sql(types.Varchar), true), nil
	}
	prec := l.Precision + r.Precision
	if !l.IsChar() {
		return b.Types.SqlPrecision(l.Name, prec), nil
	}
	if !types.SameCharset(l, r) {
		return nil, &CharsetError{Op: b.Op.Name, Left: l.Charset, Right: r.Charset}
	}
	coll, err := collation.Merge(l.Collation, r.Collation)
	if errors.Is(err, collation.ErrNoCommonCollation) {
		coll = collation.Collation{Charset: l.Charset, Coercibility: collation.None}
	} else if err != nil {
		return nil, err
	}
	return b.Types.Char(l.Name, prec, coll), nil
}

// CharsetError reports character operands of a dyadic operator with
// different character sets.
type CharsetError struct {
	Op    string
	Left  string
	Right string
}

func (e *CharsetError) Error() string {
	return fmt.Sprintf("operator %s: incompatible character sets %s and %s", e.Op, e.Left, e.Right)
}
