package types

import (
	"github.com/brimdata/sqlsem/collation"
)

// AnyNullable reports whether any of ts is nullable.
func AnyNullable(ts ...*Type) bool {
	for _, t := range ts {
		if t != nil && t.Nullable {
			return true
		}
	}
	return false
}

// LeastRestrictive returns the narrowest type to which all of ts can be
// converted without loss, or nil if there is none.  NULL types are
// ignored except for contributing nullability.  If any type is unknown,
// the result is nil.
func (f *Factory) LeastRestrictive(ts ...*Type) *Type {
	var known []*Type
	nullable := false
	for _, t := range ts {
		if t.IsUnknown() {
			return nil
		}
		if t.Nullable {
			nullable = true
		}
		if t.Name == Null {
			continue
		}
		known = append(known, t)
	}
	if len(known) == 0 {
		if len(ts) == 0 {
			return nil
		}
		return f.Null()
	}
	out := f.leastRestrictive(known)
	if out == nil {
		return nil
	}
	return f.Nullable(out, nullable || out.Nullable)
}

func (f *Factory) leastRestrictive(ts []*Type) *Type {
	first := ts[0]
	for _, t := range ts {
		if t.Name == Any {
			return f.Nullable(f.Sql(Any), AnyNullable(ts...))
		}
	}
	switch {
	case first.IsNumeric():
		return f.leastNumeric(ts)
	case first.IsChar():
		return f.leastString(ts, Char, Varchar, func(t *Type) bool { return t.IsChar() })
	case first.IsBinary():
		return f.leastString(ts, Binary, Varbinary, func(t *Type) bool { return t.IsBinary() })
	case first.Name == Row:
		return f.leastRow(ts)
	case first.Name == Multiset:
		elems := make([]*Type, 0, len(ts))
		for _, t := range ts {
			if t.Name != Multiset {
				return nil
			}
			elems = append(elems, t.Elem)
		}
		elem := f.LeastRestrictive(elems...)
		if elem == nil {
			return nil
		}
		return f.Multiset(elem)
	}
	// Remaining names (BOOLEAN, datetime, interval, SYMBOL) must match
	// exactly; precision widens to the maximum.
	out := first
	for _, t := range ts[1:] {
		if t.Name != first.Name {
			return nil
		}
		if first.IsInterval() && *t.Interval != *first.Interval {
			if t.Interval.YearMonth() != first.Interval.YearMonth() {
				return nil
			}
			q := *out.Interval
			if t.Interval.Start < q.Start {
				q.Start = t.Interval.Start
			}
			if t.Interval.End > q.End {
				q.End = t.Interval.End
			}
			out = f.Interval(q)
			continue
		}
		if t.Precision > out.Precision {
			out = f.WithPrecision(out, t.Precision)
		}
	}
	return out
}

func (f *Factory) leastNumeric(ts []*Type) *Type {
	best := ts[0]
	intDigits, scale := 0, 0
	anyDecimal := false
	for _, t := range ts {
		if !t.IsNumeric() {
			return nil
		}
		if t.Name.rank() > best.Name.rank() {
			best = t
		}
		switch {
		case t.Name == Decimal:
			anyDecimal = true
			intDigits = max(intDigits, t.Precision-t.Scale)
			scale = max(scale, t.Scale)
		case t.IsExactNumeric():
			intDigits = max(intDigits, t.Name.integerDigits())
		}
	}
	if !best.IsExactNumeric() {
		return f.Sql(best.Name)
	}
	if anyDecimal {
		return f.Decimal(min(intDigits+scale, MaxNumericPrecision), scale)
	}
	return f.Sql(best.Name)
}

func (f *Factory) leastString(ts []*Type, fixed, varying Name, member func(*Type) bool) *Type {
	first := ts[0]
	name := fixed
	prec := 0
	coll := first.Collation
	for _, t := range ts {
		if !member(t) {
			return nil
		}
		if t.Charset != first.Charset {
			return nil
		}
		if t.Name == varying || (prec != 0 && t.Precision != prec) {
			name = varying
		}
		prec = max(prec, t.Precision)
		if t.Collation.Coercibility > coll.Coercibility {
			coll = t.Collation
		}
	}
	if name == Char || name == Varchar {
		return f.Char(name, prec, coll)
	}
	return f.SqlPrecision(name, prec)
}

func (f *Factory) leastRow(ts []*Type) *Type {
	first := ts[0]
	fields := make([]Field, len(first.Fields))
	for k, fld := range first.Fields {
		col := make([]*Type, 0, len(ts))
		for _, t := range ts {
			if t.Name != Row || len(t.Fields) != len(first.Fields) {
				return nil
			}
			col = append(col, t.Fields[k].Type)
		}
		typ := f.LeastRestrictive(col...)
		if typ == nil {
			return nil
		}
		fields[k] = Field{Name: fld.Name, Type: typ}
	}
	return f.Row(fields)
}

// CanCompare reports whether values of types a and b may be compared.
func CanCompare(a, b *Type) bool {
	if a.IsUnknown() || b.IsUnknown() {
		return false
	}
	if a.Name == Null || b.Name == Null || a.Name == Any || b.Name == Any {
		return true
	}
	switch {
	case a.IsNumeric():
		return b.IsNumeric()
	case a.IsChar():
		return b.IsChar() && a.Charset == b.Charset
	case a.IsBinary():
		return b.IsBinary()
	case a.IsInterval():
		return b.IsInterval() && a.Name == b.Name
	case a.Name == Row:
		if b.Name != Row || len(a.Fields) != len(b.Fields) {
			return false
		}
		for k := range a.Fields {
			if !CanCompare(a.Fields[k].Type, b.Fields[k].Type) {
				return false
			}
		}
		return true
	case a.Name == Multiset:
		return b.Name == Multiset && CanCompare(a.Elem, b.Elem)
	}
	return a.Name == b.Name
}

// CanAssign reports whether a value of type from may be stored in a
// location of type to.
func CanAssign(to, from *Type) bool {
	if to.IsUnknown() || from.IsUnknown() {
		return false
	}
	if from.Name == Null || to.Name == Any || from.Name == Any {
		return true
	}
	switch {
	case to.IsNumeric():
		return from.IsNumeric()
	case to.IsChar():
		return from.IsChar()
	case to.IsBinary():
		return from.IsBinary()
	case to.Name == Timestamp:
		return from.Name == Timestamp || from.Name == Date
	case to.Name == Row:
		if from.Name != Row || len(to.Fields) != len(from.Fields) {
			return false
		}
		for k := range to.Fields {
			if !CanAssign(to.Fields[k].Type, from.Fields[k].Type) {
				return false
			}
		}
		return true
	case to.Name == Multiset:
		return from.Name == Multiset && CanAssign(to.Elem, from.Elem)
	}
	return to.Name == from.Name
}

// CanCast reports whether CAST(from AS to) is legal.
func CanCast(to, from *Type) bool {
	if CanAssign(to, from) {
		return true
	}
	if to.IsUnknown() || from.IsUnknown() {
		return false
	}
	switch {
	case to.IsChar():
		return from.IsNumeric() || from.IsDatetime() || from.IsInterval() || from.IsBoolean()
	case from.IsChar():
		return to.IsNumeric() || to.IsDatetime() || to.IsInterval() || to.IsBoolean()
	case to.IsDatetime() && from.IsDatetime():
		return true
	case to.IsNumeric() && from.IsInterval(), to.IsInterval() && from.IsExactNumeric():
		return true
	}
	return false
}

// SameCharset reports whether the character types a and b share a
// charset.
func SameCharset(a, b *Type) bool {
	return a.Charset == b.Charset
}

// MergeCollations merges the collations of the character types a and b
// with collation.Merge.
func MergeCollations(a, b *Type) (collation.Collation, error) {
	return collation.Merge(a.Collation, b.Collation)
}
