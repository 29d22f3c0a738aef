package types

import (
	"fmt"
	"sync"

	"github.com/brimdata/sqlsem/collation"
)

// A Factory creates and interns types.  Each distinct type corresponds to
// exactly one *Type from a given Factory so type equality can be decided by
// pointer comparison.  Types from distinct Factories do not have this
// property.
type Factory struct {
	mu    sync.RWMutex
	types map[string]*Type
}

func NewFactory() *Factory {
	return &Factory{types: make(map[string]*Type)}
}

func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = make(map[string]*Type)
}

func (f *Factory) intern(t Type) *Type {
	key := fmt.Sprintf("%s|%t", t.FullString(), t.Nullable)
	f.mu.RLock()
	typ, ok := f.types[key]
	f.mu.RUnlock()
	if ok {
		return typ
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if typ, ok := f.types[key]; ok {
		return typ
	}
	t.key = key
	typ = &t
	f.types[key] = typ
	return typ
}

// Sql returns the NOT NULL type with the given name and its default
// precision.  Character types get the default charset with coercible
// collation.
func (f *Factory) Sql(name Name) *Type {
	return f.SqlPrecision(name, name.DefaultPrecision())
}

func (f *Factory) SqlPrecision(name Name, prec int) *Type {
	switch name {
	case Decimal:
		return f.Decimal(prec, 0)
	case Char, Varchar:
		return f.Char(name, prec, collation.Default(collation.Coercible))
	case Null:
		return f.Null()
	case UnknownName:
		return Unknown
	case IntervalYearMonth:
		return f.Interval(IntervalQualifier{Start: Year, End: Month})
	case IntervalDayTime:
		return f.Interval(IntervalQualifier{Start: Day, End: Second})
	}
	if !name.AllowsPrecision() {
		prec = NoPrecision
	}
	return f.intern(Type{Name: name, Precision: prec})
}

func (f *Factory) Decimal(prec, scale int) *Type {
	if prec <= 0 {
		prec = MaxNumericPrecision
	}
	if prec > MaxNumericPrecision {
		prec = MaxNumericPrecision
	}
	if scale > prec {
		scale = prec
	}
	return f.intern(Type{Name: Decimal, Precision: prec, Scale: scale})
}

// Char returns a CHAR or VARCHAR type with the given collation.
func (f *Factory) Char(name Name, prec int, coll collation.Collation) *Type {
	if prec == NoPrecision {
		prec = name.DefaultPrecision()
	}
	charset := coll.Charset
	if charset == "" {
		charset = collation.DefaultCharset
	}
	return f.intern(Type{Name: name, Precision: prec, Charset: charset, Collation: coll})
}

func (f *Factory) Null() *Type {
	return f.intern(Type{Name: Null, Nullable: true, Precision: NoPrecision})
}

func (f *Factory) Interval(q IntervalQualifier) *Type {
	name := IntervalDayTime
	if q.YearMonth() {
		name = IntervalYearMonth
	}
	return f.intern(Type{Name: name, Precision: NoPrecision, Interval: &q})
}

// Row returns the record type with the given fields.
func (f *Factory) Row(fields []Field) *Type {
	return f.intern(Type{Name: Row, Precision: NoPrecision, Fields: append([]Field(nil), fields...)})
}

func (f *Factory) Multiset(elem *Type) *Type {
	return f.intern(Type{Name: Multiset, Precision: NoPrecision, Elem: elem})
}

// Nullable returns t with its nullability set.  For a ROW type the
// nullability is applied to every field.
func (f *Factory) Nullable(t *Type, nullable bool) *Type {
	if t.IsUnknown() || t.Name == Null {
		return t
	}
	if t.Name == Row {
		fields := make([]Field, 0, len(t.Fields))
		for _, fld := range t.Fields {
			fields = append(fields, Field{Name: fld.Name, Type: f.Nullable(fld.Type, nullable)})
		}
		out := *t
		out.Fields = fields
		out.Nullable = nullable
		return f.intern(out)
	}
	if t.Nullable == nullable {
		return t
	}
	out := *t
	out.Nullable = nullable
	return f.intern(out)
}

// WithCollation returns the character type t bound to coll.
func (f *Factory) WithCollation(t *Type, coll collation.Collation) *Type {
	if !t.IsChar() {
		return t
	}
	out := *t
	out.Collation = coll
	if coll.Charset != "" {
		out.Charset = coll.Charset
	}
	return f.intern(out)
}

// WithPrecision returns t with a new precision.
func (f *Factory) WithPrecision(t *Type, prec int) *Type {
	if !t.Name.AllowsPrecision() || t.Precision == prec {
		return t
	}
	out := *t
	out.Precision = prec
	return f.intern(out)
}

// Import returns the type from this factory equal to t, which may come
// from a different factory.
func (f *Factory) Import(t *Type) *Type {
	if t.IsUnknown() {
		return Unknown
	}
	out := *t
	switch t.Name {
	case Row:
		out.Fields = nil
		for _, fld := range t.Fields {
			out.Fields = append(out.Fields, Field{Name: fld.Name, Type: f.Import(fld.Type)})
		}
	case Multiset:
		out.Elem = f.Import(t.Elem)
	}
	return f.intern(out)
}
