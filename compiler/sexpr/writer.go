package sexpr

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/types"
	"github.com/lestrrat-go/strftime"
)

var (
	dateFormat      = mustPattern("%Y-%m-%d")
	timeFormat      = mustPattern("%H:%M:%S")
	timestampFormat = mustPattern("%Y-%m-%d %H:%M:%S")
)

func mustPattern(p string) *strftime.Strftime {
	f, err := strftime.New(p)
	if err != nil {
		panic(err)
	}
	return f
}

// Format renders node id of tree in the notation read by Parse.
func Format(tree *ast.Tree, id ast.ID) string {
	w := &writer{tree: tree}
	w.node(id)
	return w.String()
}

type writer struct {
	strings.Builder
	tree *ast.Tree
}

func (w *writer) write(format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

func (w *writer) node(id ast.ID) {
	switch n := w.tree.Node(id).(type) {
	case nil:
		w.WriteString("_")
	case *ast.Call:
		w.call(n)
	case *ast.List:
		w.WriteByte('[')
		w.nodes(n.Items)
		w.WriteByte(']')
	case *ast.Identifier:
		name := strings.Join(n.Names, ".")
		if n.Collation != nil {
			w.write("{COLLATE %s %s}", name, n.Collation.Name)
		} else {
			w.WriteString(name)
		}
	case *ast.Literal:
		w.literal(n)
	case *ast.DynamicParam:
		w.WriteByte('?')
	case *ast.DataTypeSpec:
		w.write("{TYPE %s", strings.Join(n.Names, " "))
		if n.Precision != types.NoPrecision {
			w.write(" %d", n.Precision)
			if n.Scale != types.NoPrecision {
				w.write(" %d", n.Scale)
			}
		}
		if n.Charset != "" {
			w.write(" CHARSET %s", n.Charset)
		}
		w.WriteByte('}')
	case *ast.IntervalQualifier:
		w.write("{QUALIFIER %s}", qualifier(n.Qualifier))
	}
}

func (w *writer) nodes(ids []ast.ID) {
	for k, id := range ids {
		if k > 0 {
			w.WriteByte(' ')
		}
		w.node(id)
	}
}

func (w *writer) call(c *ast.Call) {
	w.write("(%s", strings.ReplaceAll(c.Op.Name, " ", "_"))
	if len(c.Op.Slots) > 0 {
		for k, arg := range c.Args {
			if arg != ast.Nil && k < len(c.Op.Slots) {
				w.write(" :%s ", c.Op.Slots[k])
				w.node(arg)
			}
		}
	} else if len(c.Args) > 0 {
		w.WriteByte(' ')
		w.nodes(c.Args)
	}
	w.WriteByte(')')
}

func (w *writer) literal(l *ast.Literal) {
	switch l.Tag {
	case ast.NullLit:
		w.WriteString("null")
	case ast.BooleanLit:
		t, _ := l.Truth()
		w.WriteString([...]string{"false", "true", "unknown"}[t])
	case ast.ExactLit:
		d, _ := l.Decimal()
		w.WriteString(d.String())
	case ast.ApproxLit:
		d, _ := l.Decimal()
		f, _ := d.Float64()
		w.WriteString(strconv.FormatFloat(f, 'E', -1, 64))
	case ast.SymbolLit:
		s, _ := l.Symbol()
		w.write("#%s", s)
	case ast.CharLit:
		v := l.Value.(ast.CharValue)
		quoted := "'" + strings.ReplaceAll(v.Value, "'", "''") + "'"
		switch {
		case v.Collation != nil:
			w.write("{COLLATE %s %s}", quoted, v.Collation.Name)
		case v.Charset != "":
			w.write("{CHARSET %s %s}", quoted, v.Charset)
		default:
			w.WriteString(quoted)
		}
	case ast.BinaryLit:
		w.write("{BINARY '%s'}", hex.EncodeToString(l.Value.([]byte)))
	case ast.DateLit:
		t, _ := l.Time()
		w.write("{DATE '%s'}", dateFormat.FormatString(t))
	case ast.TimeLit:
		t, _ := l.Time()
		w.write("{TIME '%s%s'}", timeFormat.FormatString(t), fraction(t.Nanosecond(), l.Precision))
	case ast.TimestampLit:
		t, _ := l.Time()
		w.write("{TIMESTAMP '%s%s'}", timestampFormat.FormatString(t), fraction(t.Nanosecond(), l.Precision))
	case ast.IntervalYearMonthLit, ast.IntervalDayTimeLit:
		v := l.Value.(ast.IntervalValue)
		w.write("{INTERVAL '%s' %s}", intervalText(v), qualifier(v.Qualifier))
	}
}

func fraction(nanos, prec int) string {
	if prec <= 0 {
		return ""
	}
	s := fmt.Sprintf("%09d", nanos)
	return "." + s[:min(prec, 9)]
}

func qualifier(q types.IntervalQualifier) string {
	if q.Start == q.End {
		return q.Start.String()
	}
	return q.Start.String() + " TO " + q.End.String()
}

func intervalText(v ast.IntervalValue) string {
	var b strings.Builder
	if v.Sign < 0 {
		b.WriteByte('-')
	}
	for k, n := range v.Fields {
		if k > 0 {
			unit := v.Qualifier.Start + types.TimeUnit(k-1)
			switch {
			case v.Qualifier.YearMonth():
				b.WriteByte('-')
			case unit == types.Day:
				b.WriteByte(' ')
			default:
				b.WriteByte(':')
			}
		}
		if k > 0 && !v.Qualifier.YearMonth() {
			fmt.Fprintf(&b, "%02d", n)
		} else {
			b.WriteString(strconv.FormatInt(n, 10))
		}
	}
	return b.String()
}
