// Package sexpr reads and writes SQL statement trees in a parenthesized
// prefix notation, e.g.
//
//	(SELECT :list [ENAME (AS (+ SAL 1) BONUS)] :from EMP :where (> SAL 1000))
//
// Calls are written (OP operand...), lists [item...], symbols #NAME,
// dynamic parameters ?, and a bare _ stands for an absent operand.
// Multi-word operator names use underscores, e.g. IS_NOT_NULL.  Typed
// literals and other decorated nodes are written in braces:
//
//	{DATE '2024-01-31'}  {TIME '10:30:00'}  {TIMESTAMP '2024-01-31 10:30:00'}
//	{BINARY 'cafe'}  {INTERVAL '1-2' YEAR TO MONTH}  {QUALIFIER DAY TO SECOND}
//	{TYPE DECIMAL 7 2}  {CHARSET 'abc' UTF-16}  {COLLATE ENAME ISO-8859-1$en_US$primary}
package sexpr

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/brimdata/sqlsem/collation"
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/compiler/srcfiles"
	"github.com/brimdata/sqlsem/types"
	"github.com/shopspring/decimal"
)

// AST is a parsed statement and the source text it was read from.
type AST struct {
	tree  *ast.Tree
	root  ast.ID
	files *srcfiles.List
}

func (a *AST) Tree() *ast.Tree {
	return a.tree
}

func (a *AST) Root() ast.ID {
	return a.root
}

func (a *AST) Files() *srcfiles.List {
	return a.files
}

// ParseQuery parses a statement text and an optional set of include files,
// binding operator names against ops.  Include file names and line numbers
// are tracked for error reporting.
func ParseQuery(ops *operator.Catalog, query string, filenames ...string) (*AST, error) {
	files, err := srcfiles.Concat(filenames, query)
	if err != nil {
		return nil, err
	}
	r := &reader{
		lex:   &lexer{src: files.Text},
		ops:   ops,
		tree:  ast.NewTree(),
		files: files,
	}
	root, err := r.statement()
	if err != nil {
		return nil, err
	}
	return &AST{tree: r.tree, root: root, files: files}, nil
}

// Parse parses a single statement held in text.
func Parse(ops *operator.Catalog, text string) (*AST, error) {
	return ParseQuery(ops, text)
}

type reader struct {
	lex    *lexer
	peeked *token
	ops    *operator.Catalog
	tree   *ast.Tree
	files  *srcfiles.List
	params int
}

var errExpected = errors.New("syntax error")

func (r *reader) errorf(tok token, format string, args ...any) error {
	end := max(tok.end, tok.pos+1)
	return r.files.Locate(fmt.Errorf(format, args...), tok.pos, end)
}

func (r *reader) next() (token, error) {
	if r.peeked != nil {
		tok := *r.peeked
		r.peeked = nil
		return tok, nil
	}
	tok, err := r.lex.next()
	if err != nil {
		return tok, r.files.Locate(err, tok.pos, tok.end)
	}
	return tok, nil
}

func (r *reader) peek() (token, error) {
	if r.peeked == nil {
		tok, err := r.next()
		if err != nil {
			return tok, err
		}
		r.peeked = &tok
	}
	return *r.peeked, nil
}

func (r *reader) statement() (ast.ID, error) {
	tok, err := r.next()
	if err != nil {
		return ast.Nil, err
	}
	if tok.kind == tokEOF {
		return ast.Nil, r.errorf(tok, "empty statement")
	}
	root, err := r.expr(tok)
	if err != nil {
		return ast.Nil, err
	}
	tok, err = r.next()
	if err != nil {
		return ast.Nil, err
	}
	if tok.kind != tokEOF {
		return ast.Nil, r.errorf(tok, "%w: unexpected %q after statement", errExpected, tok.text)
	}
	return root, nil
}

func (r *reader) expr(tok token) (ast.ID, error) {
	switch tok.kind {
	case tokOpen:
		return r.call(tok)
	case tokOpenList:
		return r.list(tok)
	case tokOpenBrace:
		return r.decorated(tok)
	case tokString:
		return r.tree.Add(&ast.Literal{Tag: ast.CharLit, Value: ast.CharValue{Value: tok.text}, Loc: loc(tok)}), nil
	case tokSymbol:
		return r.tree.Add(&ast.Literal{Tag: ast.SymbolLit, Value: strings.ToUpper(tok.text), Loc: loc(tok)}), nil
	case tokParam:
		id := r.tree.Add(&ast.DynamicParam{Index: r.params, Loc: loc(tok)})
		r.params++
		return id, nil
	case tokWord:
		return r.word(tok)
	case tokEOF:
		return ast.Nil, r.errorf(tok, "%w: unexpected end of input", errExpected)
	}
	return ast.Nil, r.errorf(tok, "%w: unexpected %q", errExpected, tok.text)
}

var numberRE = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func (r *reader) word(tok token) (ast.ID, error) {
	l := loc(tok)
	switch tok.text {
	case "_":
		return ast.Nil, nil
	case "null":
		return r.tree.Add(&ast.Literal{Tag: ast.NullLit, Loc: l}), nil
	case "true":
		return r.tree.Add(&ast.Literal{Tag: ast.BooleanLit, Value: ast.True, Loc: l}), nil
	case "false":
		return r.tree.Add(&ast.Literal{Tag: ast.BooleanLit, Value: ast.False, Loc: l}), nil
	case "unknown":
		return r.tree.Add(&ast.Literal{Tag: ast.BooleanLit, Value: ast.Unknown, Loc: l}), nil
	}
	if numberRE.MatchString(tok.text) {
		d, err := decimal.NewFromString(tok.text)
		if err != nil {
			return ast.Nil, r.errorf(tok, "malformed number %q", tok.text)
		}
		tag := ast.ExactLit
		if strings.ContainsAny(tok.text, "eE") {
			tag = ast.ApproxLit
		}
		return r.tree.Add(&ast.Literal{Tag: tag, Value: d, Loc: l}), nil
	}
	names := strings.Split(tok.text, ".")
	for _, name := range names {
		if name == "" {
			return ast.Nil, r.errorf(tok, "malformed identifier %q", tok.text)
		}
	}
	return r.tree.Add(&ast.Identifier{Names: names, Loc: l}), nil
}

func (r *reader) list(open token) (ast.ID, error) {
	var items []ast.ID
	for {
		tok, err := r.next()
		if err != nil {
			return ast.Nil, err
		}
		if tok.kind == tokCloseList {
			return r.tree.Add(&ast.List{Items: items, Loc: ast.NewLoc(open.pos, tok.end)}), nil
		}
		item, err := r.expr(tok)
		if err != nil {
			return ast.Nil, err
		}
		items = append(items, item)
	}
}

func (r *reader) call(open token) (ast.ID, error) {
	head, err := r.next()
	if err != nil {
		return ast.Nil, err
	}
	if head.kind != tokWord {
		return ast.Nil, r.errorf(head, "%w: operator name expected", errExpected)
	}
	var args []ast.ID
	slots := make(map[string]ast.ID)
	var slotToks []token
	for {
		tok, err := r.next()
		if err != nil {
			return ast.Nil, err
		}
		if tok.kind == tokClose {
			op, err := r.operator(head, len(args), len(slots) > 0)
			if err != nil {
				return ast.Nil, err
			}
			if len(slots) > 0 {
				if args, err = r.fillSlots(op, args, slots, slotToks); err != nil {
					return ast.Nil, err
				}
			} else if len(op.Slots) > 0 {
				for len(args) < len(op.Slots) {
					args = append(args, ast.Nil)
				}
			}
			return r.tree.Add(&ast.Call{Op: op, Args: args, Loc: ast.NewLoc(open.pos, tok.end)}), nil
		}
		if tok.kind == tokKeyword {
			value, err := r.next()
			if err != nil {
				return ast.Nil, err
			}
			id, err := r.expr(value)
			if err != nil {
				return ast.Nil, err
			}
			name := strings.ToLower(tok.text)
			if _, ok := slots[name]; ok {
				return ast.Nil, r.errorf(tok, "duplicate operand :%s", name)
			}
			slots[name] = id
			slotToks = append(slotToks, tok)
			continue
		}
		id, err := r.expr(tok)
		if err != nil {
			return ast.Nil, err
		}
		args = append(args, id)
	}
}

func (r *reader) fillSlots(op *operator.Operator, args []ast.ID, slots map[string]ast.ID, toks []token) ([]ast.ID, error) {
	out := make([]ast.ID, len(op.Slots))
	if len(args) > len(out) {
		return nil, fmt.Errorf("%s takes at most %d operands", op.Name, len(out))
	}
	copy(out, args)
	for _, tok := range toks {
		name := strings.ToLower(tok.text)
		k := op.Slot(name)
		if k < 0 {
			return nil, r.errorf(tok, "%s has no operand :%s", op.Name, name)
		}
		out[k] = slots[name]
	}
	return out, nil
}

// operator binds a call head to an operator, preferring the syntax implied
// by the operand count.  Names not in the catalog become unresolved
// function calls.
func (r *reader) operator(head token, n int, slotted bool) (*operator.Operator, error) {
	name := head.text
	candidates := r.ops.LookupAny(name)
	if len(candidates) == 0 {
		name = strings.ReplaceAll(name, "_", " ")
		candidates = r.ops.LookupAny(name)
	}
	if len(candidates) == 0 {
		if slotted {
			return nil, r.errorf(head, "unknown operator %s", head.text)
		}
		return operator.Unresolved(head.text), nil
	}
	if slotted {
		for _, op := range candidates {
			if len(op.Slots) > 0 {
				return op, nil
			}
		}
		return nil, r.errorf(head, "%s does not take named operands", name)
	}
	var prefs []operator.Syntax
	switch n {
	case 1:
		prefs = []operator.Syntax{operator.Prefix, operator.Postfix, operator.FunctionSyntax, operator.Special}
	case 2:
		prefs = []operator.Syntax{operator.Binary, operator.Special, operator.FunctionSyntax}
	default:
		prefs = []operator.Syntax{operator.Special, operator.FunctionSyntax, operator.FunctionID}
	}
	var fallback *operator.Operator
	for _, syntax := range prefs {
		for _, op := range candidates {
			if op.Syntax != syntax {
				continue
			}
			if op.Count.Allows(n) || len(op.Slots) > 0 {
				return op, nil
			}
			if fallback == nil {
				fallback = op
			}
		}
	}
	if fallback == nil {
		fallback = candidates[0]
	}
	return fallback, nil
}

func (r *reader) decorated(open token) (ast.ID, error) {
	head, err := r.next()
	if err != nil {
		return ast.Nil, err
	}
	var id ast.ID
	switch strings.ToUpper(head.text) {
	case "DATE", "TIME", "TIMESTAMP":
		id, err = r.datetime(open, strings.ToUpper(head.text))
	case "BINARY":
		id, err = r.binary(open)
	case "INTERVAL":
		id, err = r.interval(open)
	case "QUALIFIER":
		var q types.IntervalQualifier
		if q, err = r.qualifier(); err == nil {
			id = r.tree.Add(&ast.IntervalQualifier{Qualifier: q, Loc: ast.NewLoc(open.pos, r.lex.pos)})
		}
	case "TYPE":
		id, err = r.typeSpec(open)
	case "CHARSET":
		id, err = r.charset(open)
	case "COLLATE":
		id, err = r.collate(open)
	default:
		return ast.Nil, r.errorf(head, "unknown form {%s ...}", head.text)
	}
	if err != nil {
		return ast.Nil, err
	}
	return id, r.expect(tokCloseBrace, "}")
}

func (r *reader) expect(kind tokenKind, what string) error {
	tok, err := r.next()
	if err != nil {
		return err
	}
	if tok.kind != kind {
		return r.errorf(tok, "%w: %s expected", errExpected, what)
	}
	return nil
}

func (r *reader) stringArg() (token, error) {
	tok, err := r.next()
	if err != nil {
		return tok, err
	}
	if tok.kind != tokString {
		return tok, r.errorf(tok, "%w: string expected", errExpected)
	}
	return tok, nil
}

func (r *reader) datetime(open token, kind string) (ast.ID, error) {
	tok, err := r.stringArg()
	if err != nil {
		return ast.Nil, err
	}
	var t time.Time
	tag := ast.DateLit
	switch kind {
	case "TIME":
		tag = ast.TimeLit
		t, err = time.Parse("15:04:05.999999999", tok.text)
	case "TIMESTAMP":
		tag = ast.TimestampLit
		t, err = dateparse.ParseIn(tok.text, time.UTC)
	default:
		t, err = dateparse.ParseIn(tok.text, time.UTC)
	}
	if err != nil {
		return ast.Nil, r.errorf(tok, "malformed %s literal '%s'", kind, tok.text)
	}
	prec := 0
	if k := strings.LastIndexByte(tok.text, '.'); k >= 0 && tag != ast.DateLit {
		prec = len(tok.text) - k - 1
	}
	return r.tree.Add(&ast.Literal{Tag: tag, Value: t, Precision: prec, Loc: ast.NewLoc(open.pos, tok.end+1)}), nil
}

func (r *reader) binary(open token) (ast.ID, error) {
	tok, err := r.stringArg()
	if err != nil {
		return ast.Nil, err
	}
	b, err := hex.DecodeString(tok.text)
	if err != nil {
		return ast.Nil, r.errorf(tok, "malformed binary literal '%s'", tok.text)
	}
	return r.tree.Add(&ast.Literal{Tag: ast.BinaryLit, Value: b, Loc: ast.NewLoc(open.pos, tok.end+1)}), nil
}

func (r *reader) interval(open token) (ast.ID, error) {
	tok, err := r.stringArg()
	if err != nil {
		return ast.Nil, err
	}
	q, err := r.qualifier()
	if err != nil {
		return ast.Nil, err
	}
	text := strings.TrimSpace(tok.text)
	v := ast.IntervalValue{Sign: 1, Qualifier: q}
	if strings.HasPrefix(text, "-") {
		v.Sign = -1
		text = text[1:]
	}
	for _, field := range strings.FieldsFunc(text, func(c rune) bool { return c < '0' || c > '9' }) {
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return ast.Nil, r.errorf(tok, "malformed interval literal '%s'", tok.text)
		}
		v.Fields = append(v.Fields, n)
	}
	if len(v.Fields) == 0 || len(v.Fields) > int(q.End-q.Start)+2 {
		return ast.Nil, r.errorf(tok, "malformed interval literal '%s'", tok.text)
	}
	tag := ast.IntervalDayTimeLit
	if q.YearMonth() {
		tag = ast.IntervalYearMonthLit
	}
	return r.tree.Add(&ast.Literal{Tag: tag, Value: v, Loc: ast.NewLoc(open.pos, r.lex.pos)}), nil
}

// qualifier reads UNIT [TO UNIT].
func (r *reader) qualifier() (types.IntervalQualifier, error) {
	unit := func() (types.TimeUnit, error) {
		tok, err := r.next()
		if err != nil {
			return 0, err
		}
		u, ok := types.LookupTimeUnit(tok.text)
		if tok.kind != tokWord || !ok {
			return 0, r.errorf(tok, "%w: time unit expected", errExpected)
		}
		return u, nil
	}
	start, err := unit()
	if err != nil {
		return types.IntervalQualifier{}, err
	}
	q := types.IntervalQualifier{Start: start, End: start}
	tok, err := r.peek()
	if err != nil {
		return q, err
	}
	if tok.kind == tokWord && strings.EqualFold(tok.text, "TO") {
		r.next()
		if q.End, err = unit(); err != nil {
			return q, err
		}
		if q.End < q.Start || q.YearMonth() != (q.End <= types.Month) {
			return q, r.errorf(tok, "invalid interval qualifier %s TO %s", q.Start, q.End)
		}
	}
	return q, nil
}

// typeSpec reads NAME [precision [scale]] [CHARSET name].
func (r *reader) typeSpec(open token) (ast.ID, error) {
	spec := &ast.DataTypeSpec{Precision: types.NoPrecision, Scale: types.NoPrecision}
	for {
		tok, err := r.peek()
		if err != nil {
			return ast.Nil, err
		}
		if tok.kind != tokWord {
			break
		}
		r.next()
		switch {
		case strings.EqualFold(tok.text, "CHARSET"):
			cs, err := r.next()
			if err != nil {
				return ast.Nil, err
			}
			spec.Charset = cs.text
		case numberRE.MatchString(tok.text):
			n, err := strconv.Atoi(tok.text)
			if err != nil {
				return ast.Nil, r.errorf(tok, "malformed precision %q", tok.text)
			}
			if spec.Precision == types.NoPrecision {
				spec.Precision = n
			} else {
				spec.Scale = n
			}
		default:
			spec.Names = append(spec.Names, tok.text)
		}
	}
	if len(spec.Names) == 0 {
		return ast.Nil, r.errorf(open, "%w: type name expected", errExpected)
	}
	spec.Loc = ast.NewLoc(open.pos, r.lex.pos)
	return r.tree.Add(spec), nil
}

func (r *reader) charset(open token) (ast.ID, error) {
	tok, err := r.stringArg()
	if err != nil {
		return ast.Nil, err
	}
	cs, err := r.next()
	if err != nil {
		return ast.Nil, err
	}
	name, err := collation.CanonicalCharset(cs.text)
	if err != nil {
		return ast.Nil, r.errorf(cs, "%w", err)
	}
	v := ast.CharValue{Value: tok.text, Charset: name}
	return r.tree.Add(&ast.Literal{Tag: ast.CharLit, Value: v, Loc: ast.NewLoc(open.pos, cs.end+1)}), nil
}

// collate reads an operand and a collation name.  The operand must be a
// character literal or an identifier.
func (r *reader) collate(open token) (ast.ID, error) {
	tok, err := r.next()
	if err != nil {
		return ast.Nil, err
	}
	operand, err := r.expr(tok)
	if err != nil {
		return ast.Nil, err
	}
	nameTok, err := r.next()
	if err != nil {
		return ast.Nil, err
	}
	coll, err := collation.New(nameTok.text, collation.Explicit)
	if err != nil {
		return ast.Nil, r.errorf(nameTok, "%w", err)
	}
	l := ast.NewLoc(open.pos, nameTok.end+1)
	switch n := r.tree.Node(operand).(type) {
	case *ast.Literal:
		v, ok := n.Value.(ast.CharValue)
		if !ok {
			break
		}
		v.Collation = &coll
		if v.Charset == "" {
			v.Charset = coll.Charset
		}
		return r.tree.Add(&ast.Literal{Tag: ast.CharLit, Value: v, Loc: l}), nil
	case *ast.Identifier:
		return r.tree.Add(&ast.Identifier{Names: n.Names, Collation: &coll, Loc: l}), nil
	}
	return ast.Nil, r.errorf(tok, "COLLATE applies to a string or an identifier")
}

func loc(tok token) ast.Loc {
	return ast.NewLoc(tok.pos, tok.end)
}
