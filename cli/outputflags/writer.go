package outputflags

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/semantic"
	"github.com/brimdata/sqlsem/compiler/sexpr"
	"github.com/brimdata/sqlsem/compiler/srcfiles"
	"github.com/brimdata/sqlsem/types"
)

type Writer struct {
	w      io.Writer
	json   bool
	pretty bool
	multi  bool
}

type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Report struct {
	Name        string   `json:"name,omitempty"`
	Valid       bool     `json:"valid"`
	Type        string   `json:"type,omitempty"`
	Fields      []Field  `json:"fields,omitempty"`
	Parameters  []Field  `json:"parameters,omitempty"`
	Tree        string   `json:"tree,omitempty"`
	Hints       []string `json:"hints,omitempty"`
	Code        string   `json:"code,omitempty"`
	Message     string   `json:"message,omitempty"`
	Line        int      `json:"line,omitempty"`
	Column      int      `json:"column,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Signatures  []string `json:"signatures,omitempty"`
}

func fields(t *types.Type) []Field {
	if t == nil || !t.IsRow() {
		return nil
	}
	out := make([]Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		out = append(out, Field{Name: f.Name, Type: f.Type.String()})
	}
	return out
}

// Validated writes the type of a validated statement and the types
// inferred for its dynamic parameters.
func (w *Writer) Validated(name string, res *semantic.Result) error {
	typ := res.Type()
	r := Report{
		Name:       name,
		Valid:      true,
		Type:       typ.String(),
		Fields:     fields(typ),
		Parameters: fields(res.ParameterRowType()),
	}
	if w.json {
		return w.encode(r)
	}
	var b strings.Builder
	b.WriteString(r.Type)
	b.WriteByte('\n')
	for _, p := range r.Parameters {
		fmt.Fprintf(&b, "%s %s\n", p.Name, p.Type)
	}
	return w.text(name, b.String())
}

// Failed writes a validation error.  The error is positioned in files
// when its node came from the source text.
func (w *Writer) Failed(name string, err error, files *srcfiles.List) error {
	located := semantic.Locate(err, files)
	if !w.json {
		return w.text(name, strings.TrimSuffix(located.Error(), "\n")+"\n")
	}
	r := Report{Name: name, Message: err.Error()}
	var e *semantic.Error
	if errors.As(err, &e) {
		r.Code = e.Code.String()
		r.Message = e.Msg
		r.Suggestions = e.Suggestions
		r.Signatures = e.Signatures
	}
	if se, ok := srcfiles.AsError(located); ok {
		if pos := se.Position(); pos.IsValid() {
			r.Line, r.Column = pos.Line, pos.Column
		}
	}
	return w.encode(r)
}

// Tree writes a statement in tree notation.
func (w *Writer) Tree(name string, tree *ast.Tree, root ast.ID) error {
	text := sexpr.Format(tree, root)
	if w.json {
		return w.encode(Report{Name: name, Valid: true, Tree: text})
	}
	return w.text(name, text+"\n")
}

// Hints writes completion candidates one per line.
func (w *Writer) Hints(name string, hints []string) error {
	if w.json {
		if hints == nil {
			hints = []string{}
		}
		return w.encodeHints(name, hints)
	}
	var b strings.Builder
	for _, h := range hints {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	return w.text(name, b.String())
}

func (w *Writer) encodeHints(name string, hints []string) error {
	// An empty hint list is written as [] rather than omitted.
	v := struct {
		Name  string   `json:"name,omitempty"`
		Hints []string `json:"hints"`
	}{name, hints}
	return w.encode(v)
}

func (w *Writer) text(name, s string) error {
	if w.multi && name != "" {
		s = "== " + name + " ==\n" + s
	}
	_, err := io.WriteString(w.w, s)
	return err
}

func (w *Writer) encode(v any) error {
	enc := json.NewEncoder(w.w)
	if w.pretty {
		enc.SetIndent("", "    ")
	}
	return enc.Encode(v)
}
