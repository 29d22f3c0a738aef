// Package collation implements the SQL character-set and collation model
// together with the coercibility lattice used to decide which operand's
// collation governs a dyadic character expression.
package collation

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/language"
)

// Coercibility ranks how firmly a collation is attached to a value.
// Larger values are stronger.
type Coercibility int

const (
	None Coercibility = iota
	Coercible
	Implicit
	Explicit
)

func (c Coercibility) String() string {
	switch c {
	case None:
		return "NONE"
	case Coercible:
		return "COERCIBLE"
	case Implicit:
		return "IMPLICIT"
	case Explicit:
		return "EXPLICIT"
	}
	return fmt.Sprintf("Coercibility(%d)", int(c))
}

const (
	DefaultCharset = "ISO-8859-1"
	DefaultName    = "ISO-8859-1$en_US$primary"
)

var strengths = []string{"primary", "secondary", "tertiary", "identical"}

// Collation is a named collation bound to a character set at a given
// coercibility.  The name has the form charset$locale[$strength].
type Collation struct {
	Name         string       `json:"name" yaml:"name"`
	Charset      string       `json:"charset" yaml:"charset"`
	Coercibility Coercibility `json:"coercibility" yaml:"coercibility"`
}

// New returns a collation with the given name and strength.  The charset
// is taken from the name.
func New(name string, c Coercibility) (Collation, error) {
	charset, _, _, err := Parse(name)
	if err != nil {
		return Collation{}, err
	}
	return Collation{Name: name, Charset: charset, Coercibility: c}, nil
}

// Default returns the default collation at the given strength.
func Default(c Coercibility) Collation {
	return Collation{Name: DefaultName, Charset: DefaultCharset, Coercibility: c}
}

func (c Collation) String() string {
	if c.Name == "" {
		return c.Coercibility.String()
	}
	return fmt.Sprintf("%s %s", c.Coercibility, c.Name)
}

func (c Collation) IsZero() bool {
	return c == Collation{}
}

// WithCoercibility returns c at strength s.
func (c Collation) WithCoercibility(s Coercibility) Collation {
	c.Coercibility = s
	return c
}

// Parse splits a collation name of the form charset$locale[$strength]
// into its canonical charset, locale tag and strength.
func Parse(name string) (string, language.Tag, string, error) {
	parts := strings.Split(name, "$")
	if len(parts) < 2 || len(parts) > 3 {
		return "", language.Und, "", fmt.Errorf("malformed collation name %q", name)
	}
	charset, err := CanonicalCharset(parts[0])
	if err != nil {
		return "", language.Und, "", err
	}
	tag, err := language.Parse(strings.ReplaceAll(parts[1], "_", "-"))
	if err != nil {
		return "", language.Und, "", fmt.Errorf("collation %q: bad locale %q: %w", name, parts[1], err)
	}
	strength := "primary"
	if len(parts) == 3 {
		strength = strings.ToLower(parts[2])
		if !validStrength(strength) {
			return "", language.Und, "", fmt.Errorf("collation %q: unknown strength %q", name, parts[2])
		}
	}
	return charset, tag, strength, nil
}

func validStrength(s string) bool {
	for _, v := range strengths {
		if v == s {
			return true
		}
	}
	return false
}

// CanonicalCharset maps a character set name or alias to its IANA name.
func CanonicalCharset(name string) (string, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return "", fmt.Errorf("unknown character set %q", name)
	}
	if enc == nil {
		// Registered but without a Go encoding.
		return strings.ToUpper(name), nil
	}
	if canon, err := ianaindex.MIME.Name(enc); err == nil && canon != "" {
		return canon, nil
	}
	if canon, err := ianaindex.IANA.Name(enc); err == nil && canon != "" {
		return canon, nil
	}
	return strings.ToUpper(name), nil
}

// ErrNoCommonCollation is the soft failure of Merge.  Whether it is an
// error depends on the calling context.
var ErrNoCommonCollation = errors.New("no common collation")

// IncompatibleError is the hard failure of Merge: two explicit collations
// that differ.
type IncompatibleError struct {
	Left  string
	Right string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("incompatible collations %q and %q", e.Left, e.Right)
}

// Merge combines the collations of the left and right operands of a
// dyadic operator.  Two explicit collations with different names return
// an *IncompatibleError; combinations with no winner return
// ErrNoCommonCollation.
func Merge(left, right Collation) (Collation, error) {
	switch left.Coercibility {
	case Coercible:
		switch right.Coercibility {
		case Coercible:
			return left, nil
		case Implicit, Explicit:
			return right, nil
		}
		return Collation{}, ErrNoCommonCollation
	case Implicit:
		switch right.Coercibility {
		case Coercible:
			return left, nil
		case Implicit:
			if left.Name == right.Name {
				return left, nil
			}
		case Explicit:
			return right, nil
		}
		return Collation{}, ErrNoCommonCollation
	case None:
		if right.Coercibility == Explicit {
			return right, nil
		}
		return Collation{}, ErrNoCommonCollation
	case Explicit:
		if right.Coercibility == Explicit && left.Name != right.Name {
			return Collation{}, &IncompatibleError{Left: left.Name, Right: right.Name}
		}
		return left, nil
	}
	return Collation{}, fmt.Errorf("unknown coercibility %s", left.Coercibility)
}
