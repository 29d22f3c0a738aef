package sexpr

import (
	"errors"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOpen
	tokClose
	tokOpenList
	tokCloseList
	tokOpenBrace
	tokCloseBrace
	tokKeyword
	tokSymbol
	tokString
	tokParam
	tokWord
)

type token struct {
	kind tokenKind
	text string
	pos  int
	end  int
}

type lexer struct {
	src string
	pos int
}

var (
	errUnterminated = errors.New("unterminated string literal")
	errEmptyName    = errors.New("empty keyword or symbol")
)

func (l *lexer) skip() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "--"):
			if n := strings.IndexByte(l.src[l.pos:], '\n'); n >= 0 {
				l.pos += n + 1
			} else {
				l.pos = len(l.src)
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skip()
	start := l.pos
	if start >= len(l.src) {
		return token{kind: tokEOF, pos: start, end: start}, nil
	}
	punct := map[byte]tokenKind{
		'(': tokOpen, ')': tokClose,
		'[': tokOpenList, ']': tokCloseList,
		'{': tokOpenBrace, '}': tokCloseBrace,
	}
	c := l.src[start]
	if kind, ok := punct[c]; ok {
		l.pos++
		return token{kind: kind, text: string(c), pos: start, end: l.pos}, nil
	}
	switch c {
	case '\'':
		return l.quoted()
	case '?':
		l.pos++
		return token{kind: tokParam, text: "?", pos: start, end: l.pos}, nil
	case ':', '#':
		l.pos++
		word := l.word()
		if word == "" {
			return token{pos: start, end: l.pos}, errEmptyName
		}
		kind := tokKeyword
		if c == '#' {
			kind = tokSymbol
		}
		return token{kind: kind, text: word, pos: start, end: l.pos}, nil
	}
	return token{kind: tokWord, text: l.word(), pos: start, end: l.pos}, nil
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.src) && !strings.ContainsRune(" \t\r\n,()[]{}'", rune(l.src[l.pos])) {
		l.pos++
	}
	return l.src[start:l.pos]
}

// quoted scans a single-quoted string in which a doubled quote stands
// for one quote.
func (l *lexer) quoted() (token, error) {
	start := l.pos
	var b strings.Builder
	l.pos++
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		l.pos++
		if c != '\'' {
			b.WriteByte(c)
			continue
		}
		if l.pos < len(l.src) && l.src[l.pos] == '\'' {
			b.WriteByte('\'')
			l.pos++
			continue
		}
		return token{kind: tokString, text: b.String(), pos: start, end: l.pos}, nil
	}
	return token{pos: start, end: l.pos}, errUnterminated
}
