package expr

import (
	"fmt"
	"strings"
	"unicode"
)

type itemKind int

const (
	itemEOF itemKind = iota
	itemIdent
	itemString
	itemNumber
	itemBool
	itemNull
	itemEq
	itemNeq
	itemAnd
	itemOr
	itemNot
	itemLParen
	itemRParen
)

type item struct {
	kind itemKind
	text string
	pos  int
}

type lexer struct {
	src   []rune
	pos   int
	items []item
}

func lex(src string) ([]item, error) {
	l := &lexer{src: []rune(src)}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return l.items, nil
		}
		if err := l.scan(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

func (l *lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) emit(kind itemKind, text string, start int) {
	l.items = append(l.items, item{kind: kind, text: text, pos: start})
}

func (l *lexer) pair(second rune, kind itemKind, text string) error {
	start := l.pos
	if l.peekAt(1) != second {
		return fmt.Errorf("%w: expected %q at %d", ErrSyntax, text, start)
	}
	l.pos += 2
	l.emit(kind, text, start)
	return nil
}

func (l *lexer) scan() error {
	start := l.pos
	r := l.src[l.pos]
	switch {
	case r == '(':
		l.pos++
		l.emit(itemLParen, "(", start)
	case r == ')':
		l.pos++
		l.emit(itemRParen, ")", start)
	case r == '=':
		return l.pair('=', itemEq, "==")
	case r == '&':
		return l.pair('&', itemAnd, "&&")
	case r == '|':
		return l.pair('|', itemOr, "||")
	case r == '!':
		if l.peekAt(1) == '=' {
			l.pos += 2
			l.emit(itemNeq, "!=", start)
			return nil
		}
		l.pos++
		l.emit(itemNot, "!", start)
	case r == '"' || r == '\'':
		return l.quoted(r)
	case unicode.IsDigit(r) || ((r == '-' || r == '+') && unicode.IsDigit(l.peekAt(1))):
		l.pos++
		for l.pos < len(l.src) && (unicode.IsDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
			l.pos++
		}
		l.emit(itemNumber, string(l.src[start:l.pos]), start)
	case isIdentRune(r):
		for l.pos < len(l.src) && (isIdentRune(l.src[l.pos]) || unicode.IsDigit(l.src[l.pos]) || l.src[l.pos] == '.' || l.src[l.pos] == '-') {
			l.pos++
		}
		word := string(l.src[start:l.pos])
		switch strings.ToLower(word) {
		case "true", "false":
			l.emit(itemBool, strings.ToLower(word), start)
		case "null", "nil":
			l.emit(itemNull, "null", start)
		default:
			l.emit(itemIdent, word, start)
		}
	default:
		return fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, r, start)
	}
	return nil
}

func (l *lexer) quoted(quote rune) error {
	start := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		l.pos++
		switch r {
		case '\\':
			if l.pos >= len(l.src) {
				return fmt.Errorf("%w: unterminated string at %d", ErrSyntax, start)
			}
			b.WriteRune(l.src[l.pos])
			l.pos++
		case quote:
			l.emit(itemString, b.String(), start)
			return nil
		default:
			b.WriteRune(r)
		}
	}
	return fmt.Errorf("%w: unterminated string at %d", ErrSyntax, start)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
