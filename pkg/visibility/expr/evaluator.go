// Package expr implements a small boolean expression language for field
// visibility rules:
//
//	newsletter
//	!guest && plan == "pro"
//	(country == "US" || extras.beta) && age != 0
//
// Identifiers are dotted paths into the form values; the `extras.` prefix
// reads host supplied context. Comparisons coerce the looked-up value to the
// literal's kind (string, number, bool, null).
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-dynform/pkg/visibility"
)

// ErrSyntax wraps every parse failure.
var ErrSyntax = errors.New("visibility/expr: syntax error")

// Evaluator compiles rules on first use and caches the result.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]predicate
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// New returns an Evaluator with an empty compile cache.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]predicate)}
}

// Eval evaluates rule against ctx. Blank rules are always visible.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	pred, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	return pred(ctx), nil
}

// Compile validates a rule without evaluating it.
func (e *Evaluator) Compile(rule string) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil
	}
	_, err := e.compile(rule)
	return err
}

func (e *Evaluator) compile(rule string) (predicate, error) {
	e.mu.RLock()
	pred, ok := e.cache[rule]
	e.mu.RUnlock()
	if ok {
		return pred, nil
	}

	items, err := lex(rule)
	if err != nil {
		return nil, err
	}
	p := &parser{items: items}
	pred, err = p.or()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != itemEOF {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.text, tok.pos)
	}

	e.mu.Lock()
	if e.cache == nil {
		e.cache = make(map[string]predicate)
	}
	e.cache[rule] = pred
	e.mu.Unlock()
	return pred, nil
}

type predicate func(visibility.Context) bool

type operand func(visibility.Context) (any, bool)

type parser struct {
	items []item
	pos   int
}

func (p *parser) peek() item {
	if p.pos >= len(p.items) {
		return item{kind: itemEOF}
	}
	return p.items[p.pos]
}

func (p *parser) next() item {
	tok := p.peek()
	if tok.kind != itemEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(kind itemKind) bool {
	if p.peek().kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (predicate, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept(itemOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		left = func(ctx visibility.Context) bool { return l(ctx) || r(ctx) }
	}
	return left, nil
}

func (p *parser) and() (predicate, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept(itemAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		left = func(ctx visibility.Context) bool { return l(ctx) && r(ctx) }
	}
	return left, nil
}

func (p *parser) unary() (predicate, error) {
	if p.accept(itemNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return func(ctx visibility.Context) bool { return !inner(ctx) }, nil
	}
	return p.primary()
}

func (p *parser) primary() (predicate, error) {
	if p.accept(itemLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(itemRParen) {
			tok := p.peek()
			return nil, fmt.Errorf("%w: expected ')' at %d", ErrSyntax, tok.pos)
		}
		return inner, nil
	}

	tok := p.next()
	if tok.kind != itemIdent {
		return nil, fmt.Errorf("%w: expected identifier, got %q at %d", ErrSyntax, tok.text, tok.pos)
	}
	path := tok.text
	get := operand(func(ctx visibility.Context) (any, bool) { return ctx.Lookup(path) })

	op := p.peek().kind
	if op != itemEq && op != itemNeq {
		return func(ctx visibility.Context) bool {
			value, ok := get(ctx)
			return ok && visibility.Truthy(value)
		}, nil
	}
	p.next()

	lit := p.next()
	match, err := comparator(lit)
	if err != nil {
		return nil, err
	}
	negate := op == itemNeq
	return func(ctx visibility.Context) bool {
		value, _ := get(ctx)
		return match(value) != negate
	}, nil
}

func comparator(lit item) (func(any) bool, error) {
	switch lit.kind {
	case itemString:
		want := lit.text
		return func(v any) bool { return visibility.String(v) == want }, nil
	case itemNumber:
		want, err := strconv.ParseFloat(lit.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q", ErrSyntax, lit.text)
		}
		return func(v any) bool {
			got, ok := toFloat(v)
			return ok && got == want
		}, nil
	case itemBool:
		want := lit.text == "true"
		return func(v any) bool { return visibility.Truthy(v) == want }, nil
	case itemNull:
		return func(v any) bool { return v == nil }, nil
	default:
		return nil, fmt.Errorf("%w: expected literal, got %q at %d", ErrSyntax, lit.text, lit.pos)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
