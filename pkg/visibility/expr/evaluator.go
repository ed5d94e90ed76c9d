package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-reportform/pkg/visibility"
)

var (
	// ErrSyntax wraps every tokenizer and parser failure.
	ErrSyntax = errors.New("visibility/expr: syntax error")
	// ErrUnknownField is returned when a rule references a key that is not
	// present in the form values.
	ErrUnknownField = errors.New("visibility/expr: unknown field")
)

// fieldPrefix is accepted in front of field references so rules written
// against the "formData.x" convention evaluate unchanged.
const fieldPrefix = "formData."

// Evaluator is a small, dependency-free visibility evaluator. Rules are parsed
// into a closed AST and interpreted; nothing is executed dynamically.
//
// Supported forms:
// - field references: `isAnonymous`, `formData.isAnonymous`
// - boolean literals: `true`, `false`
// - negation and composition: `!a`, `a && b`, `a || (b && !c)`
// - comparisons: `field == true`, `field != "Email"`, `count == 3`
//
// A reference resolves to the field's current value and is tested for
// truthiness the way its JSON encoding would be: false, "", 0 and null are
// falsy. Referencing a key missing from the values is ErrUnknownField, except
// in `== null` / `!= null` comparisons.
type Evaluator struct{}

func New() *Evaluator { return &Evaluator{} }

var _ visibility.Evaluator = (*Evaluator)(nil)

func (e *Evaluator) Eval(fieldName, rule string, ctx visibility.Context) (bool, error) {
	_ = fieldName
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	node, err := Compile(trimmed)
	if err != nil {
		return false, err
	}
	return node.Eval(ctx)
}

// Node is a compiled rule.
type Node interface {
	Eval(ctx visibility.Context) (bool, error)
}

// Compile parses a rule into a reusable Node.
func Compile(rule string) (Node, error) {
	tokens, err := tokenize(rule)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	return parseExpression(tokens)
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func syntaxErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrSyntax}, args...)...)
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	next := func() byte {
		if i >= len(input) {
			return 0
		}
		return input[i]
	}

	consume := func() byte {
		if i >= len(input) {
			return 0
		}
		ch := input[i]
		i++
		return ch
	}

	for i < len(input) {
		ch := next()
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		switch ch {
		case '(':
			consume()
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			continue
		case ')':
			consume()
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			continue
		case '!':
			consume()
			if next() == '=' {
				consume()
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				continue
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			continue
		case '=':
			consume()
			if next() != '=' {
				return nil, syntaxErr("unexpected '='; use '=='")
			}
			consume()
			// tolerate the strict form "==="
			if next() == '=' {
				consume()
			}
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
			continue
		case '&':
			consume()
			if next() != '&' {
				return nil, syntaxErr("unexpected '&'; use '&&'")
			}
			consume()
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			continue
		case '|':
			consume()
			if next() != '|' {
				return nil, syntaxErr("unexpected '|'; use '||'")
			}
			consume()
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			continue
		case '"', '\'':
			quote := consume()
			start := i
			escaped := false
			closed := false
			for i < len(input) {
				c := consume()
				if escaped {
					escaped = false
					continue
				}
				if c == '\\' {
					escaped = true
					continue
				}
				if c == quote {
					closed = true
					break
				}
			}
			if !closed {
				return nil, syntaxErr("unterminated string literal")
			}
			body := input[start : i-1]
			if quote == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, syntaxErr("invalid string literal: %v", err)
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			continue
		}

		start := i
		for i < len(input) {
			c := input[i]
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == '!' || c == '=' || c == '&' || c == '|' {
				break
			}
			i++
		}
		raw := input[start:i]
		switch raw {
		case "true", "false":
			tokens = append(tokens, token{kind: tokenBool, raw: raw})
		case "null", "undefined":
			tokens = append(tokens, token{kind: tokenNull, raw: "null"})
		default:
			switch {
			case looksLikeNumber(raw):
				tokens = append(tokens, token{kind: tokenNumber, raw: raw})
			case isIdentifier(raw):
				tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
			default:
				return nil, syntaxErr("invalid token %q", raw)
			}
		}
	}

	return tokens, nil
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+'
}

func isIdentifier(raw string) bool {
	if raw == "" {
		return false
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case (c >= '0' && c <= '9') || c == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return !strings.HasSuffix(raw, ".")
}

type exprOr struct {
	left  Node
	right Node
}

func (n exprOr) Eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.Eval(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return n.right.Eval(ctx)
}

type exprAnd struct {
	left  Node
	right Node
}

func (n exprAnd) Eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.Eval(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return n.right.Eval(ctx)
}

type exprNot struct {
	inner Node
}

func (n exprNot) Eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.Eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type exprBool bool

func (n exprBool) Eval(visibility.Context) (bool, error) {
	return bool(n), nil
}

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind literalKind
	raw  string
}

type exprCompare struct {
	identifier string
	op         tokenKind
	literal    literal
}

func (n exprCompare) Eval(ctx visibility.Context) (bool, error) {
	value, found := lookup(ctx, n.identifier)
	if !found && n.literal.kind != litNull {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, n.identifier)
	}

	var equal bool
	switch n.literal.kind {
	case litNull:
		equal = value == nil
	case litBool:
		got, ok := value.(bool)
		equal = ok && got == (n.literal.raw == "true")
	case litNumber:
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false, syntaxErr("invalid number literal %q", n.literal.raw)
		}
		got, ok := coerceNumber(value)
		equal = ok && got == want
	case litString:
		got, ok := value.(string)
		equal = ok && got == n.literal.raw
	default:
		return false, syntaxErr("unsupported literal")
	}

	if n.op == tokenNeq {
		return !equal, nil
	}
	return equal, nil
}

type exprTruthy struct {
	identifier string
}

func (n exprTruthy) Eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.identifier)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, n.identifier)
	}
	return truthy(value), nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseExpression(tokens []token) (Node, error) {
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, syntaxErr("unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

func parseOr(stream *tokenStream) (Node, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = exprOr{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (Node, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = exprAnd{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (Node, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return exprNot{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (Node, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, syntaxErr("missing closing ')'")
		}
		return inner, nil
	}

	if tok, ok := stream.consume(tokenBool); ok {
		return exprBool(tok.raw == "true"), nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return nil, syntaxErr("unexpected end of expression")
		}
		return nil, syntaxErr("expected field reference, got %q", stream.tokens[stream.pos].raw)
	}

	for _, op := range []tokenKind{tokenEq, tokenNeq} {
		if stream.match(op) {
			lit, err := stream.consumeLiteral()
			if err != nil {
				return nil, err
			}
			return exprCompare{identifier: ident.raw, op: op, literal: lit}, nil
		}
	}

	return exprTruthy{identifier: ident.raw}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	_, ok := s.consume(kind)
	return ok
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	if s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) consumeLiteral() (literal, error) {
	if s.pos >= len(s.tokens) {
		return literal{}, syntaxErr("missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString:
		return literal{kind: litString, raw: tok.raw}, nil
	case tokenNumber:
		return literal{kind: litNumber, raw: tok.raw}, nil
	case tokenBool:
		return literal{kind: litBool, raw: tok.raw}, nil
	case tokenNull:
		return literal{kind: litNull, raw: "null"}, nil
	default:
		return literal{}, syntaxErr("expected literal, got %q", tok.raw)
	}
}

func lookup(ctx visibility.Context, key string) (any, bool) {
	if strings.HasPrefix(key, "extras.") {
		return lookupMap(ctx.Extras, key[len("extras."):])
	}
	return lookupMap(ctx.Values, strings.TrimPrefix(key, fieldPrefix))
}

func lookupMap(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}

	// Prefer exact match for dotted keys.
	if v, ok := values[path]; ok {
		return v, true
	}

	parts := strings.Split(path, ".")
	var current any = values
	for _, part := range parts {
		typed, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := typed[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	default:
		return true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
