package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParsePredicate compiles a branch condition written against session fields:
//
//	email                          field is non-empty
//	!last_name                     field is empty
//	num_employees == "500+"        equality; != negates
//	num_employees in ["1", "2-5"]  membership
//	a == "x" && (b || !c)          composition with && || ! and parentheses
//
// Values compare as trimmed strings. Unknown fields read as empty.
func ParsePredicate(source string) (Predicate, error) {
	node, err := compile(source)
	if err != nil {
		return nil, err
	}
	return node.eval, nil
}

// ExpressionFields lists the field names an expression reads, in order of
// first appearance.
func ExpressionFields(source string) ([]string, error) {
	node, err := compile(source)
	if err != nil {
		return nil, err
	}
	var fields []string
	seen := make(map[string]bool)
	collectFields(node, func(name string) {
		if !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	})
	return fields, nil
}

func compile(source string) (exprNode, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, errors.New("validation: empty predicate expression")
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("validation: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

func collectFields(node exprNode, visit func(string)) {
	switch n := node.(type) {
	case exprOr:
		collectFields(n.left, visit)
		collectFields(n.right, visit)
	case exprAnd:
		collectFields(n.left, visit)
		collectFields(n.right, visit)
	case exprNot:
		collectFields(n.inner, visit)
	case exprCompare:
		visit(n.field)
	case exprPresent:
		visit(n.field)
	}
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenString
	tokenEq
	tokenNeq
	tokenIn
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenComma
)

type token struct {
	kind tokenKind
	raw  string
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '[', ']', ',', '!', '=', '&', '|', '"', '\'':
		return true
	}
	return false
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		ch := input[i]
		switch ch {
		case ' ', '\t', '\n', '\r':
			i++
		case '(':
			tokens = append(tokens, token{tokenLParen, "("})
			i++
		case ')':
			tokens = append(tokens, token{tokenRParen, ")"})
			i++
		case '[':
			tokens = append(tokens, token{tokenLBracket, "["})
			i++
		case ']':
			tokens = append(tokens, token{tokenRBracket, "]"})
			i++
		case ',':
			tokens = append(tokens, token{tokenComma, ","})
			i++
		case '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{tokenNeq, "!="})
				i += 2
				continue
			}
			tokens = append(tokens, token{tokenNot, "!"})
			i++
		case '=':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, errors.New("validation: unexpected '='; use '=='")
			}
			tokens = append(tokens, token{tokenEq, "=="})
			i += 2
		case '&':
			if i+1 >= len(input) || input[i+1] != '&' {
				return nil, errors.New("validation: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{tokenAnd, "&&"})
			i += 2
		case '|':
			if i+1 >= len(input) || input[i+1] != '|' {
				return nil, errors.New("validation: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{tokenOr, "||"})
			i += 2
		case '"', '\'':
			quote := ch
			j := i + 1
			escaped := false
			for ; j < len(input); j++ {
				if escaped {
					escaped = false
					continue
				}
				if input[j] == '\\' {
					escaped = true
					continue
				}
				if input[j] == quote {
					break
				}
			}
			if j >= len(input) {
				return nil, errors.New("validation: unterminated string literal")
			}
			body := input[i+1 : j]
			if quote == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, fmt.Errorf("validation: invalid string literal: %w", err)
			}
			tokens = append(tokens, token{tokenString, value})
			i = j + 1
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			if raw == "in" {
				tokens = append(tokens, token{tokenIn, raw})
				continue
			}
			tokens = append(tokens, token{tokenWord, raw})
		}
	}
	return tokens, nil
}

type exprNode interface {
	eval(fields map[string]string) bool
}

type exprOr struct{ left, right exprNode }

func (n exprOr) eval(fields map[string]string) bool {
	return n.left.eval(fields) || n.right.eval(fields)
}

type exprAnd struct{ left, right exprNode }

func (n exprAnd) eval(fields map[string]string) bool {
	return n.left.eval(fields) && n.right.eval(fields)
}

type exprNot struct{ inner exprNode }

func (n exprNot) eval(fields map[string]string) bool {
	return !n.inner.eval(fields)
}

type exprCompare struct {
	field  string
	negate bool
	values []string
}

func (n exprCompare) eval(fields map[string]string) bool {
	got := strings.TrimSpace(fields[n.field])
	for _, want := range n.values {
		if got == want {
			return !n.negate
		}
	}
	return n.negate
}

type exprPresent struct{ field string }

func (n exprPresent) eval(fields map[string]string) bool {
	return strings.TrimSpace(fields[n.field]) != ""
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseOr(stream *tokenStream) (exprNode, error) {
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

func parseAnd(stream *tokenStream) (exprNode, error) {
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

func parseUnary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return exprNot{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("validation: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.consume(tokenWord)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return nil, errors.New("validation: incomplete expression")
		}
		return nil, fmt.Errorf("validation: expected field name, got %q", stream.tokens[stream.pos].raw)
	}

	switch {
	case stream.match(tokenEq):
		value, err := stream.literal()
		if err != nil {
			return nil, err
		}
		return exprCompare{field: ident.raw, values: []string{value}}, nil
	case stream.match(tokenNeq):
		value, err := stream.literal()
		if err != nil {
			return nil, err
		}
		return exprCompare{field: ident.raw, negate: true, values: []string{value}}, nil
	case stream.match(tokenIn):
		values, err := stream.list()
		if err != nil {
			return nil, err
		}
		return exprCompare{field: ident.raw, values: values}, nil
	}
	return exprPresent{field: ident.raw}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

// literal accepts quoted strings and bare words such as 500 or Technical.
func (s *tokenStream) literal() (string, error) {
	if s.pos >= len(s.tokens) {
		return "", errors.New("validation: missing value")
	}
	tok := s.tokens[s.pos]
	if tok.kind != tokenString && tok.kind != tokenWord {
		return "", fmt.Errorf("validation: expected value, got %q", tok.raw)
	}
	s.pos++
	return tok.raw, nil
}

func (s *tokenStream) list() ([]string, error) {
	if !s.match(tokenLBracket) {
		return nil, errors.New("validation: 'in' expects a [list]")
	}
	var values []string
	if s.match(tokenRBracket) {
		return values, nil
	}
	for {
		value, err := s.literal()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		if s.match(tokenRBracket) {
			return values, nil
		}
		if !s.match(tokenComma) {
			return nil, errors.New("validation: expected ',' or ']' in list")
		}
	}
}
