package valueflow

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// The parser accepts the restricted arithmetic grammar and nothing else:
//
//	expr    := term { ('+' | '-') term }
//	term    := unary { ('*' | '/') unary }
//	unary   := ['+' | '-'] unary | primary
//	primary := number | ident | ident '(' expr {',' expr} ')' | '(' expr ')'
//
// Unary minus is folded into the tree as (0 - x), keeping the node kinds to
// the four defined in ast.go. Formula text is untrusted input; anything
// outside this grammar is rejected before any evaluation happens.

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	formula string
	tokens  []token
	cursor  int
}

// parse tokenizes and parses formula text into an expression tree.
// Returns *SyntaxError on any malformed input; no partial tree is returned.
func parse(formula string) (Node, error) {
	tokens, err := lex(formula)
	if err != nil {
		return nil, err
	}
	p := &parser{formula: formula, tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok.pos, "unexpected %q", tok.text)
	}
	return root, nil
}

func lex(formula string) ([]token, error) {
	var tokens []token
	runes := []rune(formula)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			tokens = append(tokens, token{tokPlus, "+", i})
			i++
		case r == '-':
			tokens = append(tokens, token{tokMinus, "-", i})
			i++
		case r == '*':
			tokens = append(tokens, token{tokStar, "*", i})
			i++
		case r == '/':
			tokens = append(tokens, token{tokSlash, "/", i})
			i++
		case r == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case r == ',':
			tokens = append(tokens, token{tokComma, ",", i})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			i = scanNumber(runes, i)
			text := string(runes[start:i])
			if _, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64); err != nil {
				return nil, &SyntaxError{Formula: formula, Pos: start, Msg: "malformed number " + strconv.Quote(text)}
			}
			tokens = append(tokens, token{tokNumber, text, start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{tokIdent, string(runes[start:i]), start})
		default:
			return nil, &SyntaxError{Formula: formula, Pos: i, Msg: "unexpected character " + strconv.QuoteRune(r)}
		}
	}
	tokens = append(tokens, token{tokEOF, "", len(runes)})
	return tokens, nil
}

// scanNumber consumes digits, a fractional part, underscore digit separators,
// and an optional exponent. Validity is checked by ParseFloat afterwards.
func scanNumber(runes []rune, i int) int {
	for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.' || runes[i] == '_') {
		i++
	}
	if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
		j := i + 1
		if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
			j++
		}
		if j < len(runes) && unicode.IsDigit(runes[j]) {
			i = j
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
		}
	}
	return i
}

func (p *parser) peek() token {
	return p.tokens[p.cursor]
}

func (p *parser) next() token {
	tok := p.tokens[p.cursor]
	if tok.kind != tokEOF {
		p.cursor++
	}
	return tok
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Formula: p.formula, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Op: OpAdd, Left: left, Right: right}
		case tokMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Op: OpSub, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Op: OpMul, Left: left, Right: right}
		case tokSlash:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Op: OpDiv, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Node, error) {
	switch p.peek().kind {
	case tokPlus:
		p.next()
		return p.parseUnary()
	case tokMinus:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if lit, ok := operand.(*NumberLit); ok {
			return &NumberLit{Value: -lit.Value}, nil
		}
		return &BinaryExpr{Op: OpSub, Left: &NumberLit{Value: 0}, Right: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok.text, "_", ""), 64)
		if err != nil {
			return nil, p.errorf(tok.pos, "malformed number %q", tok.text)
		}
		return &NumberLit{Value: v}, nil

	case tokIdent:
		if p.peek().kind != tokLParen {
			return &Ident{Name: tok.text}, nil
		}
		p.next() // consume '('
		call := &CallExpr{Func: tok.text}
		if p.peek().kind == tokRParen {
			return nil, p.errorf(p.peek().pos, "call to %s with no arguments", tok.text)
		}
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			sep := p.next()
			if sep.kind == tokRParen {
				return call, nil
			}
			if sep.kind != tokComma {
				return nil, p.errorf(sep.pos, "expected ',' or ')' in call to %s", tok.text)
			}
		}

	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing := p.next()
		if closing.kind != tokRParen {
			return nil, p.errorf(closing.pos, "expected ')'")
		}
		return inner, nil

	case tokEOF:
		return nil, p.errorf(tok.pos, "unexpected end of formula")

	default:
		return nil, p.errorf(tok.pos, "unexpected %q", tok.text)
	}
}
