package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Ограниченный вычислитель выражений для условий формы
// {"type": "expression"}.
//
// Грамматика (по убыванию приоритета):
//
//	primary := NUMBER | STRING | true | false | null | IDENT | '(' or ')'
//	unary   := ('!' | '-') unary | primary
//	cmp     := unary (('=='|'!='|'<'|'<='|'>'|'>=') unary)?
//	and     := cmp ('&&' cmp)*
//	or      := and ('||' and)*
//
// IDENT — путь по состоянию ("count", "plan.tasks[0]", "$plan.tasks"),
// разрешается через resolveRef. Произвольный код, вызовы функций и
// обращения к окружению не выражаются в грамматике в принципе.
//
// Любая ошибка лексики или разбора деградирует к nil: условия никогда
// не прерывают запуск.

// EvaluateExpression вычисляет выражение против состояния запуска.
// Некорректное выражение даёт nil.
func EvaluateExpression(expr string, st *State, scope string) any {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	toks, err := lexExpr(expr)
	if err != nil {
		return nil
	}

	p := &exprParser{toks: toks, st: st, scope: scope}
	v, err := p.parseOr()
	if err != nil || p.peek().kind != tokEOF {
		return nil
	}
	return v
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type exprToken struct {
	kind tokenKind
	text string
	num  float64
}

var errBadExpr = errors.New("malformed expression")

// lexExpr разбивает выражение на токены.
func lexExpr(src string) ([]exprToken, error) {
	var toks []exprToken
	i := 0

	for i < len(src) {
		c := src[i]

		switch {
		case c == ' ' || c == '\t':
			i++

		case c == '(':
			toks = append(toks, exprToken{kind: tokLParen})
			i++

		case c == ')':
			toks = append(toks, exprToken{kind: tokRParen})
			i++

		case c == '\'' || c == '"':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string", errBadExpr)
			}
			toks = append(toks, exprToken{kind: tokString, text: src[i+1 : i+1+end]})
			i += end + 2

		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			n, err := strconv.ParseFloat(src[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", errBadExpr, src[i:j])
			}
			toks = append(toks, exprToken{kind: tokNumber, num: n})
			i = j

		case isIdentStart(c):
			j := i
			for j < len(src) && isIdentChar(src[j]) {
				j++
			}
			toks = append(toks, exprToken{kind: tokIdent, text: src[i:j]})
			i = j

		default:
			op, ok := lexOperator(src[i:])
			if !ok {
				return nil, fmt.Errorf("%w: unexpected %q", errBadExpr, c)
			}
			toks = append(toks, exprToken{kind: tokOp, text: op})
			i += len(op)
		}
	}

	toks = append(toks, exprToken{kind: tokEOF})
	return toks, nil
}

func lexOperator(src string) (string, bool) {
	for _, op := range []string{"==", "!=", "<=", ">=", "&&", "||", "<", ">", "!", "-"} {
		if strings.HasPrefix(src, op) {
			return op, true
		}
	}
	return "", false
}

func isIdentStart(c byte) bool {
	return c == '$' || c == '_' ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9' ||
		c == '.' || c == '[' || c == ']'
}

// exprParser — рекурсивный спуск с немедленным вычислением.
type exprParser struct {
	toks  []exprToken
	pos   int
	st    *State
	scope string
}

func (p *exprParser) peek() exprToken {
	return p.toks[p.pos]
}

func (p *exprParser) next() exprToken {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *exprParser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *exprParser) parseOr() (any, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	result := truthy(left)
	for {
		if _, ok := p.acceptOp("||"); !ok {
			break
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		result = result || truthy(right)
		left = result
	}
	return left, nil
}

func (p *exprParser) parseAnd() (any, error) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	result := truthy(left)
	for {
		if _, ok := p.acceptOp("&&"); !ok {
			break
		}
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		result = result && truthy(right)
		left = result
	}
	return left, nil
}

func (p *exprParser) parseCmp() (any, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	op, ok := p.acceptOp("==", "!=", "<=", ">=", "<", ">")
	if !ok {
		return left, nil
	}
	right, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return compare(left, op, right), nil
}

func (p *exprParser) parseUnary() (any, error) {
	if _, ok := p.acceptOp("!"); ok {
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return !truthy(v), nil
	}
	if _, ok := p.acceptOp("-"); ok {
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: unary minus on non-number", errBadExpr)
		}
		return -n, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (any, error) {
	t := p.next()

	switch t.kind {
	case tokNumber:
		return t.num, nil

	case tokString:
		return t.text, nil

	case tokIdent:
		switch t.text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		}
		ref := t.text
		if !strings.HasPrefix(ref, RefMarker) {
			ref = RefMarker + ref
		}
		return resolveRef(ref, p.st, p.scope), nil

	case tokLParen:
		v, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ')'", errBadExpr)
		}
		return v, nil

	default:
		return nil, fmt.Errorf("%w: unexpected token", errBadExpr)
	}
}
