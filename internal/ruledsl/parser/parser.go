// Package parser builds a rule AST from a token stream.
//
// Grounded on the source project's rule_engine/parser.py, generalized per
// the spec's explicit requirement that the assignment clause accept any
// identifier as a legal target (the source hardcodes a fixed token set for
// assignments; this implementation does not).
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/ast"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/lexer"
)

// ParseError reports a syntax error with enough detail to render a useful
// diagnostic without aborting the whole task.
type ParseError struct {
	Position int
	Expected string
	Got      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rule parse error at %d: expected %s, got %s", e.Position, e.Expected, e.Got)
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse parses exactly one rule statement from src.
func Parse(src string) (*ast.CategorizationRule, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	rule, err := p.parseRule()
	if err != nil {
		return nil, err
	}
	if p.current().Type != lexer.TokEOF {
		return nil, p.errorf("EOF", p.current())
	}
	return rule, nil
}

// ParseAll parses a sequence of one or more rule statements, per the
// grammar's `rules := rule+` production.
func ParseAll(src string) ([]*ast.CategorizationRule, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	var out []*ast.CategorizationRule
	for p.current().Type != lexer.TokEOF {
		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

func (p *parser) current() lexer.Token { return p.tokens[p.pos] }

func (p *parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if p.current().Type != tt {
		return lexer.Token{}, p.errorf(tt.Name(), p.current())
	}
	return p.advance(), nil
}

func (p *parser) errorf(expected string, got lexer.Token) error {
	return &ParseError{Position: got.Pos, Expected: expected, Got: fmt.Sprintf("%s(%q)", got.Type.Name(), got.Value)}
}

func (p *parser) parseRule() (*ast.CategorizationRule, error) {
	if _, err := p.expect(lexer.TokRule); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.TokString)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokWhere); err != nil {
		return nil, err
	}
	conditions, err := p.parseOrBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokAssign); err != nil {
		return nil, err
	}
	assignments, err := p.parseAssignments()
	if err != nil {
		return nil, err
	}

	priority := 100
	if p.current().Type == lexer.TokPriority {
		p.advance()
		numTok, err := p.expect(lexer.TokNumber)
		if err != nil {
			return nil, err
		}
		n, convErr := strconv.Atoi(numTok.Value)
		if convErr != nil {
			return nil, &ParseError{Position: numTok.Pos, Expected: "integer priority", Got: numTok.Value}
		}
		priority = n
	}

	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return nil, err
	}

	return &ast.CategorizationRule{
		Name:       nameTok.Value,
		Conditions: conditions,
		Assignment: assignments,
		Priority:   priority,
		IsActive:   true,
	}, nil
}

func (p *parser) parseOrBlock() (ast.OrBlock, error) {
	var block ast.OrBlock
	and, err := p.parseAndBlock()
	if err != nil {
		return block, err
	}
	block.Blocks = append(block.Blocks, and)
	for p.current().Type == lexer.TokOr {
		p.advance()
		and, err := p.parseAndBlock()
		if err != nil {
			return block, err
		}
		block.Blocks = append(block.Blocks, and)
	}
	return block, nil
}

func (p *parser) parseAndBlock() (ast.AndBlock, error) {
	var block ast.AndBlock
	filter, err := p.parseFilterExpr()
	if err != nil {
		return block, err
	}
	block.Filters = append(block.Filters, filter)
	for p.current().Type == lexer.TokAnd {
		p.advance()
		filter, err := p.parseFilterExpr()
		if err != nil {
			return block, err
		}
		block.Filters = append(block.Filters, filter)
	}
	return block, nil
}

func (p *parser) parseFilterExpr() (ast.FilterExpression, error) {
	var expr ast.FilterExpression

	identTok, err := p.expect(lexer.TokIdent)
	if err != nil {
		return expr, err
	}
	expr.Field = identTok.Value

	if _, err := p.expect(lexer.TokColon); err != nil {
		return expr, err
	}

	opTok := p.current()
	if !lexer.IsOperator(opTok.Type) {
		return expr, p.errorf("operator", opTok)
	}
	p.advance()

	op, args, caseSensitive, err := p.parseOperatorTail(opTok.Type)
	if err != nil {
		return expr, err
	}
	expr.Op = op
	expr.Args = args
	expr.CaseSensitive = caseSensitive
	return expr, nil
}

// parseOperatorTail consumes the operator-specific argument shape and the
// optional trailing ":i" case flag, per the arity/case-flag table.
func (p *parser) parseOperatorTail(tt lexer.TokenType) (ast.Operator, []string, bool, error) {
	switch tt {
	case lexer.TokOpNull:
		return ast.OpNull, nil, false, nil
	case lexer.TokOpNnull:
		return ast.OpNotNull, nil, false, nil

	case lexer.TokOpEq, lexer.TokOpNeq, lexer.TokOpSw, lexer.TokOpEw, lexer.TokOpRegex:
		if _, err := p.expect(lexer.TokColon); err != nil {
			return 0, nil, false, err
		}
		argTok, err := p.expect(lexer.TokString)
		if err != nil {
			return 0, nil, false, err
		}
		caseSensitive := !p.parseCaseFlag()
		op := map[lexer.TokenType]ast.Operator{
			lexer.TokOpEq: ast.OpEq, lexer.TokOpNeq: ast.OpNeq,
			lexer.TokOpSw: ast.OpStartsWith, lexer.TokOpEw: ast.OpEndsWith,
			lexer.TokOpRegex: ast.OpRegex,
		}[tt]
		return op, []string{argTok.Value}, caseSensitive, nil

	case lexer.TokOpGt, lexer.TokOpLt, lexer.TokOpGte, lexer.TokOpLte:
		if _, err := p.expect(lexer.TokColon); err != nil {
			return 0, nil, false, err
		}
		argTok, err := p.expect(lexer.TokString)
		if err != nil {
			return 0, nil, false, err
		}
		op := map[lexer.TokenType]ast.Operator{
			lexer.TokOpGt: ast.OpGt, lexer.TokOpLt: ast.OpLt,
			lexer.TokOpGte: ast.OpGte, lexer.TokOpLte: ast.OpLte,
		}[tt]
		return op, []string{argTok.Value}, true, nil

	case lexer.TokOpBetween:
		if _, err := p.expect(lexer.TokColon); err != nil {
			return 0, nil, false, err
		}
		lo, err := p.expect(lexer.TokString)
		if err != nil {
			return 0, nil, false, err
		}
		if _, err := p.expect(lexer.TokColon); err != nil {
			return 0, nil, false, err
		}
		hi, err := p.expect(lexer.TokString)
		if err != nil {
			return 0, nil, false, err
		}
		return ast.OpBetween, []string{lo.Value, hi.Value}, true, nil

	case lexer.TokOpCon, lexer.TokOpNoc, lexer.TokOpIn, lexer.TokOpNin:
		if _, err := p.expect(lexer.TokColon); err != nil {
			return 0, nil, false, err
		}
		args, err := p.parseStringList()
		if err != nil {
			return 0, nil, false, err
		}
		caseSensitive := !p.parseCaseFlag()
		op := map[lexer.TokenType]ast.Operator{
			lexer.TokOpCon: ast.OpContains, lexer.TokOpNoc: ast.OpNotContains,
			lexer.TokOpIn: ast.OpIn, lexer.TokOpNin: ast.OpNotIn,
		}[tt]
		return op, args, caseSensitive, nil
	}
	return 0, nil, false, fmt.Errorf("parser: unhandled operator token %s", tt.Name())
}

func (p *parser) parseStringList() ([]string, error) {
	var out []string
	first, err := p.expect(lexer.TokString)
	if err != nil {
		return nil, err
	}
	out = append(out, first.Value)
	for p.current().Type == lexer.TokComma {
		p.advance()
		next, err := p.expect(lexer.TokString)
		if err != nil {
			return nil, err
		}
		out = append(out, next.Value)
	}
	return out, nil
}

// parseCaseFlag peeks for a trailing ":i" marker after an operator's
// arguments, consuming both the colon and the "i" when present and leaving
// the position unchanged otherwise.
func (p *parser) parseCaseFlag() bool {
	if p.current().Type == lexer.TokColon {
		// Lookahead without committing: only consume if followed by ident "i".
		save := p.pos
		p.advance()
		if p.current().Type == lexer.TokIdent && strings.EqualFold(p.current().Value, "i") {
			p.advance()
			return true
		}
		p.pos = save
	}
	return false
}

// parseAssignments parses `(IDENT : (NUMBER|STRING))+` into a dynamic map,
// accepting any identifier as a legal target per the spec's redesign of
// the source's hardcoded assignment-field set.
func (p *parser) parseAssignments() (map[string]ast.AssignedValue, error) {
	out := make(map[string]ast.AssignedValue)

	for {
		identTok := p.current()
		if identTok.Type != lexer.TokIdent {
			break
		}
		p.advance()
		if _, err := p.expect(lexer.TokColon); err != nil {
			return nil, err
		}

		valTok := p.current()
		switch valTok.Type {
		case lexer.TokNumber:
			p.advance()
			if n, err := strconv.ParseInt(valTok.Value, 10, 64); err == nil {
				out[identTok.Value] = ast.AssignedValue{Kind: ast.AssignedInt, Int: n}
			} else {
				out[identTok.Value] = ast.AssignedValue{Kind: ast.AssignedString, Str: valTok.Value}
			}
		case lexer.TokString:
			p.advance()
			out[identTok.Value] = ast.AssignedValue{Kind: ast.AssignedString, Str: valTok.Value}
		default:
			return nil, p.errorf("number or string", valTok)
		}

		// Another assignment follows only if the next token is an
		// identifier that isn't the "priority" keyword (which terminates
		// the assignment clause).
		if p.current().Type != lexer.TokIdent {
			break
		}
	}

	if len(out) == 0 {
		return nil, p.errorf("at least one assignment", p.current())
	}
	return out, nil
}
