// Package parser は Monkey言語のパーサーを実装するパッケージ。
// Pratt Parser（トップダウン演算子順位解析法）を使って、
// トークン列をAST（抽象構文木）に変換する。
//
// Pratt Parserの核心的なアイデア:
// - 各トークンタイプに「前置解析関数」と「中置解析関数」を関連付ける
// - 演算子の優先順位（precedence）に基づいて正しい構文木を構築する
//
// 文とブロックは再帰下降で解析する。構文エラーでは処理を中断せず、
// メッセージを蓄積しながら可能な限りパースを続ける。
package parser

import (
	"fmt"
	"strconv"

	"github.com/junhat6/go-monkey/ast"
	"github.com/junhat6/go-monkey/token"
)

// 演算子の優先順位を定数で定義する。
// 数値が大きいほど優先順位が高い。
// 例: * は + より優先順位が高いので、`1 + 2 * 3` は `1 + (2 * 3)` になる。
const (
	_ int = iota
	LOWEST
	EQUALS      // ==
	LESSGREATER // > または <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X または !X
	CALL        // myFunction(X)
)

// precedences はトークンタイプから優先順位への対応表。
var precedences = map[token.TokenType]int{
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.LPAREN:   CALL,
}

type (
	// prefixParseFn は前置解析関数の型。
	// トークンが式の先頭に来た場合に呼ばれる（例: -5, !true, 識別子, 整数リテラル）。
	prefixParseFn func() ast.Expression
	// infixParseFn は中置解析関数の型。
	// 左辺の式を引数に取り、中置演算子の右辺を解析して完全な式を返す。
	infixParseFn func(ast.Expression) ast.Expression
)

// TokenSource はパーサーにトークンを1つずつ供給するもの。
// lexer.Lexer がこれを満たす。入力の終端以降は token.EOF を返し続けなければならない。
type TokenSource interface {
	NextToken() token.Token
}

// Parser はMonkey言語のパーサー。
// トークンソースから読み取り、先読み1トークン（peekToken）でASTを構築する。
type Parser struct {
	src    TokenSource
	errors []string

	curToken  token.Token // 現在見ているトークン
	peekToken token.Token // 次のトークン（先読み用）

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	tracing    bool
	traceLevel int
}

// Parse はトークンソース全体をパースし、ASTとエラーメッセージの一覧を返す。
// エラーが1つでもあれば、返された Program は部分的なものとして扱うこと。
func Parse(src TokenSource) (*ast.Program, []string) {
	p := New(src)
	program := p.ParseProgram()
	return program, p.Errors()
}

// New はトークンソースからパーサーを生成する。
// 各トークンタイプに対して解析関数を登録し、
// 最初の2トークンを読み込んで curToken と peekToken をセットする。
func New(src TokenSource) *Parser {
	p := &Parser{
		src:    src,
		errors: []string{},
	}

	// 前置解析関数の登録
	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.IF, p.parseIfExpression)
	p.registerPrefix(token.FUNCTION, p.parseFunctionLiteral)

	// 中置解析関数の登録
	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)

	// '(' は式の直後に来ると関数呼び出しの中置演算子になる（例: add(1, 2)）
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// curToken と peekToken の両方をセットするために2回読む
	p.nextToken()
	p.nextToken()

	return p
}

// nextToken は次のトークンに進む。
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.src.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek は次のトークンが期待する型であればトークンを進めてtrueを返す。
// 期待と違う場合はエラーを追加してfalseを返す。
func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// Errors はパース中に蓄積されたエラーメッセージを発生順に返す。
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) peekError(t token.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead",
		t, p.peekToken.Type)
	p.errors = append(p.errors, msg)
}

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	msg := fmt.Sprintf("no prefix parse function for %s found", t)
	p.errors = append(p.errors, msg)
}

// =====================
// プログラムと文のパース
// =====================

// ParseProgram はプログラム全体をパースしてASTのルートノードを返す。
// EOF に到達するまで文を1つずつパースする。
// パースに失敗した文は Program に含めない。
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// parseStatement は現在のトークンに応じて適切な種類の文をパースする。
// 失敗した場合はインターフェースとしての nil を返す。
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		if stmt := p.parseLetStatement(); stmt != nil {
			return stmt
		}
	case token.RETURN:
		if stmt := p.parseReturnStatement(); stmt != nil {
			return stmt
		}
	default:
		if stmt := p.parseExpressionStatement(); stmt != nil {
			return stmt
		}
	}
	return nil
}

// parseLetStatement は `let <identifier> = <expression>;` をパースする。
func (p *Parser) parseLetStatement() *ast.LetStatement {
	defer p.untrace(p.trace("parseLetStatement"))

	stmt := &ast.LetStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}

	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}

	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	// セミコロンは省略可能
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

// parseReturnStatement は `return <expression>;` をパースする。
func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	defer p.untrace(p.trace("parseReturnStatement"))

	stmt := &ast.ReturnStatement{Token: p.curToken}

	p.nextToken()

	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

// parseExpressionStatement は式だけからなる文をパースする。
func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	defer p.untrace(p.trace("parseExpressionStatement"))

	stmt := &ast.ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

// =====================
// 式のパース（Pratt Parser の心臓部）
// =====================

// parseExpression はPratt Parserのメインループ。
// 1. まず現在のトークンに対応する前置解析関数を呼んで左辺の式を得る
// 2. 次のトークンの優先順位が precedence より高い間、
//    中置解析関数を呼んで左辺に演算子と右辺を結合していく
//
// 例: `1 + 2 * 3` の場合
//   - 前置関数で 1 を取得
//   - + の優先順位(SUM) > LOWEST なので、中置関数で (1 + ...) を構築
//   - 中置関数内で parseExpression(SUM) を再帰呼び出し
//   - 2 を前置関数で取得し、* の優先順位(PRODUCT) > SUM なので (2 * 3) を構築
//   - 結果: (1 + (2 * 3))
//
// `a - b - c` では2つ目の - の優先順位は SUM で、下限の SUM を超えないので
// 内側のループは b で止まり、((a - b) - c) になる（左結合）。
//
// どこかで部分式の解析に失敗した場合は nil を返す。
func (p *Parser) parseExpression(precedence int) ast.Expression {
	defer p.untrace(p.trace("parseExpression"))

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

// peekPrecedence は次のトークンの優先順位を返す。
func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

// curPrecedence は現在のトークンの優先順位を返す。
func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

// =====================
// 各種式の解析関数
// =====================

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

// parseIntegerLiteral は整数リテラルをパースする。
// int64 に収まらない場合はエラーを追加する。
func (p *Parser) parseIntegerLiteral() ast.Expression {
	defer p.untrace(p.trace("parseIntegerLiteral"))

	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		msg := fmt.Sprintf("could not parse %q as integer", p.curToken.Literal)
		p.errors = append(p.errors, msg)
		return nil
	}

	lit.Value = value

	return lit
}

// parsePrefixExpression は前置演算子式（!x, -5 など）をパースする。
// 右辺は PREFIX の優先順位でパースするので、`-a * b` は ((-a) * b) になる。
func (p *Parser) parsePrefixExpression() ast.Expression {
	defer p.untrace(p.trace("parsePrefixExpression"))

	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseInfixExpression は中置演算子式（5 + 10 など）をパースする。
// 右辺は現在の演算子自身の優先順位を下限としてパースする。
func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	defer p.untrace(p.trace("parseInfixExpression"))

	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

// parseGroupedExpression は `(expression)` をパースする。
// 括弧はグループ化のためだけに使われ、AST上には残らない。
func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

// parseIfExpression は `if (<condition>) <consequence> else <alternative>` をパースする。
func (p *Parser) parseIfExpression() ast.Expression {
	defer p.untrace(p.trace("parseIfExpression"))

	expression := &ast.IfExpression{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	expression.Consequence = p.parseBlockStatement()

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()

		if !p.expectPeek(token.LBRACE) {
			return nil
		}

		expression.Alternative = p.parseBlockStatement()
	}

	return expression
}

// parseBlockStatement は `{ ... }` 内の文をパースする。
// '}' または EOF に到達するまで文をパースし続ける。
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	defer p.untrace(p.trace("parseBlockStatement"))

	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	return block
}

// parseFunctionLiteral は `fn(<params>) <body>` をパースする。
func (p *Parser) parseFunctionLiteral() ast.Expression {
	defer p.untrace(p.trace("parseFunctionLiteral"))

	lit := &ast.FunctionLiteral{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	lit.Parameters = params

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	lit.Body = p.parseBlockStatement()

	return lit
}

// parseFunctionParameters は `(x, y, z)` をパースする。
// 各パラメータは識別子でなければならない。
func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool) {
	identifiers := []*ast.Identifier{}

	// パラメータが0個の場合: fn() { ... }
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return identifiers, true
	}

	if !p.expectPeek(token.IDENT) {
		return nil, false
	}
	identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})

	for p.peekTokenIs(token.COMMA) {
		p.nextToken() // カンマを飛ばす
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}

	return identifiers, true
}

// parseCallExpression は `<expression>(<args>)` をパースする。
// 左辺の式（呼び出される関数）を引数として受け取る。
func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	defer p.untrace(p.trace("parseCallExpression"))

	exp := &ast.CallExpression{Token: p.curToken, Function: function}

	args, ok := p.parseCallArguments()
	if !ok {
		return nil
	}
	exp.Arguments = args

	return exp
}

// parseCallArguments は `(a, b, c)` をパースする。
func (p *Parser) parseCallArguments() ([]ast.Expression, bool) {
	args := []ast.Expression{}

	// 引数が0個の場合: add()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args, true
	}

	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil, false
	}
	args = append(args, arg)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken() // カンマを飛ばす
		p.nextToken() // 次の引数へ
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}

	return args, true
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
