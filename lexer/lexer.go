// Package lexer は Monkey言語の字句解析器（レキサー）を実装するパッケージ。
// ソースコード文字列を先頭から1文字ずつ読み、トークンに分割する。
// パーサーは NextToken() を呼ぶたびに次のトークンを1つ受け取る。
package lexer

import "github.com/junhat6/go-monkey/token"

// Lexer はソースコードを保持し、読み取り位置を管理する。
// 先読みは1文字（peekChar）だけで十分な文法になっている。
type Lexer struct {
	input        string
	position     int  // 現在の文字の位置（ch の位置）
	readPosition int  // 次に読む位置（ch の次）
	ch           byte // 現在検査中の文字

	line   int // ch の行（1始まり）
	column int // ch の列（1始まり）
}

// New は入力文字列からレキサーを生成し、最初の1文字を読み込む。
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// NextToken は次のトークンを返す。
// 空白を読み飛ばしたあと、現在の文字に応じてトークンを組み立てる。
// 入力の終端に達した後は何度呼んでも EOF を返す。
func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()
	pos := token.Position{Line: l.line, Column: l.column}

	switch l.ch {
	case '=':
		// == は2文字のトークン
		if l.peekChar() == '=' {
			ch := l.ch
			l.readChar()
			tok = token.Token{Type: token.EQ, Literal: string(ch) + string(l.ch)}
		} else {
			tok = newToken(token.ASSIGN, l.ch)
		}
	case '!':
		// != は2文字のトークン
		if l.peekChar() == '=' {
			ch := l.ch
			l.readChar()
			tok = token.Token{Type: token.NOT_EQ, Literal: string(ch) + string(l.ch)}
		} else {
			tok = newToken(token.BANG, l.ch)
		}
	case '+':
		tok = newToken(token.PLUS, l.ch)
	case '-':
		tok = newToken(token.MINUS, l.ch)
	case '*':
		tok = newToken(token.ASTERISK, l.ch)
	case '/':
		tok = newToken(token.SLASH, l.ch)
	case '<':
		tok = newToken(token.LT, l.ch)
	case '>':
		tok = newToken(token.GT, l.ch)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch)
	case ',':
		tok = newToken(token.COMMA, l.ch)
	case '(':
		tok = newToken(token.LPAREN, l.ch)
	case ')':
		tok = newToken(token.RPAREN, l.ch)
	case '{':
		tok = newToken(token.LBRACE, l.ch)
	case '}':
		tok = newToken(token.RBRACE, l.ch)
	case 0:
		// 入力の途中にある NUL は終端ではない
		if l.position < len(l.input) {
			tok = newToken(token.ILLEGAL, l.ch)
			break
		}
		tok.Literal = ""
		tok.Type = token.EOF
	default:
		if isLetter(l.ch) {
			// 識別子と予約語は readIdentifier が位置を進めるので、ここで return する
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Pos = pos
			return tok
		} else if isDigit(l.ch) {
			tok.Type = token.INT
			tok.Literal = l.readNumber()
			tok.Pos = pos
			return tok
		}
		tok = newToken(token.ILLEGAL, l.ch)
	}

	tok.Pos = pos
	l.readChar()
	return tok
}

// Tokens は入力の残りをすべてトークンに分割して返す。
// 末尾の EOF トークンも含む。
func (l *Lexer) Tokens() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// readChar は次の1文字を読み込み、位置を1つ進める。
// 終端に達したら ch を 0（NUL）にする。
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar は位置を進めずに次の1文字を返す。
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readIdentifier は英字とアンダースコアが続く限り読み進め、その部分文字列を返す。
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber は数字が続く限り読み進め、その部分文字列を返す。
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, ch byte) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch)}
}
