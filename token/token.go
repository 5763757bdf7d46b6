// Package token は Monkey言語のトークン（字句）を定義するパッケージ。
// レキサーがソースコードを分割した最小単位がトークンであり、
// パーサーはこのトークン列を入力として構文解析を行う。
package token

import "fmt"

// TokenType はトークンの種類を文字列で表す型。
// パーサーのエラーメッセージにはこの文字列がそのまま現れる。
type TokenType string

const (
	ILLEGAL = "ILLEGAL" // 未知のトークン
	EOF     = "EOF"     // 入力の終端

	// 識別子 + リテラル
	IDENT = "IDENT" // add, foobar, x, y, ...
	INT   = "INT"   // 1343456

	// 演算子
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"

	LT = "<"
	GT = ">"

	EQ     = "=="
	NOT_EQ = "!="

	// デリミタ（区切り文字）
	COMMA     = ","
	SEMICOLON = ";"

	LPAREN = "("
	RPAREN = ")"
	LBRACE = "{"
	RBRACE = "}"

	// キーワード
	FUNCTION = "FUNCTION"
	LET      = "LET"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
	IF       = "IF"
	ELSE     = "ELSE"
	RETURN   = "RETURN"
)

// Position はトークンのソース上の位置（1始まりの行と列）。
// 診断用であり、トークンの等価性やパース結果には影響しない。
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token はトークンの型とリテラル値のペア。
// Pos はそのトークンが始まった位置。
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// keywords はMonkey言語の予約語マップ。
var keywords = map[string]TokenType{
	"fn":     FUNCTION,
	"let":    LET,
	"true":   TRUE,
	"false":  FALSE,
	"if":     IF,
	"else":   ELSE,
	"return": RETURN,
}

// LookupIdent は識別子が予約語かどうかを判定する。
// 予約語であればそのトークン型を、そうでなければIDENTを返す。
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
