// Package object は Monkey言語のランタイムオブジェクトシステムを定義するパッケージ。
// 評価器（Evaluator）がASTを評価した結果はすべてこのパッケージの Object として表現される。
//
// Object はパッケージ外から実装できない閉じた型の集合で、
// 種類は Integer, Boolean, Null, ReturnValue, Error, Function の6つだけ。
package object

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/junhat6/go-monkey/ast"
)

// ObjectType はオブジェクトの種類を識別する文字列型。
// エラーメッセージ中の型名にもそのまま使われる。
type ObjectType string

// オブジェクトの種類を表す定数。
const (
	NULL_OBJ  ObjectType = "NULL"
	ERROR_OBJ ObjectType = "ERROR"

	INTEGER_OBJ ObjectType = "INTEGER"
	BOOLEAN_OBJ ObjectType = "BOOLEAN"

	RETURN_VALUE_OBJ ObjectType = "RETURN_VALUE" // return文の戻り値をラップするオブジェクト

	FUNCTION_OBJ ObjectType = "FUNCTION"
)

// Object はMonkey言語の全ての値が実装するインターフェース。
// Type() はオブジェクトの種類を返し、Inspect() は値の文字列表現を返す。
type Object interface {
	Type() ObjectType
	Inspect() string
	objectValue()
}

// Integer は64ビット符号付き整数を表すオブジェクト。
// 算術はラップアラウンドする。
type Integer struct {
	Value int64
}

func (i *Integer) objectValue()     {}
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return fmt.Sprintf("%d", i.Value) }

// Boolean は真偽値を表すオブジェクト。
// 評価器ではシングルトン（TRUE, FALSE）として扱い、同一性で比較する。
type Boolean struct {
	Value bool
}

func (b *Boolean) objectValue()     {}
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

// Null は値が存在しないことを表す。評価器ではシングルトン（NULL）として扱う。
type Null struct{}

func (n *Null) objectValue()     {}
func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

// ReturnValue はreturn文の戻り値をラップするオブジェクト。
// ブロックの評価はこれを見つけた時点で止まり、関数呼び出しかプログラムの
// 最上位で取り出される。利用者に見える値になることはない。
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) objectValue()     {}
func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error は評価時エラーを表すオブジェクト。
// 評価中に伝播し、以降の評価を停止させる。
type Error struct {
	Message string
}

func (e *Error) objectValue()     {}
func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Message }

// Function は関数オブジェクト。
// Parameters と Body は関数リテラルのノードを共有する。
// Env は定義時の環境への参照で、これによりクロージャが実現される。
type Function struct {
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) objectValue()     {}
func (f *Function) Type() ObjectType { return FUNCTION_OBJ }

// Inspect は `fn(params) {\n<body>\n}` の形式で返す。
func (f *Function) Inspect() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}

	out.WriteString("fn")
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") {\n")
	out.WriteString(f.Body.String())
	out.WriteString("\n}")

	return out.String()
}
