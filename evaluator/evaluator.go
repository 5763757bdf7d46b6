// Package evaluator は Monkey言語のTree-walking評価器を実装するパッケージ。
// ASTを再帰的にたどりながら（tree-walking）、各ノードを評価して
// object.Object としての結果を返す。
//
// 評価時エラーは Go の panic ではなく *object.Error という値で表す。
// 複合的な規則はすべて、部分式の結果がエラーならその時点で評価をやめ、
// エラーをそのまま返す。
package evaluator

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/junhat6/go-monkey/ast"
	"github.com/junhat6/go-monkey/object"
)

// シングルトンオブジェクト。
// true, false, null は常に同じオブジェクトを使い回し、ポインタ比較で等値判定する。
var (
	NULL  = &object.Null{}
	TRUE  = &object.Boolean{Value: true}
	FALSE = &object.Boolean{Value: false}
)

var evalLogger = log.New("module", "eval")

// Eval はASTノードを評価してオブジェクトを返す、評価器のメイン関数。
// let文は値を生まないので nil を返す。空のプログラムやブロックも nil になるが、
// 式の値（関数呼び出しやif式の結果）としては NULL に置き換わる。
func Eval(node ast.Node, env *object.Environment) object.Object {
	evalLogger.Trace("eval", "node", log.Lazy{Fn: func() string { return fmt.Sprintf("%T", node) }})

	switch node := node.(type) {

	// === 文（Statements）===

	case *ast.Program:
		return evalProgram(node, env)

	case *ast.BlockStatement:
		return evalBlockStatement(node, env)

	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)

	// 戻り値を ReturnValue でラップして、囲んでいるブロックの評価を止める
	case *ast.ReturnStatement:
		val := Eval(node.ReturnValue, env)
		if isError(val) {
			return val
		}
		return &object.ReturnValue{Value: val}

	case *ast.LetStatement:
		val := Eval(node.Value, env)
		if isError(val) {
			return val
		}
		evalLogger.Debug("bind", "name", node.Name.Value, "type", val.Type())
		env.Set(node.Name.Value, val)
		return nil

	// === 式（Expressions）===

	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}

	case *ast.Boolean:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalPrefixExpression(node.Operator, right)

	case *ast.InfixExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}

		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}

		return evalInfixExpression(node.Operator, left, right)

	case *ast.IfExpression:
		return evalIfExpression(node, env)

	case *ast.Identifier:
		return evalIdentifier(node, env)

	// 定義時の環境を参照で保持する（クロージャ）。
	// 後からその環境に加えられた束縛も関数から見える。
	case *ast.FunctionLiteral:
		return &object.Function{Parameters: node.Parameters, Env: env, Body: node.Body}

	case *ast.CallExpression:
		function := Eval(node.Function, env)
		if isError(function) {
			return function
		}

		args := evalExpressions(node.Arguments, env)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}

		return applyFunction(function, args)
	}

	return newError("unknown node: %T", node)
}

// evalProgram はプログラム全体（文のリスト）を評価する。
// ReturnValue に遭遇したら中身を取り出して返し、Error はそのまま返す。
func evalProgram(program *ast.Program, env *object.Environment) object.Object {
	var result object.Object

	for _, statement := range program.Statements {
		result = Eval(statement, env)

		switch result := result.(type) {
		case *object.ReturnValue:
			return result.Value
		case *object.Error:
			return result
		}
	}

	return result
}

// evalBlockStatement はブロック内の文を評価する。
// evalProgram と違い ReturnValue をアンラップしないので、
// ネストしたブロックからの return が関数の境界まで伝播する。
// ブロックは新しいスコープを作らない。
func evalBlockStatement(
	block *ast.BlockStatement,
	env *object.Environment,
) object.Object {
	var result object.Object

	for _, statement := range block.Statements {
		result = Eval(statement, env)

		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}

	return result
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// =====================
// 前置演算子の評価
// =====================

func evalPrefixExpression(operator string, right object.Object) object.Object {
	switch operator {
	case "!":
		return evalBangOperatorExpression(right)
	case "-":
		return evalMinusPrefixOperatorExpression(right)
	default:
		return newError("unknown operator: %s%s", operator, right.Type())
	}
}

// evalBangOperatorExpression は真偽性の否定を返す。0 も truthy なので !0 は false。
func evalBangOperatorExpression(right object.Object) object.Object {
	return nativeBoolToBooleanObject(!isTruthy(right))
}

func evalMinusPrefixOperatorExpression(right object.Object) object.Object {
	integer, ok := right.(*object.Integer)
	if !ok {
		return newError("unknown operator: -%s", right.Type())
	}

	return &object.Integer{Value: -integer.Value}
}

// =====================
// 中置演算子の評価
// =====================

// evalInfixExpression は中置演算子式を評価する。
// 型が異なる組み合わせは演算子に関係なく type mismatch になる（`1 == true` も含む）。
func evalInfixExpression(
	operator string,
	left, right object.Object,
) object.Object {
	switch {
	case left.Type() != right.Type():
		return newError("type mismatch: %s %s %s",
			left.Type(), operator, right.Type())
	case left.Type() == object.INTEGER_OBJ:
		return evalIntegerInfixExpression(operator, left, right)
	case left.Type() == object.BOOLEAN_OBJ:
		return evalBooleanInfixExpression(operator, left, right)
	default:
		return newError("unknown operator: %s %s %s",
			left.Type(), operator, right.Type())
	}
}

// evalIntegerInfixExpression は整数同士の中置演算を評価する。
// 算術は64ビットでラップアラウンドし、除算は0方向に切り捨てる。
func evalIntegerInfixExpression(
	operator string,
	left, right object.Object,
) object.Object {
	leftVal := left.(*object.Integer).Value
	rightVal := right.(*object.Integer).Value

	switch operator {
	case "+":
		return &object.Integer{Value: leftVal + rightVal}
	case "-":
		return &object.Integer{Value: leftVal - rightVal}
	case "*":
		return &object.Integer{Value: leftVal * rightVal}
	case "/":
		if rightVal == 0 {
			return newError("division by zero: %d / 0", leftVal)
		}
		return &object.Integer{Value: leftVal / rightVal}
	case "<":
		return nativeBoolToBooleanObject(leftVal < rightVal)
	case ">":
		return nativeBoolToBooleanObject(leftVal > rightVal)
	case "==":
		return nativeBoolToBooleanObject(leftVal == rightVal)
	case "!=":
		return nativeBoolToBooleanObject(leftVal != rightVal)
	default:
		return newError("unknown operator: %s %s %s",
			left.Type(), operator, right.Type())
	}
}

// evalBooleanInfixExpression は真偽値同士の == と != だけを扱う。
// 真偽値はシングルトンなのでポインタの同一性で比較できる。
func evalBooleanInfixExpression(
	operator string,
	left, right object.Object,
) object.Object {
	switch operator {
	case "==":
		return nativeBoolToBooleanObject(left == right)
	case "!=":
		return nativeBoolToBooleanObject(left != right)
	default:
		return newError("unknown operator: %s %s %s",
			left.Type(), operator, right.Type())
	}
}

// =====================
// if式の評価
// =====================

// evalIfExpression は条件が truthy なら Consequence を、そうでなく
// Alternative があればそれを評価する。どちらでもなければ NULL。
func evalIfExpression(
	ie *ast.IfExpression,
	env *object.Environment,
) object.Object {
	condition := Eval(ie.Condition, env)
	if isError(condition) {
		return condition
	}

	switch {
	case isTruthy(condition):
		return valueOrNull(Eval(ie.Consequence, env))
	case ie.Alternative != nil:
		return valueOrNull(Eval(ie.Alternative, env))
	default:
		return NULL
	}
}

func evalIdentifier(
	node *ast.Identifier,
	env *object.Environment,
) object.Object {
	val, ok := env.Get(node.Value)
	if !ok {
		return newError("identifier not found: %s", node.Value)
	}

	return val
}

// =====================
// ユーティリティ関数
// =====================

// isTruthy は false と null だけを偽とみなす。
func isTruthy(obj object.Object) bool {
	switch obj {
	case NULL, FALSE:
		return false
	default:
		return true
	}
}

func newError(format string, a ...interface{}) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, a...)}
}

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}

// =====================
// 関数呼び出し
// =====================

// evalExpressions は式のリストを左から右に評価する。
// 途中でエラーが発生したら、残りは評価せずエラーだけを含むスライスを返す。
func evalExpressions(
	exps []ast.Expression,
	env *object.Environment,
) []object.Object {
	result := make([]object.Object, 0, len(exps))

	for _, e := range exps {
		evaluated := Eval(e, env)
		if isError(evaluated) {
			return []object.Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

// applyFunction は関数オブジェクトに引数を適用して実行する。
// 本体は呼び出し元ではなく定義時の環境を外側とする新しい環境で評価する。
func applyFunction(fn object.Object, args []object.Object) object.Object {
	function, ok := fn.(*object.Function)
	if !ok {
		return newError("not a function: %s", fn.Type())
	}

	if len(args) != len(function.Parameters) {
		return newError("wrong number of arguments. got=%d, want=%d",
			len(args), len(function.Parameters))
	}

	extendedEnv := extendFunctionEnv(function, args)
	evaluated := Eval(function.Body, extendedEnv)
	return unwrapReturnValue(evaluated)
}

// extendFunctionEnv は関数の定義時環境を外側として、引数をパラメータ名に束縛する。
func extendFunctionEnv(
	fn *object.Function,
	args []object.Object,
) *object.Environment {
	env := object.NewEnclosedEnvironment(fn.Env)

	for paramIdx, param := range fn.Parameters {
		env.Set(param.Value, args[paramIdx])
	}

	return env
}

// unwrapReturnValue は ReturnValue のラップを外し、return が関数の外まで
// 伝播しないようにする。本体が値を生まなかった呼び出しは NULL になる。
func unwrapReturnValue(obj object.Object) object.Object {
	if returnValue, ok := obj.(*object.ReturnValue); ok {
		return returnValue.Value
	}

	return valueOrNull(obj)
}

// valueOrNull は文の結果（値がなければ nil）を式の値に変換する。
// 式の値として nil が外に出ることはない。
func valueOrNull(obj object.Object) object.Object {
	if obj == nil {
		return NULL
	}
	return obj
}
