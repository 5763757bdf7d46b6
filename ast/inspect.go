// inspect.go は AST走査関数 Inspect を提供する。
// Inspect は ASTノードを深さ優先（ソース順）で再帰的にたどり、各ノードに関数を適用する。
// CLI の `parse --stats` などノード単位の集計に使う。
package ast

// InspectFunc はノードを受け取る関数の型。
// false を返すとそのノードの子は訪問しない。
type InspectFunc func(Node) bool

// Inspect は node から始めて、親を子より先に訪問する（トップダウン走査）。
// nil のノードは訪問しない。
func Inspect(node Node, fn InspectFunc) {
	if node == nil || !fn(node) {
		return
	}

	switch node := node.(type) {

	case *Program:
		for _, statement := range node.Statements {
			Inspect(statement, fn)
		}

	case *LetStatement:
		Inspect(node.Name, fn)
		if node.Value != nil {
			Inspect(node.Value, fn)
		}

	case *ReturnStatement:
		if node.ReturnValue != nil {
			Inspect(node.ReturnValue, fn)
		}

	case *ExpressionStatement:
		if node.Expression != nil {
			Inspect(node.Expression, fn)
		}

	case *BlockStatement:
		for _, statement := range node.Statements {
			Inspect(statement, fn)
		}

	case *PrefixExpression:
		Inspect(node.Right, fn)

	case *InfixExpression:
		Inspect(node.Left, fn)
		Inspect(node.Right, fn)

	case *IfExpression:
		Inspect(node.Condition, fn)
		Inspect(node.Consequence, fn)
		if node.Alternative != nil {
			Inspect(node.Alternative, fn)
		}

	case *FunctionLiteral:
		for _, param := range node.Parameters {
			Inspect(param, fn)
		}
		Inspect(node.Body, fn)

	case *CallExpression:
		Inspect(node.Function, fn)
		for _, arg := range node.Arguments {
			Inspect(arg, fn)
		}
	}
}
