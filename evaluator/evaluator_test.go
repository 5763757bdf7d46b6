package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"

	"github.com/junhat6/go-monkey/ast"
	"github.com/junhat6/go-monkey/lexer"
	"github.com/junhat6/go-monkey/object"
	"github.com/junhat6/go-monkey/parser"
)

func TestEvalIntegerExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"5", 5},
		{"10", 10},
		{"-5", -5},
		{"-10", -10},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"-50 + 100 + -50", 0},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"20 + 2 * -10", 0},
		{"50 / 2 * 2 + 10", 60},
		{"2 * (5 + 10)", 30},
		{"3 * 3 * 3 + 10", 37},
		{"3 * (3 * 3) + 10", 37},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
		{"7 / 2", 3},
		{"-7 / 2", -3},
		{"9223372036854775807 + 1", -9223372036854775808},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testIntegerObject(t, evaluated, tt.expected)
	}
}

func TestEvalBooleanExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 < 1", false},
		{"1 > 1", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"1 == 2", false},
		{"1 != 2", true},
		{"true == true", true},
		{"false == false", true},
		{"true == false", false},
		{"true != false", true},
		{"false != true", true},
		{"(1 < 2) == true", true},
		{"(1 < 2) == false", false},
		{"(1 > 2) == true", false},
		{"(1 > 2) == false", true},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testBooleanObject(t, evaluated, tt.expected)
	}
}

func TestBooleanSingletons(t *testing.T) {
	if testEval(t, "1 < 2") != TRUE {
		t.Errorf("comparison did not return the TRUE singleton")
	}
	if testEval(t, "!true") != FALSE {
		t.Errorf("negation did not return the FALSE singleton")
	}
	if testEval(t, "if (false) { 1 }") != NULL {
		t.Errorf("if without alternative did not return the NULL singleton")
	}
}

func TestBangOperator(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"!true", false},
		{"!false", true},
		{"!5", false},
		{"!0", false},
		{"!!true", true},
		{"!!false", false},
		{"!!5", true},
		{"!(if (false) { 1 })", true},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testBooleanObject(t, evaluated, tt.expected)
	}
}

func TestIfElseExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"if (true) { 10 }", 10},
		{"if (false) { 10 }", nil},
		{"if (1) { 10 }", 10},
		{"if (0) { 10 }", 10},
		{"if (1 < 2) { 10 }", 10},
		{"if (1 > 2) { 10 }", nil},
		{"if (1 > 2) { 10 } else { 20 }", 20},
		{"if (1 < 2) { 10 } else { 20 }", 10},
		{"if (if (false) { 1 }) { 10 } else { 20 }", 20},
		{"if (true) { }", nil},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		integer, ok := tt.expected.(int)
		if ok {
			testIntegerObject(t, evaluated, int64(integer))
		} else {
			testNullObject(t, evaluated)
		}
	}
}

func TestReturnStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"return 10;", 10},
		{"return 10; 9;", 10},
		{"return 2 * 5; 9;", 10},
		{"9; return 2 * 5; 9;", 10},
		{"if (10 > 1) { return 10; }", 10},
		{
			`
if (10 > 1) {
  if (10 > 1) {
    return 10;
  }

  return 1;
}
`,
			10,
		},
		{
			`
let f = fn(x) {
  return x;
  x + 10;
};
f(10);`,
			10,
		},
		{
			`
let f = fn(x) {
   let result = x + 10;
   return result;
   return 10;
};
f(10);`,
			20,
		},
		{
			`
let inner = fn() { return 1; };
let outer = fn() { inner(); 2 };
outer();`,
			2,
		},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testIntegerObject(t, evaluated, tt.expected)
	}
}

func TestErrorHandling(t *testing.T) {
	tests := []struct {
		input           string
		expectedMessage string
	}{
		{
			"5 + true;",
			"type mismatch: INTEGER + BOOLEAN",
		},
		{
			"5 + true; 5;",
			"type mismatch: INTEGER + BOOLEAN",
		},
		{
			"1 == true",
			"type mismatch: INTEGER == BOOLEAN",
		},
		{
			"-true",
			"unknown operator: -BOOLEAN",
		},
		{
			"true + false;",
			"unknown operator: BOOLEAN + BOOLEAN",
		},
		{
			"true < false;",
			"unknown operator: BOOLEAN < BOOLEAN",
		},
		{
			"true + false + true + false;",
			"unknown operator: BOOLEAN + BOOLEAN",
		},
		{
			"5; true + false; 5",
			"unknown operator: BOOLEAN + BOOLEAN",
		},
		{
			"if (10 > 1) { true + false; }",
			"unknown operator: BOOLEAN + BOOLEAN",
		},
		{
			`
if (10 > 1) {
  if (10 > 1) {
    return true + false;
  }

  return 1;
}
`,
			"unknown operator: BOOLEAN + BOOLEAN",
		},
		{
			"foobar",
			"identifier not found: foobar",
		},
		{
			"let x = y; x",
			"identifier not found: y",
		},
		{
			"let n = if (false) { 1 }; n == n",
			"unknown operator: NULL == NULL",
		},
		{
			"fn(x) { x } + 1",
			"type mismatch: FUNCTION + INTEGER",
		},
		{
			"5()",
			"not a function: INTEGER",
		},
		{
			"true(1)",
			"not a function: BOOLEAN",
		},
		{
			"10 / 0",
			"division by zero: 10 / 0",
		},
		{
			"let f = fn(x) { 1 / x }; f(0)",
			"division by zero: 1 / 0",
		},
		{
			"let add = fn(a, b) { a + b }; add(1)",
			"wrong number of arguments. got=1, want=2",
		},
		{
			"fn() { 1 }(1, 2, 3)",
			"wrong number of arguments. got=3, want=0",
		},
		{
			"let f = fn(x) { x }; f(-true, foo)",
			"unknown operator: -BOOLEAN",
		},
		{
			"missing(1 / 0)",
			"identifier not found: missing",
		},
		{
			"!(5 + true)",
			"type mismatch: INTEGER + BOOLEAN",
		},
		{
			"if (foo) { 1 } else { 2 }",
			"identifier not found: foo",
		},
		{
			"let f = fn() {}; f() + 1",
			"type mismatch: NULL + INTEGER",
		},
		{
			"-(fn() {}())",
			"unknown operator: -NULL",
		},
		{
			"if (true) {} == 1",
			"type mismatch: NULL == INTEGER",
		},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)

		errObj, ok := evaluated.(*object.Error)
		if !ok {
			t.Errorf("input %q: no error object returned. got=%T(%+v)",
				tt.input, evaluated, evaluated)
			continue
		}

		if errObj.Message != tt.expectedMessage {
			t.Errorf("input %q: wrong error message. expected=%q, got=%q",
				tt.input, tt.expectedMessage, errObj.Message)
		}
	}
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let a = 5; a;", 5},
		{"let a = 5 * 5; a;", 25},
		{"let a = 5; let b = a; b;", 5},
		{"let a = 5; let b = a; let c = a + b + 5; c;", 15},
		{"let a = 1; let a = a + 1; a", 2},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestLetProducesNoValue(t *testing.T) {
	if evaluated := testEval(t, "let a = 5;"); evaluated != nil {
		t.Errorf("let statement produced a value. got=%T (%+v)", evaluated, evaluated)
	}
	if evaluated := testEval(t, ""); evaluated != nil {
		t.Errorf("empty program produced a value. got=%T (%+v)", evaluated, evaluated)
	}
}

// TestValuelessResultsAreNull は値を生まない関数本体やブロックが、
// 式の値としては NULL になることを確認する。
func TestValuelessResultsAreNull(t *testing.T) {
	tests := []string{
		"let f = fn() {}; f()",
		"let x = fn() { let y = 1; }(); x",
		"let f = fn() {}; let g = f(); g",
		"if (true) { let a = 1; }",
		"fn() { if (true) {} }()",
	}

	for _, input := range tests {
		testNullObject(t, testEval(t, input))
	}

	testIntegerObject(t, testEval(t, "if (fn() {}()) { 1 } else { 2 }"), 2)
	testBooleanObject(t, testEval(t, "!fn() {}()"), true)
}

func TestFunctionObject(t *testing.T) {
	input := "fn(x) { x + 2; };"

	evaluated := testEval(t, input)
	fn, ok := evaluated.(*object.Function)
	if !ok {
		t.Fatalf("object is not Function. got=%T (%+v)", evaluated, evaluated)
	}

	if len(fn.Parameters) != 1 {
		t.Fatalf("function has wrong parameters. Parameters=%+v",
			fn.Parameters)
	}

	if fn.Parameters[0].String() != "x" {
		t.Fatalf("parameter is not 'x'. got=%q", fn.Parameters[0])
	}

	expectedBody := "(x + 2)"

	if fn.Body.String() != expectedBody {
		t.Fatalf("body is not %q. got=%q", expectedBody, fn.Body.String())
	}

	if fn.Inspect() != "fn(x) {\n(x + 2)\n}" {
		t.Errorf("fn.Inspect() wrong. got=%q", fn.Inspect())
	}
}

func TestFunctionApplication(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let identity = fn(x) { x; }; identity(5);", 5},
		{"let identity = fn(x) { return x; }; identity(5);", 5},
		{"let double = fn(x) { x * 2; }; double(5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5, 5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5 + 5, add(5, 5));", 20},
		{"fn(x) { x; }(5)", 5},
		{"let noArgs = fn() { 7 }; noArgs()", 7},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestClosures(t *testing.T) {
	input := `
let newAdder = fn(x) {
  fn(y) { x + y };
};

let addTwo = newAdder(2);
addTwo(2);`

	testIntegerObject(t, testEval(t, input), 4)
}

// TestClosureReuse は同じクロージャを繰り返し呼んでも、呼び出しごとの
// 束縛が捕捉した環境に漏れないことを確認する。
func TestClosureReuse(t *testing.T) {
	env := object.NewEnvironment()

	evalIn(t, env, "let newAdder = fn(x) { fn(y) { x + y } }; let addTwo = newAdder(2);")

	testIntegerObject(t, evalIn(t, env, "addTwo(2)"), 4)
	testIntegerObject(t, evalIn(t, env, "addTwo(3)"), 5)

	if _, ok := env.Get("y"); ok {
		t.Errorf("parameter y leaked into the global environment")
	}
	if _, ok := env.Get("x"); ok {
		t.Errorf("parameter x leaked into the global environment")
	}
}

// TestSharedEnvironment は関数が定義後にグローバル環境へ追加された束縛も
// 参照できることを確認する（環境は値ではなく参照で捕捉される）。
func TestSharedEnvironment(t *testing.T) {
	env := object.NewEnvironment()

	evalIn(t, env, "let getCount = fn() { count };")
	evalIn(t, env, "let count = 1;")
	testIntegerObject(t, evalIn(t, env, "getCount()"), 1)

	evalIn(t, env, "let count = 2;")
	testIntegerObject(t, evalIn(t, env, "getCount()"), 2)
}

func TestLexicalScoping(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		// 呼び出し元の束縛ではなく、定義時の束縛が見える
		{`
let x = 1;
let f = fn() { x };
let g = fn(x) { f() };
g(100);`, 1},
		// 関数内の let はその呼び出しの環境にだけ入る
		{`
let x = 1;
let f = fn() { let x = 50; x };
f() + x;`, 51},
		// 再帰は定義後の束縛を通じて自分自身を参照する
		{`
let fib = fn(n) { if (n < 2) { n } else { fib(n - 1) + fib(n - 2) } };
fib(15);`, 610},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestBlocksShareEnclosingScope(t *testing.T) {
	env := object.NewEnvironment()

	evalIn(t, env, "if (true) { let inside = 3; }")

	obj, ok := env.Get("inside")
	if !ok {
		t.Fatalf("binding made in an if block is not visible outside it")
	}
	testIntegerObject(t, obj, 3)
}

func TestUnknownNode(t *testing.T) {
	evaluated := Eval(&ast.BlockStatement{Statements: []ast.Statement{nil}}, object.NewEnvironment())

	errObj, ok := evaluated.(*object.Error)
	if !ok {
		t.Fatalf("no error object returned. got=%T(%+v)", evaluated, evaluated)
	}
	if errObj.Message != "unknown node: <nil>" {
		t.Errorf("wrong error message. got=%q", errObj.Message)
	}
}

func TestEvalTracing(t *testing.T) {
	var buf bytes.Buffer
	log.Root().SetHandler(log.LvlFilterHandler(log.LvlTrace, log.StreamHandler(&buf, log.LogfmtFormat())))
	defer log.Root().SetHandler(log.DiscardHandler())

	testIntegerObject(t, testEval(t, "let a = 1; a + 2"), 3)

	out := buf.String()
	for _, want := range []string{"module=eval", "node=*ast.InfixExpression", "name=a"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output does not contain %q:\n%s", want, out)
		}
	}
}

// =====================
// テストヘルパー
// =====================

func testEval(t *testing.T, input string) object.Object {
	t.Helper()
	return evalIn(t, object.NewEnvironment(), input)
}

func evalIn(t *testing.T, env *object.Environment, input string) object.Object {
	t.Helper()
	program, errors := parser.Parse(lexer.New(input))
	if len(errors) != 0 {
		t.Fatalf("input %q has parser errors: %q", input, errors)
	}

	return Eval(program, env)
}

func testIntegerObject(t *testing.T, obj object.Object, expected int64) bool {
	t.Helper()
	result, ok := obj.(*object.Integer)
	if !ok {
		t.Errorf("object is not Integer. got=%T (%+v)", obj, obj)
		return false
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%d, want=%d",
			result.Value, expected)
		return false
	}

	return true
}

func testBooleanObject(t *testing.T, obj object.Object, expected bool) bool {
	t.Helper()
	result, ok := obj.(*object.Boolean)
	if !ok {
		t.Errorf("object is not Boolean. got=%T (%+v)", obj, obj)
		return false
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%t, want=%t",
			result.Value, expected)
		return false
	}
	return true
}

func testNullObject(t *testing.T, obj object.Object) bool {
	t.Helper()
	if obj != NULL {
		t.Errorf("object is not NULL. got=%T (%+v)", obj, obj)
		return false
	}
	return true
}
