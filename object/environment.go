// environment.go は変数の環境（スコープ）を管理する。
// Environment は変数名から値へのマッピングを持ち、
// outer で外側のスコープへのチェーンを形成する。
// 関数呼び出しごとに、関数の定義時環境を outer とする子環境が作られる。
package object

import "sort"

// Environment は変数のスコープを表す構造体。
// 同じ環境を複数のクロージャが共有でき、Set による変更は全員から見える。
type Environment struct {
	store map[string]Object
	outer *Environment
}

// NewEnvironment は外側を持たない空の環境（グローバル環境）を作成する。
func NewEnvironment() *Environment {
	s := make(map[string]Object)
	return &Environment{store: s, outer: nil}
}

// NewEnclosedEnvironment は outer を外側に持つ新しい環境を作成する。
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Get は変数名から値を検索する。
// 現在のスコープになければ外側のスコープを近い順に探す。
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		if obj, ok := env.store[name]; ok {
			return obj, true
		}
	}
	return nil, false
}

// Set は変数を現在のスコープに設定する。外側の同名の束縛は隠されるだけで変更されない。
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Names は現在のスコープで束縛されている名前を昇順で返す。外側は含まない。
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Outer は外側の環境を返す。グローバル環境では nil。
func (e *Environment) Outer() *Environment {
	return e.outer
}
