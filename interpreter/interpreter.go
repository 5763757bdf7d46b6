// Package interpreter はパーサーと評価器をまとめ、1つのグローバル環境の上で
// ソースコードを繰り返し評価できるようにする。REPL と CLI はこのパッケージを使う。
//
// パースは副作用がなく、ASTは評価中に変更されないので、同じソースの
// パース結果は LRU キャッシュで使い回す。
package interpreter

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru"

	"github.com/junhat6/go-monkey/ast"
	"github.com/junhat6/go-monkey/config"
	"github.com/junhat6/go-monkey/evaluator"
	"github.com/junhat6/go-monkey/lexer"
	"github.com/junhat6/go-monkey/object"
	"github.com/junhat6/go-monkey/parser"
)

var logger = log.New("module", "interpreter")

// ParseError はパース時に見つかったエラーメッセージをすべて持つ。
type ParseError struct {
	Messages []string
}

func (e *ParseError) Error() string {
	if len(e.Messages) == 1 {
		return "parse error: " + e.Messages[0]
	}
	return fmt.Sprintf("%d parse errors: %s", len(e.Messages), strings.Join(e.Messages, "; "))
}

// Interpreter は1つのグローバル環境を保持する。
// 並行に使ってはならない。
type Interpreter struct {
	env     *object.Environment
	cache   *lru.Cache // ソース文字列 → *ast.Program。無効なら nil
	tracing bool
}

// New は cfg に従ってインタプリタを作る。
// cfg.ParseCache が 0 ならパース結果をキャッシュしない。
// cfg.Verbosity が trace ならパーサーのトレースも有効にする。
func New(cfg config.Config) (*Interpreter, error) {
	in := &Interpreter{
		env:     object.NewEnvironment(),
		tracing: cfg.Level() == log.LvlTrace,
	}
	if cfg.ParseCache > 0 {
		cache, err := lru.New(cfg.ParseCache)
		if err != nil {
			return nil, fmt.Errorf("interpreter: create parse cache: %w", err)
		}
		in.cache = cache
	}
	return in, nil
}

// Parse は src をパースする。エラーがあれば *ParseError を返す。
// エラーのあったソースはキャッシュしない。
func (in *Interpreter) Parse(src string) (*ast.Program, error) {
	if in.cache != nil {
		if cached, ok := in.cache.Get(src); ok {
			logger.Trace("parse cache hit", "len", len(src))
			return cached.(*ast.Program), nil
		}
	}

	p := parser.New(lexer.New(src))
	if in.tracing {
		p.EnableTracing()
	}
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		logger.Debug("parse failed", "errors", len(errs))
		return nil, &ParseError{Messages: errs}
	}

	if in.cache != nil {
		in.cache.Add(src, program)
	}
	return program, nil
}

// Eval は src をパースしてグローバル環境で評価する。
// 評価時エラーは *object.Error として結果の値で返り、Go の error にはならない。
// let 文だけのソースなど、値を生まない場合の結果は nil。
func (in *Interpreter) Eval(src string) (object.Object, error) {
	program, err := in.Parse(src)
	if err != nil {
		return nil, err
	}
	result := evaluator.Eval(program, in.env)
	if errObj, ok := result.(*object.Error); ok {
		logger.Debug("evaluation failed", "err", errObj.Message)
	}
	return result, nil
}

// Env はグローバル環境を返す。
func (in *Interpreter) Env() *object.Environment {
	return in.env
}

// CacheLen はキャッシュされているパース結果の数を返す。
func (in *Interpreter) CacheLen() int {
	if in.cache == nil {
		return 0
	}
	return in.cache.Len()
}
