// parser_tracing.go はパーサーのデバッグ用トレーシング機能を提供する。
// EnableTracing を呼んだパーサーだけが、各解析関数の入口と出口で
// "BEGIN <関数名>" / "END <関数名>" をTRACEレベルのログに出力する。
// インデントの深さはパーサーごとに持つので、複数のパーサーが混ざらない。
package parser

import (
	"strings"

	"github.com/ethereum/go-ethereum/log"
)

const traceIdentPlaceholder string = "\t"

var traceLogger = log.New("module", "parser")

// EnableTracing はこのパーサーの解析関数トレースを有効にする。
// ParseProgram を呼ぶ前に設定すること。
func (p *Parser) EnableTracing() {
	p.tracing = true
}

// identLevel は現在のトレースレベルに応じたインデント文字列を返す。
func (p *Parser) identLevel() string {
	return strings.Repeat(traceIdentPlaceholder, p.traceLevel-1)
}

func (p *Parser) tracePrint(fs string) {
	traceLogger.Trace(p.identLevel()+fs, "token", p.curToken.Literal, "pos", p.curToken.Pos)
}

// trace は解析関数の入口で呼ぶ。"BEGIN <msg>" を出力してインデントを増やす。
// `defer p.untrace(p.trace("..."))` の形で使う。
func (p *Parser) trace(msg string) string {
	if !p.tracing {
		return msg
	}
	p.traceLevel++
	p.tracePrint("BEGIN " + msg)
	return msg
}

// untrace は解析関数の出口で呼ぶ。"END <msg>" を出力してインデントを減らす。
func (p *Parser) untrace(msg string) {
	if !p.tracing {
		return
	}
	p.tracePrint("END " + msg)
	p.traceLevel--
}
