// Package debug はプロセス全体のログ出力を設定する。
// 各パッケージは log.New("module", ...) でロガーを持ち、ここで設定した
// ルートハンドラを通して出力される。
package debug

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var glogger *log.GlogHandler

func init() {
	glogger = log.NewGlogHandler(log.StreamHandler(os.Stderr, log.TerminalFormat(false)))
	glogger.Verbosity(log.LvlWarn)
	log.Root().SetHandler(glogger)
}

// Setup は標準エラー出力へのログを設定する。
// 端末に出力していて noColor でなければ色付きで出力する。
func Setup(verbosity log.Lvl, vmodule string, noColor bool) error {
	output := io.Writer(os.Stderr)
	usecolor := !noColor && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	return SetupWriter(output, usecolor, verbosity, vmodule)
}

// SetupWriter はログの出力先を w にする。
// vmodule は "parser/*=5,evaluator.go=5" の形式で、ファイル単位に詳細度を上書きする。
func SetupWriter(w io.Writer, usecolor bool, verbosity log.Lvl, vmodule string) error {
	glogger.SetHandler(log.StreamHandler(w, log.TerminalFormat(usecolor)))
	glogger.Verbosity(verbosity)
	if vmodule != "" {
		if err := glogger.Vmodule(vmodule); err != nil {
			return fmt.Errorf("debug: invalid vmodule %q: %w", vmodule, err)
		}
	}
	log.Root().SetHandler(glogger)
	return nil
}

// Reset はログ出力を初期状態（標準エラー出力、warn 以上）に戻す。
func Reset() {
	glogger = log.NewGlogHandler(log.StreamHandler(os.Stderr, log.TerminalFormat(false)))
	glogger.Verbosity(log.LvlWarn)
	log.Root().SetHandler(glogger)
}
