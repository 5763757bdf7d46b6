// Package repl は Monkey言語のREPL（Read-Eval-Print Loop）を実装するパッケージ。
// ユーザーが入力したコードを字句解析 → 構文解析 → 評価し、結果を表示する。
//
// `{` や `(` が閉じていない間は継続プロンプトで次の行を読み、
// 閉じた時点でまとめて1つの入力として扱う。
// `:` で始まる行はメタコマンドとして解釈する。
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"

	"github.com/junhat6/go-monkey/config"
	"github.com/junhat6/go-monkey/interpreter"
	"github.com/junhat6/go-monkey/lexer"
	"github.com/junhat6/go-monkey/object"
	"github.com/junhat6/go-monkey/token"
)

// PROMPT はREPLのプロンプト文字列。
const PROMPT = ">> "

// CONT_PROMPT は入力が続いている間のプロンプト文字列。
const CONT_PROMPT = ".. "

// maxLineSize は非対話モードで読める1行の最大バイト数。
const maxLineSize = 16 * 1024 * 1024

const helpText = `Commands:
  :help               show this message
  :env                list the bindings of the global environment
  :mode [eval|parse]  show or switch the mode
  :quit               exit the REPL
`

var logger = log.New("module", "repl")

// Options は REPL の動作設定。
type Options struct {
	config.Config

	// Interpreter を指定すると、その環境を引き継いで始める。nil なら Config から作る。
	Interpreter *interpreter.Interpreter
}

// lineReader はプロンプトを出して1行読む。入力の終わりでは io.EOF を返す。
type lineReader interface {
	ReadLine(prompt string) (string, error)
}

type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// historyWriter は履歴を書き出せるもの。*liner.State が満たす。
type historyWriter interface {
	WriteHistory(w io.Writer) (int, error)
}

// saveHistory は履歴を path に書き出す。失敗は警告として記録するだけで、終了は妨げない。
func saveHistory(path string, h historyWriter) {
	f, err := os.Create(path)
	if err != nil {
		logger.Warn("Failed to save history", "file", path, "err", err)
		return
	}
	if _, err := h.WriteHistory(f); err != nil {
		logger.Warn("Failed to save history", "file", path, "err", err)
	}
	if err := f.Close(); err != nil {
		logger.Warn("Failed to close history", "file", path, "err", err)
	}
}

type linerReader struct {
	state *liner.State
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	return r.state.Prompt(prompt)
}

// session は1回のREPL実行の状態。
type session struct {
	out    io.Writer
	interp *interpreter.Interpreter
	mode   string
	prompt string

	red   *color.Color
	faint *color.Color
}

func newSession(out io.Writer, opts Options) (*session, error) {
	interp := opts.Interpreter
	if interp == nil {
		var err error
		if interp, err = interpreter.New(opts.Config); err != nil {
			return nil, err
		}
	}

	s := &session{
		out:    out,
		interp: interp,
		mode:   opts.Mode,
		prompt: opts.Prompt,
		red:    color.New(color.FgRed),
		faint:  color.New(color.Faint),
	}
	if s.mode == "" {
		s.mode = config.ModeEval
	}
	if s.prompt == "" {
		s.prompt = PROMPT
	}
	if opts.NoColor {
		s.red.DisableColor()
		s.faint.DisableColor()
	}
	return s, nil
}

// Start はREPLを起動する。
// in から読み、結果を out に書く。環境はループ全体で共有するので、
// 変数束縛はセッション中持続する。in が終わるか :quit で戻る。
func Start(in io.Reader, out io.Writer, opts Options) error {
	s, err := newSession(out, opts)
	if err != nil {
		return err
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	r := &scannerReader{scanner: scanner, out: out}

	for {
		src, err := s.read(r)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if src != "" && s.handle(src) {
			return nil
		}
		if err != nil {
			return nil
		}
	}
}

// StartInteractive は端末向けのREPLを起動する。
// 行編集と履歴には liner を使い、HistoryFile が指定されていれば履歴を読み書きする。
// Ctrl+C は入力中の内容を破棄し、Ctrl+D で終了する。
func StartInteractive(out io.Writer, opts Options) error {
	s, err := newSession(out, opts)
	if err != nil {
		return err
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if opts.HistoryFile != "" {
		if f, err := os.Open(opts.HistoryFile); err == nil {
			if _, err := ln.ReadHistory(f); err != nil {
				logger.Warn("Failed to read history", "file", opts.HistoryFile, "err", err)
			}
			f.Close()
		}
		defer saveHistory(opts.HistoryFile, ln)
	}

	r := &linerReader{state: ln}
	for {
		src, err := s.read(r)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(out)
			return nil
		case err != nil:
			return err
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if s.handle(src) {
			return nil
		}
	}
}

// read は括弧の対応がとれるまで行を読み、1つの入力にまとめて返す。
// 途中で io.EOF になった場合は、それまでの入力とともに io.EOF を返す。
func (s *session) read(r lineReader) (string, error) {
	var b strings.Builder

	for {
		prompt := s.prompt
		if b.Len() > 0 {
			prompt = CONT_PROMPT
		}
		line, err := r.ReadLine(prompt)
		if err != nil {
			return b.String(), err
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || openDepth(src) <= 0 {
			return src, nil
		}
	}
}

// openDepth は閉じていない `{` と `(` の数を返す。
func openDepth(src string) int {
	depth := 0
	for _, tok := range lexer.New(src).Tokens() {
		switch tok.Type {
		case token.LBRACE, token.LPAREN:
			depth++
		case token.RBRACE, token.RPAREN:
			depth--
		}
	}
	return depth
}

// handle は1つの入力を処理する。REPLを終えるべきなら true を返す。
func (s *session) handle(src string) bool {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, ":") {
		return s.command(strings.Fields(trimmed))
	}

	if s.mode == config.ModeParse {
		program, err := s.interp.Parse(src)
		if err != nil {
			s.printError(err)
			return false
		}
		io.WriteString(s.out, program.String())
		io.WriteString(s.out, "\n")
		return false
	}

	evaluated, err := s.interp.Eval(src)
	if err != nil {
		s.printError(err)
		return false
	}
	switch evaluated := evaluated.(type) {
	case nil:
	case *object.Error:
		s.red.Fprintln(s.out, evaluated.Inspect())
	default:
		io.WriteString(s.out, evaluated.Inspect())
		io.WriteString(s.out, "\n")
	}
	return false
}

func (s *session) printError(err error) {
	var perr *interpreter.ParseError
	if errors.As(err, &perr) {
		printParserErrors(s.out, perr.Messages)
		return
	}
	s.red.Fprintln(s.out, err.Error())
}

// command はメタコマンドを実行する。:quit なら true を返す。
func (s *session) command(args []string) bool {
	switch strings.ToLower(args[0]) {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		io.WriteString(s.out, helpText)
	case ":env":
		s.printEnv()
	case ":mode":
		if len(args) == 1 {
			fmt.Fprintf(s.out, "mode: %s\n", s.mode)
			break
		}
		switch args[1] {
		case config.ModeEval, config.ModeParse:
			s.mode = args[1]
			fmt.Fprintf(s.out, "mode: %s\n", s.mode)
		default:
			s.red.Fprintf(s.out, "unknown mode %q (want %s or %s)\n", args[1], config.ModeEval, config.ModeParse)
		}
	default:
		s.red.Fprintf(s.out, "unknown command %s. Type :help for a list of commands.\n", args[0])
	}
	return false
}

// printEnv はグローバル環境の束縛を表にして出力する。
func (s *session) printEnv() {
	env := s.interp.Env()
	names := env.Names()
	if len(names) == 0 {
		s.faint.Fprintln(s.out, "(no bindings)")
		return
	}

	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{"Name", "Type", "Value"})
	table.SetAutoWrapText(false)
	for _, name := range names {
		obj, _ := env.Get(name)
		value := strings.Join(strings.Fields(obj.Inspect()), " ")
		table.Append([]string{name, string(obj.Type()), value})
	}
	table.Render()
}

// MONKEY_FACE はパーサーエラー時に表示されるモンキーのアスキーアート。
const MONKEY_FACE = `            __,__
   .--.  .-"     "-.  .--.
  / .. \/  .-. .-.  \/ .. \
 | |  '|  /   Y   \  |'  | |
 | \   \  \ 0 | 0 /  /   / |
  \ '- ,\.-"""""""-./, -' /
   ''-' /_   ^ ^   _\ '-''
       |  \._   _./  |
       \   \ '~' /   /
        '._ '-=-' _.'
           '-----'
`

// printParserErrors はパーサーエラーをモンキーのAAと共に出力する。
func printParserErrors(out io.Writer, errors []string) {
	io.WriteString(out, MONKEY_FACE)
	io.WriteString(out, "Woops! We ran into some monkey business here!\n")
	io.WriteString(out, " parser errors:\n")
	for _, msg := range errors {
		io.WriteString(out, "\t"+msg+"\n")
	}
}
