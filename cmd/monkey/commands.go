package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/junhat6/go-monkey/ast"
	"github.com/junhat6/go-monkey/interpreter"
	"github.com/junhat6/go-monkey/lexer"
	"github.com/junhat6/go-monkey/object"
)

var (
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "Print the full syntax tree instead of its source form",
	}
	statsFlag = cli.BoolFlag{
		Name:  "stats",
		Usage: "Print a table of node kinds and their counts",
	}

	runCommand = cli.Command{
		Action:    runAction,
		Name:      "run",
		Usage:     "Evaluate a source file",
		ArgsUsage: "<file>",
		Description: `
The run command evaluates a file and prints the value of its last statement.
It exits with status 1 on an evaluation error and 2 on parse errors.`,
	}
	parseCommand = cli.Command{
		Action:    parseAction,
		Name:      "parse",
		Usage:     "Parse a source file and print the syntax tree",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{dumpFlag, statsFlag},
	}
	tokensCommand = cli.Command{
		Action:    tokensAction,
		Name:      "tokens",
		Usage:     "Print the tokens of a source file",
		ArgsUsage: "<file>",
	}
)

// spewConfig はASTのダンプ用設定。出力が実行ごとに変わらないようにポインタのアドレスは出さない。
var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	// String() を呼ぶとソース表現に化けるので、構造をそのまま出す
	DisableMethods: true,
}

func fileArg(ctx *cli.Context) (string, error) {
	file := ctx.Args().First()
	if file == "" {
		return "", cli.NewExitError(fmt.Sprintf("%s: missing <file> argument", ctx.Command.Name), 2)
	}
	return file, nil
}

func readSource(file string) (string, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return "", cli.NewExitError(err.Error(), 2)
	}
	return string(src), nil
}

// parseErrorExit はパースエラーを終了コード2のエラーに変換する。
func parseErrorExit(file string, err error) error {
	var perr *interpreter.ParseError
	if !errors.As(err, &perr) {
		return cli.NewExitError(err.Error(), 2)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: parser errors:", file)
	for _, msg := range perr.Messages {
		b.WriteString("\n\t")
		b.WriteString(msg)
	}
	return cli.NewExitError(b.String(), 2)
}

// evalFile は file を in のグローバル環境で評価する。
// 評価時エラーは終了コード1、パースエラーは終了コード2のエラーになる。
func evalFile(in *interpreter.Interpreter, file string) (object.Object, error) {
	src, err := readSource(file)
	if err != nil {
		return nil, err
	}
	result, err := in.Eval(src)
	if err != nil {
		return nil, parseErrorExit(file, err)
	}
	if errObj, ok := result.(*object.Error); ok {
		return nil, cli.NewExitError(errObj.Inspect(), 1)
	}
	return result, nil
}

func runAction(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	file, err := fileArg(ctx)
	if err != nil {
		return err
	}

	in, err := interpreter.New(cfg)
	if err != nil {
		return err
	}
	result, err := evalFile(in, file)
	if err != nil {
		return err
	}
	if result != nil {
		fmt.Fprintln(ctx.App.Writer, result.Inspect())
	}
	return nil
}

func parseAction(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	file, err := fileArg(ctx)
	if err != nil {
		return err
	}
	src, err := readSource(file)
	if err != nil {
		return err
	}

	in, err := interpreter.New(cfg)
	if err != nil {
		return err
	}
	program, err := in.Parse(src)
	if err != nil {
		return parseErrorExit(file, err)
	}

	out := ctx.App.Writer
	if ctx.Bool(dumpFlag.Name) {
		spewConfig.Fdump(out, program)
	} else {
		fmt.Fprintln(out, program.String())
	}
	if ctx.Bool(statsFlag.Name) {
		printStats(out, program)
	}
	return nil
}

// printStats はノードの種類ごとの数を表にして出力する。
func printStats(out io.Writer, program *ast.Program) {
	counts := make(map[string]int)
	total := 0
	ast.Inspect(program, func(n ast.Node) bool {
		counts[strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")]++
		total++
		return true
	})

	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Node", "Count"})
	for _, kind := range kinds {
		table.Append([]string{kind, strconv.Itoa(counts[kind])})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(total)})
	table.Render()
}

func tokensAction(ctx *cli.Context) error {
	if _, err := setup(ctx); err != nil {
		return err
	}
	file, err := fileArg(ctx)
	if err != nil {
		return err
	}
	src, err := readSource(file)
	if err != nil {
		return err
	}

	for _, tok := range lexer.New(src).Tokens() {
		fmt.Fprintf(ctx.App.Writer, "%-7s %-9s %q\n", tok.Pos, tok.Type, tok.Literal)
	}
	return nil
}
