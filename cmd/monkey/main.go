// monkey は Monkey言語のインタプリタのコマンドラインツール。
// 引数なしで起動すると対話的なREPLになる。
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"

	"github.com/junhat6/go-monkey/config"
	"github.com/junhat6/go-monkey/internal/debug"
	"github.com/junhat6/go-monkey/interpreter"
	"github.com/junhat6/go-monkey/repl"
)

const version = "0.1.0"

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "YAML or TOML configuration file",
	}
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: crit, error, warn, info, debug, trace",
	}
	vmoduleFlag = cli.StringFlag{
		Name:  "vmodule",
		Usage: "Per-file verbosity: comma-separated list of <pattern>=<level> (e.g. parser/*=5)",
	}
	noColorFlag = cli.BoolFlag{
		Name:  "nocolor",
		Usage: "Disable coloured output",
	}
	modeFlag = cli.StringFlag{
		Name:  "mode",
		Usage: "REPL mode: eval or parse",
	}

	globalFlags = []cli.Flag{
		configFileFlag,
		verbosityFlag,
		vmoduleFlag,
		noColorFlag,
		modeFlag,
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "monkey"
	app.Usage = "the Monkey programming language interpreter"
	app.Version = version
	app.Flags = globalFlags
	app.Action = replAction
	app.Commands = []cli.Command{
		replCommand,
		runCommand,
		parseCommand,
		tokensCommand,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup は設定ファイルとグローバルフラグから設定を組み立て、ログと色の出力を設定する。
// フラグは設定ファイルの値より優先する。
func setup(ctx *cli.Context) (config.Config, error) {
	cfg := config.Defaults
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		loaded, err := config.Load(file)
		if err != nil {
			return cfg, cli.NewExitError(err.Error(), 2)
		}
		cfg = loaded
	}

	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Verbosity = ctx.GlobalString(verbosityFlag.Name)
	}
	if ctx.GlobalIsSet(noColorFlag.Name) {
		cfg.NoColor = ctx.GlobalBool(noColorFlag.Name)
	}
	if ctx.GlobalIsSet(modeFlag.Name) {
		cfg.Mode = ctx.GlobalString(modeFlag.Name)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, cli.NewExitError(err.Error(), 2)
	}

	if err := debug.Setup(cfg.Level(), ctx.GlobalString(vmoduleFlag.Name), cfg.NoColor); err != nil {
		return cfg, cli.NewExitError(err.Error(), 2)
	}
	if cfg.NoColor {
		color.NoColor = true
	}
	return cfg, nil
}

var replCommand = cli.Command{
	Action:    replAction,
	Name:      "repl",
	Usage:     "Start an interactive session",
	ArgsUsage: "[<file>]",
	Description: `
The repl command starts a read-eval-print loop. If a file is given it is
evaluated first and its bindings are available in the session.`,
}

func replAction(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	in, err := interpreter.New(cfg)
	if err != nil {
		return err
	}
	if file := ctx.Args().First(); file != "" {
		if _, err := evalFile(in, file); err != nil {
			return err
		}
	}

	opts := repl.Options{Config: cfg, Interpreter: in}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return repl.StartInteractive(ctx.App.Writer, opts)
	}
	return repl.Start(os.Stdin, ctx.App.Writer, opts)
}
