package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/junhat6/go-monkey/internal/debug"
)

type result struct {
	stdout   string
	stderr   string
	exitCode int
}

// runApp はアプリを実行し、標準出力と終了コードを捕捉する。
func runApp(t *testing.T, args ...string) result {
	t.Helper()
	defer debug.Reset()

	var stdout, stderr bytes.Buffer
	exitCode := 0

	oldExiter, oldErrWriter := cli.OsExiter, cli.ErrWriter
	cli.OsExiter = func(code int) { exitCode = code }
	cli.ErrWriter = &stderr
	defer func() { cli.OsExiter, cli.ErrWriter = oldExiter, oldErrWriter }()

	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Run(append([]string{"monkey", "--nocolor"}, args...))

	return result{stdout: stdout.String(), stderr: stderr.String(), exitCode: exitCode}
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRun(t *testing.T) {
	path := writeSource(t, "adder.mk", `
let newAdder = fn(x) { fn(y) { x + y } };
let addTwo = newAdder(2);
addTwo(3);
`)

	res := runApp(t, "run", path)
	assert.Equal(t, 0, res.exitCode)
	assert.Equal(t, "5\n", res.stdout)
}

func TestRunLetOnlyPrintsNothing(t *testing.T) {
	res := runApp(t, "run", writeSource(t, "let.mk", "let a = 1;"))
	assert.Equal(t, 0, res.exitCode)
	assert.Equal(t, "", res.stdout)
}

func TestRunEvaluationError(t *testing.T) {
	res := runApp(t, "run", writeSource(t, "div.mk", "let a = 10; a / 0"))
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.stderr, "ERROR: division by zero: 10 / 0")
}

func TestRunParseErrors(t *testing.T) {
	path := writeSource(t, "bad.mk", "let x 5;\nlet = 1;")

	res := runApp(t, "run", path)
	assert.Equal(t, 2, res.exitCode)
	assert.Contains(t, res.stderr, path+": parser errors:")
	assert.Contains(t, res.stderr, "\texpected next token to be =, got INT instead")
	assert.Contains(t, res.stderr, "\texpected next token to be IDENT, got = instead")
}

func TestRunMissingArgument(t *testing.T) {
	res := runApp(t, "run")
	assert.Equal(t, 2, res.exitCode)
	assert.Contains(t, res.stderr, "run: missing <file> argument")
}

func TestRunMissingFile(t *testing.T) {
	res := runApp(t, "run", filepath.Join(t.TempDir(), "nope.mk"))
	assert.Equal(t, 2, res.exitCode)
}

func TestParse(t *testing.T) {
	path := writeSource(t, "prec.mk", "a + b * c; -a * b")

	res := runApp(t, "parse", path)
	assert.Equal(t, 0, res.exitCode)
	assert.Equal(t, "(a + (b * c))((-a) * b)\n", res.stdout)
}

func TestParseDump(t *testing.T) {
	res := runApp(t, "parse", "--dump", writeSource(t, "one.mk", "let x = 1;"))
	assert.Equal(t, 0, res.exitCode)
	assert.Contains(t, res.stdout, "ast.Program")
	assert.Contains(t, res.stdout, "ast.LetStatement")
	assert.Contains(t, res.stdout, "ast.IntegerLiteral")
	assert.NotContains(t, res.stdout, "0xc", "dump should not contain pointer addresses")
	assert.Contains(t, res.stdout, "Statements:")
	assert.Contains(t, res.stdout, "Value: (int64) 1")
	assert.NotContains(t, res.stdout, "let x = 1;", "dump should show fields, not String()")
}

func TestParseStats(t *testing.T) {
	res := runApp(t, "parse", "--stats", writeSource(t, "stats.mk", "let x = 1 + 2;"))
	assert.Equal(t, 0, res.exitCode)

	// Program, LetStatement, Identifier, InfixExpression, IntegerLiteral x2
	stats := map[string]string{
		"Program":         "1",
		"LetStatement":    "1",
		"Identifier":      "1",
		"InfixExpression": "1",
		"IntegerLiteral":  "2",
	}
	for _, line := range strings.Split(res.stdout, "\n") {
		for kind, count := range stats {
			if strings.Contains(line, "| "+kind+" ") {
				assert.Contains(t, line, " "+count+" ", line)
				delete(stats, kind)
			}
		}
	}
	assert.Empty(t, stats, "kinds missing from the table:\n%s", res.stdout)
	assert.Contains(t, res.stdout, "TOTAL")
}

func TestParseErrorExitCode(t *testing.T) {
	res := runApp(t, "parse", writeSource(t, "bad.mk", "fn(1) {}"))
	assert.Equal(t, 2, res.exitCode)
	assert.Contains(t, res.stderr, "expected next token to be IDENT, got INT instead")
}

func TestTokens(t *testing.T) {
	res := runApp(t, "tokens", writeSource(t, "tok.mk", "let x = 10;\nx == 1"))
	assert.Equal(t, 0, res.exitCode)

	lines := strings.Split(strings.TrimRight(res.stdout, "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, []string{"1:1", "LET", `"let"`}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1:9", "INT", `"10"`}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"2:3", "==", `"=="`}, strings.Fields(lines[6]))
	assert.Equal(t, []string{"2:7", "EOF", `""`}, strings.Fields(lines[8]))
}

func TestConfigFile(t *testing.T) {
	cfgPath := writeSource(t, "monkey.yaml", "mode: parse\nparse_cache: 4\n")
	res := runApp(t, "--config", cfgPath, "run", writeSource(t, "one.mk", "1 + 1"))
	assert.Equal(t, 0, res.exitCode)
	assert.Equal(t, "2\n", res.stdout)
}

func TestInvalidConfig(t *testing.T) {
	cfgPath := writeSource(t, "monkey.toml", "mode = \"compile\"\n")
	res := runApp(t, "--config", cfgPath, "run", writeSource(t, "one.mk", "1"))
	assert.Equal(t, 2, res.exitCode)
	assert.Contains(t, res.stderr, "config validation failed:")
}

func TestInvalidVerbosityFlag(t *testing.T) {
	res := runApp(t, "--verbosity", "loud", "run", writeSource(t, "one.mk", "1"))
	assert.Equal(t, 2, res.exitCode)
	assert.Contains(t, res.stderr, `verbosity "loud" is not a known level`)
}
