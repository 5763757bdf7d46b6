// Package config は REPL と CLI の設定ファイルを読み込む。
// 拡張子が .yml/.yaml なら YAML、.toml なら TOML として解釈する。
// ファイルに書かれていないキーは Defaults の値のまま残る。
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/naoina/toml"
	"gopkg.in/yaml.v3"
)

// 評価モード
const (
	ModeEval  = "eval"  // 入力を評価して結果を表示する
	ModeParse = "parse" // 入力をパースしてASTの文字列表現を表示する
)

// Config はインタプリタのフロントエンド設定。
type Config struct {
	Prompt      string `yaml:"prompt" toml:"prompt"`
	HistoryFile string `yaml:"history_file" toml:"history_file"` // 空なら履歴を保存しない
	NoColor     bool   `yaml:"no_color" toml:"no_color"`
	Verbosity   string `yaml:"verbosity" toml:"verbosity"` // crit, error, warn, info, debug, trace
	Mode        string `yaml:"mode" toml:"mode"`
	ParseCache  int    `yaml:"parse_cache" toml:"parse_cache"` // パース結果のキャッシュ件数。0 で無効
}

// Defaults は設定ファイルがない場合の値。
var Defaults = Config{
	Prompt:      ">> ",
	HistoryFile: "",
	NoColor:     false,
	Verbosity:   "warn",
	Mode:        ModeEval,
	ParseCache:  128,
}

// tomlSettings は未知のキーをエラーにする。
var tomlSettings = toml.Config{
	NormFieldName: toml.DefaultConfig.NormFieldName,
	FieldToKey:    toml.DefaultConfig.FieldToKey,
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// ValidationError は設定値の検証で見つかった問題をまとめたもの。
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load は path の設定ファイルを Defaults に重ねて読み込み、検証する。
// ファイルが存在しない場合のエラーは errors.Is(err, fs.ErrNotExist) で判定できる。
func Load(path string) (Config, error) {
	cfg := Defaults
	if path == "" {
		return cfg, fmt.Errorf("config: empty path")
	}

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		err = decodeYAML(file, &cfg)
	case ".toml":
		err = decodeTOML(file, &cfg)
	default:
		return cfg, fmt.Errorf("config: unsupported file type %q (want .yaml, .yml or .toml)", ext)
	}
	if err != nil {
		return Defaults, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Defaults, err
	}
	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	// 空のファイルはデフォルトのまま
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(r io.Reader, cfg *Config) error {
	return tomlSettings.NewDecoder(bufio.NewReader(r)).Decode(cfg)
}

// Validate は設定値を検証し、問題があれば *ValidationError を返す。
func (c Config) Validate() error {
	var errs ValidationError
	if c.Prompt == "" {
		errs.Issues = append(errs.Issues, "prompt must be a non-empty string")
	}
	if c.Mode != ModeEval && c.Mode != ModeParse {
		errs.Issues = append(errs.Issues, fmt.Sprintf("mode must be %q or %q, got %q", ModeEval, ModeParse, c.Mode))
	}
	if _, err := log.LvlFromString(c.Verbosity); err != nil {
		errs.Issues = append(errs.Issues, fmt.Sprintf("verbosity %q is not a known level", c.Verbosity))
	}
	if c.ParseCache < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("parse_cache must be >= 0, got %d", c.ParseCache))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Level は Verbosity をログレベルに変換する。不明な値は warn として扱う。
func (c Config) Level() log.Lvl {
	lvl, err := log.LvlFromString(c.Verbosity)
	if err != nil {
		return log.LvlWarn
	}
	return lvl
}
