// Package config loads filtertree options from defaults, a YAML file,
// FILTERTREE_ environment variables and command-line flags.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
//
// The core packages never read configuration. Options converts itself into
// the functional options each of them accepts.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"

	"github.com/roach88/filtertree/internal/codec"
	"github.com/roach88/filtertree/internal/engine"
	"github.com/roach88/filtertree/internal/query"
	"github.com/roach88/filtertree/internal/querysrc"
)

const (
	// DefaultFile is read from the working directory when no file is given.
	DefaultFile = "filtertree.yaml"
	// EnvPrefix marks environment variables read by Load.
	EnvPrefix = "FILTERTREE_"

	DefaultLocale = "en"
	DefaultTable  = "records"
	DefaultFormat = "text"
)

// Options holds every tunable of the CLI and the core packages.
type Options struct {
	MaxDepth         int      `koanf:"max_depth"`
	AllowEmptyGroups bool     `koanf:"allow_empty_groups"`
	CollationLocale  string   `koanf:"collation_locale"`
	DateLayouts      []string `koanf:"date_layouts"`
	// Indent is the source compiler indent in spaces; 0 keeps the target default.
	Indent        int    `koanf:"indent"`
	Table         string `koanf:"table"`
	StrictVersion bool   `koanf:"strict_version"`
	Format        string `koanf:"format"`
	Verbose       bool   `koanf:"verbose"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// flagKeys maps flag names to config keys. Flags not listed here are
// command arguments, not configuration.
var flagKeys = map[string]string{
	"max-depth":          "max_depth",
	"allow-empty-groups": "allow_empty_groups",
	"locale":             "collation_locale",
	"date-layout":        "date_layouts",
	"indent":             "indent",
	"table":              "table",
	"strict-version":     "strict_version",
	"format":             "format",
	"verbose":            "verbose",
}

// Defaults returns the default configuration map.
func Defaults() map[string]any {
	return map[string]any{
		"max_depth":          query.DefaultMaxDepth,
		"allow_empty_groups": false,
		"collation_locale":   DefaultLocale,
		"date_layouts":       append([]string(nil), engine.DefaultDateLayouts...),
		"indent":             0,
		"table":              DefaultTable,
		"strict_version":     true,
		"format":             DefaultFormat,
		"verbose":            false,
	}
}

// Load reads configuration. path may be empty, in which case DefaultFile is
// used when it exists. flags may be nil; only flags that were explicitly
// set override other sources.
func Load(path string, flags *pflag.FlagSet) (*Options, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: FILTERTREE_MAX_DEPTH -> max_depth
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if name == "date_layouts" {
			return name, splitList(value)
		}
		return name, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var opts Options
	if err := k.Unmarshal("", &opts); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	opts.File = used

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// findConfigFile returns path when given (it must exist), otherwise
// DefaultFile when present in the working directory.
func findConfigFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile, nil
	}
	return "", nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks option values.
func (o *Options) Validate() error {
	var errs []error
	if o.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("max_depth must be at least 1, got %d", o.MaxDepth))
	}
	if o.Indent < 0 {
		errs = append(errs, fmt.Errorf("indent must not be negative, got %d", o.Indent))
	}
	if _, err := language.Parse(o.CollationLocale); err != nil {
		errs = append(errs, fmt.Errorf("collation_locale %q: %w", o.CollationLocale, err))
	}
	if len(o.DateLayouts) == 0 {
		errs = append(errs, errors.New("date_layouts must not be empty"))
	}
	if strings.TrimSpace(o.Table) == "" {
		errs = append(errs, errors.New("table must not be empty"))
	}
	switch o.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("format must be text or json, got %q", o.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Locale returns the parsed collation locale, falling back to English.
func (o *Options) Locale() language.Tag {
	tag, err := language.Parse(o.CollationLocale)
	if err != nil {
		return language.English
	}
	return tag
}

// ValidateOptions returns the options for query.Validate.
func (o *Options) ValidateOptions() []query.ValidateOption {
	opts := []query.ValidateOption{query.WithMaxDepth(o.MaxDepth)}
	if o.AllowEmptyGroups {
		opts = append(opts, query.AllowEmptyGroups())
	}
	return opts
}

// EngineOptions returns the options for engine.New.
func (o *Options) EngineOptions(logger *slog.Logger) []engine.Option {
	return []engine.Option{
		engine.WithLogger(logger),
		engine.WithMaxDepth(o.MaxDepth),
		engine.WithLocale(o.Locale()),
		engine.WithDateLayouts(o.DateLayouts...),
	}
}

// DecodeOptions returns the options for the codec decoders.
func (o *Options) DecodeOptions() []codec.DecodeOption {
	if o.StrictVersion {
		return nil
	}
	return []codec.DecodeOption{codec.AllowUnversioned()}
}

// SourceOptions returns the options for querysrc.Compile.
func (o *Options) SourceOptions() []querysrc.Option {
	if o.Indent == 0 {
		return nil
	}
	return []querysrc.Option{querysrc.WithIndent(o.Indent)}
}
