// Package config resolves the exporter settings from command-line flags,
// PYDOCEXPORT_* environment variables and the [tool.pydoc-export] table of
// the scanned project's pyproject.toml, in that order of precedence.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes the environment variables read by Load.
	EnvPrefix = "PYDOCEXPORT"
	// PyprojectFile is looked up in the input directory.
	PyprojectFile = "pyproject.toml"
	// PyprojectTable names the tool table holding exporter settings.
	PyprojectTable = "pydoc-export"
)

// Setting keys, shared by flags, environment variables and pyproject.toml.
const (
	KeyInput      = "input"
	KeyOutput     = "output"
	KeyType       = "type"
	KeyExclude    = "exclude"
	KeyIgnore     = "ignore"
	KeyGitIgnore  = "gitignore"
	KeyShowSource = "show-source"
	KeyIndex      = "index"
	KeyJobs       = "jobs"
	KeyVerbose    = "verbose"
)

// Config is the resolved exporter configuration.
type Config struct {
	Input      string   `mapstructure:"input"`
	Output     string   `mapstructure:"output"`
	Format     Format   `mapstructure:"type"`
	Exclude    []string `mapstructure:"exclude"`
	Ignore     []string `mapstructure:"ignore"`
	GitIgnore  bool     `mapstructure:"gitignore"`
	ShowSource bool     `mapstructure:"show-source"`
	Index      bool     `mapstructure:"index"`
	Jobs       int      `mapstructure:"jobs"`
	Verbose    bool     `mapstructure:"verbose"`

	// Pyproject is the pyproject.toml the settings were read from, empty
	// when none was used.
	Pyproject string `mapstructure:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Input:  ".",
		Output: "doc",
		Format: HTML,
		Jobs:   runtime.GOMAXPROCS(0),
	}
}

// RegisterFlags adds the exporter flags to fs. The format flag validates
// its value while parsing.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	format := def.Format
	fs.StringP(KeyInput, "i", def.Input, "root directory of the project")
	fs.StringP(KeyOutput, "o", def.Output, "output directory")
	fs.VarP(&format, KeyType, "t", "output type (html or rst)")
	fs.StringSlice(KeyExclude, nil, "skip modules whose dotted name matches a wildcard pattern")
	fs.StringSlice(KeyIgnore, nil, "skip paths matching a gitignore pattern")
	fs.Bool(KeyGitIgnore, def.GitIgnore, "honor .gitignore files while scanning")
	fs.Bool(KeyShowSource, def.ShowSource, "embed highlighted source code in the output")
	fs.Bool(KeyIndex, def.Index, "also write an index page")
	fs.IntP(KeyJobs, "j", def.Jobs, "number of files parsed in parallel")
	fs.BoolP(KeyVerbose, "v", def.Verbose, "enable debug logging")
}

// Load resolves the configuration. Flags that were set on the command line
// win over environment variables, which win over pyproject.toml, which wins
// over the defaults. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault(KeyInput, def.Input)
	v.SetDefault(KeyOutput, def.Output)
	v.SetDefault(KeyType, string(def.Format))
	v.SetDefault(KeyExclude, []string{})
	v.SetDefault(KeyIgnore, []string{})
	v.SetDefault(KeyGitIgnore, def.GitIgnore)
	v.SetDefault(KeyShowSource, def.ShowSource)
	v.SetDefault(KeyIndex, def.Index)
	v.SetDefault(KeyJobs, def.Jobs)
	v.SetDefault(KeyVerbose, def.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "bind flags")
		}
	}

	input := v.GetString(KeyInput)
	pyproject := filepath.Join(input, PyprojectFile)
	settings, err := readPyproject(pyproject)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		delete(settings, KeyInput)
		if out, ok := settings[KeyOutput].(string); ok && !filepath.IsAbs(out) {
			settings[KeyOutput] = filepath.Join(input, out)
		}
		if err := v.MergeConfigMap(settings); err != nil {
			return nil, errors.Wrapf(err, "merge %s", pyproject)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode configuration")
	}
	cfg.Format, err = ParseFormat(v.GetString(KeyType))
	if err != nil {
		return nil, errors.Wrap(err, "configuration key "+KeyType)
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	if settings != nil {
		cfg.Pyproject = pyproject
	}
	return &cfg, nil
}

// readPyproject returns the [tool.pydoc-export] table of the file at path,
// or nil when the file or the table does not exist.
func readPyproject(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var doc struct {
		Tool map[string]toml.Primitive `toml:"tool"`
	}
	md, err := toml.NewDecoder(f).Decode(&doc)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	prim, ok := doc.Tool[PyprojectTable]
	if !ok {
		return nil, nil
	}
	settings := make(map[string]any)
	if err := md.PrimitiveDecode(prim, &settings); err != nil {
		return nil, errors.Wrapf(err, "parse %s [tool.%s]", path, PyprojectTable)
	}
	return settings, nil
}
