package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/paths"
	"github.com/thoreinstein/pyvm/pkg/fileutil"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// EnvPrefix prefixes environment overrides: release.timeout is read from
// PYVM_RELEASE_TIMEOUT.
const EnvPrefix = "PYVM"

// Config represents the top-level configuration structure.
type Config struct {
	Version  int            `mapstructure:"version" yaml:"version" json:"version" toml:"version"`
	Python   PythonConfig   `mapstructure:"python" yaml:"python" json:"python" toml:"python"`
	Release  ReleaseConfig  `mapstructure:"release" yaml:"release" json:"release" toml:"release"`
	Download DownloadConfig `mapstructure:"download" yaml:"download" json:"download" toml:"download"`
	Debian   DebianConfig   `mapstructure:"debian" yaml:"debian" json:"debian" toml:"debian"`
	Windows  WindowsConfig  `mapstructure:"windows" yaml:"windows" json:"windows" toml:"windows"`
	Policy   PolicyConfig   `mapstructure:"policy" yaml:"policy" json:"policy" toml:"policy"`
}

// PythonConfig names the interpreter to probe.
type PythonConfig struct {
	Command string `mapstructure:"command" yaml:"command" json:"command" toml:"command"`
	// DefaultCommand is the name whose resolution counts as the system
	// default. Empty means Command.
	DefaultCommand string `mapstructure:"default_command" yaml:"default_command" json:"default_command" toml:"default_command"`
}

// EffectiveDefaultCommand returns DefaultCommand, or Command when unset.
func (p PythonConfig) EffectiveDefaultCommand() string {
	if p.DefaultCommand != "" {
		return p.DefaultCommand
	}
	return p.Command
}

// ReleaseConfig locates the upstream release index and artifacts.
type ReleaseConfig struct {
	IndexURL string        `mapstructure:"index_url" yaml:"index_url" json:"index_url" toml:"index_url"`
	FTPURL   string        `mapstructure:"ftp_url" yaml:"ftp_url" json:"ftp_url" toml:"ftp_url"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout" toml:"timeout"`
}

// DownloadConfig bounds installer downloads.
type DownloadConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout" toml:"timeout"`
}

// DebianConfig configures the apt strategy.
type DebianConfig struct {
	// Repository provides versioned interpreters. Empty skips repository
	// setup.
	Repository string `mapstructure:"repository" yaml:"repository" json:"repository" toml:"repository"`
}

// WindowsConfig configures the installer strategy.
type WindowsConfig struct {
	Unattended bool `mapstructure:"unattended" yaml:"unattended" json:"unattended" toml:"unattended"`
}

// PolicyConfig holds update policy.
type PolicyConfig struct {
	// MinimumVersion turns plans for older interpreters into
	// "update required".
	MinimumVersion string `mapstructure:"minimum_version" yaml:"minimum_version" json:"minimum_version" toml:"minimum_version"`
}

// defaults lists every key in display order.
var defaults = []struct {
	key   string
	value any
}{
	{"version", 1},
	{"python.command", defaultPythonCommand()},
	{"python.default_command", ""},
	{"release.index_url", "https://www.python.org/downloads/"},
	{"release.ftp_url", "https://www.python.org/ftp/python/"},
	{"release.timeout", 15 * time.Second},
	{"download.timeout", 120 * time.Second},
	{"debian.repository", "ppa:deadsnakes/ppa"},
	{"windows.unattended", false},
	{"policy.minimum_version", ""},
}

func defaultPythonCommand() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// Keys returns every configuration key in display order.
func Keys() []string {
	keys := make([]string, len(defaults))
	for i, d := range defaults {
		keys[i] = d.key
	}
	return keys
}

// ValidKey reports whether key is a known configuration key.
func ValidKey(key string) bool {
	_, ok := defaultFor(key)
	return ok
}

func defaultFor(key string) (any, bool) {
	for _, d := range defaults {
		if d.key == key {
			return d.value, true
		}
	}
	return nil, false
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for _, d := range defaults {
		viper.SetDefault(d.key, d.value)
	}
}

// Defaults returns the built-in configuration, ignoring files and the
// environment.
func Defaults() *Config {
	v := viper.New()
	for _, d := range defaults {
		v.SetDefault(d.key, d.value)
	}
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back
// to defaults when no file exists. An invalid configuration is returned
// together with an error marked ErrInvalidConfig.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load: defaults apply
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			return nil, errors.Mark(errors.Wrapf(err, "config file not found at %s", path), errors.ErrNotFound)
		default:
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}
	if errs := Validate(&cfg); len(errs) > 0 {
		return &cfg, errors.Mark(errors.Wrap(errors.Join(errs...), "validating config"), errors.ErrInvalidConfig)
	}
	return &cfg, nil
}

// FileUsed returns the config file Load read, or the default location
// when none was read.
func FileUsed() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	return paths.ConfigFile()
}

// ParseValue converts a command-line value to the type of key's default.
func ParseValue(key, raw string) (any, error) {
	def, ok := defaultFor(key)
	if !ok {
		return nil, errors.Mark(errors.Newf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", ")), errors.ErrInvalidConfig)
	}
	switch def.(type) {
	case int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.Mark(errors.Newf("%s must be an integer, got %q", key, raw), errors.ErrInvalidConfig)
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Mark(errors.Newf("%s must be true or false, got %q", key, raw), errors.ErrInvalidConfig)
		}
		return b, nil
	case time.Duration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errors.Mark(errors.Newf("%s must be a duration such as 30s, got %q", key, raw), errors.ErrInvalidConfig)
		}
		return d, nil
	default:
		return raw, nil
	}
}

// Set validates and stores key in the config file at path, keeping the
// file's other settings. Values from the environment are not persisted.
func Set(path, key, raw string) error {
	value, err := ParseValue(key, raw)
	if err != nil {
		return err
	}

	viper.Set(key, value)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}
	if errs := Validate(&cfg); len(errs) > 0 {
		return errors.Mark(errors.Join(errs...), errors.ErrInvalidConfig)
	}

	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	if _, ok := doc["version"]; !ok {
		doc["version"] = 1
	}
	setNested(doc, key, persistable(value))

	if err := paths.EnsureDir(dirOf(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(path, doc); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}

// WriteDefaults creates the config file at path holding the built-in
// settings. It reports false and leaves the file alone when it exists.
func WriteDefaults(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	doc := map[string]any{}
	for _, d := range defaults {
		setNested(doc, d.key, persistable(d.value))
	}
	if err := paths.EnsureDir(dirOf(path), 0); err != nil {
		return false, errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(path, doc); err != nil {
		return false, errors.Wrap(err, "writing config file")
	}
	return true, nil
}

// readDocument loads the config file as a generic map. A missing file
// yields an empty map.
func readDocument(path string) (map[string]any, error) {
	doc := map[string]any{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return doc, nil
	}
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parsing %s", path), errors.ErrInvalidConfig)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// Settings returns the effective value of every key, flattened.
func Settings() map[string]any {
	out := make(map[string]any, len(defaults))
	for _, d := range defaults {
		out[d.key] = persistable(viper.Get(d.key))
	}
	return out
}

// Nested returns the effective settings as nested maps, the shape of the
// config file.
func Nested() map[string]any {
	out := map[string]any{}
	for k, v := range Settings() {
		setNested(out, k, v)
	}
	return out
}

// persistable renders durations as strings so YAML and TOML round-trip
// them through viper.
func persistable(v any) any {
	if d, ok := v.(time.Duration); ok {
		return d.String()
	}
	return v
}

func setNested(doc map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	m := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func dirOf(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i > 0 {
		return path[:i]
	}
	return "."
}

// String renders a value for `config get`.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
