package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// CurrentVersion is the config schema version written by Save.
	CurrentVersion = 1
	// DirName is the per-project state directory.
	DirName = ".sarifsort"
	// FileName is the config file inside DirName.
	FileName = "config.toml"
	// EnvPrefix prefixes environment overrides, e.g. SARIFSORT_SORT_JOBS.
	EnvPrefix = "SARIFSORT"
	// EnvConfigPath points at an explicit config file.
	EnvConfigPath = "SARIFSORT_CONFIG_PATH"
)

// Config represents the complete sarifsort configuration
type Config struct {
	Version      int                `json:"version" mapstructure:"version" toml:"version"`
	Logging      LoggingConfig      `json:"logging" mapstructure:"logging" toml:"logging"`
	Sort         SortConfig         `json:"sort" mapstructure:"sort" toml:"sort"`
	Output       OutputConfig       `json:"output" mapstructure:"output" toml:"output"`
	Baseline     BaselineConfig     `json:"baseline" mapstructure:"baseline" toml:"baseline"`
	Suppressions SuppressionsConfig `json:"suppressions" mapstructure:"suppressions" toml:"suppressions"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level" toml:"level"`
	File       string `json:"file,omitempty" mapstructure:"file" toml:"file,omitempty"`
	MaxSize    string `json:"maxSize,omitempty" mapstructure:"maxSize" toml:"maxSize,omitempty"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups" toml:"maxBackups"`
}

// SortConfig controls result ordering and deduplication
type SortConfig struct {
	Dedup bool `json:"dedup" mapstructure:"dedup" toml:"dedup"`
	// DedupKey is "value" (exact duplicates) or "identity" (same rule,
	// message, target and locations).
	DedupKey string `json:"dedupKey" mapstructure:"dedupKey" toml:"dedupKey"`
	Jobs     int    `json:"jobs" mapstructure:"jobs" toml:"jobs"`
}

// OutputConfig controls how logs and reports are written
type OutputConfig struct {
	Format      string `json:"format" mapstructure:"format" toml:"format"`
	Indent      bool   `json:"indent" mapstructure:"indent" toml:"indent"`
	Compression string `json:"compression" mapstructure:"compression" toml:"compression"`
}

// BaselineConfig locates the baseline store
type BaselineConfig struct {
	DBPath string `json:"dbPath,omitempty" mapstructure:"dbPath" toml:"dbPath,omitempty"`
	Name   string `json:"name" mapstructure:"name" toml:"name"`
}

// SuppressionsConfig locates the suppressions file
type SuppressionsConfig struct {
	Path string `json:"path,omitempty" mapstructure:"path" toml:"path,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Logging: LoggingConfig{
			Level:      "warn",
			MaxBackups: 3,
		},
		Sort: SortConfig{
			DedupKey: "value",
		},
		Output: OutputConfig{
			Format:      "human",
			Indent:      true,
			Compression: "auto",
		},
		Baseline: BaselineConfig{
			Name: "default",
		},
	}
}

// LoadResult contains the loaded config and where it came from
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
}

// LoadConfig loads configuration from <dir>/.sarifsort/config.toml, or the
// file named by SARIFSORT_CONFIG_PATH, with SARIFSORT_* overrides applied.
func LoadConfig(dir string) (*Config, error) {
	res, err := LoadConfigWithDetails(dir)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadConfigWithDetails is LoadConfig but also reports the file it used.
func LoadConfigWithDetails(dir string) (*LoadResult, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	res := &LoadResult{}
	if p := os.Getenv(EnvConfigPath); p != "" {
		v.SetConfigFile(p)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(dir, DirName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		res.UsedDefaults = true
	} else {
		res.ConfigPath = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	res.Config = &cfg
	return res, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
	v.SetDefault("sort.dedup", d.Sort.Dedup)
	v.SetDefault("sort.dedupKey", d.Sort.DedupKey)
	v.SetDefault("sort.jobs", d.Sort.Jobs)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.indent", d.Output.Indent)
	v.SetDefault("output.compression", d.Output.Compression)
	v.SetDefault("baseline.dbPath", d.Baseline.DBPath)
	v.SetDefault("baseline.name", d.Baseline.Name)
	v.SetDefault("suppressions.path", d.Suppressions.Path)
}

// GetSupportedEnvVars lists the environment variables LoadConfig honors.
func GetSupportedEnvVars() []string {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	vars := []string{EnvConfigPath}
	for _, key := range v.AllKeys() {
		vars = append(vars, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	slices.Sort(vars)
	return vars
}

// Save writes the configuration to <dir>/.sarifsort/config.toml.
func (c *Config) Save(dir string) (string, error) {
	stateDir := filepath.Join(dir, DirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return "", err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return "", err
	}
	path := filepath.Join(stateDir, FileName)
	return path, os.WriteFile(path, data, 0644)
}

var (
	validFormats      = []string{"human", "json", "yaml"}
	validCompressions = []string{"auto", "none", "gzip", "zstd"}
	validDedupKeys    = []string{"value", "identity"}
	validLevels       = []string{"debug", "info", "warn", "warning", "error"}
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		return &ConfigError{Field: "logging.level", Message: "must be one of " + strings.Join(validLevels, ", ")}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.maxBackups", Message: "must not be negative"}
	}
	if c.Sort.Jobs < 0 {
		return &ConfigError{Field: "sort.jobs", Message: "must not be negative"}
	}
	if !slices.Contains(validDedupKeys, c.Sort.DedupKey) {
		return &ConfigError{Field: "sort.dedupKey", Message: "must be one of " + strings.Join(validDedupKeys, ", ")}
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		return &ConfigError{Field: "output.format", Message: "must be one of " + strings.Join(validFormats, ", ")}
	}
	if !slices.Contains(validCompressions, c.Output.Compression) {
		return &ConfigError{Field: "output.compression", Message: "must be one of " + strings.Join(validCompressions, ", ")}
	}
	if c.Baseline.Name == "" {
		return &ConfigError{Field: "baseline.name", Message: "must not be empty"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
