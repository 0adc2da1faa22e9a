package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Sort.DedupKey != "value" {
		t.Errorf("Sort.DedupKey = %q, want value", cfg.Sort.DedupKey)
	}
	if cfg.Output.Format != "human" {
		t.Errorf("Output.Format = %q, want human", cfg.Output.Format)
	}
	if cfg.Baseline.Name != "default" {
		t.Errorf("Baseline.Name = %q, want default", cfg.Baseline.Name)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.Version = 9 }, "version"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.maxBackups"},
		{"negative jobs", func(c *Config) { c.Sort.Jobs = -2 }, "sort.jobs"},
		{"bad dedup key", func(c *Config) { c.Sort.DedupKey = "fuzzy" }, "sort.dedupKey"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"bad compression", func(c *Config) { c.Output.Compression = "brotli" }, "output.compression"},
		{"empty baseline name", func(c *Config) { c.Baseline.Name = "" }, "baseline.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cerr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cerr.Field, tt.wantField)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "sort.jobs", Message: "must not be negative"}
	want := "config error in field 'sort.jobs': must not be negative"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	res, err := LoadConfigWithDetails(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfigWithDetails() error = %v", err)
	}
	if !res.UsedDefaults {
		t.Error("UsedDefaults should be true when no config file exists")
	}
	if res.ConfigPath != "" {
		t.Errorf("ConfigPath = %q, want empty", res.ConfigPath)
	}
	if res.Config.Output.Format != "human" {
		t.Errorf("Output.Format = %q, want human", res.Config.Output.Format)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, DirName), 0755); err != nil {
		t.Fatal(err)
	}
	content := `version = 1

[sort]
dedup = true
dedupKey = "identity"
jobs = 4

[output]
format = "json"
`
	if err := os.WriteFile(filepath.Join(dir, DirName, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := LoadConfigWithDetails(dir)
	if err != nil {
		t.Fatalf("LoadConfigWithDetails() error = %v", err)
	}
	cfg := res.Config
	if res.UsedDefaults {
		t.Error("UsedDefaults should be false")
	}
	if !cfg.Sort.Dedup || cfg.Sort.DedupKey != "identity" || cfg.Sort.Jobs != 4 {
		t.Errorf("Sort = %+v", cfg.Sort)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
	if cfg.Baseline.Name != "default" {
		t.Errorf("unset keys should keep defaults, Baseline.Name = %q", cfg.Baseline.Name)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("SARIFSORT_SORT_JOBS", "7")
	t.Setenv("SARIFSORT_SORT_DEDUP", "true")
	t.Setenv("SARIFSORT_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Sort.Jobs != 7 {
		t.Errorf("Sort.Jobs = %d, want 7", cfg.Sort.Jobs)
	}
	if !cfg.Sort.Dedup {
		t.Error("Sort.Dedup should be true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfig_EnvConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("[baseline]\nname = \"nightly\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)

	res, err := LoadConfigWithDetails(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfigWithDetails() error = %v", err)
	}
	if res.ConfigPath != path {
		t.Errorf("ConfigPath = %q, want %q", res.ConfigPath, path)
	}
	if res.Config.Baseline.Name != "nightly" {
		t.Errorf("Baseline.Name = %q, want nightly", res.Config.Baseline.Name)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, DirName), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DirName, FileName), []byte("[sort\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Sort.Jobs = 3
	cfg.Suppressions.Path = "suppress.toml"
	path, err := cfg.Save(dir)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if path != filepath.Join(dir, DirName, FileName) {
		t.Errorf("Save() path = %q", path)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Sort.Jobs != 3 {
		t.Errorf("Sort.Jobs = %d, want 3", loaded.Sort.Jobs)
	}
	if loaded.Suppressions.Path != "suppress.toml" {
		t.Errorf("Suppressions.Path = %q", loaded.Suppressions.Path)
	}
}

func TestGetSupportedEnvVars(t *testing.T) {
	vars := GetSupportedEnvVars()
	for _, want := range []string{EnvConfigPath, "SARIFSORT_SORT_JOBS", "SARIFSORT_OUTPUT_FORMAT", "SARIFSORT_LOGGING_MAXSIZE"} {
		if !slices.Contains(vars, want) {
			t.Errorf("GetSupportedEnvVars() missing %s", want)
		}
	}
	if !slices.IsSorted(vars) {
		t.Error("GetSupportedEnvVars() should be sorted")
	}
}
