package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Aman-CERP/envcheck/internal/errors"
	"github.com/Aman-CERP/envcheck/internal/logging"
	"github.com/Aman-CERP/envcheck/internal/probe"
	"github.com/Aman-CERP/envcheck/internal/registry"
)

// ConfigVersion is the only config schema version understood.
const ConfigVersion = 1

// Project config file names, in lookup order.
var projectConfigNames = []string{".envcheck.yaml", ".envcheck.yml"}

// Config represents the complete envcheck configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Probes   ProbesConfig   `yaml:"probes" json:"probes"`
	Registry RegistryConfig `yaml:"registry" json:"registry"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// ProbesConfig controls how probes are scheduled and classified.
type ProbesConfig struct {
	// Timeout bounds each probe unless the probe declares its own.
	Timeout string `yaml:"timeout" json:"timeout"`
	// RunTimeout bounds the whole run.
	RunTimeout string `yaml:"run_timeout" json:"run_timeout"`
	// Concurrency is the number of probes run at once.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// Disabled lists probe ids that are never run.
	Disabled []string `yaml:"disabled" json:"disabled"`
	// Severity overrides the fail severity of individual probes.
	Severity map[string]string `yaml:"severity" json:"severity"`
}

// RegistryConfig selects where probe declarations come from.
type RegistryConfig struct {
	// File is a YAML registry file with team-specific probes.
	File string `yaml:"file" json:"file"`
	// IncludeDefaults keeps the built-in catalog alongside File.
	IncludeDefaults bool `yaml:"include_defaults" json:"include_defaults"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	NoColor bool `yaml:"no_color" json:"no_color"`
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		Version: ConfigVersion,
		Probes: ProbesConfig{
			Timeout:     "10s",
			RunTimeout:  "2m",
			Concurrency: 8,
			Disabled:    []string{},
			Severity:    map[string]string{},
		},
		Registry: RegistryConfig{
			IncludeDefaults: true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// GetUserConfigPath returns the user config path, honouring XDG_CONFIG_HOME.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "envcheck", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), ".config", "envcheck", "config.yaml")
	}
	return filepath.Join(home, ".config", "envcheck", "config.yaml")
}

// GetUserConfigDir returns the directory holding the user config.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether a user config file is present.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// FindProjectConfig returns the project config file in dir, if any.
func FindProjectConfig(dir string) (string, bool) {
	for _, name := range projectConfigNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

// Load builds the effective configuration for dir.
//
// Precedence, lowest first:
//  1. Defaults (NewConfig)
//  2. User config (~/.config/envcheck/config.yaml)
//  3. Project config (.envcheck.yaml or .envcheck.yml in dir)
//  4. ENVCHECK_* environment variables and NO_COLOR
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if path, ok := FindProjectConfig(dir); ok {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
		cfg.resolveRegistryPath(filepath.Dir(path))
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML overlays the keys present in path onto c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.ConfigError("failed to read config file", err).WithDetail("file", path)
	}
	if err := c.decode(data); err != nil {
		return apperrors.ConfigError("failed to parse config file", err).
			WithDetail("file", path).
			WithSuggestion("Compare the file with the output of 'envcheck config init'")
	}
	return nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// resolveRegistryPath makes a relative registry file relative to the
// project config that named it.
func (c *Config) resolveRegistryPath(base string) {
	if c.Registry.File != "" && !filepath.IsAbs(c.Registry.File) {
		c.Registry.File = filepath.Join(base, c.Registry.File)
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ENVCHECK_TIMEOUT"); v != "" {
		c.Probes.Timeout = v
	}
	if v := os.Getenv("ENVCHECK_RUN_TIMEOUT"); v != "" {
		c.Probes.RunTimeout = v
	}
	if v := os.Getenv("ENVCHECK_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			c.Probes.Concurrency = n
		}
	}
	if v := os.Getenv("ENVCHECK_REGISTRY"); v != "" {
		c.Registry.File = v
	}
	if v := os.Getenv("ENVCHECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	// https://no-color.org: any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		c.Output.NoColor = true
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Version != ConfigVersion {
		return invalid("version", fmt.Sprintf("unsupported config version %d (expected %d)", c.Version, ConfigVersion))
	}
	if _, err := parsePositiveDuration(c.Probes.Timeout); err != nil {
		return invalid("probes.timeout", err.Error())
	}
	if _, err := parsePositiveDuration(c.Probes.RunTimeout); err != nil {
		return invalid("probes.run_timeout", err.Error())
	}
	if c.Probes.Concurrency < 1 || c.Probes.Concurrency > 64 {
		return invalid("probes.concurrency", fmt.Sprintf("must be between 1 and 64, got %d", c.Probes.Concurrency))
	}
	for _, id := range sortedKeys(c.Probes.Severity) {
		if _, err := probe.ParseSeverity(c.Probes.Severity[id]); err != nil {
			return invalid("probes.severity."+id, err.Error())
		}
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return invalid("logging.level", fmt.Sprintf("unknown level %q (use debug, info, warn or error)", c.Logging.Level))
	}
	return nil
}

func invalid(field, msg string) error {
	return apperrors.ConfigError(fmt.Sprintf("invalid configuration: %s: %s", field, msg), nil).
		WithDetail("field", field)
}

// ProbeTimeout returns probes.timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	d, _ := parsePositiveDuration(c.Probes.Timeout)
	return d
}

// RunTimeout returns probes.run_timeout as a duration.
func (c *Config) RunTimeout() time.Duration {
	d, _ := parsePositiveDuration(c.Probes.RunTimeout)
	return d
}

// Policy converts the probe overrides into a registry policy.
// Severity values are assumed to have passed Validate.
func (c *Config) Policy() registry.Policy {
	p := registry.Policy{
		Disabled: append([]string(nil), c.Probes.Disabled...),
	}
	if len(c.Probes.Severity) > 0 {
		p.Severity = make(map[string]probe.Severity, len(c.Probes.Severity))
		for id, s := range c.Probes.Severity {
			sev, _ := probe.ParseSeverity(s)
			p.Severity[id] = sev
		}
	}
	return p
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
