// Package config holds the rule configuration shared by the language server
// and the batch linter.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no explicit
// configuration path is given.
const DefaultFileName = ".stylesense.yaml"

type Severity string

const (
	SeverityError       Severity = "error"
	SeverityWarning     Severity = "warning"
	SeverityInformation Severity = "information"
	SeverityHint        Severity = "hint"
)

func (s Severity) valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInformation, SeverityHint:
		return true
	default:
		return false
	}
}

type RuleConfig struct {
	Enabled  *bool    `yaml:"enabled,omitempty"`
	Severity Severity `yaml:"severity,omitempty"`
}

type Config struct {
	LogLevel string                `yaml:"log_level,omitempty"`
	Rules    map[string]RuleConfig `yaml:"rules,omitempty"`
}

var ErrInvalid = errors.New("invalid configuration")

// Default returns a configuration with every rule enabled at its default
// severity.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Rules:    map[string]RuleConfig{},
	}
}

func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]RuleConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads DefaultFileName from dir, or returns Default when the file
// does not exist.
func Discover(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Resolve loads path when it is set and discovers the working directory
// configuration otherwise.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return Default(), nil
	}
	return Discover(wd)
}

func (c *Config) Validate() error {
	var bad []string
	for name, rule := range c.Rules {
		if rule.Severity != "" && !rule.Severity.valid() {
			bad = append(bad, fmt.Sprintf("%s: unknown severity %q", name, rule.Severity))
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(bad, "; "))
}

func (c *Config) RuleEnabled(name string) bool {
	if c == nil {
		return true
	}
	rule, ok := c.Rules[name]
	if !ok || rule.Enabled == nil {
		return true
	}
	return *rule.Enabled
}

func (c *Config) RuleSeverity(name string) Severity {
	if c == nil {
		return SeverityWarning
	}
	if rule, ok := c.Rules[name]; ok && rule.Severity.valid() {
		return rule.Severity
	}
	return SeverityWarning
}

func (c *Config) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}
