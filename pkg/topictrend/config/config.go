// Package config loads topictrend settings from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/topictrend/pkg/topictrend/internalerr"
	"github.com/cognicore/topictrend/pkg/topictrend/keywords"
	"github.com/cognicore/topictrend/pkg/topictrend/store"
)

// Config is the application configuration.
type Config struct {
	Threshold float64         `yaml:"threshold"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Paths     PathsConfig     `yaml:"paths"`

	// Topics is the keyword rule table in priority order.
	Topics []TopicConfig `yaml:"topics"`
	// RulesFile names a pipe separated rule file used when Topics is empty.
	RulesFile string `yaml:"rules_file"`
}

// StoreConfig selects the topic store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // json, sqlite or memory
	Path    string `yaml:"path"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider      string  `yaml:"provider"` // ollama, openai or none
	Model         string  `yaml:"model"`
	BaseURL       string  `yaml:"base_url"`
	APIKeyEnv     string  `yaml:"api_key_env"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// ExtractorConfig points at an OpenAI-compatible chat endpoint. An empty
// BaseURL selects the offline clause extractor.
type ExtractorConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	MaxWords  int    `yaml:"max_words"`
}

// PathsConfig holds pipeline directories.
type PathsConfig struct {
	Raw       string `yaml:"raw"`
	Processed string `yaml:"processed"`
	Daily     string `yaml:"daily"`
	Trend     string `yaml:"trend"`
}

// TopicConfig is one keyword rule.
type TopicConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Backend and provider names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Threshold: store.DefaultThreshold,
		Store:     StoreConfig{Backend: BackendJSON, Path: "topic_memory.json"},
		Embedding: EmbeddingConfig{Provider: ProviderOllama, APIKeyEnv: "OPENAI_API_KEY"},
		Extractor: ExtractorConfig{APIKeyEnv: "LLM_API_KEY"},
		Paths: PathsConfig{
			Raw:       "data/raw",
			Processed: "data/processed",
			Daily:     "output/daily",
			Trend:     "output/reports/trend.csv",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if math.IsNaN(c.Threshold) || c.Threshold < -1 || c.Threshold > 1 {
		errs = append(errs, fmt.Errorf("threshold %v outside [-1, 1]", c.Threshold))
	}
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path required for %s backend", c.Store.Backend))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	switch c.Embedding.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider))
	}
	if c.Embedding.RatePerSecond < 0 {
		errs = append(errs, fmt.Errorf("embedding.rate_per_second must not be negative"))
	}
	if c.Extractor.BaseURL != "" && c.Extractor.Model == "" {
		errs = append(errs, fmt.Errorf("extractor.model required with extractor.base_url"))
	}
	for i, t := range c.Topics {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("topics[%d]: name required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Rules returns the configured keyword table: the topics list, else the rule
// file, else the built-in review table.
func (c *Config) Rules() ([]keywords.Rule, error) {
	if len(c.Topics) > 0 {
		rules := make([]keywords.Rule, len(c.Topics))
		for i, t := range c.Topics {
			rules[i] = keywords.Rule{Topic: t.Name, Keywords: t.Keywords}
		}
		return rules, nil
	}
	if c.RulesFile != "" {
		rules, err := LoadRules(c.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		return rules, nil
	}
	return keywords.DefaultRules(), nil
}

// LoadRules reads a rule file with one topic per line:
//
//	topic|keyword1|keyword2
//
// Blank lines and lines starting with # are ignored. File order is rule
// priority.
func LoadRules(path string) ([]keywords.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rules []keywords.Rule
	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: %s:%d: want topic|keyword...", internalerr.ErrInvalidConfig, path, n+1)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] == "" {
			return nil, fmt.Errorf("%w: %s:%d: empty topic", internalerr.ErrInvalidConfig, path, n+1)
		}
		rules = append(rules, keywords.Rule{Topic: parts[0], Keywords: parts[1:]})
	}
	return rules, nil
}
