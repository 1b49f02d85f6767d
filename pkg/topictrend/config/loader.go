package config

import (
	"context"
	"fmt"
	"os"

	"github.com/cognicore/topictrend/internal/embedding/ollama"
	"github.com/cognicore/topictrend/internal/embedding/openai"
	"github.com/cognicore/topictrend/internal/llm"
	"github.com/cognicore/topictrend/internal/logger"
	"github.com/cognicore/topictrend/pkg/topictrend/canon"
	"github.com/cognicore/topictrend/pkg/topictrend/extract"
	"github.com/cognicore/topictrend/pkg/topictrend/internalerr"
	"github.com/cognicore/topictrend/pkg/topictrend/keywords"
	"github.com/cognicore/topictrend/pkg/topictrend/store"
	"github.com/cognicore/topictrend/pkg/topictrend/store/jsonfile"
	"github.com/cognicore/topictrend/pkg/topictrend/store/memstore"
	"github.com/cognicore/topictrend/pkg/topictrend/store/sqlite"
	"github.com/cognicore/topictrend/pkg/topictrend/vector"
)

// Components holds the pipeline pieces built from a Config.
type Components struct {
	Normalizer    *keywords.Normalizer
	Store         *store.TopicStore
	Provider      vector.Provider
	Extractor     extract.Extractor
	Canonicalizer *canon.Canonicalizer
}

// Close releases the topic store.
func (c *Components) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// Build constructs the pipeline. An unreadable topic store is reported as a
// warning and replaced with an empty one.
func (c *Config) Build(ctx context.Context) (*Components, error) {
	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}
	comp := &Components{Normalizer: keywords.NewNormalizer(rules)}

	comp.Provider, err = c.NewProvider()
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	comp.Extractor = c.NewExtractor()

	comp.Store, err = c.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	comp.Canonicalizer = canon.New(comp.Normalizer, comp.Provider, comp.Store, canon.WithThreshold(c.Threshold))
	return comp, nil
}

// OpenStore opens the configured backend and loads the topic store.
func (c *Config) OpenStore(ctx context.Context) (*store.TopicStore, error) {
	var backend store.Backend
	switch c.Store.Backend {
	case BackendJSON:
		backend = jsonfile.New(c.Store.Path)
	case BackendSQLite:
		db, err := sqlite.OpenSQLite(ctx, c.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open topic store: %w", err)
		}
		backend = db
	case BackendMemory:
		backend = memstore.New()
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", internalerr.ErrInvalidConfig, c.Store.Backend)
	}

	s, err := store.Load(ctx, backend)
	if err != nil {
		logger.Warn("%v", err)
	}
	logger.Debug("loaded %d learned topics from %s store", s.Len(), c.Store.Backend)
	return s, nil
}

// NewProvider returns the configured embedding provider. The "none" provider
// yields nil, which disables semantic matching.
func (c *Config) NewProvider() (vector.Provider, error) {
	var p vector.Provider
	switch c.Embedding.Provider {
	case ProviderNone:
		return nil, nil
	case ProviderOllama:
		p = ollama.New(ollama.Config{BaseURL: c.Embedding.BaseURL, Model: c.Embedding.Model})
	case ProviderOpenAI:
		op, err := openai.New(openai.Config{
			APIKey:  os.Getenv(c.Embedding.APIKeyEnv),
			BaseURL: c.Embedding.BaseURL,
			Model:   c.Embedding.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set %s)", err, c.Embedding.APIKeyEnv)
		}
		p = op
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", internalerr.ErrInvalidConfig, c.Embedding.Provider)
	}
	return vector.RateLimited(p, c.Embedding.RatePerSecond), nil
}

// NewExtractor returns the LLM extractor when a chat endpoint is configured,
// otherwise the offline clause extractor.
func (c *Config) NewExtractor() extract.Extractor {
	if c.Extractor.BaseURL == "" {
		return extract.Clauses{MaxWords: c.Extractor.MaxWords}
	}
	return &extract.LLM{
		Client: &llm.Client{
			BaseURL: c.Extractor.BaseURL,
			Model:   c.Extractor.Model,
			APIKey:  os.Getenv(c.Extractor.APIKeyEnv),
		},
		MaxWords: c.Extractor.MaxWords,
	}
}
