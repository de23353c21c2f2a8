// Package agent turns a claim and its search evidence into verdict markdown
// using a configurable language model provider.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"truthbot/internal/config"
	"truthbot/internal/logger"
)

// Agent errors.
var (
	ErrUnknownProvider = errors.New("agent provider not registered")
	ErrMissingAPIKey   = errors.New("agent API key not configured")
	ErrEmptyResponse   = errors.New("agent returned no content")
)

// DefaultProvider is used when the config names none.
const DefaultProvider = "openai"

// Agent analyzes a claim against the supplied search context and returns
// the verdict markdown.
type Agent interface {
	Analyze(ctx context.Context, claim, searchContext string) (string, error)
}

// Config carries the inputs a provider needs to build an Agent.
type Config struct {
	Logger       *logger.Logger
	Provider     string
	Model        string
	Endpoint     string
	APIKey       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

// FromConfig builds an agent Config from the application config, picking the
// API key that belongs to the selected provider.
func FromConfig(cfg config.AgentConfig, log *logger.Logger) Config {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = DefaultProvider
	}

	key := cfg.OpenAIKey
	if provider == "gemini" || provider == "google" {
		key = cfg.GeminiKey
	}

	return Config{
		Logger:       logger.OrDiscard(log),
		Provider:     provider,
		Model:        cfg.Model,
		Endpoint:     cfg.Endpoint,
		APIKey:       key,
		SystemPrompt: SystemPrompt,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Timeout:      cfg.Timeout(),
	}
}

// Factory builds an Agent for one provider.
type Factory func(Config) (Agent, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// RegisterProvider registers factory under name and any aliases.
func RegisterProvider(name string, factory Factory, aliases ...string) {
	mu.Lock()
	defer mu.Unlock()

	for _, n := range append([]string{name}, aliases...) {
		factories[strings.ToLower(n)] = factory
	}
}

// Providers lists the registered provider names and aliases.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// New returns the Agent for cfg.Provider.
func New(cfg Config) (Agent, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = DefaultProvider
	}

	mu.RLock()
	factory := factories[name]
	mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = SystemPrompt
	}

	cfg.Logger = logger.OrDiscard(cfg.Logger)

	return factory(cfg)
}
