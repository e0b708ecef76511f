package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/config"
)

// NewCompleter creates the configured completion provider, wrapped in
// a circuit breaker so a down provider fails fast instead of eating
// the full request timeout on every compile. Returns (nil, nil) when
// assisted compilation is disabled; the compiler then degrades to the
// rule-based path with an llm_disabled warning.
func NewCompleter(cfg *config.LLMConfig, logger *zap.Logger) (TextCompleter, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	clientCfg := &Config{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
	}

	var client TextCompleter
	var err error
	switch cfg.Provider {
	case "openai", "":
		client, err = NewOpenAIClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
	case "anthropic":
		client, err = NewAnthropicClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	return NewBreakerCompleter(client, DefaultBreakerConfig()), nil
}
