package romanize

import (
	"context"
	"errors"
	"fmt"

	"github.com/jusunglee/olchiki/internal/anthropic"
	"github.com/jusunglee/olchiki/internal/google"
)

// Providers names every romanizer a binary can be configured with.
var Providers = []string{"rule", "anthropic", "google"}

// ProviderConfig selects and configures a romanizer.
type ProviderConfig struct {
	Provider        string
	Model           string
	AnthropicAPIKey string
	GoogleAPIKey    string
}

// NewFromConfig builds the romanizer named by cfg.Provider. An empty model
// selects the provider's default.
func NewFromConfig(ctx context.Context, cfg ProviderConfig) (Romanizer, error) {
	switch cfg.Provider {
	case "", "rule":
		return NewRuleRomanizer(), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("anthropic-api-key is required when using anthropic romanizer")
		}
		return NewLLMRomanizer(anthropic.NewClient(cfg.AnthropicAPIKey, anthropic.Model(cfg.Model))), nil
	case "google":
		if cfg.GoogleAPIKey == "" {
			return nil, errors.New("google-api-key is required when using google romanizer")
		}
		client, err := google.NewClient(ctx, cfg.GoogleAPIKey, google.Model(cfg.Model))
		if err != nil {
			return nil, fmt.Errorf("creating Google client: %w", err)
		}
		return NewLLMRomanizer(client), nil
	}
	return nil, fmt.Errorf("unknown romanizer %q", cfg.Provider)
}
