// Package registry builds the provider set from configured credentials.
package registry

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/octobees/leads-generator/discovery/internal/config"
	"github.com/octobees/leads-generator/discovery/internal/provider"
	"github.com/octobees/leads-generator/discovery/internal/provider/directory"
	"github.com/octobees/leads-generator/discovery/internal/provider/generative"
	"github.com/octobees/leads-generator/discovery/internal/provider/places"
)

// FromConfig constructs an adapter for every source that has
// credentials. A source that fails to build is logged and left out, so
// the result may be empty. A nil client lets each adapter use its own
// default; the directory backend then authenticates with an ID token.
func FromConfig(ctx context.Context, keys config.ProviderKeys, client *http.Client, logger *zap.Logger) provider.Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	var set provider.Set

	if keys.GooglePlacesAPIKey != "" {
		c, err := places.NewClient(ctx, keys.GooglePlacesAPIKey, places.WithHTTPClient(client))
		if err != nil {
			logger.Warn("places provider disabled", zap.Error(err))
		} else {
			set.Places = c
		}
	}

	if keys.DirectoryBackendURL != "" {
		c, err := directory.NewBackendClient(client, keys.DirectoryBackendURL)
		if err != nil {
			logger.Warn("directory backend disabled", zap.Error(err))
		} else {
			set.Directories = append(set.Directories, c)
		}
	}

	if keys.YelpAPIKey != "" {
		c, err := directory.NewYelpClient(keys.YelpAPIKey, directory.WithYelpHTTPClient(client))
		if err != nil {
			logger.Warn("yelp provider disabled", zap.Error(err))
		} else {
			set.Directories = append(set.Directories, c)
		}
	}

	if gen := generativeFromKeys(keys, client, logger); gen != nil {
		set.Generative = gen
	}

	kinds := make([]string, 0, 3)
	for _, k := range set.Kinds() {
		kinds = append(kinds, k.String())
	}
	logger.Info("lead providers configured", zap.Strings("kinds", kinds), zap.Int("directories", len(set.Directories)))
	return set
}

// generativeFromKeys picks the AI backend once per deployment: the
// preferred one if it has a key, then the first keyed backend in
// generative.Priority.
func generativeFromKeys(keys config.ProviderKeys, client *http.Client, logger *zap.Logger) provider.GenerativeProvider {
	type credential struct{ apiKey, model string }
	creds := map[generative.Backend]credential{
		generative.BackendGemini: {keys.GeminiAPIKey, keys.GeminiModel},
		generative.BackendOpenAI: {keys.OpenAIAPIKey, keys.OpenAIModel},
		generative.BackendClaude: {keys.AnthropicAPIKey, keys.ClaudeModel},
		generative.BackendCohere: {keys.CohereAPIKey, keys.CohereModel},
	}

	preferred, ok := generative.ParseBackend(keys.GenerativePreference)
	if !ok && strings.TrimSpace(keys.GenerativePreference) != "" {
		logger.Warn("unknown AI provider preference ignored", zap.String("preference", keys.GenerativePreference))
	}

	for _, backend := range generative.Order(preferred) {
		cred := creds[backend]
		if strings.TrimSpace(cred.apiKey) == "" {
			continue
		}
		gen, err := generative.New(backend, cred.apiKey,
			generative.WithModel(cred.model),
			generative.WithHTTPClient(client),
		)
		if err != nil {
			logger.Warn("generative provider disabled", zap.String("backend", string(backend)), zap.Error(err))
			continue
		}
		logger.Info("generative provider selected", zap.String("backend", string(backend)))
		return gen
	}
	return nil
}
