// Package app wires configuration into the provider clients, generators and
// controllers shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"moodboard-ai/internal/config"
	"moodboard-ai/internal/controller"
	"moodboard-ai/internal/gemini"
	"moodboard-ai/internal/httpclient"
	"moodboard-ai/internal/imagegen"
	"moodboard-ai/internal/imagen"
	"moodboard-ai/internal/openai"
	"moodboard-ai/internal/textgen"
)

type App struct {
	Config     config.Config
	Logger     *slog.Logger
	HTTPClient *http.Client
	Text       *textgen.Client
	Images     *imagegen.Orchestrator
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	completers := map[string]textgen.Completer{}
	providers := map[string]imagegen.Provider{}

	if cfg.OpenAIAPIKey != "" {
		oa, err := openai.New(openai.Options{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			ImageSize:  cfg.ImageSize,
			HTTPClient: httpClient,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		completers[config.ProviderOpenAI] = oa
		providers[config.ProviderOpenAI] = oa
	}

	if cfg.GeminiAPIKey != "" {
		gem := gemini.New(gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			HTTPClient: httpClient,
			Logger:     logger,
		})
		completers[config.ProviderGemini] = gem
		providers[config.ProviderGemini] = gem

		if usesProvider(cfg.ImageChain, config.ProviderImagen) {
			img, err := imagen.New(ctx, imagen.Options{
				APIKey:     cfg.GeminiAPIKey,
				HTTPClient: httpClient,
				Logger:     logger,
			})
			if err != nil {
				return nil, err
			}
			providers[config.ProviderImagen] = img
		}
	}

	completer, ok := completers[cfg.TextProvider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrNoTextProvider, cfg.TextProvider)
	}

	images := imagegen.New(imagegen.Options{
		Candidates:  cfg.ImageChain,
		Providers:   providers,
		MaxCount:    cfg.MaxImages,
		CallTimeout: cfg.ProviderTimeout,
		Logger:      logger,
	})
	if len(images.Candidates()) == 0 {
		logger.Warn("no image providers configured; image requests will fall back to gradient tiles")
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		HTTPClient: httpClient,
		Text: textgen.New(textgen.Options{
			Provider:    completer,
			Model:       cfg.TextModel,
			Temperature: cfg.TextTemperature,
			Timeout:     cfg.ProviderTimeout,
			Logger:      logger,
		}),
		Images: images,
	}, nil
}

// NewController returns a fresh controller over the shared generators.
func (a *App) NewController() *controller.Controller {
	return controller.New(controller.Options{
		Text:      a.Text,
		Images:    a.Images,
		MaxImages: a.Config.MaxImages,
		Logger:    a.Logger,
	})
}

func usesProvider(chain []config.Candidate, provider string) bool {
	for _, c := range chain {
		if c.Provider == provider {
			return true
		}
	}
	return false
}
