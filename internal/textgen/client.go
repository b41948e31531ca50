// Package textgen produces the raw moodboard text for a request.
package textgen

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/moodboard"
)

// Completer is a single-turn text completion backend.
type Completer interface {
	Name() string
	Complete(ctx context.Context, model, prompt string, temperature float64) (string, error)
}

type Options struct {
	Provider    Completer
	Model       string
	Temperature float64
	Timeout     time.Duration
	Logger      *slog.Logger
}

type Client struct {
	provider    Completer
	model       string
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		provider:    opts.Provider,
		model:       opts.Model,
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
		logger:      logger,
	}
}

// Generate validates req, then makes exactly one completion call. It never
// retries.
func (c *Client) Generate(ctx context.Context, req moodboard.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.provider.Complete(ctx, c.model, moodboard.BuildInstruction(req), c.temperature)
	if err != nil {
		attrs := []any{"provider", c.provider.Name(), "model", c.model, "err", err}
		var upstream *moodboard.UpstreamError
		if errors.As(err, &upstream) {
			attrs = append(attrs, "status", upstream.Status, "detail", upstream.Detail)
		}
		c.logger.Error("text generation failed", attrs...)
		return "", err
	}

	c.logger.Info("text generated",
		"provider", c.provider.Name(),
		"model", c.model,
		"chars", len(text),
		"dur_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
