// Package openai adapts the OpenAI chat and image APIs to the moodboard
// provider contracts.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/moodboard"
)

const providerName = "openai"

var (
	ErrNoChoices = errors.New("openai returned no choices")
	ErrNoImage   = errors.New("openai returned no image data")
)

type Options struct {
	APIKey string
	// BaseURL defaults to https://api.openai.com/v1.
	BaseURL string
	// ImageSize is passed through to the images endpoint, e.g. 1024x1024.
	ImageSize  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	client    *goopenai.Client
	imageSize string
	logger    *slog.Logger
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai: API key is required")
	}

	clientConfig := goopenai.DefaultConfig(opts.APIKey)
	if baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if opts.HTTPClient != nil {
		clientConfig.HTTPClient = opts.HTTPClient
	}

	imageSize := opts.ImageSize
	if imageSize == "" {
		imageSize = goopenai.CreateImageSize1024x1024
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{
		client:    goopenai.NewClientWithConfig(clientConfig),
		imageSize: imageSize,
		logger:    logger,
	}, nil
}

func (c *Client) Name() string {
	return providerName
}

func (c *Client) Complete(ctx context.Context, model, prompt string, temperature float64) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(temperature),
	})
	if err != nil {
		return "", c.classify(err, model)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateImage requests one image. dall-e models answer with a hosted URL,
// gpt-image models always answer with base64 data.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string) ([]moodboard.Source, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("openai: prompt cannot be empty")
	}

	req := goopenai.ImageRequest{
		Prompt: prompt,
		Model:  model,
		N:      1,
		Size:   c.imageSize,
	}
	if strings.HasPrefix(model, "dall-e") {
		req.ResponseFormat = goopenai.CreateImageResponseFormatURL
	}

	resp, err := c.client.CreateImage(ctx, req)
	if err != nil {
		return nil, c.classify(err, model)
	}

	var out []moodboard.Source
	for _, d := range resp.Data {
		switch {
		case d.URL != "":
			out = append(out, moodboard.URLSource(d.URL))
		case d.B64JSON != "":
			out = append(out, moodboard.InlineBase64Source(d.B64JSON, "image/png"))
		}
	}
	if len(out) == 0 {
		return nil, ErrNoImage
	}
	return out, nil
}

func (c *Client) classify(err error, model string) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		c.logger.Warn("openai request failed", "model", model, "status", apiErr.HTTPStatusCode, "err", apiErr.Message)
		return &moodboard.UpstreamError{Provider: providerName, Status: apiErr.HTTPStatusCode, Detail: apiErr.Message}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		detail := ""
		if reqErr.Err != nil {
			detail = reqErr.Err.Error()
		}
		c.logger.Warn("openai request failed", "model", model, "status", reqErr.HTTPStatusCode, "err", detail)
		return &moodboard.UpstreamError{Provider: providerName, Status: reqErr.HTTPStatusCode, Detail: detail}
	}

	return &moodboard.TransportError{Provider: providerName, Err: fmt.Errorf("%s: %w", model, err)}
}
