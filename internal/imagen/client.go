// Package imagen generates images with Google's Imagen models through the
// genai SDK.
package imagen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/moodboard"
)

const providerName = "imagen"

var ErrNoImage = errors.New("imagen returned no image data")

type Options struct {
	APIKey string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	models *genai.Models
	logger *slog.Logger
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("imagen: API key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{models: client.Models, logger: logger}, nil
}

func (c *Client) Name() string {
	return providerName
}

func (c *Client) GenerateImage(ctx context.Context, model, prompt string) ([]moodboard.Source, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("imagen: prompt cannot be empty")
	}

	resp, err := c.models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
	})
	if err != nil {
		return nil, c.classify(err, model)
	}

	images, filtered := sourcesFromResponse(resp)
	if len(images) == 0 {
		if filtered != "" {
			return nil, fmt.Errorf("%w (filtered: %s)", ErrNoImage, filtered)
		}
		return nil, ErrNoImage
	}
	return images, nil
}

// sourcesFromResponse returns the inline images in resp and the first RAI
// filter reason seen, if any.
func sourcesFromResponse(resp *genai.GenerateImagesResponse) ([]moodboard.Source, string) {
	if resp == nil {
		return nil, ""
	}

	var out []moodboard.Source
	var filtered string
	for _, generated := range resp.GeneratedImages {
		if generated == nil {
			continue
		}
		if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			if filtered == "" {
				filtered = generated.RAIFilteredReason
			}
			continue
		}
		out = append(out, moodboard.InlineSource(generated.Image.ImageBytes, generated.Image.MIMEType))
	}
	return out, filtered
}

func (c *Client) classify(err error, model string) error {
	if status, detail, ok := apiErrorDetails(err); ok {
		c.logger.Warn("imagen request failed", "model", model, "status", status, "err", detail)
		return &moodboard.UpstreamError{Provider: providerName, Status: status, Detail: detail}
	}
	return &moodboard.TransportError{Provider: providerName, Err: fmt.Errorf("%s: %w", model, err)}
}

func apiErrorDetails(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}
