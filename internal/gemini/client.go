package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/moodboard"
)

const providerName = "gemini"

var (
	ErrEmptyResponse = errors.New("gemini returned no text")
	ErrNoImage       = errors.New("gemini returned no image data")
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) Name() string {
	return providerName
}

// Complete sends a single-turn prompt and returns the text of the first candidate.
func (c *Client) Complete(ctx context.Context, model, prompt string, temperature float64) (string, error) {
	req := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:    temperature,
			CandidateCount: 1,
		},
	}

	resp, err := c.generateContent(ctx, model, req)
	if err != nil {
		return "", err
	}

	text, _ := extractParts(resp)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w%s", ErrEmptyResponse, blockSuffix(resp))
	}
	return text, nil
}

// GenerateImage asks an image-capable model for a square image.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string) ([]moodboard.Source, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("prompt is empty")
	}

	req := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: fmt.Sprintf("Generate a high quality image: %s", prompt)}}},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: "1:1"},
		},
	}

	resp, err := c.generateContent(ctx, model, req)
	if err != nil {
		return nil, err
	}

	_, images := extractParts(resp)
	if len(images) == 0 {
		return nil, fmt.Errorf("%w%s", ErrNoImage, blockSuffix(resp))
	}
	return images, nil
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (generateContentResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return generateContentResponse{}, &moodboard.TransportError{Provider: providerName, Err: err}
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return generateContentResponse{}, &moodboard.TransportError{Provider: providerName, Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode >= 400 {
		c.logger.Warn("gemini request failed", "model", model, "status", httpResp.StatusCode)
		return generateContentResponse{}, &moodboard.UpstreamError{
			Provider: providerName,
			Status:   httpResp.StatusCode,
			Detail:   strings.TrimSpace(string(rawBody)),
		}
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return generateContentResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return decoded, nil
}

func extractParts(resp generateContentResponse) (string, []moodboard.Source) {
	if len(resp.Candidates) == 0 {
		return "", nil
	}

	var textBuilder strings.Builder
	var images []moodboard.Source

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" {
			images = append(images, moodboard.InlineBase64Source(p.InlineData.Data, p.InlineData.MimeType))
		}
	}

	return textBuilder.String(), images
}

func blockSuffix(resp generateContentResponse) string {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return " (blocked: " + resp.PromptFeedback.BlockReason + ")"
	}
	if len(resp.Candidates) > 0 {
		if reason := resp.Candidates[0].FinishReason; reason != "" && reason != "STOP" {
			return " (finish reason: " + reason + ")"
		}
	}
	return ""
}
