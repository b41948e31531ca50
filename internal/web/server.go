// Package web serves the moodboard JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"moodboard-ai/internal/imagegen"
	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/moodboard"
	"moodboard-ai/internal/preset"
)

const maxBodyBytes = 1 << 20

type TextGenerator interface {
	Generate(ctx context.Context, req moodboard.Request) (string, error)
}

type ImageGenerator interface {
	Generate(ctx context.Context, prompts []string) ([]moodboard.GeneratedImage, error)
}

type Options struct {
	Text TextGenerator
	// Images may be nil when no image provider is configured.
	Images         ImageGenerator
	MaxImages      int
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

type Server struct {
	text           TextGenerator
	images         ImageGenerator
	maxImages      int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func New(opts Options) *Server {
	maxImages := opts.MaxImages
	if maxImages <= 0 || maxImages > moodboard.MaxImagePrompts {
		maxImages = moodboard.MaxImagePrompts
	}
	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 240 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Server{
		text:           opts.Text,
		images:         opts.Images,
		maxImages:      maxImages,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(withRequestID)
	r.Use(withCORS)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/presets", s.handlePresets).Methods(http.MethodGet)
	r.HandleFunc("/api/moodboard", s.handleMoodboard).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/images", s.handleImages).Methods(http.MethodPost, http.MethodOptions)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "Method not allowed"})
	})

	return withLogging(r, s.logger)
}

type apiError struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`
	// Fallback carries gradient tiles when an image request fails outright.
	Fallback []fallbackTile `json:"fallback,omitempty"`
}

type moodboardResponse struct {
	Text      string        `json:"text"`
	Moodboard moodboardBody `json:"moodboard"`
}

type moodboardBody struct {
	moodboard.Result
	Swatches     []moodboard.Swatch `json:"swatches"`
	ImagePrompts []string           `json:"imagePrompts"`
}

type imagesRequest struct {
	Prompts []string `json:"prompts"`
	Palette string   `json:"palette,omitempty"`
}

type imagesResponse struct {
	URLs     []string                   `json:"urls"`
	Images   []moodboard.GeneratedImage `json:"images"`
	Fallback []fallbackTile             `json:"fallback,omitempty"`
}

type fallbackTile struct {
	PromptIndex int              `json:"promptIndex"`
	From        moodboard.Swatch `json:"from"`
	To          moodboard.Swatch `json:"to"`
	CSS         string           `json:"css"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"useCases":    preset.UseCases(),
		"styles":      preset.Styles(),
		"intensities": preset.Intensities(),
	})
}

func (s *Server) handleMoodboard(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req moodboard.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Missing theme in request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	text, err := s.text.Generate(ctx, req)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}

	result := moodboard.NewResult(text)
	writeJSON(w, http.StatusOK, moodboardResponse{
		Text: text,
		Moodboard: moodboardBody{
			Result:       result,
			Swatches:     nonNil(result.Swatches()),
			ImagePrompts: result.ImagePrompts(s.maxImages),
		},
	})
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req imagesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prompts := make([]string, 0, len(req.Prompts))
	for _, p := range req.Prompts {
		if p = strings.TrimSpace(p); p != "" {
			prompts = append(prompts, p)
		}
	}
	if len(prompts) == 0 {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "No prompts provided"})
		return
	}
	if len(prompts) > s.maxImages {
		prompts = prompts[:s.maxImages]
	}

	if s.images == nil {
		writeJSON(w, http.StatusInternalServerError, apiError{
			Error:    "Image generation is not configured",
			Detail:   imagegen.ErrNoProviders.Error(),
			Fallback: fallbackTiles(req.Palette, len(prompts)),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	images, err := s.images.Generate(ctx, prompts)
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Error("image generation failed", "err", err)
		resp := apiError{Error: "Server error", Detail: err.Error(), Fallback: fallbackTiles(req.Palette, len(prompts))}
		if errors.Is(err, imagegen.ErrNoProviders) {
			resp.Error = "Image generation is not configured"
		}
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	resp := imagesResponse{URLs: make([]string, 0, len(images)), Images: nonNil(images)}
	for _, img := range images {
		resp.URLs = append(resp.URLs, img.Src())
	}
	if len(images) == 0 {
		resp.Fallback = fallbackTiles(req.Palette, len(prompts))
	}

	writeJSON(w, http.StatusOK, resp)
}

// fallbackTiles returns nil when no palette text was supplied.
func fallbackTiles(palette string, count int) []fallbackTile {
	if strings.TrimSpace(palette) == "" {
		return nil
	}
	var out []fallbackTile
	for _, tile := range moodboard.GenerateFallbackTiles(moodboard.RenderPalette(palette), count) {
		out = append(out, fallbackTile{
			PromptIndex: tile.PromptIndex,
			From:        tile.Tile.From,
			To:          tile.Tile.To,
			CSS:         tile.Tile.CSS(),
		})
	}
	return out
}

func (s *Server) writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context(), s.logger)

	var upstream *moodboard.UpstreamError
	if errors.As(err, &upstream) {
		logger.Error("text provider error", "provider", upstream.Provider, "status", upstream.Status, "detail", upstream.Detail)
		writeJSON(w, http.StatusBadGateway, apiError{
			Error:  upstream.Provider + " error",
			Status: upstream.Status,
			Detail: upstream.Detail,
		})
		return
	}

	var transport *moodboard.TransportError
	if errors.As(err, &transport) {
		logger.Error("text provider unreachable", "provider", transport.Provider, "err", transport.Err)
		writeJSON(w, http.StatusBadGateway, apiError{Error: transport.Provider + " unreachable", Detail: transport.Err.Error()})
		return
	}

	logger.Error("moodboard generation failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, apiError{Error: "Server error", Detail: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
