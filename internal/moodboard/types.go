package moodboard

import (
	"strings"
)

type Request struct {
	Theme     string `json:"theme"`
	UseCase   string `json:"useCase"`
	Style     string `json:"style"`
	Intensity string `json:"intensity"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Theme) == "" {
		return &ValidationError{Field: "theme", Message: "Please type some theme keywords first."}
	}
	return nil
}

// Result is everything derived from one text-generation response.
type Result struct {
	Text        string   `json:"text"`
	PaletteText string   `json:"palette"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
	Prompts     []string `json:"prompts"`
}

func NewResult(text string) Result {
	sections := ParseSections(text)
	return Result{
		Text:        text,
		PaletteText: sections.Palette,
		Keywords:    TokenizeKeywords(sections.Keywords),
		Description: sections.Description,
		Prompts:     ExtractPrompts(sections.Prompts),
	}
}

func (r Result) Swatches() []Swatch {
	return RenderPalette(r.PaletteText)
}

// ImagePrompts returns the prefix of Prompts sent for image generation.
func (r Result) ImagePrompts(max int) []string {
	if max <= 0 || max > MaxImagePrompts {
		max = MaxImagePrompts
	}
	n := len(r.Prompts)
	if n > max {
		n = max
	}
	out := make([]string, n)
	copy(out, r.Prompts[:n])
	return out
}

type Swatch struct {
	Hex   string `json:"hex"`
	Label string `json:"label,omitempty"`
}

type Origin string

const (
	OriginRemote   Origin = "remote"
	OriginFallback Origin = "fallback"
)

type GeneratedImage struct {
	PromptIndex int           `json:"promptIndex"`
	Origin      Origin        `json:"origin"`
	Provider    string        `json:"provider,omitempty"`
	Model       string        `json:"model,omitempty"`
	Source      *Source       `json:"source,omitempty"`
	Tile        *GradientTile `json:"tile,omitempty"`
}

// Src returns a value usable as an <img src>, or "" for fallback tiles.
func (g GeneratedImage) Src() string {
	if g.Source == nil {
		return ""
	}
	return g.Source.String()
}

const MaxImagePrompts = 3
