package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Candidate is one (provider, model) step of the image fallback chain.
type Candidate struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

func (c Candidate) String() string {
	return c.Provider + ":" + c.Model
}

type chainFile struct {
	Chain []Candidate `yaml:"chain"`
}

var defaultModels = map[string]string{
	ProviderOpenAI: "gpt-image-1",
	ProviderGemini: "gemini-2.5-flash-image",
	ProviderImagen: "imagen-4.0-generate-001",
}

// loadChain reads IMAGE_CHAIN_FILE, then IMAGE_CHAIN, then derives a default
// chain from whichever credentials are present. Candidates without
// credentials are dropped; an empty result is not an error here.
func loadChain(cfg Config) ([]Candidate, error) {
	var chain []Candidate
	switch {
	case cfg.ImageChainFile != "":
		data, err := os.ReadFile(cfg.ImageChainFile)
		if err != nil {
			return nil, fmt.Errorf("read image chain file: %w", err)
		}
		chain, err = ParseChainYAML(data)
		if err != nil {
			return nil, err
		}
	case strings.TrimSpace(os.Getenv("IMAGE_CHAIN")) != "":
		var err error
		chain, err = ParseChain(os.Getenv("IMAGE_CHAIN"))
		if err != nil {
			return nil, err
		}
	default:
		chain = []Candidate{
			{Provider: ProviderOpenAI, Model: "gpt-image-1"},
			{Provider: ProviderOpenAI, Model: "dall-e-3"},
			{Provider: ProviderGemini, Model: "gemini-2.5-flash-image"},
			{Provider: ProviderImagen, Model: "imagen-4.0-generate-001"},
		}
	}

	out := chain[:0]
	for _, c := range chain {
		if cfg.HasCredentials(c.Provider) {
			out = append(out, c)
		}
	}
	return out, nil
}

// ParseChain parses "openai:gpt-image-1, gemini" style lists. A missing model
// falls back to the provider default.
func ParseChain(raw string) ([]Candidate, error) {
	var out []Candidate
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		provider, model, _ := strings.Cut(item, ":")
		c, err := normalizeCandidate(Candidate{Provider: provider, Model: model})
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func ParseChainYAML(data []byte) ([]Candidate, error) {
	var f chainFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode image chain: %w", err)
	}
	out := make([]Candidate, 0, len(f.Chain))
	for _, c := range f.Chain {
		c, err := normalizeCandidate(c)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func normalizeCandidate(c Candidate) (Candidate, error) {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Model = strings.TrimSpace(c.Model)
	def, ok := defaultModels[c.Provider]
	if !ok {
		return Candidate{}, fmt.Errorf("unknown image provider %q", c.Provider)
	}
	if c.Model == "" {
		c.Model = def
	}
	return c, nil
}
