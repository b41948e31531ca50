package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "GEMINI_API_KEY", "TEXT_PROVIDER", "TEXT_MODEL", "TEXT_TEMPERATURE",
		"IMAGE_CHAIN", "IMAGE_CHAIN_FILE", "MAX_IMAGES", "PROVIDER_TIMEOUT_SECONDS", "TELEGRAM_BOT_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_NoCredentials(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.ErrorIs(t, err, ErrNoTextProvider)
}

func TestLoad_OpenAIDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.TextProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.TextModel)
	assert.InDelta(t, 0.9, cfg.TextTemperature, 1e-9)
	assert.Equal(t, 3, cfg.MaxImages)
	assert.Equal(t, 90*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, []Candidate{
		{Provider: ProviderOpenAI, Model: "gpt-image-1"},
		{Provider: ProviderOpenAI, Model: "dall-e-3"},
	}, cfg.ImageChain, "gemini candidates need GEMINI_API_KEY")
	assert.Error(t, cfg.RequireTelegram())
}

func TestLoad_GeminiOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-test")
	t.Setenv("MAX_IMAGES", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.TextProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.TextModel)
	assert.Equal(t, 3, cfg.MaxImages)
	require.Len(t, cfg.ImageChain, 2)
	assert.Equal(t, ProviderGemini, cfg.ImageChain[0].Provider)
	assert.Equal(t, ProviderImagen, cfg.ImageChain[1].Provider)
}

func TestLoad_ExplicitProviderWithoutKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-test")
	t.Setenv("TEXT_PROVIDER", "openai")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ImageChainEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "g-test")
	t.Setenv("IMAGE_CHAIN", "gemini, openai:dall-e-2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{Provider: ProviderGemini, Model: "gemini-2.5-flash-image"},
		{Provider: ProviderOpenAI, Model: "dall-e-2"},
	}, cfg.ImageChain)
}

func TestLoad_ImageChainFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "chain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chain:
  - provider: imagen
  - provider: openai
    model: dall-e-3
`), 0o600))
	t.Setenv("IMAGE_CHAIN_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []Candidate{{Provider: ProviderOpenAI, Model: "dall-e-3"}}, cfg.ImageChain)
}

func TestParseChain_UnknownProvider(t *testing.T) {
	_, err := ParseChain("openai, midjourney:v6")
	assert.ErrorContains(t, err, "midjourney")
}

func TestParseChainYAML_Invalid(t *testing.T) {
	_, err := ParseChainYAML([]byte("chain: [oops"))
	assert.Error(t, err)
}
