package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderImagen = "imagen"
)

var ErrNoTextProvider = errors.New("no text provider configured")

type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiAPIVersion string

	TextProvider    string
	TextModel       string
	TextTemperature float64

	ImageChain     []Candidate
	ImageChainFile string
	ImageSize      string
	MaxImages      int

	TelegramToken string
	WebAddr       string

	LogLevel string
	LogFile  LogFile
	Debug    bool

	PreferIPv4      bool
	MaxConcurrent   int
	ProviderTimeout time.Duration
	RequestTimeout  time.Duration
	HTTPTimeout     time.Duration
}

type LogFile struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func Load() (Config, error) {
	cfg := Config{
		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:    strings.TrimSpace(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")),
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:    strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion: strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		TextProvider:     strings.ToLower(strings.TrimSpace(os.Getenv("TEXT_PROVIDER"))),
		TextModel:        strings.TrimSpace(os.Getenv("TEXT_MODEL")),
		TextTemperature:  getEnvFloat("TEXT_TEMPERATURE", 0.9),
		ImageChainFile:   strings.TrimSpace(os.Getenv("IMAGE_CHAIN_FILE")),
		ImageSize:        strings.TrimSpace(getEnv("IMAGE_SIZE", "1024x1024")),
		MaxImages:        getEnvInt("MAX_IMAGES", 3),
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		WebAddr:          strings.TrimSpace(getEnv("WEB_ADDR", ":8080")),
		LogLevel:         strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		LogFile: LogFile{
			Path:       strings.TrimSpace(os.Getenv("LOG_FILE")),
			MaxSizeMB:  getEnvInt("LOG_FILE_MAX_MB", 50),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 14),
		},
		Debug:           getEnvBool("DEBUG", false),
		PreferIPv4:      getEnvBool("PREFER_IPV4", true),
		MaxConcurrent:   getEnvInt("MAX_CONCURRENT", 4),
		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 90)) * time.Second,
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 240)) * time.Second,
		HTTPTimeout:     time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
	}

	if cfg.TextProvider == "" {
		switch {
		case cfg.OpenAIAPIKey != "":
			cfg.TextProvider = ProviderOpenAI
		case cfg.GeminiAPIKey != "":
			cfg.TextProvider = ProviderGemini
		}
	}
	switch cfg.TextProvider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Config{}, errors.New("OPENAI_API_KEY is required for TEXT_PROVIDER=openai")
		}
		if cfg.TextModel == "" {
			cfg.TextModel = "gpt-4o-mini"
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return Config{}, errors.New("GEMINI_API_KEY is required for TEXT_PROVIDER=gemini")
		}
		if cfg.TextModel == "" {
			cfg.TextModel = "gemini-2.5-flash"
		}
	case "":
		return Config{}, ErrNoTextProvider
	default:
		return Config{}, errors.New("TEXT_PROVIDER must be openai or gemini")
	}

	chain, err := loadChain(cfg)
	if err != nil {
		return Config{}, err
	}
	cfg.ImageChain = chain

	if cfg.MaxImages < 1 || cfg.MaxImages > 3 {
		cfg.MaxImages = 3
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 90 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 240 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}

	return cfg, nil
}

func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func (c Config) HasCredentials(provider string) bool {
	switch provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderGemini, ProviderImagen:
		return c.GeminiAPIKey != ""
	}
	return false
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
