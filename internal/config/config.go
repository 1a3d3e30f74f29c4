package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrUnknownProvider = errors.New("unknown llm provider")
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	// Server
	Port               int      `envconfig:"PORT" default:"3000"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	MetricsEnabled     bool     `envconfig:"METRICS_ENABLED" default:"true"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`
	QueryLogPath       string   `envconfig:"QUERY_LOG_PATH"`

	// Corpus
	NotesPath      string `envconfig:"NOTES_PATH" default:"notes.txt"`
	AttachmentPath string `envconfig:"ATTACHMENT_PATH" default:"./test/data/05-versions-space.pdf"`
	Persona        string `envconfig:"ASSISTANT_PERSONA" default:"you can do basic conversation to the user your name is trix."`

	// Model
	LLMProvider    string `envconfig:"LLM_PROVIDER" default:"gemini"`
	ModelName      string `envconfig:"MODEL_NAME" default:"gemini-2.5-flash"`
	GeminiAPIKey   string `envconfig:"GEMINI_API_KEY"`
	GoogleAPIKey   string `envconfig:"GOOGLE_API_KEY"`
	GeminiEndpoint string `envconfig:"GEMINI_ENDPOINT"`
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL"`
}

func Load() (*Config, error) {
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	// The Gemini SDKs accept either variable; GEMINI_API_KEY wins.
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = cfg.GoogleAPIKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.NotesPath == "" {
		return fmt.Errorf("%w: NOTES_PATH", ErrMissingRequired)
	}
	if c.ModelName == "" {
		return fmt.Errorf("%w: MODEL_NAME", ErrMissingRequired)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
		}
	case ProviderOpenAI:
		// Local OpenAI-compatible servers (LM Studio, vLLM) run without a key.
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.LLMProvider)
	}
	return nil
}

// ProviderName is the display name used in user-facing messages.
func (c *Config) ProviderName() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return "OpenAI"
	default:
		return "Gemini"
	}
}
