package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	WhisperURL     string        `env:"WHISPER_URL,required"`
	WhisperModel   string        `env:"WHISPER_MODEL" envDefault:"base"`
	WhisperTimeout time.Duration `env:"WHISPER_TIMEOUT" envDefault:"120s"`

	SentimentURL     string        `env:"SENTIMENT_URL"` // empty = hosted Hugging Face inference API
	SentimentModel   string        `env:"SENTIMENT_MODEL" envDefault:"SamLowe/roberta-base-go_emotions"`
	SentimentAPIKey  string        `env:"SENTIMENT_API_KEY"`
	SentimentTopK    int           `env:"SENTIMENT_TOP_K" envDefault:"0"`
	SentimentTimeout time.Duration `env:"SENTIMENT_TIMEOUT" envDefault:"30s"`

	PreprocessSox bool   `env:"PREPROCESS_SOX" envDefault:"true"`
	AudioDir      string `env:"AUDIO_DIR"`
	DefaultMode   string `env:"DEFAULT_SENTIMENT_OPTION" envDefault:"Sentiment Only"`

	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"300s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"33554432"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:","`

	WatchDir string `env:"WATCH_DIR"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile    string
	HTTPAddr   string
	LogLevel   string
	WhisperURL string
	AudioDir   string
	WatchDir   string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	// A CLI-supplied WHISPER_URL satisfies the required tag.
	if overrides.WhisperURL != "" {
		if _, ok := os.LookupEnv("WHISPER_URL"); !ok {
			os.Setenv("WHISPER_URL", overrides.WhisperURL)
			defer os.Unsetenv("WHISPER_URL")
		}
	}

	// Parse environment variables into config struct
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Apply CLI overrides (non-empty values win)
	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.WhisperURL != "" {
		cfg.WhisperURL = overrides.WhisperURL
	}
	if overrides.AudioDir != "" {
		cfg.AudioDir = overrides.AudioDir
	}
	if overrides.WatchDir != "" {
		cfg.WatchDir = overrides.WatchDir
	}

	return cfg, nil
}
