package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Set required env vars for all subtests
	cleanup := setEnvs(t, map[string]string{
		"WHISPER_URL": "http://localhost:9000",
	})
	defer cleanup()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":8080" {
			t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
		if cfg.WhisperModel != "base" {
			t.Errorf("WhisperModel = %q, want base", cfg.WhisperModel)
		}
		if cfg.SentimentModel != "SamLowe/roberta-base-go_emotions" {
			t.Errorf("SentimentModel = %q, want SamLowe/roberta-base-go_emotions", cfg.SentimentModel)
		}
		if cfg.SentimentTopK != 0 {
			t.Errorf("SentimentTopK = %d, want 0", cfg.SentimentTopK)
		}
		if cfg.DefaultMode != "Sentiment Only" {
			t.Errorf("DefaultMode = %q, want Sentiment Only", cfg.DefaultMode)
		}
		if !cfg.PreprocessSox {
			t.Error("PreprocessSox = false, want true")
		}
		if cfg.WhisperTimeout != 120*time.Second {
			t.Errorf("WhisperTimeout = %v, want 2m", cfg.WhisperTimeout)
		}
		if cfg.MaxUploadBytes != 32<<20 {
			t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 32<<20)
		}
	})

	t.Run("cli_overrides_take_priority", func(t *testing.T) {
		cfg, err := Load(Overrides{
			EnvFile:    "nonexistent.env",
			HTTPAddr:   ":9090",
			LogLevel:   "debug",
			WhisperURL: "http://override:9000",
			AudioDir:   "/tmp/audio",
			WatchDir:   "/tmp/inbox",
		})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":9090" {
			t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
		if cfg.WhisperURL != "http://override:9000" {
			t.Errorf("WhisperURL = %q, want override", cfg.WhisperURL)
		}
		if cfg.AudioDir != "/tmp/audio" {
			t.Errorf("AudioDir = %q, want /tmp/audio", cfg.AudioDir)
		}
		if cfg.WatchDir != "/tmp/inbox" {
			t.Errorf("WatchDir = %q, want /tmp/inbox", cfg.WatchDir)
		}
	})

	t.Run("env_vars_read", func(t *testing.T) {
		restore := setEnvs(t, map[string]string{
			"SENTIMENT_TOP_K": "5",
			"CORS_ORIGINS":    "http://a.example,http://b.example",
			"PREPROCESS_SOX":  "false",
		})
		defer restore()

		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.WhisperURL != "http://localhost:9000" {
			t.Errorf("WhisperURL = %q, want http://localhost:9000", cfg.WhisperURL)
		}
		if cfg.SentimentTopK != 5 {
			t.Errorf("SentimentTopK = %d, want 5", cfg.SentimentTopK)
		}
		if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
			t.Errorf("CORSOrigins = %v, want two origins", cfg.CORSOrigins)
		}
		if cfg.PreprocessSox {
			t.Error("PreprocessSox = true, want false")
		}
	})

	t.Run("env_file_read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		if err := os.WriteFile(path, []byte("WHISPER_MODEL=large-v3\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		defer os.Unsetenv("WHISPER_MODEL")

		cfg, err := Load(Overrides{EnvFile: path})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.WhisperModel != "large-v3" {
			t.Errorf("WhisperModel = %q, want large-v3", cfg.WhisperModel)
		}
	})

	t.Run("empty_overrides_use_env", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		// Empty override fields should not overwrite env values
		if cfg.WhisperURL != "http://localhost:9000" {
			t.Errorf("WhisperURL = %q, want env value", cfg.WhisperURL)
		}
	})
}

func TestLoadMissingRequired(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{"WHISPER_URL": ""})
	defer cleanup()
	os.Unsetenv("WHISPER_URL")

	_, err := Load(Overrides{EnvFile: "nonexistent.env"})
	if err == nil {
		t.Error("expected error when WHISPER_URL is missing")
	}
}

func TestLoadRequiredFromFlag(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{"WHISPER_URL": ""})
	defer cleanup()
	os.Unsetenv("WHISPER_URL")

	cfg, err := Load(Overrides{EnvFile: "nonexistent.env", WhisperURL: "http://flag:9000"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WhisperURL != "http://flag:9000" {
		t.Errorf("WhisperURL = %q, want http://flag:9000", cfg.WhisperURL)
	}
	if _, ok := os.LookupEnv("WHISPER_URL"); ok {
		t.Error("WHISPER_URL leaked into the environment")
	}
}

// setEnvs sets environment variables and returns a cleanup function.
func setEnvs(t *testing.T, envs map[string]string) func() {
	t.Helper()
	originals := make(map[string]string)
	unset := make([]string, 0)

	for k, v := range envs {
		if orig, ok := os.LookupEnv(k); ok {
			originals[k] = orig
		} else {
			unset = append(unset, k)
		}
		os.Setenv(k, v)
	}

	return func() {
		for k, v := range originals {
			os.Setenv(k, v)
		}
		for _, k := range unset {
			os.Unsetenv(k)
		}
	}
}
