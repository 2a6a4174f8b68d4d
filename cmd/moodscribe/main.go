package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/snarg/moodscribe/internal/api"
	"github.com/snarg/moodscribe/internal/apperr"
	"github.com/snarg/moodscribe/internal/audio"
	"github.com/snarg/moodscribe/internal/config"
	"github.com/snarg/moodscribe/internal/metrics"
	"github.com/snarg/moodscribe/internal/pipeline"
	"github.com/snarg/moodscribe/internal/render"
	"github.com/snarg/moodscribe/internal/sentiment"
	"github.com/snarg/moodscribe/internal/transcribe"
	"github.com/snarg/moodscribe/internal/watch"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var (
		overrides   config.Overrides
		audioPath   string
		mode        string
		backfill    bool
		showVersion bool
	)
	flag.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file (default .env)")
	flag.StringVar(&overrides.HTTPAddr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flag.StringVar(&overrides.WhisperURL, "whisper-url", "", "whisper inference server URL (overrides WHISPER_URL)")
	flag.StringVar(&overrides.AudioDir, "audio-dir", "", "directory relative audio paths resolve against (overrides AUDIO_DIR)")
	flag.StringVar(&overrides.WatchDir, "watch", "", "process audio files dropped into this directory (overrides WATCH_DIR)")
	flag.StringVar(&audioPath, "audio", "", "transcribe a single audio file and exit")
	flag.StringVar(&mode, "mode", "", `display mode: "Sentiment Only" or "Sentiment + Score" (default DEFAULT_SENTIMENT_OPTION)`)
	flag.BoolVar(&backfill, "backfill", false, "with -watch, also process files already in the directory")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	// Config
	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}
	if mode == "" {
		mode = cfg.DefaultMode
	}

	// Logger. One-shot runs keep stdout for the result.
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logOut io.Writer = os.Stdout
	if audioPath != "" {
		logOut = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	log := zerolog.New(logOut).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("moodscribe starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Models
	whisper := transcribe.NewWhisperClient(cfg.WhisperURL, cfg.WhisperModel, cfg.WhisperTimeout)
	classifier := sentiment.NewHuggingFaceClient(sentiment.HuggingFaceOptions{
		URL:     cfg.SentimentURL,
		APIKey:  cfg.SentimentAPIKey,
		Model:   cfg.SentimentModel,
		TopK:    cfg.SentimentTopK,
		Timeout: cfg.SentimentTimeout,
	})
	log.Info().
		Str("whisper_url", whisper.URL()).
		Str("whisper_model", whisper.Model()).
		Str("sentiment_url", classifier.URL()).
		Str("sentiment_model", classifier.Model()).
		Msg("model backends configured")

	// Pipeline
	orch := pipeline.New(pipeline.Options{
		Preprocessor: audio.NewPreprocessor(audio.PreprocessorOptions{
			UseSox: cfg.PreprocessSox,
			Log:    log.With().Str("component", "audio").Logger(),
		}),
		Transcriber: transcribe.NewEngine(whisper),
		Analyzer:    sentiment.NewAnalyzer(classifier),
		Log:         log.With().Str("component", "pipeline").Logger(),
	})

	backends := []metrics.Backend{
		{Stage: "transcription", Provider: whisper.Name(), Model: whisper.Model()},
		{Stage: "sentiment", Provider: classifier.Name(), Model: classifier.Model()},
	}
	prometheus.MustRegister(metrics.NewCollector(orch, backends...))

	switch {
	case audioPath != "":
		code := runOnce(ctx, orch, audio.ResolveFile(cfg.AudioDir, audioPath), render.Mode(mode), log)
		stop()
		os.Exit(code)
	case cfg.WatchDir != "":
		runWatch(ctx, orch, cfg.WatchDir, render.Mode(mode), backfill, log)
	default:
		serve(ctx, cfg, orch, whisper, backends, startTime, log)
	}

	log.Info().Msg("moodscribe stopped")
}

// runOnce transcribes one file and prints language, transcript and sentiment.
func runOnce(ctx context.Context, orch *pipeline.Orchestrator, path string, mode render.Mode, log zerolog.Logger) int {
	res, err := orch.Run(ctx, path, mode)
	if err != nil {
		log.Error().Err(err).Str("kind", string(apperr.KindOf(err))).Msg("transcription failed")
		return 1
	}
	fmt.Printf("Language: %s\n", res.Language)
	fmt.Printf("Transcript: %s\n", res.Transcript)
	fmt.Printf("Sentiment:\n%s", res.Sentiment)
	return 0
}

func runWatch(ctx context.Context, orch *pipeline.Orchestrator, dir string, mode render.Mode, backfill bool, log zerolog.Logger) {
	out := log.With().Str("component", "result").Logger()
	w := watch.New(orch, watch.Options{
		Dir:      dir,
		Mode:     mode,
		Backfill: backfill,
		Log:      log,
		OnResult: func(path string, res *pipeline.Result, err error) {
			if err != nil {
				return
			}
			out.Info().
				Str("path", path).
				Str("language", res.Language).
				Str("transcript", res.Transcript).
				Str("sentiment", res.Sentiment).
				Msg("transcribed")
		},
	})
	if err := w.Start(ctx); err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("failed to start file watcher")
	}

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	w.Stop()
}

func serve(ctx context.Context, cfg *config.Config, orch *pipeline.Orchestrator, whisper *transcribe.WhisperClient, backends []metrics.Backend, startTime time.Time, log zerolog.Logger) {
	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(api.ServerOptions{
		Config:    cfg,
		Runner:    orch,
		Stats:     orch,
		Checks:    map[string]api.Pinger{"whisper": whisper},
		Backends:  backends,
		Version:   version,
		StartTime: startTime,
		Log:       httpLog,
	})

	// Start HTTP server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	// Graceful shutdown with 10s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}
}
