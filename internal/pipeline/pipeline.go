// Package pipeline runs one audio clip through preprocessing, transcription,
// sentiment analysis and rendering.
package pipeline

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/moodscribe/internal/apperr"
	"github.com/snarg/moodscribe/internal/audio"
	"github.com/snarg/moodscribe/internal/metrics"
	"github.com/snarg/moodscribe/internal/render"
	"github.com/snarg/moodscribe/internal/sentiment"
	"github.com/snarg/moodscribe/internal/transcribe"
)

// Stage names used in logs and metrics.
const (
	StagePreprocess = "preprocess"
	StageTranscribe = "transcribe"
	StageSentiment  = "sentiment"
	StageRender     = "render"
)

// Preprocessor turns an audio file into model features.
type Preprocessor interface {
	Features(ctx context.Context, path string) (*audio.Features, error)
}

// Transcriber produces the language guess and transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, feats *audio.Features) (*transcribe.Result, error)
}

// Analyzer produces the emotion profile of a transcript.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (sentiment.ScoreSet, error)
}

// Options wires the stages of an Orchestrator.
type Options struct {
	Preprocessor Preprocessor
	Transcriber  Transcriber
	Analyzer     Analyzer
	Log          zerolog.Logger
}

// Result holds the three outputs of a run plus the raw data behind them.
type Result struct {
	Language   string `json:"language"`   // upper-cased language code
	Transcript string `json:"transcript"` // possibly empty
	Sentiment  string `json:"sentiment"`  // rendered, "" for an unrecognized mode

	Mode      render.Mode               `json:"mode"`
	Scores    sentiment.ScoreSet        `json:"scores"`
	Languages []transcribe.LanguageProb `json:"languages"`
}

// Orchestrator sequences the pipeline stages. Runs share no mutable
// intermediate state, so concurrent calls are independent.
type Orchestrator struct {
	pre   Preprocessor
	asr   Transcriber
	senti Analyzer
	log   zerolog.Logger

	inFlight  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// New creates an orchestrator from its stages.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		pre:   opts.Preprocessor,
		asr:   opts.Transcriber,
		senti: opts.Analyzer,
		log:   opts.Log,
	}
}

// Stats reports run counters.
type Stats struct {
	InFlight  int64 `json:"in_flight"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// Stats returns current run counters.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		InFlight:  o.inFlight.Load(),
		Completed: o.completed.Load(),
		Failed:    o.failed.Load(),
	}
}

// InFlight returns the number of runs currently executing.
func (o *Orchestrator) InFlight() int64 { return o.inFlight.Load() }

// Run transcribes the clip at audioPath and renders its emotion profile
// under mode. Stages run strictly in order; the first failure is returned
// as is and no later stage runs.
func (o *Orchestrator) Run(ctx context.Context, audioPath string, mode render.Mode) (*Result, error) {
	o.inFlight.Add(1)
	defer o.inFlight.Add(-1)

	start := time.Now()
	log := o.log.With().Str("audio", audioPath).Logger()

	res, stage, err := o.run(ctx, audioPath, mode)
	if err != nil {
		o.failed.Add(1)
		kind := string(apperr.KindOf(err))
		if kind == "" {
			kind = "unknown"
		}
		metrics.PipelineRequestsTotal.WithLabelValues("error").Inc()
		metrics.PipelineFailuresTotal.WithLabelValues(stage, kind).Inc()
		log.Warn().Err(err).Str("stage", stage).Str("kind", kind).Msg("pipeline failed")
		return nil, err
	}

	o.completed.Add(1)
	metrics.PipelineRequestsTotal.WithLabelValues("ok").Inc()
	metrics.DetectedLanguagesTotal.WithLabelValues(res.Language).Inc()
	for _, s := range res.Scores {
		metrics.EmotionLabelsTotal.WithLabelValues(s.Label).Inc()
	}

	if !mode.Valid() {
		log.Debug().Str("mode", string(mode)).Msg("unrecognized display mode, sentiment left empty")
	}
	log.Info().
		Str("language", res.Language).
		Int("chars", len(res.Transcript)).
		Int("emotions", len(res.Scores)).
		Dur("duration", time.Since(start)).
		Msg("pipeline complete")

	return res, nil
}

// run executes the stages and reports which one failed.
func (o *Orchestrator) run(ctx context.Context, audioPath string, mode render.Mode) (*Result, string, error) {
	t := time.Now()
	feats, err := o.pre.Features(ctx, audioPath)
	if err != nil {
		return nil, StagePreprocess, err
	}
	metrics.ObserveStage(StagePreprocess, t)

	t = time.Now()
	tr, err := o.asr.Transcribe(ctx, feats)
	if err != nil {
		return nil, StageTranscribe, err
	}
	metrics.ObserveStage(StageTranscribe, t)

	t = time.Now()
	scores, err := o.senti.Analyze(ctx, tr.Transcript)
	if err != nil {
		return nil, StageSentiment, err
	}
	metrics.ObserveStage(StageSentiment, t)

	t = time.Now()
	rendered := render.Format(scores, mode)
	metrics.ObserveStage(StageRender, t)

	return &Result{
		Language:   strings.ToUpper(tr.Language.Code),
		Transcript: tr.Transcript,
		Sentiment:  rendered,
		Mode:       mode,
		Scores:     scores,
		Languages:  tr.Language.Probabilities,
	}, "", nil
}
