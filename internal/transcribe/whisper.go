package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/snarg/moodscribe/internal/audio"
)

// WhisperClient calls a Whisper inference server that accepts precomputed
// log-mel features:
//
//	POST {url}/v1/detect-language -> {"probabilities":[{"language":"en","probability":0.97}, ...]}
//	POST {url}/v1/decode          -> {"text":"..."}
//
// Implements the Model interface.
type WhisperClient struct {
	url     string
	model   string
	timeout time.Duration
	client  *http.Client
}

// featurePayload carries the spectrogram as base64 little-endian float32,
// row-major (n_mels rows of n_frames).
type featurePayload struct {
	Model   string `json:"model,omitempty"`
	NMels   int    `json:"n_mels"`
	NFrames int    `json:"n_frames"`
	Mel     string `json:"mel"`
}

type decodeRequest struct {
	featurePayload
	FP16        bool    `json:"fp16"`
	Temperature float64 `json:"temperature"`
	Language    string  `json:"language,omitempty"`
}

type detectResponse struct {
	Probabilities []LanguageProb `json:"probabilities"`
}

type decodeResponse struct {
	Text *string `json:"text"`
}

// NewWhisperClient creates a new Whisper HTTP client.
func NewWhisperClient(url, model string, timeout time.Duration) *WhisperClient {
	return &WhisperClient{
		url:     strings.TrimRight(url, "/"),
		model:   model,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (wc *WhisperClient) Name() string { return "whisper" }

// Model returns the configured model identifier.
func (wc *WhisperClient) Model() string { return wc.model }

// URL returns the server base URL.
func (wc *WhisperClient) URL() string { return wc.url }

// DetectLanguage asks the server for the language distribution of feats.
func (wc *WhisperClient) DetectLanguage(ctx context.Context, feats *audio.Features) ([]LanguageProb, error) {
	payload, err := wc.encodeFeatures(feats)
	if err != nil {
		return nil, err
	}

	var out detectResponse
	if err := wc.post(ctx, "/v1/detect-language", payload, &out); err != nil {
		return nil, err
	}
	return out.Probabilities, nil
}

// Decode asks the server for the transcript of feats.
func (wc *WhisperClient) Decode(ctx context.Context, feats *audio.Features, opts DecodeOptions) (string, error) {
	payload, err := wc.encodeFeatures(feats)
	if err != nil {
		return "", err
	}

	req := decodeRequest{
		featurePayload: payload,
		FP16:           opts.FP16,
		Temperature:    opts.Temperature,
		Language:       opts.Language,
	}
	var out decodeResponse
	if err := wc.post(ctx, "/v1/decode", req, &out); err != nil {
		return "", err
	}
	if out.Text == nil {
		return "", fmt.Errorf("decode response has no text field")
	}
	return *out.Text, nil
}

// Ping checks that the server answers on its health endpoint.
func (wc *WhisperClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wc.url+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := wc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func (wc *WhisperClient) encodeFeatures(feats *audio.Features) (featurePayload, error) {
	rows, cols := feats.Shape()
	if rows == 0 || cols == 0 {
		return featurePayload{}, fmt.Errorf("empty feature matrix")
	}
	for i, row := range feats.Mel {
		if len(row) != cols {
			return featurePayload{}, fmt.Errorf("ragged feature matrix: row %d has %d frames, want %d", i, len(row), cols)
		}
	}

	flat := feats.Flatten()
	buf := make([]byte, 4*len(flat))
	for i, v := range flat {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return featurePayload{
		Model:   wc.model,
		NMels:   rows,
		NFrames: cols,
		Mel:     base64.StdEncoding.EncodeToString(buf),
	}, nil
}

func (wc *WhisperClient) post(ctx context.Context, path string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.url+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := wc.client.Do(req)
	if err != nil {
		return fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whisper API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
