package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	huggingFaceBaseURL = "https://api-inference.huggingface.co/models/"
	DefaultModel       = "SamLowe/roberta-base-go_emotions"
)

// HuggingFaceClient calls a Hugging Face text-classification endpoint.
// Implements the Classifier interface.
type HuggingFaceClient struct {
	url     string
	apiKey  string
	model   string
	topK    int
	timeout time.Duration
	client  *http.Client
}

// HuggingFaceOptions configures a HuggingFaceClient.
type HuggingFaceOptions struct {
	// URL overrides the endpoint. Empty means the hosted inference API
	// for Model.
	URL     string
	APIKey  string
	Model   string
	TopK    int // 0 = omit (server returns its default label count)
	Timeout time.Duration
}

type hfRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters *hfParameters `json:"parameters,omitempty"`
}

type hfParameters struct {
	TopK int `json:"top_k,omitempty"`
}

// NewHuggingFaceClient creates a new Hugging Face classification client.
func NewHuggingFaceClient(opts HuggingFaceOptions) *HuggingFaceClient {
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	url := opts.URL
	if url == "" {
		url = huggingFaceBaseURL + model
	}
	return &HuggingFaceClient{
		url:     url,
		apiKey:  opts.APIKey,
		model:   model,
		topK:    opts.TopK,
		timeout: opts.Timeout,
		client:  &http.Client{Timeout: opts.Timeout},
	}
}

// Name returns the provider name.
func (hf *HuggingFaceClient) Name() string { return "huggingface" }

// Model returns the configured model identifier.
func (hf *HuggingFaceClient) Model() string { return hf.model }

// URL returns the classification endpoint.
func (hf *HuggingFaceClient) URL() string { return hf.url }

// Classify posts text to the endpoint and returns the labels in response order.
func (hf *HuggingFaceClient) Classify(ctx context.Context, text string) ([]Score, error) {
	payload := hfRequest{Inputs: text}
	if hf.topK > 0 {
		payload.Parameters = &hfParameters{TopK: hf.topK}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hf.url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if hf.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+hf.apiKey)
	}

	resp, err := hf.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return decodeScores(body)
}

// decodeScores accepts both the nested [[{label,score}]] shape returned for a
// single input and the flat [{label,score}] shape some servers return.
func decodeScores(body []byte) ([]Score, error) {
	var nested [][]Score
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return []Score{}, nil
		}
		return nested[0], nil
	}

	var flat []Score
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return flat, nil
}
