package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuggingFaceClient_Classify(t *testing.T) {
	var got hfRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`[[{"label":"joy","score":0.8712345461845398},{"label":"neutral","score":0.1}]]`))
	}))
	defer srv.Close()

	hf := NewHuggingFaceClient(HuggingFaceOptions{
		URL:     srv.URL,
		APIKey:  "hf_secret",
		TopK:    3,
		Timeout: 5 * time.Second,
	})
	scores, err := hf.Classify(context.Background(), "I love this")
	require.NoError(t, err)

	assert.Equal(t, "Bearer hf_secret", auth)
	assert.Equal(t, "I love this", got.Inputs)
	require.NotNil(t, got.Parameters)
	assert.Equal(t, 3, got.Parameters.TopK)
	assert.Equal(t, []Score{{Label: "joy", Score: 0.8712345461845398}, {Label: "neutral", Score: 0.1}}, scores)
}

func TestHuggingFaceClient_OmitsOptionalFields(t *testing.T) {
	var raw map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`[{"label":"neutral","score":0.9}]`))
	}))
	defer srv.Close()

	scores, err := NewHuggingFaceClient(HuggingFaceOptions{URL: srv.URL}).Classify(context.Background(), "")
	require.NoError(t, err)

	assert.Empty(t, auth)
	assert.NotContains(t, raw, "parameters")
	assert.Equal(t, "", raw["inputs"])
	assert.Equal(t, []Score{{Label: "neutral", Score: 0.9}}, scores)
}

func TestHuggingFaceClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	_, err := NewHuggingFaceClient(HuggingFaceOptions{URL: srv.URL}).Classify(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "Model is currently loading")
}

func TestHuggingFaceClient_Defaults(t *testing.T) {
	hf := NewHuggingFaceClient(HuggingFaceOptions{})
	assert.Equal(t, "huggingface", hf.Name())
	assert.Equal(t, DefaultModel, hf.Model())
	assert.Equal(t, "https://api-inference.huggingface.co/models/SamLowe/roberta-base-go_emotions", hf.URL())
}

func TestDecodeScores(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []Score
		wantErr bool
	}{
		{"nested", `[[{"label":"fear","score":0.2}]]`, []Score{{Label: "fear", Score: 0.2}}, false},
		{"flat", `[{"label":"fear","score":0.2}]`, []Score{{Label: "fear", Score: 0.2}}, false},
		{"empty", `[]`, []Score{}, false},
		{"object", `{"error":"x"}`, nil, true},
		{"garbage", `not json`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeScores([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
