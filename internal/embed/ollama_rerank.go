package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultOllamaRerankModel is the recommended cross-encoder model for
// scoring (query, chunk) pairs.
const DefaultOllamaRerankModel = "qwen3-reranker:0.6b"

// ollamaGenerateRequest is the Ollama /api/generate request used to obtain a
// relevance score from a non-chat completion model.
type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// OllamaReranker scores (query, document) pairs through Ollama's
// /api/generate endpoint, prompting the configured cross-encoder model for
// a single relevance score in [0, 1].
type OllamaReranker struct {
	client *http.Client
	host   string
	model  string
}

// NewOllamaReranker builds a reranker against host for model. An empty host
// or model falls back to DefaultOllamaHost / DefaultOllamaRerankModel.
func NewOllamaReranker(host, model string) *OllamaReranker {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaRerankModel
	}
	return &OllamaReranker{
		client: &http.Client{Timeout: 30 * time.Second},
		host:   host,
		model:  model,
	}
}

// Score implements search.ScoreFunc: it asks the model for a single
// relevance score between query and text.
func (r *OllamaReranker) Score(ctx context.Context, query, text string) (float64, error) {
	prompt := fmt.Sprintf(
		"Rate how relevant the passage is to the query on a scale from 0.0 to 1.0. Reply with only the number.\nQuery: %s\nPassage: %s\nScore:",
		query, text,
	)

	body, err := json.Marshal(ollamaGenerateRequest{Model: r.model, Prompt: prompt, Stream: false})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ollama rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ollama rerank returned status %d", resp.StatusCode)
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	return parseRerankScore(out.Response), nil
}

// Available reports whether the Ollama server answers a GET /api/tags with
// 200 OK. It does not check that the rerank model is installed.
func (r *OllamaReranker) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// parseRerankScore extracts the first floating point number from the
// model's reply, clamped to [0, 1]. A reply the model declined to score
// cleanly falls back to 0.5, the midpoint.
func parseRerankScore(reply string) float64 {
	reply = strings.TrimSpace(reply)
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.' && r != '-'
	})
	for _, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			if v < 0 {
				return 0
			}
			if v > 1 {
				return 1
			}
			return v
		}
	}
	return 0.5
}
