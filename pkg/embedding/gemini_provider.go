package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
)

const geminiEmbeddingModel = "text-embedding-004"

// GeminiProvider calls the Google Generative Language embedding endpoint.
// text-embedding-004 emits 768 dimensions; pair it with a matching index
// column, not the default 384.
type GeminiProvider struct {
	ApiKey string
	client *http.Client
}

func NewGeminiProvider(apiKey string) EmbeddingProvider {
	return &GeminiProvider{
		ApiKey: apiKey,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *GeminiProvider) ModelName() string {
	return geminiEmbeddingModel
}

type geminiRequestPart struct {
	Text string `json:"text"`
}

type geminiRequestContent struct {
	Parts []geminiRequestPart `json:"parts"`
}

type geminiEmbeddingRequest struct {
	Model    string               `json:"model"`
	Content  geminiRequestContent `json:"content"`
	TaskType string               `json:"task_type,omitempty"`
}

type geminiEmbeddingResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	geminiReq := geminiEmbeddingRequest{
		Model: geminiEmbeddingModel,
		Content: geminiRequestContent{
			Parts: []geminiRequestPart{
				{Text: text},
			},
		},
		TaskType: taskType,
	}
	geminiReqJson, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:embedContent",
		geminiEmbeddingModel,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(geminiReqJson))
	if err != nil {
		return nil, err
	}

	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrEmbeddingUnavailable, err)
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrEmbeddingUnavailable, err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, apperror.Wrap(apperror.ErrEmbeddingUnavailable,
			fmt.Errorf("gemini response code %d, body %s", res.StatusCode, string(resByte)))
	}

	var geminiResp geminiEmbeddingResponse
	if err := json.Unmarshal(resByte, &geminiResp); err != nil {
		return nil, apperror.Wrap(apperror.ErrEmbeddingUnavailable, err)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: geminiResp.Embedding.Values,
		},
	}, nil
}
