package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible embeddings endpoint
// (api.openai.com, TEI, Nebius, LM Studio). BaseURL left empty means the
// official API.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

func NewOpenAIProvider(apiKey, baseURL, model string, dimensions int) EmbeddingProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		dimensions: dimensions,
	}
}

func (p *OpenAIProvider) ModelName() string {
	return p.model
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(p.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	// Dimension pinning only works on models that support shortening
	// (matryoshka); servers that don't simply reject it, so it stays opt-in.
	if p.dimensions > 0 {
		req.Dimensions = p.dimensions
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, parseAPIError(err)
	}
	if len(resp.Data) == 0 {
		return nil, apperror.Wrap(apperror.ErrEmbeddingUnavailable, fmt.Errorf("empty embedding response"))
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: resp.Data[0].Embedding,
		},
	}, nil
}

// parseAPIError extracts a readable message from the API response. All
// errors wrap the embedding sentinel so they surface as 502.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apperror.Wrap(apperror.ErrEmbeddingUnavailable,
			fmt.Errorf("embedding API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body)))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apperror.Wrap(apperror.ErrEmbeddingUnavailable,
			fmt.Errorf("embedding API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
	}

	return apperror.Wrap(apperror.ErrEmbeddingUnavailable, err)
}
