package embedding

import "context"

// Task types hint asymmetric models at which side of retrieval the text
// belongs to. Providers that don't distinguish ignore them.
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

type EmbeddingResponseEmbedding struct {
	Values []float32
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding
}

// EmbeddingProvider defines the interface for generating text embeddings.
// ModelName identifies the producing model; it is stored next to every
// vector so an index built by a different model is detectable.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
	ModelName() string
}
