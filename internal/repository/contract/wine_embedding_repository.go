package contract

import (
	"context"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"
)

// ScoredWineEmbedding wraps an embedding row with its cosine similarity
// (1.0 = identical) against the query vector.
type ScoredWineEmbedding struct {
	Embedding  *entity.WineEmbedding
	Similarity float64
}

type WineEmbeddingRepository interface {
	// Upsert inserts or replaces the embedding row keyed by wine_id, so
	// re-running ingestion converges on one row per wine.
	Upsert(ctx context.Context, embedding *entity.WineEmbedding) error
	UpsertBulk(ctx context.Context, embeddings []*entity.WineEmbedding) error

	DeleteByWineId(ctx context.Context, wineId int64) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WineEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WineEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// EmbeddedWineIds reports which of the given wines already carry an
	// embedding from the given model. Ingestion uses it to resume without
	// re-embedding.
	EmbeddedWineIds(ctx context.Context, model string, wineIds []int64) ([]int64, error)

	// SearchSimilarWithScore runs the cosine ANN query ordered by
	// similarity DESC, wine_id ASC. It does not join the corpus table:
	// callers reconcile liveness against the corpus afterwards.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredWineEmbedding, error)
}
