package implementation

import (
	"context"
	"errors"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/mapper"
	"github.com/MarkerAnn/wine-backend/internal/model"
	"github.com/MarkerAnn/wine-backend/internal/repository/contract"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WineEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WineEmbeddingMapper
}

func NewWineEmbeddingRepository(db *gorm.DB) contract.WineEmbeddingRepository {
	return &WineEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewWineEmbeddingMapper(),
	}
}

func (r *WineEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// upsertColumns are the columns replaced when a wine is re-embedded.
var upsertColumns = []string{"document", "embedding", "model", "updated_at"}

func (r *WineEmbeddingRepositoryImpl) Upsert(ctx context.Context, embedding *entity.WineEmbedding) error {
	m := r.mapper.ToModel(embedding)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wine_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *WineEmbeddingRepositoryImpl) UpsertBulk(ctx context.Context, embeddings []*entity.WineEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wine_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(models).Error
	if err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *WineEmbeddingRepositoryImpl) DeleteByWineId(ctx context.Context, wineId int64) error {
	return r.db.WithContext(ctx).Where("wine_id = ?", wineId).Delete(&model.WineEmbedding{}).Error
}

func (r *WineEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WineEmbedding, error) {
	var m model.WineEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WineEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WineEmbedding, error) {
	var models []*model.WineEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *WineEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.WineEmbedding{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *WineEmbeddingRepositoryImpl) EmbeddedWineIds(ctx context.Context, embeddingModel string, wineIds []int64) ([]int64, error) {
	if len(wineIds) == 0 {
		return nil, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.WineEmbedding{}).
		Where("model = ?", embeddingModel).
		Where("wine_id IN ?", wineIds).
		Pluck("wine_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SearchSimilarWithScore runs the pure ANN query. It deliberately does not
// join kaggle_wine_reviews: the index may briefly reference rows that no
// longer exist, and the orchestrator drops those during hydration.
func (r *WineEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredWineEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query_vector) recovers the similarity.
	type result struct {
		model.WineEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table(model.WineEmbedding{}.TableName()).
		Select("wine_embeddings.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC, wine_id ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredWineEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredWineEmbedding{
			Embedding:  r.mapper.ToEntity(&res.WineEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
