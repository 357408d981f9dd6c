package mapper

import (
	"time"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/model"

	"github.com/pgvector/pgvector-go"
)

type WineEmbeddingMapper struct{}

func NewWineEmbeddingMapper() *WineEmbeddingMapper {
	return &WineEmbeddingMapper{}
}

func (m *WineEmbeddingMapper) ToEntity(e *model.WineEmbedding) *entity.WineEmbedding {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.WineEmbedding{
		Id:        e.Id,
		WineId:    e.WineId,
		Document:  e.Document,
		Embedding: e.Embedding.Slice(),
		Model:     e.Model,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *WineEmbeddingMapper) ToModel(e *entity.WineEmbedding) *model.WineEmbedding {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.WineEmbedding{
		Id:        e.Id,
		WineId:    e.WineId,
		Document:  e.Document,
		Embedding: pgvector.NewVector(e.Embedding),
		Model:     e.Model,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *WineEmbeddingMapper) ToEntities(embeddings []*model.WineEmbedding) []*entity.WineEmbedding {
	entities := make([]*entity.WineEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *WineEmbeddingMapper) ToModels(embeddings []*entity.WineEmbedding) []*model.WineEmbedding {
	models := make([]*model.WineEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
