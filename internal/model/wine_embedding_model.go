package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// WineEmbedding holds one vector per wine review. The unique index on WineId
// carries the idempotent upsert (ON CONFLICT wine_id DO UPDATE); Model records
// which embedding model produced the vector so a model switch is detectable.
//
// No soft delete here: index rows are derived data and get replaced wholesale
// by ingestion runs. A soft-deleted row would keep matching similarity queries
// and block the upsert's unique index.
type WineEmbedding struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WineId    int64           `gorm:"not null;uniqueIndex"`
	Document  string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(384)"` // all-MiniLM-L6-v2 uses 384 dimensions
	Model     string          `gorm:"type:varchar(128);not null"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (WineEmbedding) TableName() string {
	return "wine_embeddings"
}
