package entity

import (
	"time"

	"github.com/google/uuid"
)

type WineEmbedding struct {
	Id        uuid.UUID
	WineId    int64
	Document  string
	Embedding []float32
	Model     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
