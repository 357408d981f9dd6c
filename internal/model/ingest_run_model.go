package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IngestRun is the bookkeeping row for one ingestion pass over the corpus.
// Details carries free-form diagnostics (last error, batch sizes) as JSON.
type IngestRun struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Corpus     string         `gorm:"type:varchar(100);not null;index"`
	Model      string         `gorm:"type:varchar(128);not null"`
	Status     string         `gorm:"type:varchar(20);not null"`
	Scanned    int64          `gorm:"default:0"`
	Embedded   int64          `gorm:"default:0"`
	Skipped    int64          `gorm:"default:0"`
	Failed     int64          `gorm:"default:0"`
	Details    datatypes.JSON `gorm:"type:jsonb"`
	StartedAt  time.Time      `gorm:"not null"`
	FinishedAt *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (IngestRun) TableName() string {
	return "ingest_runs"
}
