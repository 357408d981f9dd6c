package dto

import (
	"time"

	"github.com/google/uuid"
)

// RebuildIndexRequest triggers an embedding ingestion run. Force re-embeds
// wines that already carry a vector from the active model.
type RebuildIndexRequest struct {
	Force     bool `json:"force"`
	BatchSize int  `json:"batch_size" validate:"omitempty,min=1,max=5000"`
}

type RebuildIndexResponse struct {
	RunId  uuid.UUID `json:"run_id"`
	Status string    `json:"status"`
}

// RebuildIndexMessage is the queue payload that hands an accepted run to
// the consumer.
type RebuildIndexMessage struct {
	RunId     uuid.UUID `json:"run_id"`
	Force     bool      `json:"force"`
	BatchSize int       `json:"batch_size"`
}

type IngestRunResponse struct {
	RunId      uuid.UUID              `json:"run_id"`
	Corpus     string                 `json:"corpus"`
	Model      string                 `json:"model"`
	Status     string                 `json:"status"`
	Scanned    int64                  `json:"scanned"`
	Embedded   int64                  `json:"embedded"`
	Skipped    int64                  `json:"skipped"`
	Failed     int64                  `json:"failed"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt *time.Time             `json:"finished_at"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// IndexStatusResponse reports the latest run plus whether an ingestion is
// holding the lock right now.
type IndexStatusResponse struct {
	Running   bool               `json:"running"`
	LatestRun *IngestRunResponse `json:"latest_run"`
}
