package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	IngestStatusRunning   = "running"
	IngestStatusCompleted = "completed"
	IngestStatusFailed    = "failed"
	IngestStatusCancelled = "cancelled"
)

type IngestRun struct {
	Id         uuid.UUID
	Corpus     string
	Model      string
	Status     string
	Scanned    int64
	Embedded   int64
	Skipped    int64
	Failed     int64
	Details    map[string]interface{}
	StartedAt  time.Time
	FinishedAt *time.Time
}
