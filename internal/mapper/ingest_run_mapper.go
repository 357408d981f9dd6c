package mapper

import (
	"encoding/json"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/model"

	"gorm.io/datatypes"
)

type IngestRunMapper struct{}

func NewIngestRunMapper() *IngestRunMapper {
	return &IngestRunMapper{}
}

func (m *IngestRunMapper) ToEntity(r *model.IngestRun) *entity.IngestRun {
	if r == nil {
		return nil
	}

	var details map[string]interface{}
	if len(r.Details) > 0 {
		// Ignore malformed payloads; details are diagnostics, not state.
		_ = json.Unmarshal(r.Details, &details)
	}

	return &entity.IngestRun{
		Id:         r.Id,
		Corpus:     r.Corpus,
		Model:      r.Model,
		Status:     r.Status,
		Scanned:    r.Scanned,
		Embedded:   r.Embedded,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		Details:    details,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func (m *IngestRunMapper) ToModel(r *entity.IngestRun) *model.IngestRun {
	if r == nil {
		return nil
	}

	var details datatypes.JSON
	if r.Details != nil {
		if raw, err := json.Marshal(r.Details); err == nil {
			details = datatypes.JSON(raw)
		}
	}

	return &model.IngestRun{
		Id:         r.Id,
		Corpus:     r.Corpus,
		Model:      r.Model,
		Status:     r.Status,
		Scanned:    r.Scanned,
		Embedded:   r.Embedded,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		Details:    details,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func (m *IngestRunMapper) ToEntities(runs []*model.IngestRun) []*entity.IngestRun {
	entities := make([]*entity.IngestRun, len(runs))
	for i, r := range runs {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
