package contract

import (
	"context"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"
)

type IngestRunRepository interface {
	Create(ctx context.Context, run *entity.IngestRun) error
	Update(ctx context.Context, run *entity.IngestRun) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IngestRun, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IngestRun, error)

	// FindLatest returns the most recently started run for a corpus, or nil
	// when the corpus has never been ingested.
	FindLatest(ctx context.Context, corpus string) (*entity.IngestRun, error)
}
