package unitofwork

import (
	"context"

	"github.com/MarkerAnn/wine-backend/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	WineRepository() contract.WineRepository
	WineEmbeddingRepository() contract.WineEmbeddingRepository
	IngestRunRepository() contract.IngestRunRepository
}
