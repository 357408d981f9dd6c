package implementation

import (
	"context"
	"errors"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/mapper"
	"github.com/MarkerAnn/wine-backend/internal/model"
	"github.com/MarkerAnn/wine-backend/internal/repository/contract"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"

	"gorm.io/gorm"
)

type IngestRunRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IngestRunMapper
}

func NewIngestRunRepository(db *gorm.DB) contract.IngestRunRepository {
	return &IngestRunRepositoryImpl{
		db:     db,
		mapper: mapper.NewIngestRunMapper(),
	}
}

func (r *IngestRunRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *IngestRunRepositoryImpl) Create(ctx context.Context, run *entity.IngestRun) error {
	m := r.mapper.ToModel(run)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*run = *r.mapper.ToEntity(m)
	return nil
}

func (r *IngestRunRepositoryImpl) Update(ctx context.Context, run *entity.IngestRun) error {
	m := r.mapper.ToModel(run)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*run = *r.mapper.ToEntity(m)
	return nil
}

func (r *IngestRunRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IngestRun, error) {
	var m model.IngestRun
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *IngestRunRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IngestRun, error) {
	var models []*model.IngestRun
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *IngestRunRepositoryImpl) FindLatest(ctx context.Context, corpus string) (*entity.IngestRun, error) {
	return r.FindOne(ctx,
		specification.ByCorpus{Corpus: corpus},
		specification.OrderBy{Field: "started_at", Desc: true},
	)
}
