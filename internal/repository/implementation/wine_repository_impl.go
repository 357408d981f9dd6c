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

type WineRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WineMapper
}

func NewWineRepository(db *gorm.DB) contract.WineRepository {
	return &WineRepositoryImpl{
		db:     db,
		mapper: mapper.NewWineMapper(),
	}
}

func (r *WineRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WineRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Wine, error) {
	var m model.Wine
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WineRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Wine, error) {
	var models []*model.Wine
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *WineRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Wine{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FullTextSearch matches the corpus against the english-config tsquery and
// ranks with ts_rank over the generated search_vector column. Two statements
// share the same WHERE: an unpaginated count, then the ranked page. The id
// tie-break keeps pagination stable when many rows share a rank.
func (r *WineRepositoryImpl) FullTextSearch(ctx context.Context, query string, limit, offset int, specs ...specification.Specification) ([]*contract.ScoredWine, int64, error) {
	buildBase := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Table(model.Wine{}.TableName()).
			Where("search_vector @@ plainto_tsquery('english', ?)", query)
		return r.applySpecifications(q, specs...)
	}

	var total int64
	if err := buildBase().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*contract.ScoredWine{}, 0, nil
	}

	type result struct {
		model.Wine
		Rank float64
	}
	var results []result

	err := buildBase().
		Select("kaggle_wine_reviews.*, ts_rank(search_vector, plainto_tsquery('english', ?)) AS rank", query).
		Order("rank DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&results).Error
	if err != nil {
		return nil, 0, err
	}

	scored := make([]*contract.ScoredWine, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredWine{
			Wine: r.mapper.ToEntity(&res.Wine),
			Rank: res.Rank,
		}
	}
	return scored, total, nil
}

func (r *WineRepositoryImpl) AggregateCountryStats(ctx context.Context, minWines int) ([]*entity.CountryStats, error) {
	type row struct {
		Country   string
		WineCount int64
		AvgPoints float64
		MinPrice  *float64
		AvgPrice  *float64
		MaxPrice  *float64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Table(model.Wine{}.TableName()).
		Select("country, COUNT(id) AS wine_count, AVG(points) AS avg_points, MIN(price) AS min_price, AVG(price) AS avg_price, MAX(price) AS max_price").
		Where("country IS NOT NULL").
		Group("country").
		Having("COUNT(id) >= ?", minWines).
		Order("wine_count DESC, country ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]*entity.CountryStats, len(rows))
	for i, rw := range rows {
		stats[i] = &entity.CountryStats{
			Country:   rw.Country,
			WineCount: rw.WineCount,
			AvgPoints: rw.AvgPoints,
			MinPrice:  rw.MinPrice,
			AvgPrice:  rw.AvgPrice,
			MaxPrice:  rw.MaxPrice,
		}
	}
	return stats, nil
}

func (r *WineRepositoryImpl) TopVarietiesByCountry(ctx context.Context, country string, limit int) ([]*entity.VarietyShare, error) {
	type row struct {
		Variety string
		Count   int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Table(model.Wine{}.TableName()).
		Select("variety, COUNT(id) AS count").
		Where("country = ?", country).
		Where("variety IS NOT NULL").
		Group("variety").
		Order("count DESC, variety ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	shares := make([]*entity.VarietyShare, len(rows))
	for i, rw := range rows {
		shares[i] = &entity.VarietyShare{
			Variety: rw.Variety,
			Count:   rw.Count,
		}
	}
	return shares, nil
}
