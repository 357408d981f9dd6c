package contract

import (
	"context"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"
)

// ScoredWine wraps a corpus row with its full-text rank for the query that
// produced it. Rank values are only comparable within one result set.
type ScoredWine struct {
	Wine *entity.Wine
	Rank float64
}

type WineRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Wine, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Wine, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FullTextSearch ranks the corpus against plainto_tsquery terms with
	// ts_rank over the generated search_vector column. Specs carry facet and
	// range filters only; ordering is fixed to rank DESC, id ASC so equal
	// ranks page deterministically. The second return is the unpaginated
	// match count.
	FullTextSearch(ctx context.Context, query string, limit, offset int, specs ...specification.Specification) ([]*ScoredWine, int64, error)

	// AggregateCountryStats groups the corpus by country, dropping countries
	// with fewer than minWines reviews. Price aggregates ignore NULL prices.
	AggregateCountryStats(ctx context.Context, minWines int) ([]*entity.CountryStats, error)

	// TopVarietiesByCountry returns the most common varieties for one
	// country with raw review counts; the caller derives percentages.
	TopVarietiesByCountry(ctx context.Context, country string, limit int) ([]*entity.VarietyShare, error)
}
