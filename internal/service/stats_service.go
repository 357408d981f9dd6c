package service

import (
	"context"
	"fmt"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/MarkerAnn/wine-backend/internal/constant"
	"github.com/MarkerAnn/wine-backend/internal/dto"
	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
	"github.com/MarkerAnn/wine-backend/internal/pkg/logger"
	"github.com/MarkerAnn/wine-backend/internal/repository/unitofwork"
)

type IStatsService interface {
	// CountryStats aggregates review statistics per country, skipping
	// countries with fewer than minWines reviews. minWines <= 0 takes the
	// default. Results are cached; the corpus is static so staleness is
	// bounded by the TTL and harmless.
	CountryStats(ctx context.Context, minWines int) (*dto.ListCountryStatsResponse, error)
}

type statsService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *gocache.Cache
	logger     logger.ILogger
}

func NewStatsService(uowFactory unitofwork.RepositoryFactory, cacheTTL time.Duration, logger logger.ILogger) IStatsService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &statsService{
		uowFactory: uowFactory,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		logger:     logger,
	}
}

func (c *statsService) CountryStats(ctx context.Context, minWines int) (*dto.ListCountryStatsResponse, error) {
	if minWines < 0 {
		return nil, apperror.Invalid("min_wines must be >= 0")
	}
	if minWines == 0 {
		minWines = constant.DefaultMinWinesPerCountry
	}

	cacheKey := fmt.Sprintf("%s:%d", constant.CountryStatsCacheKey, minWines)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*dto.ListCountryStatsResponse), nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	stats, err := uow.WineRepository().AggregateCountryStats(ctx, minWines)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CountryStatsResponse, 0, len(stats))
	for _, stat := range stats {
		varieties, err := uow.WineRepository().TopVarietiesByCountry(ctx, stat.Country, constant.DefaultTopVarieties)
		if err != nil {
			return nil, err
		}

		shares := make([]dto.VarietyShareResponse, 0, len(varieties))
		for _, variety := range varieties {
			shares = append(shares, dto.VarietyShareResponse{
				Variety:    variety.Variety,
				Count:      variety.Count,
				Percentage: percentage(variety.Count, stat.WineCount),
			})
		}

		items = append(items, dto.CountryStatsResponse{
			Country:      stat.Country,
			WineCount:    stat.WineCount,
			AvgPoints:    math.Round(stat.AvgPoints*100) / 100,
			MinPrice:     stat.MinPrice,
			AvgPrice:     roundPtr(stat.AvgPrice),
			MaxPrice:     stat.MaxPrice,
			TopVarieties: shares,
		})
	}

	res := &dto.ListCountryStatsResponse{
		Items: items,
		Count: len(items),
	}
	c.cache.SetDefault(cacheKey, res)

	c.logger.Info("stats_service", "country stats computed", map[string]interface{}{
		"countries": len(items),
		"min_wines": minWines,
	})

	return res, nil
}

// percentage is the variety's share of the country's reviews, rounded to
// two decimals.
func percentage(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*10000) / 100
}

func roundPtr(value *float64) *float64 {
	if value == nil {
		return nil
	}
	rounded := math.Round(*value*100) / 100
	return &rounded
}
