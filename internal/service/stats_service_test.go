package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
)

func newStatsFixture() (IStatsService, *memWineRepo) {
	avgPrice := 25.6789
	wines := &memWineRepo{
		countryStats: []*entity.CountryStats{
			{Country: "Italy", WineCount: 200, AvgPoints: 88.4567, AvgPrice: &avgPrice},
			{Country: "Moldova", WineCount: 60, AvgPoints: 86.1},
		},
		varieties: map[string][]*entity.VarietyShare{
			"Italy": {
				{Variety: "Red Blend", Count: 50},
				{Variety: "Sangiovese", Count: 30},
			},
		},
	}
	factory := &memFactory{uow: &memUnitOfWork{
		wines:      wines,
		embeddings: newMemEmbeddingRepo(),
		runs:       newMemIngestRunRepo(),
	}}
	return NewStatsService(factory, time.Minute, nopLogger{}), wines
}

func TestCountryStatsComputesVarietyShares(t *testing.T) {
	service, _ := newStatsFixture()

	res, err := service.CountryStats(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Count != 2 {
		t.Fatalf("got %d countries, want 2", res.Count)
	}
	italy := res.Items[0]
	if italy.Country != "Italy" {
		t.Fatalf("first country = %q", italy.Country)
	}
	if italy.AvgPoints != 88.46 {
		t.Errorf("avg points = %v, want rounded 88.46", italy.AvgPoints)
	}
	if italy.AvgPrice == nil || *italy.AvgPrice != 25.68 {
		t.Errorf("avg price = %v, want rounded 25.68", italy.AvgPrice)
	}
	if len(italy.TopVarieties) != 2 {
		t.Fatalf("got %d varieties, want 2", len(italy.TopVarieties))
	}
	if italy.TopVarieties[0].Percentage != 25.0 {
		t.Errorf("share = %v, want 50/200 = 25%%", italy.TopVarieties[0].Percentage)
	}
	if italy.TopVarieties[1].Percentage != 15.0 {
		t.Errorf("share = %v, want 30/200 = 15%%", italy.TopVarieties[1].Percentage)
	}
}

func TestCountryStatsServedFromCache(t *testing.T) {
	service, wines := newStatsFixture()

	if _, err := service.CountryStats(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.CountryStats(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wines.aggCalls != 1 {
		t.Errorf("aggregate ran %d times, want 1 (second call cached)", wines.aggCalls)
	}
}

func TestCountryStatsCacheKeyedByThreshold(t *testing.T) {
	service, wines := newStatsFixture()

	res, err := service.CountryStats(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	strict, err := service.CountryStats(context.Background(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wines.aggCalls != 2 {
		t.Errorf("aggregate ran %d times, want 2 (different thresholds)", wines.aggCalls)
	}
	if res.Count != 2 || strict.Count != 1 {
		t.Errorf("counts = %d/%d, want 2 at default and 1 at 100", res.Count, strict.Count)
	}
}

func TestCountryStatsNegativeThresholdRejected(t *testing.T) {
	service, _ := newStatsFixture()

	_, err := service.CountryStats(context.Background(), -1)
	if !errors.Is(err, apperror.ErrInvalidQuery) {
		t.Fatalf("error = %v, want ErrInvalidQuery", err)
	}
}
