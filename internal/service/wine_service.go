package service

import (
	"context"
	"fmt"

	"github.com/MarkerAnn/wine-backend/internal/dto"
	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"
	"github.com/MarkerAnn/wine-backend/internal/repository/unitofwork"
	"github.com/MarkerAnn/wine-backend/pkg/query"
	"github.com/MarkerAnn/wine-backend/pkg/rag/search"
)

type IWineService interface {
	List(ctx context.Context, req *dto.ListWinesRequest) (*dto.ListWinesResponse, error)
	Show(ctx context.Context, id int64) (*dto.WineResponse, error)
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
	SemanticSearch(ctx context.Context, req *dto.SemanticSearchRequest) (*dto.SearchResponse, error)
}

type wineService struct {
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *search.Orchestrator
	searchConfig search.Config
}

func NewWineService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *search.Orchestrator,
	searchConfig search.Config,
) IWineService {
	return &wineService{
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		searchConfig: searchConfig,
	}
}

func (c *wineService) List(ctx context.Context, req *dto.ListWinesRequest) (*dto.ListWinesResponse, error) {
	page, size, err := query.NormalizePagination(req.Page, req.Size)
	if err != nil {
		return nil, err
	}
	filters, err := query.NormalizeFilters(facetMap(
		req.Country, req.Variety, req.MinPrice, req.MaxPrice, req.MinPoints, req.MaxPoints))
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	filterSpecs := search.FilterSpecs(filters)

	total, err := uow.WineRepository().Count(ctx, filterSpecs...)
	if err != nil {
		return nil, err
	}

	specs := append(filterSpecs,
		specification.OrderBy{Field: "id"},
		specification.Pagination{Limit: size, Offset: (page - 1) * size},
	)
	wines, err := uow.WineRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.WineResponse, 0, len(wines))
	for _, wine := range wines {
		items = append(items, toWineResponse(wine))
	}

	return &dto.ListWinesResponse{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func (c *wineService) Show(ctx context.Context, id int64) (*dto.WineResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	wine, err := uow.WineRepository().FindOne(ctx, specification.ByWineID{ID: id})
	if err != nil {
		return nil, err
	}
	if wine == nil {
		return nil, apperror.Wrap(apperror.ErrNotFound, fmt.Errorf("wine %d", id))
	}

	res := toWineResponse(wine)
	return &res, nil
}

func (c *wineService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	normalized, err := query.Normalize(query.RawQuery{
		Text: req.Query,
		Type: query.TypeLexical,
		Filters: facetMap(
			req.Country, req.Variety, req.MinPrice, req.MaxPrice, req.MinPoints, req.MaxPoints),
		Page: req.Page,
		Size: req.Size,
	})
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	result, err := c.orchestrator.Lexical(ctx, uow, normalized)
	if err != nil {
		return nil, err
	}

	return toSearchResponse(result), nil
}

func (c *wineService) SemanticSearch(ctx context.Context, req *dto.SemanticSearchRequest) (*dto.SearchResponse, error) {
	normalized, err := query.Normalize(query.RawQuery{
		Text: req.Query,
		Type: query.TypeSemantic,
		Page: req.Page,
		Size: req.Size,
	})
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	result, err := c.orchestrator.Semantic(ctx, uow, normalized, c.searchConfig)
	if err != nil {
		return nil, err
	}

	return toSearchResponse(result), nil
}

func facetMap(country, variety, minPrice, maxPrice, minPoints, maxPoints string) map[string]string {
	filters := make(map[string]string)
	if country != "" {
		filters[query.FacetCountry] = country
	}
	if variety != "" {
		filters[query.FacetVariety] = variety
	}
	if minPrice != "" {
		filters[query.FacetMinPrice] = minPrice
	}
	if maxPrice != "" {
		filters[query.FacetMaxPrice] = maxPrice
	}
	if minPoints != "" {
		filters[query.FacetMinPoints] = minPoints
	}
	if maxPoints != "" {
		filters[query.FacetMaxPoints] = maxPoints
	}
	return filters
}

func toWineResponse(wine *entity.Wine) dto.WineResponse {
	return dto.WineResponse{
		Id:          wine.Id,
		Title:       wine.Title,
		Description: wine.Description,
		Country:     wine.Country,
		Province:    wine.Province,
		Region1:     wine.Region1,
		Region2:     wine.Region2,
		Designation: wine.Designation,
		Variety:     wine.Variety,
		Winery:      wine.Winery,
		Points:      wine.Points,
		Price:       wine.Price,
		TasterName:  wine.TasterName,
	}
}

func toSearchResponse(result *entity.SearchResult) *dto.SearchResponse {
	items := make([]dto.SearchResultItem, 0, len(result.Items))
	for _, candidate := range result.Items {
		items = append(items, dto.SearchResultItem{
			WineId:  candidate.WineId,
			Title:   candidate.Title,
			Snippet: candidate.Snippet,
			Score:   candidate.Score,
			Source:  candidate.Source,
		})
	}

	return &dto.SearchResponse{
		Items:    items,
		Total:    result.Total,
		Page:     result.Page,
		Size:     result.Size,
		Pages:    result.Pages,
		Degraded: result.Degraded,
	}
}
