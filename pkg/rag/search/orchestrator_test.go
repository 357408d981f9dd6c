package search

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
	"github.com/MarkerAnn/wine-backend/internal/repository/contract"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"
	"github.com/MarkerAnn/wine-backend/pkg/embedding"
	"github.com/MarkerAnn/wine-backend/pkg/query"
)

type fakeWineRepo struct {
	wines       map[int64]*entity.Wine
	scored      []*contract.ScoredWine
	total       int64
	ftsFailures int
	ftsCalls    int
	lastLimit   int
	lastOffset  int
	lastSpecs   []specification.Specification
}

func (f *fakeWineRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Wine, error) {
	return nil, nil
}

func (f *fakeWineRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Wine, error) {
	var result []*entity.Wine
	for _, spec := range specs {
		byIds, ok := spec.(specification.ByWineIDs)
		if !ok {
			continue
		}
		for _, id := range byIds.IDs {
			if wine, ok := f.wines[id]; ok {
				result = append(result, wine)
			}
		}
	}
	return result, nil
}

func (f *fakeWineRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.wines)), nil
}

func (f *fakeWineRepo) FullTextSearch(ctx context.Context, queryText string, limit, offset int, specs ...specification.Specification) ([]*contract.ScoredWine, int64, error) {
	f.ftsCalls++
	f.lastLimit = limit
	f.lastOffset = offset
	f.lastSpecs = specs
	if f.ftsCalls <= f.ftsFailures {
		return nil, 0, errors.New("connection reset")
	}
	return f.scored, f.total, nil
}

func (f *fakeWineRepo) AggregateCountryStats(ctx context.Context, minWines int) ([]*entity.CountryStats, error) {
	return nil, nil
}

func (f *fakeWineRepo) TopVarietiesByCountry(ctx context.Context, country string, limit int) ([]*entity.VarietyShare, error) {
	return nil, nil
}

type fakeEmbeddingRepo struct {
	scored         []*contract.ScoredWineEmbedding
	searchFailures int
	searchCalls    int
	lastK          int
	lastFloor      float64
}

func (f *fakeEmbeddingRepo) Upsert(ctx context.Context, e *entity.WineEmbedding) error { return nil }
func (f *fakeEmbeddingRepo) UpsertBulk(ctx context.Context, e []*entity.WineEmbedding) error {
	return nil
}
func (f *fakeEmbeddingRepo) DeleteByWineId(ctx context.Context, wineId int64) error { return nil }
func (f *fakeEmbeddingRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WineEmbedding, error) {
	return nil, nil
}
func (f *fakeEmbeddingRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WineEmbedding, error) {
	return nil, nil
}
func (f *fakeEmbeddingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.scored)), nil
}
func (f *fakeEmbeddingRepo) EmbeddedWineIds(ctx context.Context, model string, wineIds []int64) ([]int64, error) {
	return nil, nil
}

func (f *fakeEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, vec []float32, limit int, threshold float64) ([]*contract.ScoredWineEmbedding, error) {
	f.searchCalls++
	f.lastK = limit
	f.lastFloor = threshold
	if f.searchCalls <= f.searchFailures {
		return nil, errors.New("index scan aborted")
	}
	if limit > len(f.scored) {
		limit = len(f.scored)
	}
	return f.scored[:limit], nil
}

type fakeIngestRunRepo struct{}

func (f *fakeIngestRunRepo) Create(ctx context.Context, run *entity.IngestRun) error { return nil }
func (f *fakeIngestRunRepo) Update(ctx context.Context, run *entity.IngestRun) error { return nil }
func (f *fakeIngestRunRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IngestRun, error) {
	return nil, nil
}
func (f *fakeIngestRunRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IngestRun, error) {
	return nil, nil
}
func (f *fakeIngestRunRepo) FindLatest(ctx context.Context, corpus string) (*entity.IngestRun, error) {
	return nil, nil
}

type fakeUnitOfWork struct {
	wines      *fakeWineRepo
	embeddings *fakeEmbeddingRepo
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (f *fakeUnitOfWork) Commit() error                   { return nil }
func (f *fakeUnitOfWork) Rollback() error                 { return nil }
func (f *fakeUnitOfWork) WineRepository() contract.WineRepository {
	return f.wines
}
func (f *fakeUnitOfWork) WineEmbeddingRepository() contract.WineEmbeddingRepository {
	return f.embeddings
}
func (f *fakeUnitOfWork) IngestRunRepository() contract.IngestRunRepository {
	return &fakeIngestRunRepo{}
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Generate(ctx context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-model" }

func wine(id int64, title, description string) *entity.Wine {
	return &entity.Wine{Id: id, Title: title, Description: description}
}

func embeddingHit(wineId int64, similarity float64) *contract.ScoredWineEmbedding {
	return &contract.ScoredWineEmbedding{
		Embedding:  &entity.WineEmbedding{WineId: wineId},
		Similarity: similarity,
	}
}

func newTestOrchestrator(provider embedding.EmbeddingProvider) *Orchestrator {
	return NewOrchestrator(provider, log.New(io.Discard, "", 0))
}

func mustNormalize(t *testing.T, raw query.RawQuery) *query.NormalizedQuery {
	t.Helper()
	q, err := query.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return q
}

func TestLexicalMapsHitsToCandidates(t *testing.T) {
	wines := &fakeWineRepo{
		scored: []*contract.ScoredWine{
			{Wine: wine(12, "Quinta Red", "Dark plum and cedar flavors dominate."), Rank: 0.8},
			{Wine: wine(7, "Valley White", "Crisp citrus with a mineral finish."), Rank: 0.5},
		},
		total: 41,
	}
	uow := &fakeUnitOfWork{wines: wines, embeddings: &fakeEmbeddingRepo{}}
	orchestrator := newTestOrchestrator(&fakeEmbedder{})

	q := mustNormalize(t, query.RawQuery{Text: "plum", Page: 2, Size: 20})
	got, err := orchestrator.Lexical(context.Background(), uow, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wines.lastLimit != 20 || wines.lastOffset != 20 {
		t.Errorf("limit/offset = %d/%d, want 20/20", wines.lastLimit, wines.lastOffset)
	}
	if got.Total != 41 || got.Pages != 3 {
		t.Errorf("Total/Pages = %d/%d, want 41/3", got.Total, got.Pages)
	}
	if len(got.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(got.Items))
	}
	first := got.Items[0]
	if first.WineId != 12 || first.Score != 0.8 || first.Source != entity.CandidateSourceLexical {
		t.Errorf("first item = %+v", first)
	}
	if first.Snippet == "" {
		t.Error("snippet should not be empty")
	}
}

func TestLexicalPassesFiltersAsSpecs(t *testing.T) {
	wines := &fakeWineRepo{}
	uow := &fakeUnitOfWork{wines: wines, embeddings: &fakeEmbeddingRepo{}}
	orchestrator := newTestOrchestrator(&fakeEmbedder{})

	minPrice := "10"
	q := mustNormalize(t, query.RawQuery{
		Text:    "cherry",
		Filters: map[string]string{"country": "Italy", "min_price": minPrice},
	})
	if _, err := orchestrator.Lexical(context.Background(), uow, q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(wines.lastSpecs) != 2 {
		t.Fatalf("got %d specs, want 2", len(wines.lastSpecs))
	}
	if _, ok := wines.lastSpecs[0].(specification.ByCountry); !ok {
		t.Errorf("first spec = %T, want ByCountry", wines.lastSpecs[0])
	}
	if _, ok := wines.lastSpecs[1].(specification.MinPrice); !ok {
		t.Errorf("second spec = %T, want MinPrice", wines.lastSpecs[1])
	}
}

func TestLexicalRetriesOnceThenSucceeds(t *testing.T) {
	wines := &fakeWineRepo{ftsFailures: 1, total: 1,
		scored: []*contract.ScoredWine{{Wine: wine(1, "A", "desc"), Rank: 0.3}}}
	uow := &fakeUnitOfWork{wines: wines, embeddings: &fakeEmbeddingRepo{}}
	orchestrator := newTestOrchestrator(&fakeEmbedder{})

	q := mustNormalize(t, query.RawQuery{Text: "oak"})
	got, err := orchestrator.Lexical(context.Background(), uow, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wines.ftsCalls != 2 {
		t.Errorf("store called %d times, want 2", wines.ftsCalls)
	}
	if len(got.Items) != 1 {
		t.Errorf("got %d items, want 1", len(got.Items))
	}
}

func TestLexicalRetryExhaustedWrapsSentinel(t *testing.T) {
	wines := &fakeWineRepo{ftsFailures: 2}
	uow := &fakeUnitOfWork{wines: wines, embeddings: &fakeEmbeddingRepo{}}
	orchestrator := newTestOrchestrator(&fakeEmbedder{})

	q := mustNormalize(t, query.RawQuery{Text: "oak"})
	_, err := orchestrator.Lexical(context.Background(), uow, q)
	if !errors.Is(err, apperror.ErrRetrievalUnavailable) {
		t.Fatalf("error = %v, want ErrRetrievalUnavailable", err)
	}
	if wines.ftsCalls != 2 {
		t.Errorf("store called %d times, want 2", wines.ftsCalls)
	}
}

func TestSemanticDropsDeadIdsAndKeepsOrder(t *testing.T) {
	wines := &fakeWineRepo{wines: map[int64]*entity.Wine{
		10: wine(10, "Alive Ten", "Blackberry and violet."),
		12: wine(12, "Alive Twelve", "Lean and saline."),
	}}
	embeddings := &fakeEmbeddingRepo{scored: []*contract.ScoredWineEmbedding{
		embeddingHit(10, 0.91),
		embeddingHit(11, 0.88), // no corpus row: must disappear
		embeddingHit(12, 0.80),
	}}
	uow := &fakeUnitOfWork{wines: wines, embeddings: embeddings}
	orchestrator := newTestOrchestrator(&fakeEmbedder{})

	q := mustNormalize(t, query.RawQuery{Text: "dark fruit", Type: query.TypeSemantic})
	got, err := orchestrator.Semantic(context.Background(), uow, q, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Total != 2 {
		t.Errorf("Total = %d, want 2 live hits", got.Total)
	}
	if len(got.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(got.Items))
	}
	if got.Items[0].WineId != 10 || got.Items[1].WineId != 12 {
		t.Errorf("items = [%d %d], want [10 12]", got.Items[0].WineId, got.Items[1].WineId)
	}
	if got.Items[0].Score != 0.91 {
		t.Errorf("Score = %v, want 0.91", got.Items[0].Score)
	}
	if got.Items[0].Source != entity.CandidateSourceSemantic {
		t.Errorf("Source = %q, want semantic", got.Items[0].Source)
	}
}

func TestSemanticFetchesThroughRequestedPage(t *testing.T) {
	corpus := map[int64]*entity.Wine{}
	var scored []*contract.ScoredWineEmbedding
	for i := int64(1); i <= 10; i++ {
		corpus[i] = wine(i, "Wine", "Steady description text.")
		scored = append(scored, embeddingHit(i, 1.0-float64(i)*0.01))
	}
	wines := &fakeWineRepo{wines: corpus}
	embeddings := &fakeEmbeddingRepo{scored: scored}
	uow := &fakeUnitOfWork{wines: wines, embeddings: embeddings}
	orchestrator := newTestOrchestrator(&fakeEmbedder{})

	q := mustNormalize(t, query.RawQuery{Text: "steady", Type: query.TypeSemantic, Page: 2, Size: 3})
	got, err := orchestrator.Semantic(context.Background(), uow, q, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if embeddings.lastK != 6 {
		t.Errorf("vector fetch k = %d, want page*size = 6", embeddings.lastK)
	}
	if len(got.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(got.Items))
	}
	if got.Items[0].WineId != 4 {
		t.Errorf("page 2 starts at wine %d, want 4", got.Items[0].WineId)
	}
}

func TestSemanticPropagatesEmbeddingFailure(t *testing.T) {
	uow := &fakeUnitOfWork{wines: &fakeWineRepo{}, embeddings: &fakeEmbeddingRepo{}}
	provider := &fakeEmbedder{err: apperror.Wrap(apperror.ErrEmbeddingUnavailable, errors.New("quota"))}
	orchestrator := newTestOrchestrator(provider)

	q := mustNormalize(t, query.RawQuery{Text: "oak", Type: query.TypeSemantic})
	_, err := orchestrator.Semantic(context.Background(), uow, q, DefaultConfig())
	if !errors.Is(err, apperror.ErrEmbeddingUnavailable) {
		t.Fatalf("error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestCollectContextSemanticPath(t *testing.T) {
	wines := &fakeWineRepo{wines: map[int64]*entity.Wine{
		3: wine(3, "Spicy Zin", "Pepper, bramble and a long finish."),
	}}
	embeddings := &fakeEmbeddingRepo{scored: []*contract.ScoredWineEmbedding{embeddingHit(3, 0.95)}}
	uow := &fakeUnitOfWork{wines: wines, embeddings: embeddings}
	orchestrator := newTestOrchestrator(&fakeEmbedder{})

	q := mustNormalize(t, query.RawQuery{Text: "peppery wine", Type: query.TypeRAG})
	fragments, degraded, err := orchestrator.CollectContext(context.Background(), uow, q, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if degraded {
		t.Error("semantic path should not be degraded")
	}
	if embeddings.lastK != 15 {
		t.Errorf("context fetch k = %d, want TopK*ContextOverfetch = 15", embeddings.lastK)
	}
	if len(fragments) != 1 || fragments[0].WineID != 3 {
		t.Fatalf("fragments = %+v, want one fragment for wine 3", fragments)
	}
	if fragments[0].Text != "Pepper, bramble and a long finish." {
		t.Errorf("fragment text = %q", fragments[0].Text)
	}
}

func TestCollectContextDegradesToLexical(t *testing.T) {
	wines := &fakeWineRepo{
		scored: []*contract.ScoredWine{{Wine: wine(9, "Fallback Red", "Sturdy tannins."), Rank: 0.4}},
		total:  1,
	}
	uow := &fakeUnitOfWork{wines: wines, embeddings: &fakeEmbeddingRepo{}}
	provider := &fakeEmbedder{err: apperror.Wrap(apperror.ErrEmbeddingUnavailable, errors.New("down"))}
	orchestrator := newTestOrchestrator(provider)

	q := mustNormalize(t, query.RawQuery{Text: "tannic", Type: query.TypeRAG})
	fragments, degraded, err := orchestrator.CollectContext(context.Background(), uow, q, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !degraded {
		t.Error("lexical fallback should report degraded")
	}
	if len(fragments) != 1 || fragments[0].WineID != 9 {
		t.Fatalf("fragments = %+v, want one fragment for wine 9", fragments)
	}
}

func TestCollectContextBothPathsDownFails(t *testing.T) {
	wines := &fakeWineRepo{ftsFailures: 2}
	uow := &fakeUnitOfWork{wines: wines, embeddings: &fakeEmbeddingRepo{}}
	provider := &fakeEmbedder{err: apperror.Wrap(apperror.ErrEmbeddingUnavailable, errors.New("down"))}
	orchestrator := newTestOrchestrator(provider)

	q := mustNormalize(t, query.RawQuery{Text: "tannic", Type: query.TypeRAG})
	_, degraded, err := orchestrator.CollectContext(context.Background(), uow, q, DefaultConfig())
	if !errors.Is(err, apperror.ErrRetrievalUnavailable) {
		t.Fatalf("error = %v, want ErrRetrievalUnavailable", err)
	}
	if !degraded {
		t.Error("failed fallback should still report degraded")
	}
}

func TestBuildSnippet(t *testing.T) {
	short := "Bright acidity."
	if got := buildSnippet(short); got != short {
		t.Errorf("short description should pass through, got %q", got)
	}

	long := strings.Repeat("blackberry compote ", 20)
	got := buildSnippet(long)
	if len([]rune(got)) > snippetMaxRunes+3 {
		t.Errorf("snippet too long: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long snippet should end with ellipsis, got %q", got)
	}
	if strings.HasSuffix(strings.TrimSuffix(got, "..."), " ") {
		t.Errorf("snippet should break cleanly on a word, got %q", got)
	}
}
