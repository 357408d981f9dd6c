// Package search routes normalized queries to the lexical or semantic
// retrieval path. The vector table is queried without joining the corpus, so
// every semantic hit is reconciled against live corpus rows here before it
// reaches a caller.
package search

import (
	"context"
	"log"
	"strings"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
	"github.com/MarkerAnn/wine-backend/internal/repository/contract"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"
	"github.com/MarkerAnn/wine-backend/internal/repository/unitofwork"
	"github.com/MarkerAnn/wine-backend/pkg/embedding"
	"github.com/MarkerAnn/wine-backend/pkg/query"
	ragcontext "github.com/MarkerAnn/wine-backend/pkg/rag/context"
)

// Orchestrator executes retrieval for search and answer requests.
type Orchestrator struct {
	embeddingProvider embedding.EmbeddingProvider
	logger            *log.Logger
}

// NewOrchestrator creates a search orchestrator.
func NewOrchestrator(embeddingProvider embedding.EmbeddingProvider, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

// Config encapsulates retrieval parameters.
type Config struct {
	// SimilarityFloor is the minimum cosine similarity a vector hit must
	// reach. Zero keeps everything the index returns.
	SimilarityFloor float64
	// TopK is how many fragments an answer is grounded on.
	TopK int
	// ContextOverfetch multiplies TopK when collecting grounding material,
	// leaving headroom for dead ids and duplicates.
	ContextOverfetch int
}

// DefaultConfig returns the retrieval defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityFloor:  0.0,
		TopK:             5,
		ContextOverfetch: 3,
	}
}

// Lexical runs full-text retrieval with facet filters and returns one page.
// A transient store failure is retried once; a second failure surfaces as
// retrieval-unavailable.
func (o *Orchestrator) Lexical(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	q *query.NormalizedQuery,
) (*entity.SearchResult, error) {

	scored, total, err := o.fullTextWithRetry(ctx, uow, q.Text, q.Size, q.Offset(), FilterSpecs(q.Filters)...)
	if err != nil {
		return nil, err
	}

	items := make([]entity.RetrievalCandidate, 0, len(scored))
	for _, hit := range scored {
		items = append(items, entity.RetrievalCandidate{
			WineId:  hit.Wine.Id,
			Title:   hit.Wine.Title,
			Snippet: buildSnippet(hit.Wine.Description),
			Score:   hit.Rank,
			Source:  entity.CandidateSourceLexical,
		})
	}

	o.logger.Printf("[DEBUG] Lexical retrieval: %d/%d hits for page %d", len(items), total, q.Page)

	return &entity.SearchResult{
		Items: items,
		Total: total,
		Page:  q.Page,
		Size:  q.Size,
		Pages: pageCount(total, q.Size),
	}, nil
}

// Semantic runs vector retrieval and returns one page. Hits whose corpus
// row no longer exists are dropped during reconciliation, so a stale index
// never surfaces dead ids. Pagination slices the reconciled top-k; Total
// counts live hits within that fetch, not the whole corpus.
func (o *Orchestrator) Semantic(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	q *query.NormalizedQuery,
	config Config,
) (*entity.SearchResult, error) {

	k := q.Page * q.Size
	hits, err := o.semanticHits(ctx, uow, q.Text, k, config.SimilarityFloor)
	if err != nil {
		return nil, err
	}

	total := int64(len(hits))
	start := q.Offset()
	end := start + q.Size
	if start > len(hits) {
		start = len(hits)
	}
	if end > len(hits) {
		end = len(hits)
	}

	items := make([]entity.RetrievalCandidate, 0, end-start)
	for _, hit := range hits[start:end] {
		items = append(items, entity.RetrievalCandidate{
			WineId:  hit.wine.Id,
			Title:   hit.wine.Title,
			Snippet: buildSnippet(hit.wine.Description),
			Score:   hit.score,
			Source:  entity.CandidateSourceSemantic,
		})
	}

	o.logger.Printf("[DEBUG] Semantic retrieval: %d live hits, returning %d for page %d", total, len(items), q.Page)

	return &entity.SearchResult{
		Items: items,
		Total: total,
		Page:  q.Page,
		Size:  q.Size,
		Pages: pageCount(total, q.Size),
	}, nil
}

// CollectContext gathers grounding fragments for answer generation,
// semantic first. When embedding or the vector store fails, retrieval
// degrades to the lexical path instead of failing the request; the second
// return reports that degradation. No results is not an error: an empty
// fragment list means the generator should refuse.
func (o *Orchestrator) CollectContext(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	q *query.NormalizedQuery,
	config Config,
) ([]ragcontext.Fragment, bool, error) {

	k := config.TopK * config.ContextOverfetch
	if k <= 0 {
		k = DefaultConfig().TopK * DefaultConfig().ContextOverfetch
	}

	hits, err := o.semanticHits(ctx, uow, q.Text, k, config.SimilarityFloor)
	if err == nil {
		return fragmentsFromHits(hits), false, nil
	}

	o.logger.Printf("[WARN] Semantic retrieval failed, degrading to lexical: %v", err)

	scored, _, err := o.fullTextWithRetry(ctx, uow, q.Text, k, 0)
	if err != nil {
		return nil, true, err
	}

	fragments := make([]ragcontext.Fragment, 0, len(scored))
	for _, hit := range scored {
		fragments = append(fragments, ragcontext.Fragment{
			WineID: hit.Wine.Id,
			Title:  hit.Wine.Title,
			Text:   hit.Wine.Description,
		})
	}
	return fragments, true, nil
}

type scoredHit struct {
	wine  *entity.Wine
	score float64
}

// semanticHits embeds the query, runs the ANN search and reconciles hits
// against live corpus rows, preserving similarity order.
func (o *Orchestrator) semanticHits(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	text string,
	k int,
	floor float64,
) ([]scoredHit, error) {

	embeddingRes, err := o.embeddingProvider.Generate(ctx, text, embedding.TaskTypeQuery)
	if err != nil {
		return nil, err
	}

	scored, err := uow.WineEmbeddingRepository().SearchSimilarWithScore(
		ctx, embeddingRes.Embedding.Values, k, floor)
	if err != nil {
		o.logger.Printf("[WARN] Vector search failed, retrying once: %v", err)
		scored, err = uow.WineEmbeddingRepository().SearchSimilarWithScore(
			ctx, embeddingRes.Embedding.Values, k, floor)
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrRetrievalUnavailable, err)
	}
	if len(scored) == 0 {
		return nil, nil
	}

	wineIds := make([]int64, 0, len(scored))
	for _, hit := range scored {
		wineIds = append(wineIds, hit.Embedding.WineId)
	}

	wines, err := uow.WineRepository().FindAll(ctx, specification.ByWineIDs{IDs: wineIds})
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrRetrievalUnavailable, err)
	}

	byId := make(map[int64]*entity.Wine, len(wines))
	for _, wine := range wines {
		byId[wine.Id] = wine
	}

	hits := make([]scoredHit, 0, len(scored))
	dropped := 0
	for _, hit := range scored {
		wine, ok := byId[hit.Embedding.WineId]
		if !ok {
			dropped++
			continue
		}
		hits = append(hits, scoredHit{wine: wine, score: hit.Similarity})
	}
	if dropped > 0 {
		o.logger.Printf("[DEBUG] Reconciliation dropped %d dead vector hits", dropped)
	}

	return hits, nil
}

func (o *Orchestrator) fullTextWithRetry(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	text string,
	limit, offset int,
	specs ...specification.Specification,
) ([]*contract.ScoredWine, int64, error) {

	scored, total, err := uow.WineRepository().FullTextSearch(ctx, text, limit, offset, specs...)
	if err != nil {
		o.logger.Printf("[WARN] Full-text search failed, retrying once: %v", err)
		scored, total, err = uow.WineRepository().FullTextSearch(ctx, text, limit, offset, specs...)
	}
	if err != nil {
		return nil, 0, apperror.Wrap(apperror.ErrRetrievalUnavailable, err)
	}
	return scored, total, nil
}

func fragmentsFromHits(hits []scoredHit) []ragcontext.Fragment {
	fragments := make([]ragcontext.Fragment, 0, len(hits))
	for _, hit := range hits {
		fragments = append(fragments, ragcontext.Fragment{
			WineID: hit.wine.Id,
			Title:  hit.wine.Title,
			Text:   hit.wine.Description,
		})
	}
	return fragments
}

// FilterSpecs translates validated facet filters into corpus query
// specifications, in the canonical facet order.
func FilterSpecs(f query.Filters) []specification.Specification {
	var specs []specification.Specification
	if f.Country != "" {
		specs = append(specs, specification.ByCountry{Country: f.Country})
	}
	if f.Variety != "" {
		specs = append(specs, specification.ByVariety{Variety: f.Variety})
	}
	if f.MinPrice != nil {
		specs = append(specs, specification.MinPrice{Price: *f.MinPrice})
	}
	if f.MaxPrice != nil {
		specs = append(specs, specification.MaxPrice{Price: *f.MaxPrice})
	}
	if f.MinPoints != nil {
		specs = append(specs, specification.MinPoints{Points: *f.MinPoints})
	}
	if f.MaxPoints != nil {
		specs = append(specs, specification.MaxPoints{Points: *f.MaxPoints})
	}
	return specs
}

const snippetMaxRunes = 200

// buildSnippet cuts a review down to list-view size, breaking on a word
// when one is near the limit.
func buildSnippet(description string) string {
	runes := []rune(description)
	if len(runes) <= snippetMaxRunes {
		return description
	}

	cut := string(runes[:snippetMaxRunes])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

func pageCount(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
