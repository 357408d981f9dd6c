package service

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/MarkerAnn/wine-backend/internal/dto"
	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
	"github.com/MarkerAnn/wine-backend/internal/repository/contract"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"
	"github.com/MarkerAnn/wine-backend/pkg/rag/search"
)

type wineFixture struct {
	service    IWineService
	wines      *memWineRepo
	embeddings *memEmbeddingRepo
	embedder   *stubEmbedder
}

func newWineFixture(wines []*entity.Wine) *wineFixture {
	f := &wineFixture{
		wines:      &memWineRepo{wines: wines},
		embeddings: newMemEmbeddingRepo(),
		embedder:   &stubEmbedder{},
	}
	factory := &memFactory{uow: &memUnitOfWork{
		wines:      f.wines,
		embeddings: f.embeddings,
		runs:       newMemIngestRunRepo(),
	}}
	orchestrator := search.NewOrchestrator(f.embedder, log.New(io.Discard, "", 0))
	f.service = NewWineService(factory, orchestrator, search.DefaultConfig())
	return f
}

func TestListPagesCorpusById(t *testing.T) {
	f := newWineFixture(smallCorpus(45))

	res, err := f.service.List(context.Background(), &dto.ListWinesRequest{Page: 2, Size: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Total != 45 || res.Pages != 3 {
		t.Errorf("total/pages = %d/%d, want 45/3", res.Total, res.Pages)
	}
	if len(res.Items) != 20 {
		t.Fatalf("got %d items, want 20", len(res.Items))
	}
	if res.Items[0].Id != 21 {
		t.Errorf("page 2 starts at wine %d, want 21", res.Items[0].Id)
	}
}

func TestListDefaultsPagination(t *testing.T) {
	f := newWineFixture(smallCorpus(5))

	res, err := f.service.List(context.Background(), &dto.ListWinesRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Page != 1 || res.Size != 20 {
		t.Errorf("page/size = %d/%d, want defaults 1/20", res.Page, res.Size)
	}
}

func TestListAppliesFacetSpecs(t *testing.T) {
	f := newWineFixture(smallCorpus(3))

	_, err := f.service.List(context.Background(), &dto.ListWinesRequest{
		Country:   "Italy",
		MinPoints: "90",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.wines.lastCountSpecs) != 2 {
		t.Fatalf("got %d count specs, want 2", len(f.wines.lastCountSpecs))
	}
	if _, ok := f.wines.lastCountSpecs[0].(specification.ByCountry); !ok {
		t.Errorf("first spec = %T, want ByCountry", f.wines.lastCountSpecs[0])
	}
	if _, ok := f.wines.lastCountSpecs[1].(specification.MinPoints); !ok {
		t.Errorf("second spec = %T, want MinPoints", f.wines.lastCountSpecs[1])
	}
}

func TestListRejectsMalformedFacet(t *testing.T) {
	f := newWineFixture(smallCorpus(1))

	_, err := f.service.List(context.Background(), &dto.ListWinesRequest{MinPrice: "cheap"})
	if !errors.Is(err, apperror.ErrInvalidQuery) {
		t.Fatalf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestListRejectsOversizePage(t *testing.T) {
	f := newWineFixture(smallCorpus(1))

	_, err := f.service.List(context.Background(), &dto.ListWinesRequest{Size: 500})
	if !errors.Is(err, apperror.ErrInvalidQuery) {
		t.Fatalf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestShowReturnsWine(t *testing.T) {
	f := newWineFixture([]*entity.Wine{corpusWine(12, "Quinta Red", "Dark plum and cedar.")})

	res, err := f.service.Show(context.Background(), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Id != 12 || res.Title != "Quinta Red" {
		t.Errorf("got %+v", res)
	}
}

func TestShowUnknownIdReturnsNotFound(t *testing.T) {
	f := newWineFixture(smallCorpus(1))

	_, err := f.service.Show(context.Background(), 99999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestSearchNormalizesQueryText(t *testing.T) {
	f := newWineFixture(nil)
	f.wines.scored = []*contract.ScoredWine{
		{Wine: corpusWine(5, "Bold Red", "Huge tannic grip."), Rank: 0.7},
	}
	f.wines.total = 1

	res, err := f.service.Search(context.Background(), &dto.SearchRequest{Query: "  BOLD   Tannins "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.wines.lastFtsQuery != "bold tannins" {
		t.Errorf("query sent to store = %q, want canonical form", f.wines.lastFtsQuery)
	}
	if len(res.Items) != 1 || res.Items[0].Source != entity.CandidateSourceLexical {
		t.Errorf("items = %+v", res.Items)
	}
}

func TestSemanticSearchHydratesFromCorpus(t *testing.T) {
	f := newWineFixture([]*entity.Wine{corpusWine(2, "Saline White", "Lean, saline, citrus peel.")})
	f.embeddings.hits = []*contract.ScoredWineEmbedding{similarHit(2, 0.88)}

	res, err := f.service.SemanticSearch(context.Background(), &dto.SemanticSearchRequest{Query: "mineral white"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(res.Items))
	}
	item := res.Items[0]
	if item.WineId != 2 || item.Score != 0.88 || item.Source != entity.CandidateSourceSemantic {
		t.Errorf("item = %+v", item)
	}
	if item.Title != "Saline White" {
		t.Errorf("title = %q, want hydrated from the corpus", item.Title)
	}
}
