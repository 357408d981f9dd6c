package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/repository/contract"
	"github.com/MarkerAnn/wine-backend/internal/repository/specification"
	"github.com/MarkerAnn/wine-backend/internal/repository/unitofwork"
	"github.com/MarkerAnn/wine-backend/pkg/embedding"
	"github.com/MarkerAnn/wine-backend/pkg/llm"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// memWineRepo serves corpus reads from an id-ordered slice. FindAll honors
// the keyset, id-list and pagination specs the services actually use.
type memWineRepo struct {
	wines []*entity.Wine

	scored       []*contract.ScoredWine
	total        int64
	ftsCalls     int
	lastFtsQuery string

	countryStats []*entity.CountryStats
	varieties    map[string][]*entity.VarietyShare
	aggCalls     int

	lastFindSpecs  []specification.Specification
	lastCountSpecs []specification.Specification
	lastFtsSpecs   []specification.Specification
}

func (m *memWineRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Wine, error) {
	for _, spec := range specs {
		byId, ok := spec.(specification.ByWineID)
		if !ok {
			continue
		}
		for _, wine := range m.wines {
			if wine.Id == byId.ID {
				return wine, nil
			}
		}
	}
	return nil, nil
}

func (m *memWineRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Wine, error) {
	m.lastFindSpecs = specs

	cursor := int64(0)
	limit := len(m.wines)
	offset := 0
	var idList []int64
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.AfterWineID:
			cursor = s.ID
		case specification.Pagination:
			limit = s.Limit
			offset = s.Offset
		case specification.ByWineIDs:
			idList = s.IDs
		}
	}

	var matched []*entity.Wine
	if idList != nil {
		wanted := make(map[int64]bool, len(idList))
		for _, id := range idList {
			wanted[id] = true
		}
		for _, wine := range m.wines {
			if wanted[wine.Id] {
				matched = append(matched, wine)
			}
		}
	} else {
		for _, wine := range m.wines {
			if wine.Id > cursor {
				matched = append(matched, wine)
			}
		}
	}

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *memWineRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	m.lastCountSpecs = specs
	return int64(len(m.wines)), nil
}

func (m *memWineRepo) FullTextSearch(ctx context.Context, query string, limit, offset int, specs ...specification.Specification) ([]*contract.ScoredWine, int64, error) {
	m.ftsCalls++
	m.lastFtsQuery = query
	m.lastFtsSpecs = specs
	return m.scored, m.total, nil
}

func (m *memWineRepo) AggregateCountryStats(ctx context.Context, minWines int) ([]*entity.CountryStats, error) {
	m.aggCalls++
	var out []*entity.CountryStats
	for _, stat := range m.countryStats {
		if stat.WineCount >= int64(minWines) {
			out = append(out, stat)
		}
	}
	return out, nil
}

func (m *memWineRepo) TopVarietiesByCountry(ctx context.Context, country string, limit int) ([]*entity.VarietyShare, error) {
	shares := m.varieties[country]
	if limit < len(shares) {
		shares = shares[:limit]
	}
	return shares, nil
}

// memEmbeddingRepo records upserts keyed by wine id, mirroring the
// one-row-per-wine unique constraint.
type memEmbeddingRepo struct {
	rows  map[int64]*entity.WineEmbedding
	hits  []*contract.ScoredWineEmbedding
	lastK int
}

func newMemEmbeddingRepo() *memEmbeddingRepo {
	return &memEmbeddingRepo{rows: make(map[int64]*entity.WineEmbedding)}
}

func (m *memEmbeddingRepo) seed(model string, wineIds ...int64) {
	for _, id := range wineIds {
		m.rows[id] = &entity.WineEmbedding{Id: uuid.New(), WineId: id, Model: model}
	}
}

func (m *memEmbeddingRepo) Upsert(ctx context.Context, e *entity.WineEmbedding) error {
	m.rows[e.WineId] = e
	return nil
}

func (m *memEmbeddingRepo) UpsertBulk(ctx context.Context, es []*entity.WineEmbedding) error {
	for _, e := range es {
		m.rows[e.WineId] = e
	}
	return nil
}

func (m *memEmbeddingRepo) DeleteByWineId(ctx context.Context, wineId int64) error {
	delete(m.rows, wineId)
	return nil
}

func (m *memEmbeddingRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WineEmbedding, error) {
	return nil, nil
}

func (m *memEmbeddingRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WineEmbedding, error) {
	return nil, nil
}

func (m *memEmbeddingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(m.rows)), nil
}

func (m *memEmbeddingRepo) EmbeddedWineIds(ctx context.Context, model string, wineIds []int64) ([]int64, error) {
	var out []int64
	for _, id := range wineIds {
		if row, ok := m.rows[id]; ok && row.Model == model {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, vec []float32, limit int, threshold float64) ([]*contract.ScoredWineEmbedding, error) {
	m.lastK = limit
	if limit > len(m.hits) {
		limit = len(m.hits)
	}
	return m.hits[:limit], nil
}

type memIngestRunRepo struct {
	runs    map[uuid.UUID]*entity.IngestRun
	updates int
}

func newMemIngestRunRepo() *memIngestRunRepo {
	return &memIngestRunRepo{runs: make(map[uuid.UUID]*entity.IngestRun)}
}

func (m *memIngestRunRepo) Create(ctx context.Context, run *entity.IngestRun) error {
	m.runs[run.Id] = run
	return nil
}

func (m *memIngestRunRepo) Update(ctx context.Context, run *entity.IngestRun) error {
	m.updates++
	m.runs[run.Id] = run
	return nil
}

func (m *memIngestRunRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IngestRun, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			return m.runs[byId.ID], nil
		}
	}
	return nil, nil
}

func (m *memIngestRunRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IngestRun, error) {
	return nil, nil
}

func (m *memIngestRunRepo) FindLatest(ctx context.Context, corpus string) (*entity.IngestRun, error) {
	var latest *entity.IngestRun
	for _, run := range m.runs {
		if run.Corpus != corpus {
			continue
		}
		if latest == nil || run.StartedAt.After(latest.StartedAt) {
			latest = run
		}
	}
	return latest, nil
}

type memUnitOfWork struct {
	wines      *memWineRepo
	embeddings *memEmbeddingRepo
	runs       *memIngestRunRepo
}

func (m *memUnitOfWork) Begin(ctx context.Context) error { return nil }
func (m *memUnitOfWork) Commit() error                   { return nil }
func (m *memUnitOfWork) Rollback() error                 { return nil }
func (m *memUnitOfWork) WineRepository() contract.WineRepository {
	return m.wines
}
func (m *memUnitOfWork) WineEmbeddingRepository() contract.WineEmbeddingRepository {
	return m.embeddings
}
func (m *memUnitOfWork) IngestRunRepository() contract.IngestRunRepository {
	return m.runs
}

type memFactory struct {
	uow *memUnitOfWork
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type stubEmbedder struct {
	calls       int
	failAll     bool
	failMatched string
}

func (s *stubEmbedder) Generate(ctx context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	s.calls++
	if s.failAll {
		return nil, errors.New("provider unreachable")
	}
	if s.failMatched != "" && strings.Contains(text, s.failMatched) {
		return nil, errors.New("provider rejected document")
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.5, 0.25}},
	}, nil
}

func (s *stubEmbedder) ModelName() string { return "stub-embed-001" }

type stubPublisher struct {
	payloads [][]byte
	err      error
}

func (s *stubPublisher) Publish(ctx context.Context, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

type stubLLM struct {
	reply  string
	chunks []string
	calls  int
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, nil
}

func (s *stubLLM) ChatStream(ctx context.Context, history []llm.Message, onChunk func(chunk string) error, options ...llm.Option) error {
	s.calls++
	for _, chunk := range s.chunks {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return nil
}

func corpusWine(id int64, title, description string) *entity.Wine {
	return &entity.Wine{Id: id, Title: title, Description: description}
}

func smallCorpus(n int64) []*entity.Wine {
	var wines []*entity.Wine
	for i := int64(1); i <= n; i++ {
		wines = append(wines, corpusWine(i, "Estate Red", "Ripe cherry with firm tannins."))
	}
	return wines
}
