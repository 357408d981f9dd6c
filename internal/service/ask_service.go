package service

import (
	"context"
	"strings"

	"github.com/MarkerAnn/wine-backend/internal/dto"
	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/pkg/logger"
	"github.com/MarkerAnn/wine-backend/internal/repository/unitofwork"
	"github.com/MarkerAnn/wine-backend/pkg/query"
	ragcontext "github.com/MarkerAnn/wine-backend/pkg/rag/context"
	"github.com/MarkerAnn/wine-backend/pkg/rag/response"
	"github.com/MarkerAnn/wine-backend/pkg/rag/search"
)

type IAskService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)

	// AskStream behaves like Ask but forwards answer text to onChunk as it
	// is generated. The returned response carries the final citations and
	// confidence for a terminal frame.
	AskStream(ctx context.Context, req *dto.AskRequest, onChunk func(chunk string) error) (*dto.AskResponse, error)
}

type askService struct {
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *search.Orchestrator
	assembler    *ragcontext.Assembler
	generator    *response.Generator
	searchConfig search.Config
	logger       logger.ILogger
}

func NewAskService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *search.Orchestrator,
	assembler *ragcontext.Assembler,
	generator *response.Generator,
	searchConfig search.Config,
	logger logger.ILogger,
) IAskService {
	return &askService{
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		assembler:    assembler,
		generator:    generator,
		searchConfig: searchConfig,
		logger:       logger,
	}
}

func (c *askService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	question, window, degraded, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	answer, err := c.generator.Generate(ctx, question, window)
	if err != nil {
		return nil, err
	}
	answer.Degraded = degraded

	return toAskResponse(answer), nil
}

func (c *askService) AskStream(ctx context.Context, req *dto.AskRequest, onChunk func(chunk string) error) (*dto.AskResponse, error) {
	question, window, degraded, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	answer, err := c.generator.GenerateStream(ctx, question, window, onChunk)
	if err != nil {
		return nil, err
	}
	answer.Degraded = degraded

	return toAskResponse(answer), nil
}

// prepare normalizes the question, collects grounding material and packs
// the context window. The question keeps its original casing for the
// prompt; only retrieval uses the canonical form.
func (c *askService) prepare(ctx context.Context, req *dto.AskRequest) (string, *ragcontext.Assembled, bool, error) {
	normalized, err := query.Normalize(query.RawQuery{
		Text: req.Question,
		Type: query.TypeRAG,
	})
	if err != nil {
		return "", nil, false, err
	}

	config := c.searchConfig
	if req.TopK > 0 {
		config.TopK = req.TopK
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	fragments, degraded, err := c.orchestrator.CollectContext(ctx, uow, normalized, config)
	if err != nil {
		return "", nil, false, err
	}
	if degraded {
		c.logger.Warn("ask_service", "semantic retrieval degraded to lexical fallback", map[string]interface{}{
			"question": normalized.Text,
		})
	}

	window := c.assembler.Assemble(fragments)

	return strings.TrimSpace(req.Question), window, degraded, nil
}

func toAskResponse(answer *entity.Answer) *dto.AskResponse {
	return &dto.AskResponse{
		Answer:     answer.Text,
		Citations:  answer.Citations,
		Confidence: answer.Confidence,
		Degraded:   answer.Degraded,
	}
}
