// Package response turns a question plus an assembled grounding window into
// a cited answer. Groundedness is enforced after generation: citations the
// model invents are filtered against the window, and an empty window short
// circuits to a fixed refusal without ever calling the model.
package response

import (
	"context"
	"log"

	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
	"github.com/MarkerAnn/wine-backend/pkg/llm"
	ragcontext "github.com/MarkerAnn/wine-backend/pkg/rag/context"
	"github.com/MarkerAnn/wine-backend/pkg/rag/prompt"
)

// Generator creates grounded answers from assembled context.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewGenerator creates a response generator.
func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Generate produces the answer for one question. Generation gets a single
// retry; if both attempts fail the error wraps the generation-unavailable
// sentinel so the transport layer can answer 502.
func (g *Generator) Generate(
	ctx context.Context,
	question string,
	window *ragcontext.Assembled,
) (*entity.Answer, error) {

	if window.Empty() {
		g.logger.Printf("[GENERATION] Empty grounding window, refusing without model call")
		return Refusal(false), nil
	}

	history := g.buildHistory(question, window)

	text, err := g.llmProvider.Chat(ctx, history)
	if err != nil {
		g.logger.Printf("[WARN] Generation failed, retrying once: %v", err)
		text, err = g.llmProvider.Chat(ctx, history)
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrGenerationUnavailable, err)
	}

	return g.buildAnswer(text, window), nil
}

// GenerateStream produces the answer while forwarding text chunks to
// onChunk as they arrive. Citations and confidence are only known once the
// full text exists, so the returned answer carries them for a terminal
// frame. Streaming is not retried: chunks already sent cannot be unsent.
func (g *Generator) GenerateStream(
	ctx context.Context,
	question string,
	window *ragcontext.Assembled,
	onChunk func(chunk string) error,
) (*entity.Answer, error) {

	if window.Empty() {
		g.logger.Printf("[GENERATION] Empty grounding window, refusing without model call")
		answer := Refusal(false)
		if err := onChunk(answer.Text); err != nil {
			return nil, err
		}
		return answer, nil
	}

	history := g.buildHistory(question, window)

	var full []byte
	err := g.llmProvider.ChatStream(ctx, history, func(chunk string) error {
		full = append(full, chunk...)
		return onChunk(chunk)
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrGenerationUnavailable, err)
	}

	return g.buildAnswer(string(full), window), nil
}

func (g *Generator) buildHistory(question string, window *ragcontext.Assembled) []llm.Message {
	promptText := prompt.NewGroundedBuilder(question, window).Build()
	return []llm.Message{{Role: "user", Content: promptText}}
}

// buildAnswer filters citations to the window and grades confidence: high
// when the model cited sources that survived filtering, low when it cited
// nothing usable and the citations fall back to the whole window.
func (g *Generator) buildAnswer(text string, window *ragcontext.Assembled) *entity.Answer {
	windowIDs := window.IDs()
	citations := ParseCitations(text, windowIDs)

	confidence := entity.ConfidenceHigh
	if len(citations) == 0 {
		citations = windowIDs
		confidence = entity.ConfidenceLow
	}

	g.logger.Printf("[GENERATION] Answer generated from %d fragments, %d citations (confidence=%s)",
		len(window.Fragments), len(citations), confidence)

	return &entity.Answer{
		Text:       text,
		Citations:  citations,
		Confidence: confidence,
	}
}
