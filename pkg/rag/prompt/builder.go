package prompt

import (
	"fmt"
	"strings"

	ragcontext "github.com/MarkerAnn/wine-backend/pkg/rag/context"
)

// GroundedBuilder builds the answer-generation prompt from an assembled
// grounding window. Every source block is tagged with the wine id the
// model must cite.
type GroundedBuilder struct {
	question string
	window   *ragcontext.Assembled
}

// NewGroundedBuilder creates a builder for one question over one window.
func NewGroundedBuilder(question string, window *ragcontext.Assembled) *GroundedBuilder {
	return &GroundedBuilder{
		question: question,
		window:   window,
	}
}

// Build renders the full prompt.
func (b *GroundedBuilder) Build() string {
	var prompt strings.Builder

	b.writeSources(&prompt)
	b.writeTask(&prompt)
	b.writeGuidelines(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *GroundedBuilder) writeSources(prompt *strings.Builder) {
	prompt.WriteString("<sources>\n")
	prompt.WriteString("Each source below is one wine review. The number in brackets is its id.\n\n")

	for _, fragment := range b.window.Fragments {
		prompt.WriteString(fmt.Sprintf("[%d] %s\n", fragment.WineID, fragment.Title))
		prompt.WriteString(fragment.Text)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("</sources>\n\n")
}

func (b *GroundedBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a sommelier assistant answering questions about wines using ONLY the reviews in <sources>.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *GroundedBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Base every statement on the sources. Do NOT use outside knowledge.\n")
	prompt.WriteString("2. Cite the reviews you draw from with their bracketed id, e.g. [45123], inline where you use them.\n")
	prompt.WriteString("3. Only cite ids that appear in <sources>.\n")
	prompt.WriteString("4. If the sources do not contain enough information to answer, say so plainly instead of guessing.\n")
	prompt.WriteString("5. Keep the answer concise and factual.\n")
	prompt.WriteString("</guidelines>\n\n")
}

func (b *GroundedBuilder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("<question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</question>\n\n")
	prompt.WriteString("Answer:")
}
