// Package context packs retrieval candidates into a bounded grounding
// window. The assembler is deliberately dumb: fragments go in ranked order
// until the token budget is spent, so the same candidates always produce
// the same window.
package context

import (
	"log"

	"github.com/MarkerAnn/wine-backend/pkg/utils"
)

// DefaultTokenBudget bounds the grounding window when no budget is
// configured. Roughly 6k characters of review text.
const DefaultTokenBudget = 1500

// Fragment is one wine review prepared as grounding material.
type Fragment struct {
	WineID int64
	Title  string
	Text   string
}

// Assembled is the final grounding window handed to the prompt builder.
type Assembled struct {
	Fragments []Fragment
	Tokens    int
	Truncated bool
}

// Empty reports whether the window holds no grounding material at all.
func (a *Assembled) Empty() bool {
	return a == nil || len(a.Fragments) == 0
}

// IDs returns the wine ids present in the window, in window order. These
// are the only ids a generated answer may cite.
func (a *Assembled) IDs() []int64 {
	if a == nil {
		return nil
	}
	ids := make([]int64, len(a.Fragments))
	for i, f := range a.Fragments {
		ids[i] = f.WineID
	}
	return ids
}

// Assembler builds grounding windows under a fixed token budget.
type Assembler struct {
	tokenBudget int
	logger      *log.Logger
}

// NewAssembler creates an assembler. A non-positive budget falls back to
// DefaultTokenBudget.
func NewAssembler(tokenBudget int, logger *log.Logger) *Assembler {
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}
	return &Assembler{
		tokenBudget: tokenBudget,
		logger:      logger,
	}
}

// Assemble packs fragments in the given order until the budget is spent.
// Duplicate wine ids are dropped (the first occurrence wins). Packing stops
// at the first fragment that does not fit; ranked order stays contiguous.
//
// Edge case: when the very first fragment alone exceeds the budget, it is
// cut down to fit instead of producing an empty window, so a long top hit
// still grounds the answer.
func (a *Assembler) Assemble(fragments []Fragment) *Assembled {
	assembled := &Assembled{}
	seen := make(map[int64]bool)

	for _, fragment := range fragments {
		if seen[fragment.WineID] {
			continue
		}

		cost := utils.EstimateTokens(fragment.Title) + utils.EstimateTokens(fragment.Text)

		if assembled.Tokens+cost > a.tokenBudget {
			if len(assembled.Fragments) == 0 {
				fragment.Text = truncateToTokens(fragment.Text, a.tokenBudget-utils.EstimateTokens(fragment.Title))
				assembled.Fragments = append(assembled.Fragments, fragment)
				assembled.Tokens = a.tokenBudget
			}
			assembled.Truncated = true
			break
		}

		assembled.Fragments = append(assembled.Fragments, fragment)
		assembled.Tokens += cost
		seen[fragment.WineID] = true
	}

	a.logger.Printf("[DEBUG] Assembled context: %d fragments, ~%d tokens (truncated=%v)",
		len(assembled.Fragments), assembled.Tokens, assembled.Truncated)

	return assembled
}

// truncateToTokens cuts text so its estimate stays within budget, backing
// up to the previous word boundary when one is close enough.
func truncateToTokens(text string, budget int) string {
	if budget < 1 {
		budget = 1
	}
	maxChars := budget * utils.CharsPerToken
	if len(text) <= maxChars {
		return text
	}

	cut := text[:maxChars]
	for i := len(cut) - 1; i > maxChars/2; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	return cut
}
