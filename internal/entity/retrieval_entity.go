package entity

const (
	// CandidateSourceLexical marks candidates ranked by full-text relevance.
	CandidateSourceLexical = "lexical"
	// CandidateSourceSemantic marks candidates ranked by vector similarity.
	CandidateSourceSemantic = "semantic"
)

// RetrievalCandidate is one ranked hit, hydrated against the live corpus.
// Score is ts_rank for lexical hits and cosine similarity for semantic ones;
// the two are never mixed in a single ranking.
type RetrievalCandidate struct {
	WineId  int64
	Title   string
	Snippet string
	Score   float64
	Source  string
}

// SearchResult is one page of candidates in a stable total order
// (score descending, wine id ascending on ties).
type SearchResult struct {
	Items    []RetrievalCandidate
	Total    int64
	Page     int
	Size     int
	Pages    int
	Degraded bool
}

const (
	ConfidenceHigh = "high"
	ConfidenceLow  = "low"
)

// Answer is the synthesized reply for a RAG request. Citations only ever
// reference wine ids that were part of the supplied context; a refusal has
// empty citations and low confidence. Degraded is set when the semantic
// retrieval path failed and the context came from the lexical fallback.
type Answer struct {
	Text       string
	Citations  []int64
	Confidence string
	Degraded   bool
}
