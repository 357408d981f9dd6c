package dto

// SearchRequest carries a full-text query with optional facet filters,
// straight from the query string; validation happens during normalization.
type SearchRequest struct {
	Query     string
	Country   string
	Variety   string
	MinPrice  string
	MaxPrice  string
	MinPoints string
	MaxPoints string
	Page      int
	Size      int
}

// SemanticSearchRequest carries a similarity query. No facet filters: the
// vector index is queried alone and reconciled against the corpus afterwards.
type SemanticSearchRequest struct {
	Query string
	Page  int
	Size  int
}

type SearchResultItem struct {
	WineId  int64   `json:"wine_id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
	Source  string  `json:"source"`
}

type SearchResponse struct {
	Items    []SearchResultItem `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
	Pages    int                `json:"pages"`
	Degraded bool               `json:"degraded,omitempty"`
}
