// Package query canonicalizes incoming retrieval requests so that
// equivalent requests normalize to the identical value. Everything
// downstream (SQL building, embedding cache keys, logging) works off the
// normalized form, never the raw input.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
)

const (
	TypeLexical  = "lexical"
	TypeSemantic = "semantic"
	TypeRAG      = "rag"
)

const (
	DefaultPage = 1
	DefaultSize = 20
	MaxSize     = 100
)

// Facet names accepted in filters. Values of categorical facets are not
// validated against the corpus: an unknown country is a valid query with an
// empty result, not a client error.
const (
	FacetCountry   = "country"
	FacetVariety   = "variety"
	FacetMinPrice  = "min_price"
	FacetMaxPrice  = "max_price"
	FacetMinPoints = "min_points"
	FacetMaxPoints = "max_points"
)

// RawQuery is the untrusted request as the transport layer parsed it.
// Zero Page/Size mean "not provided" and take defaults.
type RawQuery struct {
	Text    string
	Type    string
	Filters map[string]string
	Page    int
	Size    int
}

// Filters is the validated, typed filter set.
type Filters struct {
	Country   string
	Variety   string
	MinPrice  *float64
	MaxPrice  *float64
	MinPoints *int
	MaxPoints *int
}

// NormalizedQuery is the canonical request: text trimmed, lowercased and
// whitespace-collapsed, type and filters validated, pagination bounded.
type NormalizedQuery struct {
	Text    string
	Type    string
	Filters Filters
	Page    int
	Size    int
}

// Normalize validates a raw query and produces its canonical form. All
// rejections wrap the invalid-query sentinel.
func Normalize(raw RawQuery) (*NormalizedQuery, error) {
	text := canonicalText(raw.Text)
	if text == "" {
		return nil, apperror.Invalid("query text must not be empty")
	}

	queryType := raw.Type
	if queryType == "" {
		queryType = TypeLexical
	}
	switch queryType {
	case TypeLexical, TypeSemantic, TypeRAG:
	default:
		return nil, apperror.Invalid("unknown request type %q", raw.Type)
	}

	filters, err := NormalizeFilters(raw.Filters)
	if err != nil {
		return nil, err
	}

	page, size, err := NormalizePagination(raw.Page, raw.Size)
	if err != nil {
		return nil, err
	}

	return &NormalizedQuery{
		Text:    text,
		Type:    queryType,
		Filters: filters,
		Page:    page,
		Size:    size,
	}, nil
}

// NormalizePagination applies the shared page/size rules: zero means
// default, anything out of bounds is rejected.
func NormalizePagination(page, size int) (int, int, error) {
	if page == 0 {
		page = DefaultPage
	}
	if page < 1 {
		return 0, 0, apperror.Invalid("page must be >= 1")
	}

	if size == 0 {
		size = DefaultSize
	}
	if size < 1 || size > MaxSize {
		return 0, 0, apperror.Invalid("size must be between 1 and %d", MaxSize)
	}

	return page, size, nil
}

// canonicalText trims, lowercases and collapses runs of whitespace, so
// "Oak  aging " and "oak aging" are the same query (and the same embedding
// cache entry).
func canonicalText(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	return strings.Join(fields, " ")
}

// NormalizeFilters validates facet names and parses numeric ranges. Blank
// values are dropped; unknown facets and malformed numbers are rejected.
func NormalizeFilters(raw map[string]string) (Filters, error) {
	var f Filters

	// Iterate in sorted order so the first error is deterministic.
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := strings.TrimSpace(raw[name])
		if value == "" {
			continue
		}

		switch name {
		case FacetCountry:
			f.Country = value
		case FacetVariety:
			f.Variety = value
		case FacetMinPrice:
			v, err := parsePrice(name, value)
			if err != nil {
				return Filters{}, err
			}
			f.MinPrice = &v
		case FacetMaxPrice:
			v, err := parsePrice(name, value)
			if err != nil {
				return Filters{}, err
			}
			f.MaxPrice = &v
		case FacetMinPoints:
			v, err := parsePoints(name, value)
			if err != nil {
				return Filters{}, err
			}
			f.MinPoints = &v
		case FacetMaxPoints:
			v, err := parsePoints(name, value)
			if err != nil {
				return Filters{}, err
			}
			f.MaxPoints = &v
		default:
			return Filters{}, apperror.Invalid("unknown filter facet %q", name)
		}
	}

	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return Filters{}, apperror.Invalid("min_price exceeds max_price")
	}
	if f.MinPoints != nil && f.MaxPoints != nil && *f.MinPoints > *f.MaxPoints {
		return Filters{}, apperror.Invalid("min_points exceeds max_points")
	}

	return f, nil
}

func parsePrice(facet, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 {
		return 0, apperror.Invalid("facet %s requires a non-negative number", facet)
	}
	return v, nil
}

func parsePoints(facet, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil || v < 0 {
		return 0, apperror.Invalid("facet %s requires a non-negative integer", facet)
	}
	return v, nil
}

// CacheKey serializes the normalized query with facets in a fixed order.
// Two requests that normalize identically always produce the same key.
func (q *NormalizedQuery) CacheKey() string {
	var b strings.Builder
	b.WriteString(q.Type)
	b.WriteString("|")
	b.WriteString(q.Text)

	if q.Filters.Country != "" {
		fmt.Fprintf(&b, "|country=%s", q.Filters.Country)
	}
	if q.Filters.MaxPoints != nil {
		fmt.Fprintf(&b, "|max_points=%d", *q.Filters.MaxPoints)
	}
	if q.Filters.MaxPrice != nil {
		fmt.Fprintf(&b, "|max_price=%g", *q.Filters.MaxPrice)
	}
	if q.Filters.MinPoints != nil {
		fmt.Fprintf(&b, "|min_points=%d", *q.Filters.MinPoints)
	}
	if q.Filters.MinPrice != nil {
		fmt.Fprintf(&b, "|min_price=%g", *q.Filters.MinPrice)
	}
	if q.Filters.Variety != "" {
		fmt.Fprintf(&b, "|variety=%s", q.Filters.Variety)
	}

	fmt.Fprintf(&b, "|page=%d|size=%d", q.Page, q.Size)
	return b.String()
}

// Offset converts page/size to the SQL offset.
func (q *NormalizedQuery) Offset() int {
	return (q.Page - 1) * q.Size
}
