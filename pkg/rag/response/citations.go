package response

import (
	"regexp"
	"strconv"
)

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// ParseCitations extracts bracketed ids from the generated text and keeps
// only those present in allowedIDs, deduplicated in first-appearance order.
// Anything else the model invented is silently dropped.
func ParseCitations(text string, allowedIDs []int64) []int64 {
	allowed := make(map[int64]bool, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = true
	}

	citations := []int64{}
	seen := make(map[int64]bool)

	for _, match := range citationPattern.FindAllStringSubmatch(text, -1) {
		id, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		if !allowed[id] || seen[id] {
			continue
		}
		citations = append(citations, id)
		seen[id] = true
	}

	return citations
}
