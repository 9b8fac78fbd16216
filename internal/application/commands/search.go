package commands

import (
	"context"
	"sort"
	"strings"

	"callscope/internal/domain"
	"callscope/internal/ports"
)

// DefaultSearchLimit caps the candidates read from the index
const DefaultSearchLimit = 200

// SearchResult wraps domain.MethodEntry with a relevance score
type SearchResult struct {
	domain.MethodEntry
	Score int
}

// SearchCommand searches the method index with fuzzy matching
type SearchCommand struct {
	index ports.MethodIndex
	Graph string // empty searches every indexed graph
	Query string
	Limit int
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(index ports.MethodIndex, graph, query string) *SearchCommand {
	return &SearchCommand{
		index: index,
		Graph: graph,
		Query: query,
		Limit: DefaultSearchLimit,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	if len(c.Query) < 2 {
		return nil, nil
	}

	results, err := c.index.Search(c.Graph, c.Query, c.Limit)
	if err != nil {
		return nil, err
	}

	return FuzzySort(results, c.Query), nil
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Check for exact substring match first (highest priority)
	if strings.Contains(target, query) {
		score := 100
		// Bonus if it starts with query
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: check if chars appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && isSeparator(target[i-1]) {
				score += 10 // after separator
			}
			score += 1
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

func isSeparator(b byte) bool {
	switch b {
	case ' ', '.', '-', '_', '$':
		return true
	}
	return false
}

// FuzzySort sorts methods by relevance to the query. Ties keep the index order.
func FuzzySort(results []domain.MethodEntry, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(results))

	for _, r := range results {
		best := max(
			FuzzyScore(r.Name, query),
			FuzzyScore(r.QualifiedName(), query),
			FuzzyScore(r.ID, query),
		)

		if best > 0 {
			scored = append(scored, SearchResult{
				MethodEntry: r,
				Score:       best,
			})
		}
	}

	// Sort by score descending
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
