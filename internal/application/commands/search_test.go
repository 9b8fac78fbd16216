package commands

import (
	"testing"

	"callscope/internal/domain"
)

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		query     string
		wantScore int
		wantMin   int // use this for relative comparisons
	}{
		{
			name:      "exact match",
			target:    "Theatre",
			query:     "Theatre",
			wantScore: 150, // 100 for contains + 50 for prefix
		},
		{
			name:      "prefix match",
			target:    "Theatre Season",
			query:     "Theatre",
			wantScore: 150, // 100 for contains + 50 for prefix
		},
		{
			name:      "substring match",
			target:    "My Theatre",
			query:     "Theatre",
			wantScore: 100, // contains only
		},
		{
			name:    "fuzzy match all chars at start",
			target:  "Theatre",
			query:   "the",
			wantMin: 100, // should be high due to prefix
		},
		{
			name:      "no match",
			target:    "Theatre",
			query:     "xyz",
			wantScore: 0,
		},
		{
			name:      "empty query",
			target:    "Theatre",
			query:     "",
			wantScore: 0,
		},
		{
			name:    "case insensitive",
			target:  "THEATRE",
			query:   "theatre",
			wantMin: 100,
		},
		{
			name:    "qualified name match",
			target:  "java.util.ArrayList.add",
			query:   "ArrayList.add",
			wantMin: 100,
		},
		{
			name:    "fuzzy camel case",
			target:  "parseArguments",
			query:   "parg",
			wantMin: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := FuzzyScore(tt.target, tt.query)

			if tt.wantScore > 0 {
				if score != tt.wantScore {
					t.Errorf("expected score %d, got %d", tt.wantScore, score)
				}
			} else if tt.wantMin > 0 {
				if score < tt.wantMin {
					t.Errorf("expected score >= %d, got %d", tt.wantMin, score)
				}
			} else {
				if score != 0 {
					t.Errorf("expected score 0, got %d", score)
				}
			}
		})
	}
}

func TestFuzzyScore_Ordering(t *testing.T) {
	// Test that better matches score higher
	query := "parse"

	exactScore := FuzzyScore("parse", query)         // exact + prefix = 150
	prefixScore := FuzzyScore("parse_args", query)   // contains + prefix = 150
	containsScore := FuzzyScore("Main.parse", query) // contains only = 100
	fuzzyScore := FuzzyScore("p_a_r_s_e", query)     // fuzzy match only

	if exactScore < prefixScore {
		t.Errorf("exact match should score >= prefix: %d < %d", exactScore, prefixScore)
	}
	if prefixScore < containsScore {
		t.Errorf("prefix match should score >= contains: %d < %d", prefixScore, containsScore)
	}
	if containsScore <= fuzzyScore {
		t.Errorf("contains match should score higher than fuzzy: %d <= %d", containsScore, fuzzyScore)
	}
}

func TestFuzzySort(t *testing.T) {
	results := []domain.MethodEntry{
		{Graph: "G", ID: "1", Name: "main", Class: "app.Main"},
		{Graph: "G", ID: "2", Name: "parse_args", Class: "app.Main"},
		{Graph: "G", ID: "3", Name: "close", Class: "io.Reader"},
		{Graph: "G", ID: "4", Name: "parse", Class: "app.Config"},
		{Graph: "G", ID: "5", Name: "run", Class: "app.Parser"},
	}

	sorted := FuzzySort(results, "parse")

	if len(sorted) < 3 {
		t.Fatalf("expected at least 3 results, got %d", len(sorted))
	}

	// Prefix matches on the name rank above matches on the class path
	if sorted[0].Name != "parse_args" || sorted[1].Name != "parse" {
		t.Errorf("expected parse_args then parse first, got %s, %s", sorted[0].Name, sorted[1].Name)
	}

	for _, r := range sorted {
		if r.Name == "close" {
			t.Error("unrelated method should not match")
		}
	}

	// Verify results are sorted by score descending
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Score > sorted[i-1].Score {
			t.Errorf("results not sorted by score: %d > %d at index %d",
				sorted[i].Score, sorted[i-1].Score, i)
		}
	}
}
