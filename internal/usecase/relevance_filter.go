package usecase

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// Shortest query word that takes part in relevance scoring
const minRelevantWordLength = 2

// Minimum share of required words a title must contain, by query length
const (
	shortQueryCoverage = 0.6 // 3 to 5 words
	longQueryCoverage  = 0.3 // 6 words and more
)

// RelevanceFilter post-filters merged search results by lexical overlap with the query
type RelevanceFilter struct {
	logger *zerolog.Logger
}

// NewRelevanceFilter creates a new relevance filter
func NewRelevanceFilter(logger *zerolog.Logger) *RelevanceFilter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RelevanceFilter{logger: logger}
}

type scoredRecord struct {
	record domain.RawRecord
	ratio  float64
}

// FilterByRelevance keeps the records whose title contains enough of the query
// words and orders them by the share of words found. Queries of fewer than two
// words, or without any word of at least two characters, pass through as is.
func (f *RelevanceFilter) FilterByRelevance(records []domain.RawRecord, words []string, wordCount int) []domain.RawRecord {
	if wordCount < 2 || len(records) == 0 {
		return records
	}

	required := requiredWords(words)
	if len(required) == 0 {
		return records
	}

	threshold := relevanceThreshold(wordCount, len(required))

	scored := make([]scoredRecord, 0, len(records))
	for _, r := range records {
		title := strings.ToLower(r.Title)
		found := 0
		for _, w := range required {
			if strings.Contains(title, w) {
				found++
			}
		}
		if found >= threshold {
			scored = append(scored, scoredRecord{
				record: r,
				ratio:  float64(found) / float64(len(required)),
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].ratio > scored[j].ratio
	})

	kept := make([]domain.RawRecord, len(scored))
	for i, s := range scored {
		kept[i] = s.record
	}

	if len(kept) < len(records) {
		f.logger.Info().
			Int("before", len(records)).
			Int("after", len(kept)).
			Strs("words", required).
			Msg("Relevance filter applied")
	}

	return kept
}

// FilterExactMatches keeps only the records flagged as an exact reference match,
// or every record when none is. Ranking fields are cleared either way.
// The boolean reports whether exact matches were found.
func (f *RelevanceFilter) FilterExactMatches(records []domain.RawRecord) ([]domain.RawRecord, bool) {
	if len(records) == 0 {
		return records, false
	}

	var exact []domain.RawRecord
	for _, r := range records {
		if r.Ranking.ExactMatch {
			r.Ranking = domain.Ranking{}
			exact = append(exact, r)
		}
	}

	if len(exact) > 0 {
		f.logger.Info().Int("exact", len(exact)).Msg("Exact reference matches found")
		return exact, true
	}

	out := make([]domain.RawRecord, len(records))
	for i, r := range records {
		r.Ranking = domain.Ranking{}
		out[i] = r
	}
	return out, false
}

// requiredWords returns the lowercased query words long enough to score
func requiredWords(words []string) []string {
	var required []string
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minRelevantWordLength {
			required = append(required, strings.ToLower(w))
		}
	}
	return required
}

// relevanceThreshold returns how many required words a title must contain
func relevanceThreshold(wordCount, required int) int {
	switch {
	case wordCount == 2:
		return 1
	case wordCount <= 5:
		return int(math.Ceil(float64(required) * shortQueryCoverage))
	default:
		return int(math.Ceil(float64(required) * longQueryCoverage))
	}
}

// clearRanking drops the transient scoring fields before records leave ranking
func clearRanking(records []domain.RawRecord) {
	for i := range records {
		records[i].Ranking = domain.Ranking{}
	}
}
