package usecase

import (
	"math"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// Compiled regex patterns for query cleaning
var (
	// Matches a slash with its surrounding whitespace ("noir / blanc", "12/24")
	slashSeparatorPattern = regexp.MustCompile(`\s*/\s*`)

	// Matches everything that is not a letter, a digit, whitespace or a hyphen.
	// \p{L} covers the accented letters used in French product titles.
	disallowedCharPattern = regexp.MustCompile(`[^\p{L}\p{N}\s\-]`)

	multiSpacePattern = regexp.MustCompile(`\s+`)

	// A reference is made only of ASCII letters, digits, hyphens and slashes
	referenceTokenPattern = regexp.MustCompile(`^[A-Za-z0-9\-/]+$`)
	referenceMarkPattern  = regexp.MustCompile(`[\d\-/]`)
)

// QueryNormalizer cleans and classifies raw query text
type QueryNormalizer struct {
	logger *zerolog.Logger
}

// NewQueryNormalizer creates a new query normalizer
func NewQueryNormalizer(logger *zerolog.Logger) *QueryNormalizer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &QueryNormalizer{logger: logger}
}

// Clean collapses slash separators, strips punctuation and normalizes whitespace.
// An empty result means there is no text query.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := slashSeparatorPattern.ReplaceAllString(raw, " ")
	cleaned = disallowedCharPattern.ReplaceAllString(cleaned, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}

// IsReference reports whether a cleaned query looks like a manufacturer or
// retailer part code: one token, at least one digit, hyphen or slash, and
// nothing but ASCII letters, digits, hyphens and slashes.
func IsReference(cleaned string) bool {
	if cleaned == "" || strings.ContainsAny(cleaned, " \t\n") {
		return false
	}
	return referenceMarkPattern.MatchString(cleaned) && referenceTokenPattern.MatchString(cleaned)
}

// MinShouldMatch returns how many weighted clauses a compound text search must satisfy
func MinShouldMatch(wordCount int) int {
	switch {
	case wordCount <= 2:
		return 1
	case wordCount <= 5:
		return int(math.Ceil(float64(wordCount) * 0.6))
	default:
		return int(math.Ceil(float64(wordCount) * 0.3))
	}
}

// Normalize cleans the raw text and classifies the request.
// Category or brand terms always route to the attribute filter.
func (n *QueryNormalizer) Normalize(raw, category, brand string) domain.Query {
	cleaned := Clean(raw)
	words := strings.Fields(cleaned)

	q := domain.Query{
		Raw:       raw,
		Cleaned:   cleaned,
		Words:     words,
		WordCount: len(words),
		Category:  strings.TrimSpace(category),
		Brand:     strings.TrimSpace(brand),
	}

	switch {
	case q.Category != "" || q.Brand != "":
		q.Class = domain.ClassFilter
	case IsReference(cleaned):
		q.Class = domain.ClassReference
	default:
		q.Class = domain.ClassText
	}

	n.logger.Debug().
		Str("raw", raw).
		Str("cleaned", cleaned).
		Int("words", q.WordCount).
		Str("class", string(q.Class)).
		Msg("Query normalized")

	return q
}
