package usecase

import (
	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// Weighted clauses of the compound title search
const (
	phraseBoost   = 10.0
	termBoost     = 5.0
	fuzzyBoost    = 2.0
	fuzzyMaxEdits = 1
)

// PipelineBuilder turns a classified query into store-agnostic query specifications
type PipelineBuilder struct{}

// NewPipelineBuilder creates a new pipeline builder
func NewPipelineBuilder() *PipelineBuilder {
	return &PipelineBuilder{}
}

// Reference builds an anchored, case-insensitive lookup on the reference field.
// Records whose reference equals the query rank first, then cheaper, then by id.
func (b *PipelineBuilder) Reference(cleaned string, skip, limit int) *domain.QuerySpec {
	return &domain.QuerySpec{
		Kind: domain.SpecReference,
		Text: cleaned,
		Filters: []domain.FieldFilter{
			{Field: domain.FieldReference, Value: cleaned, Anchored: true},
		},
		Sort: []domain.SortField{
			{Key: domain.SortExactMatch, Desc: true},
			{Key: domain.SortPrice},
			{Key: domain.SortID},
		},
		Skip:  skip,
		Limit: limit,
	}
}

// Text builds the compound "should" title search: phrase, exact term and
// fuzzy term clauses with the computed minimum-should-match.
func (b *PipelineBuilder) Text(cleaned string, wordCount, skip, limit int) *domain.QuerySpec {
	return &domain.QuerySpec{
		Kind: domain.SpecText,
		Text: cleaned,
		Clauses: []domain.TextClause{
			{Kind: domain.ClausePhrase, Boost: phraseBoost},
			{Kind: domain.ClauseTerm, Boost: termBoost},
			{Kind: domain.ClauseTerm, Boost: fuzzyBoost, MaxEdits: fuzzyMaxEdits},
		},
		MinShouldMatch: MinShouldMatch(wordCount),
		Sort: []domain.SortField{
			{Key: domain.SortStartsWith, Desc: true},
			{Key: domain.SortScore, Desc: true},
			{Key: domain.SortID},
		},
		Skip:  skip,
		Limit: limit,
	}
}

// Filter builds an unranked substring match on whichever of title, category and
// brand are supplied. Empty terms are skipped.
func (b *PipelineBuilder) Filter(title, category, brand string, limit int) *domain.QuerySpec {
	spec := &domain.QuerySpec{
		Kind:  domain.SpecFilter,
		Text:  title,
		Limit: limit,
	}

	for _, f := range []domain.FieldFilter{
		{Field: domain.FieldTitle, Value: title},
		{Field: domain.FieldCategory, Value: category},
		{Field: domain.FieldBrand, Value: brand},
	} {
		if f.Value != "" {
			spec.Filters = append(spec.Filters, f)
		}
	}

	return spec
}

// Facet builds the whole-value match used by category and brand pages
func (b *PipelineBuilder) Facet(field, value string, limit int) *domain.QuerySpec {
	return &domain.QuerySpec{
		Kind:    domain.SpecFilter,
		Filters: []domain.FieldFilter{{Field: field, Value: value, Anchored: true}},
		Limit:   limit,
	}
}

// ForQuery selects the specification matching the query class
func (b *PipelineBuilder) ForQuery(q domain.Query, limit int) *domain.QuerySpec {
	switch q.Class {
	case domain.ClassReference:
		return b.Reference(q.Cleaned, 0, limit)
	case domain.ClassText:
		return b.Text(q.Cleaned, q.WordCount, 0, limit)
	default:
		return b.Filter(q.Cleaned, q.Category, q.Brand, limit)
	}
}
