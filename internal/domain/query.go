package domain

// QueryClass is the routing decision taken for a search request
type QueryClass string

const (
	// ClassReference is a single-token part code lookup
	ClassReference QueryClass = "reference"
	// ClassText is a free-text title search
	ClassText QueryClass = "text"
	// ClassFilter is an attribute filter on title, category and brand
	ClassFilter QueryClass = "filter"
)

// Query is a cleaned and classified search request. Treat it as immutable.
type Query struct {
	Raw       string
	Cleaned   string
	Words     []string
	WordCount int
	Class     QueryClass
	Category  string
	Brand     string
}

// Empty reports whether the query carries neither text nor filter terms
func (q Query) Empty() bool {
	return q.Cleaned == "" && q.Category == "" && q.Brand == ""
}

// SearchRequest carries the raw parameters of a catalog search
type SearchRequest struct {
	Query    string
	Category string
	Brand    string
	Page     int
}

// Product document fields addressed by query specifications
const (
	FieldTitle     = "title"
	FieldCategory  = "category"
	FieldBrand     = "brand"
	FieldReference = "reference"
)

// SpecKind selects the store query shape
type SpecKind int

const (
	SpecReference SpecKind = iota
	SpecText
	SpecFilter
)

// String returns the label used in logs and metrics
func (k SpecKind) String() string {
	switch k {
	case SpecReference:
		return "reference"
	case SpecText:
		return "text"
	case SpecFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// ClauseKind is the matching mode of a weighted text clause
type ClauseKind int

const (
	ClausePhrase ClauseKind = iota
	ClauseTerm
)

// TextClause is one weighted "should" clause of a compound text search
type TextClause struct {
	Kind     ClauseKind
	Boost    float64
	MaxEdits int
}

// FieldFilter is a case-insensitive match of Value against a document field.
// Anchored filters must match the whole field value, others match a substring.
type FieldFilter struct {
	Field    string
	Value    string
	Anchored bool
}

// SortKey names a ranking key. The keys are store agnostic; stores translate them.
type SortKey string

const (
	SortExactMatch SortKey = "exact_match"
	SortStartsWith SortKey = "starts_with_query"
	SortScore      SortKey = "search_score"
	SortPrice      SortKey = "price"
	SortID         SortKey = "_id"
)

// SortField is one ordering criterion
type SortField struct {
	Key  SortKey
	Desc bool
}

// QuerySpec is a store-agnostic description of a store query
type QuerySpec struct {
	Kind SpecKind

	// Text is the cleaned query for reference and text specs
	Text string

	// Clauses and MinShouldMatch drive the compound text search
	Clauses        []TextClause
	MinShouldMatch int

	Filters []FieldFilter
	Sort    []SortField

	Skip  int
	Limit int
}

// SubstringFallback returns the plain title substring filter used when the
// native text search stage cannot run. The fetch limit is preserved.
func (s *QuerySpec) SubstringFallback() *QuerySpec {
	return &QuerySpec{
		Kind:    SpecFilter,
		Text:    s.Text,
		Filters: []FieldFilter{{Field: FieldTitle, Value: s.Text}},
		Limit:   s.Limit,
	}
}
