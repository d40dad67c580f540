package mongostore

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// DefaultSearchIndex is the Atlas Search index name used for text specs
const DefaultSearchIndex = "Text"

// documentFields maps domain field names to product document fields
var documentFields = map[string]string{
	domain.FieldTitle:     "title",
	domain.FieldCategory:  "category",
	domain.FieldBrand:     "brand",
	domain.FieldReference: "reference",
}

// sortFields maps ranking keys to the fields computed or stored in the pipeline
var sortFields = map[domain.SortKey]string{
	domain.SortExactMatch: "exact_match",
	domain.SortStartsWith: "starts_with_query",
	domain.SortScore:      "search_score",
	domain.SortPrice:      "price",
	domain.SortID:         "_id",
}

// projection keeps the fields read by the mapper plus the computed ranking fields.
// Ranking fields only exist in aggregation output.
func projection(withRanking bool) bson.M {
	p := bson.M{
		"_id":           1,
		"title":         1,
		"price":         1,
		"old_price":     1,
		"brand":         1,
		"category":      1,
		"category_path": 1,
		"reference":     1,
		"etat_stock":    1,
		"discount":      1,
		"url":           1,
		"product_image": 1,
		"image":         1,
	}
	if withRanking {
		p["exact_match"] = 1
		p["search_score"] = 1
		p["starts_with_query"] = 1
	}
	return p
}

func documentField(field string) string {
	if f, ok := documentFields[field]; ok {
		return f
	}
	return field
}

func sortDoc(fields []domain.SortField) bson.D {
	doc := make(bson.D, 0, len(fields))
	for _, f := range fields {
		name, ok := sortFields[f.Key]
		if !ok {
			continue
		}
		dir := 1
		if f.Desc {
			dir = -1
		}
		doc = append(doc, bson.E{Key: name, Value: dir})
	}
	return doc
}

// filterDoc turns field filters into case-insensitive regex conditions.
// User text is always quoted so it never acts as a pattern.
func filterDoc(filters []domain.FieldFilter) bson.M {
	doc := bson.M{}
	for _, f := range filters {
		pattern := regexp.QuoteMeta(f.Value)
		if f.Anchored {
			pattern = "^" + pattern + "$"
		}
		doc[documentField(f.Field)] = bson.M{"$regex": pattern, "$options": "i"}
	}
	return doc
}

func appendWindow(pipeline mongo.Pipeline, skip, limit int) mongo.Pipeline {
	if skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: skip}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return pipeline
}

// referencePipeline matches the reference field exactly (ignoring case) and flags
// documents whose reference equals the query once lower-cased.
func referencePipeline(spec *domain.QuerySpec) mongo.Pipeline {
	filters := spec.Filters
	if len(filters) == 0 {
		filters = []domain.FieldFilter{{Field: domain.FieldReference, Value: spec.Text, Anchored: true}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filterDoc(filters)}},
		{{Key: "$addFields", Value: bson.M{
			"exact_match": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{
					bson.M{"$toLower": bson.M{"$ifNull": bson.A{"$reference", ""}}},
					strings.ToLower(spec.Text),
				}},
				true,
				false,
			}},
		}}},
		{{Key: "$sort", Value: sortDoc(spec.Sort)}},
	}
	pipeline = appendWindow(pipeline, spec.Skip, spec.Limit)
	return append(pipeline, bson.D{{Key: "$project", Value: projection(true)}})
}

// textPipeline runs a compound $search over the title with one should clause per
// weighted text clause.
func textPipeline(spec *domain.QuerySpec, index string) mongo.Pipeline {
	if index == "" {
		index = DefaultSearchIndex
	}

	should := bson.A{}
	for _, c := range spec.Clauses {
		should = append(should, searchClause(spec.Text, c))
	}

	compound := bson.M{"should": should}
	if spec.MinShouldMatch > 0 {
		compound["minimumShouldMatch"] = spec.MinShouldMatch
	}

	pipeline := mongo.Pipeline{
		{{Key: "$search", Value: bson.M{"index": index, "compound": compound}}},
		{{Key: "$addFields", Value: bson.M{
			"search_score": bson.M{"$meta": "searchScore"},
			"starts_with_query": bson.M{"$regexMatch": bson.M{
				"input":   bson.M{"$ifNull": bson.A{"$title", ""}},
				"regex":   "^" + regexp.QuoteMeta(spec.Text),
				"options": "i",
			}},
		}}},
		{{Key: "$sort", Value: sortDoc(spec.Sort)}},
	}
	pipeline = appendWindow(pipeline, spec.Skip, spec.Limit)
	return append(pipeline, bson.D{{Key: "$project", Value: projection(true)}})
}

func searchClause(text string, c domain.TextClause) bson.M {
	score := bson.M{"boost": bson.M{"value": c.Boost}}
	if c.Kind == domain.ClausePhrase {
		return bson.M{"phrase": bson.M{"query": text, "path": "title", "score": score}}
	}
	op := bson.M{"query": text, "path": "title", "score": score}
	if c.MaxEdits > 0 {
		op["fuzzy"] = bson.M{"maxEdits": c.MaxEdits}
	}
	return bson.M{"text": op}
}
