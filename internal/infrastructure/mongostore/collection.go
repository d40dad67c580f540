package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// Collection implements domain.StoreBackend on one store's product collection
type Collection struct {
	coll        *mongo.Collection
	searchIndex string
}

// NewCollection wraps a product collection. An empty index name means DefaultSearchIndex.
func NewCollection(coll *mongo.Collection, searchIndex string) *Collection {
	if searchIndex == "" {
		searchIndex = DefaultSearchIndex
	}
	return &Collection{coll: coll, searchIndex: searchIndex}
}

// Execute runs a query specification. Reference and text specs go through the
// aggregation pipeline, filter specs through a plain find.
func (c *Collection) Execute(ctx context.Context, spec *domain.QuerySpec) ([]domain.RawRecord, error) {
	switch spec.Kind {
	case domain.SpecReference:
		return c.aggregate(ctx, referencePipeline(spec))
	case domain.SpecText:
		return c.aggregate(ctx, textPipeline(spec, c.searchIndex))
	default:
		return c.find(ctx, spec)
	}
}

func (c *Collection) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]domain.RawRecord, error) {
	cursor, err := c.coll.Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", c.coll.Name(), err)
	}
	return decodeRecords(ctx, cursor)
}

func (c *Collection) find(ctx context.Context, spec *domain.QuerySpec) ([]domain.RawRecord, error) {
	opts := options.Find().SetProjection(projection(false))
	if spec.Limit > 0 {
		opts.SetLimit(int64(spec.Limit))
	}
	if spec.Skip > 0 {
		opts.SetSkip(int64(spec.Skip))
	}
	if sort := sortDoc(spec.Sort); len(sort) > 0 {
		opts.SetSort(sort)
	}

	cursor, err := c.coll.Find(ctx, filterDoc(spec.Filters), opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.coll.Name(), err)
	}
	return decodeRecords(ctx, cursor)
}

func decodeRecords(ctx context.Context, cursor *mongo.Cursor) ([]domain.RawRecord, error) {
	defer cursor.Close(ctx)

	records := make([]domain.RawRecord, 0)
	for cursor.Next(ctx) {
		records = append(records, MapToRawRecord(cursor.Current))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return records, nil
}

// FindByID loads a product by its ObjectID hex string
func (c *Collection) FindByID(ctx context.Context, id string) (*domain.RawRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidIdentifier, err)
	}

	raw, err := c.coll.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(projection(false))).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", c.coll.Name(), err)
	}

	record := MapToRawRecord(raw)
	return &record, nil
}

// Facets counts the documents per distinct non-empty value of field. Category
// rows carry the first category path seen as their label.
func (c *Collection) Facets(ctx context.Context, field string) ([]domain.FacetCount, error) {
	name := documentField(field)

	group := bson.M{
		"_id":   "$" + name,
		"count": bson.M{"$sum": 1},
	}
	if field == domain.FieldCategory {
		group["nom"] = bson.M{"$first": "$category_path"}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{name: bson.M{"$exists": true, "$nin": bson.A{nil, ""}}}}},
		{{Key: "$group", Value: group}},
	}

	cursor, err := c.coll.Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, fmt.Errorf("facets %s.%s: %w", c.coll.Name(), name, err)
	}
	defer cursor.Close(ctx)

	counts := make([]domain.FacetCount, 0)
	for cursor.Next(ctx) {
		counts = append(counts, mapFacetCount(cursor.Current))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("facets cursor: %w", err)
	}
	return counts, nil
}
