package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// DefaultReferenceField is the comparatif field holding the shared part reference
const DefaultReferenceField = "Réf Mytek"

// ComparatifCollection implements domain.ComparatifRepository
type ComparatifCollection struct {
	coll           *mongo.Collection
	referenceField string
	storeLabels    []string
}

// NewComparatifCollection wraps the comparatif collection. storeLabels are the
// store names used as field suffixes ("Prix Mytek"), in offer priority order.
func NewComparatifCollection(coll *mongo.Collection, referenceField string, storeLabels []string) *ComparatifCollection {
	if referenceField == "" {
		referenceField = DefaultReferenceField
	}
	return &ComparatifCollection{
		coll:           coll,
		referenceField: referenceField,
		storeLabels:    append([]string(nil), storeLabels...),
	}
}

// FindBySlug returns the comparatif record with the given slug
func (c *ComparatifCollection) FindBySlug(ctx context.Context, slug string) (*domain.ComparatifRecord, error) {
	raw, err := c.coll.FindOne(ctx, bson.M{"Slug": slug}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("comparatif find: %w", err)
	}

	record := MapToComparatif(raw, c.referenceField, c.storeLabels)
	return &record, nil
}
