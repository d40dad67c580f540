package mongostore

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// Product documents are scraped per store, so field types drift: prices arrive
// as strings, doubles or integers and ids as ObjectIDs or strings. The mapper
// reads raw BSON and normalizes everything to the record's textual fields.

// MapToRawRecord converts a product document to a domain record
func MapToRawRecord(doc bson.Raw) domain.RawRecord {
	image := rawString(doc, "product_image")
	if image == "" {
		image = rawString(doc, "image")
	}

	return domain.RawRecord{
		ID:           rawString(doc, "_id"),
		Title:        rawString(doc, "title"),
		Price:        rawString(doc, "price"),
		OldPrice:     rawString(doc, "old_price"),
		Brand:        rawString(doc, "brand"),
		Category:     rawString(doc, "category"),
		CategoryPath: rawString(doc, "category_path"),
		Reference:    rawString(doc, "reference"),
		StockState:   rawString(doc, "etat_stock"),
		Discount:     rawFloat(doc, "discount"),
		ImageURL:     image,
		URL:          rawString(doc, "url"),
		Ranking: domain.Ranking{
			ExactMatch: rawFlag(doc, "exact_match"),
			Score:      rawFloat(doc, "search_score"),
			StartsWith: rawFlag(doc, "starts_with_query"),
		},
	}
}

// MapToComparatif converts a comparatif document. Listings follow the order of
// storeLabels; a store with no product name is skipped.
func MapToComparatif(doc bson.Raw, referenceField string, storeLabels []string) domain.ComparatifRecord {
	record := domain.ComparatifRecord{
		ID:        rawString(doc, "_id"),
		Slug:      rawString(doc, "Slug"),
		Reference: rawString(doc, referenceField),
	}

	for _, label := range storeLabels {
		listing := domain.ComparatifListing{
			StoreName: label,
			Name:      rawString(doc, "Produit "+label),
			Price:     rawString(doc, "Prix "+label),
			Stock:     rawString(doc, "Stock "+label),
			URL:       rawString(doc, "URL "+label),
			Image:     rawString(doc, "Image "+label),
		}
		if listing.Name == "" && listing.Price == "" {
			continue
		}
		record.Listings = append(record.Listings, listing)
	}

	return record
}

// mapFacetCount decodes one $group output row
func mapFacetCount(doc bson.Raw) domain.FacetCount {
	return domain.FacetCount{
		Value: rawString(doc, "_id"),
		Label: rawString(doc, "nom"),
		Count: int(rawFloat(doc, "count")),
	}
}

func rawString(doc bson.Raw, key string) string {
	v, err := doc.LookupErr(key)
	if err != nil {
		return ""
	}

	switch v.Type {
	case bsontype.String:
		return strings.TrimSpace(v.StringValue())
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	case bsontype.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case bsontype.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case bsontype.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case bsontype.Decimal128:
		return v.Decimal128().String()
	default:
		return ""
	}
}

func rawFloat(doc bson.Raw, key string) float64 {
	v, err := doc.LookupErr(key)
	if err != nil {
		return 0
	}

	switch v.Type {
	case bsontype.Double:
		return v.Double()
	case bsontype.Int32:
		return float64(v.Int32())
	case bsontype.Int64:
		return float64(v.Int64())
	case bsontype.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.StringValue()), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func rawFlag(doc bson.Raw, key string) bool {
	v, err := doc.LookupErr(key)
	if err != nil {
		return false
	}
	b, ok := v.BooleanOK()
	return ok && b
}
