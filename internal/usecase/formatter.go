package usecase

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// DefaultInStockValue is the stock state every store reports for available products
const DefaultInStockValue = "En stock"

// ResultFormatterConfig holds configuration for the result formatter
type ResultFormatterConfig struct {
	InStockValue string
}

// ResultFormatter projects store records into the public product shapes
type ResultFormatter struct {
	inStockValue string
}

// NewResultFormatter creates a new result formatter
func NewResultFormatter(config ResultFormatterConfig) *ResultFormatter {
	inStock := config.InStockValue
	if inStock == "" {
		inStock = DefaultInStockValue
	}
	return &ResultFormatter{inStockValue: inStock}
}

// SafePrice parses a raw price. Anything that is not a positive finite number
// yields nil.
func SafePrice(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest
func TitleCase(s string) string {
	// Casers keep state and cannot be shared between goroutines
	return cases.Title(language.French).String(s)
}

// FormatProduct projects one store record into a ProductDTO
func (f *ResultFormatter) FormatProduct(r domain.RawRecord) domain.ProductDTO {
	return domain.ProductDTO{
		ID:           r.ID,
		Name:         r.Title,
		Brand:        TitleCase(r.Brand),
		Category:     r.Category,
		CategoryName: r.CategoryPath,
		MinPrice:     SafePrice(r.Price),
		MaxPrice:     SafePrice(r.OldPrice),
		Image:        r.ImageURL,
		InStock:      r.StockState == f.inStockValue,
		Discount:     r.Discount,
		Reference:    r.Reference,
		Store:        r.Origin.Name,
		StoreURL:     r.URL,
	}
}

// FormatProducts projects records in order
func (f *ResultFormatter) FormatProducts(records []domain.RawRecord) []domain.ProductDTO {
	out := make([]domain.ProductDTO, len(records))
	for i, r := range records {
		out[i] = f.FormatProduct(r)
	}
	return out
}

// StoreDetail builds the detail view of a single store record. The record
// contributes one offer when it has a price.
func (f *ResultFormatter) StoreDetail(r domain.RawRecord, slug string) *domain.ProductDetail {
	price := SafePrice(r.Price)
	maxPrice := SafePrice(r.OldPrice)
	if maxPrice == nil {
		maxPrice = price
	}
	inStock := r.StockState == f.inStockValue

	offers := []domain.Offer{}
	if price != nil {
		offers = append(offers, domain.Offer{
			Store: r.Origin.Name,
			Price: *price,
			Stock: r.StockState,
			URL:   r.URL,
			Image: r.ImageURL,
		})
	}

	return &domain.ProductDetail{
		ID:        r.ID,
		Slug:      slug,
		Name:      r.Title,
		Brand:     TitleCase(r.Brand),
		Category:  r.Category,
		Reference: r.Reference,
		Image:     r.ImageURL,
		MinPrice:  price,
		MaxPrice:  maxPrice,
		InStock:   &inStock,
		Store:     r.Origin.Name,
		StoreURL:  r.URL,
		Offers:    offers,
	}
}

// ComparatifOffers synthesizes one offer per priced listing, cheapest first
func ComparatifOffers(c domain.ComparatifRecord) []domain.Offer {
	offers := []domain.Offer{}
	for _, l := range c.Listings {
		price := SafePrice(l.Price)
		if price == nil {
			continue
		}
		offers = append(offers, domain.Offer{
			Store: l.StoreName,
			Price: *price,
			Stock: l.Stock,
			URL:   l.URL,
			Image: l.Image,
		})
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Price < offers[j].Price
	})
	return offers
}

// ComparatifDetail builds the detail view of a comparatif record
func (f *ResultFormatter) ComparatifDetail(c domain.ComparatifRecord, slug string) *domain.ProductDetail {
	name, image := comparatifIdentity(c)
	offers := ComparatifOffers(c)
	minPrice, maxPrice := offerRange(offers)

	return &domain.ProductDetail{
		ID:        c.ID,
		Slug:      slug,
		Name:      name,
		Brand:     brandFromName(name),
		Reference: c.Reference,
		Image:     image,
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		Offers:    offers,
	}
}

// comparatifIdentity returns the first name and image found in listing order
func comparatifIdentity(c domain.ComparatifRecord) (name, image string) {
	for _, l := range c.Listings {
		if name == "" {
			name = l.Name
		}
		if image == "" {
			image = l.Image
		}
	}
	return name, image
}

func offerRange(offers []domain.Offer) (*float64, *float64) {
	if len(offers) == 0 {
		return nil, nil
	}
	lo, hi := offers[0].Price, offers[0].Price
	for _, o := range offers[1:] {
		lo = math.Min(lo, o.Price)
		hi = math.Max(hi, o.Price)
	}
	return &lo, &hi
}

// brandFromName takes the first word of a product name as its brand
func brandFromName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	return TitleCase(words[0])
}
