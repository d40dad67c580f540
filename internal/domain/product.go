package domain

// Store describes one retailer whose catalog lives in its own collection
type Store struct {
	ID      string `json:"id"`
	Name    string `json:"nom"`
	SiteURL string `json:"site_web"`
}

// Ranking holds the scoring fields a store attaches to a record during a search.
// They only matter while results are ranked and are cleared before formatting.
type Ranking struct {
	ExactMatch bool
	Score      float64
	StartsWith bool
}

// RawRecord is one retailer product document as read from its store.
// Price fields keep their raw textual form; validation happens when formatting.
type RawRecord struct {
	ID           string
	Title        string
	Price        string
	OldPrice     string
	Brand        string
	Category     string
	CategoryPath string
	Reference    string
	StockState   string
	Discount     float64
	ImageURL     string
	URL          string

	// Origin is the store that produced the record
	Origin Store

	Ranking Ranking
}

// ProductDTO is the public projection of a single store record
type ProductDTO struct {
	ID           string   `json:"id"`
	Slug         *string  `json:"slug"`
	Name         string   `json:"nom"`
	Brand        string   `json:"marque"`
	Category     string   `json:"categorie"`
	CategoryName string   `json:"categorie_nom"`
	MinPrice     *float64 `json:"prix_min"`
	MaxPrice     *float64 `json:"prix_max"`
	Image        string   `json:"image"`
	InStock      bool     `json:"en_stock"`
	Discount     float64  `json:"discount"`
	Reference    string   `json:"reference"`
	Store        string   `json:"boutique"`
	StoreURL     string   `json:"url_boutique"`
}

// Offer is one store's price and availability for a logical product
type Offer struct {
	Store string  `json:"boutique"`
	Price float64 `json:"prix"`
	Stock string  `json:"stock"`
	URL   string  `json:"url"`
	Image string  `json:"image"`
}

// ProductDetail is the detail view of a product with its offers ordered by price
type ProductDetail struct {
	ID        string   `json:"id"`
	Slug      string   `json:"slug"`
	Name      string   `json:"nom"`
	Brand     string   `json:"marque"`
	Category  string   `json:"categorie,omitempty"`
	Reference string   `json:"reference"`
	Image     string   `json:"image"`
	MinPrice  *float64 `json:"prix_min"`
	MaxPrice  *float64 `json:"prix_max"`
	InStock   *bool    `json:"en_stock,omitempty"`
	Store     string   `json:"boutique,omitempty"`
	StoreURL  string   `json:"url_boutique,omitempty"`
	Offers    []Offer  `json:"offres"`
}

// ComparatifListing is the sub-field set one store contributes to a comparatif record
type ComparatifListing struct {
	StoreName string
	Name      string
	Price     string
	Stock     string
	URL       string
	Image     string
}

// ComparatifRecord is a pre-merged cross-store document keyed by a human-readable slug.
// Listings are ordered by store priority.
type ComparatifRecord struct {
	ID        string
	Slug      string
	Reference string
	Listings  []ComparatifListing
}

// PageMeta describes the position of a page within a result set
type PageMeta struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
	PerPage    int `json:"par_page"`
}

// PagedResult is one page of products
type PagedResult struct {
	Data []ProductDTO `json:"data"`
	Meta PageMeta     `json:"meta"`
}

// FacetRef names the category or brand a facet page belongs to
type FacetRef struct {
	Slug string `json:"slug"`
	Name string `json:"nom"`
}

// Facet is one merged category or brand with its product count across stores
type Facet struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"nom"`
	ProductCount int    `json:"nombre_produits"`
}

// FacetCount is one distinct category or brand value counted within a single store
type FacetCount struct {
	Value string
	Label string
	Count int
}
