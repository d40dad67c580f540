package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
	"github.com/Toprix-comparateur/toprix-backend/internal/usecase"
)

// CatalogService is the catalog use case served over HTTP
type CatalogService interface {
	SearchProducts(ctx context.Context, req domain.SearchRequest) (domain.PagedResult, error)
	GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error)
	ListCategories(ctx context.Context) ([]domain.Facet, error)
	ListBrands(ctx context.Context) ([]domain.Facet, error)
	CategoryProducts(ctx context.Context, slug string, page int) (domain.PagedResult, domain.FacetRef, error)
	BrandProducts(ctx context.Context, name string, page int) (domain.PagedResult, domain.FacetRef, error)
	ListStores() []domain.Store
	MaxPage() int
}

// StorePinger reports per-store connectivity
type StorePinger interface {
	Ping(ctx context.Context) map[string]error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog CatalogService
	pinger  StorePinger
	logger  *zerolog.Logger
}

// NewHandler creates a new HTTP handler. pinger may be nil.
func NewHandler(catalog CatalogService, pinger StorePinger, logger *zerolog.Logger) *Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Handler{catalog: catalog, pinger: pinger, logger: logger}
}

type listMeta struct {
	TotalItems int `json:"total_items"`
}

type facetListResponse struct {
	Data []domain.Facet `json:"data"`
	Meta listMeta       `json:"meta"`
}

type storeListResponse struct {
	Data []domain.Store `json:"data"`
	Meta listMeta       `json:"meta"`
}

type categoryPageResponse struct {
	domain.PagedResult
	Category domain.FacetRef `json:"categorie"`
}

type brandPageResponse struct {
	domain.PagedResult
	Brand domain.FacetRef `json:"marque"`
}

// HealthCheck returns the health status of the API and of each store
func (h *Handler) HealthCheck(c *gin.Context) {
	response := gin.H{
		"status":  "healthy",
		"service": "toprix-backend",
		"version": "1.0.0",
	}

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		stores := gin.H{}
		degraded := false
		for id, err := range h.pinger.Ping(ctx) {
			if err != nil {
				stores[id] = "unreachable"
				degraded = true
				continue
			}
			stores[id] = "ok"
		}
		response["stores"] = stores
		if degraded {
			response["status"] = "degraded"
		}
	}

	c.JSON(http.StatusOK, response)
}

// SearchProducts handles GET /produits
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.catalog == nil {
		h.unavailable(c)
		return
	}

	req := domain.SearchRequest{
		Query:    strings.TrimSpace(c.Query("q")),
		Category: strings.TrimSpace(c.Query("categorie")),
		Brand:    strings.TrimSpace(c.Query("marque")),
		Page:     usecase.ParsePage(c.Query("page"), h.catalog.MaxPage()),
	}

	result, err := h.catalog.SearchProducts(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProduct handles GET /produits/:id
func (h *Handler) GetProduct(c *gin.Context) {
	if h.catalog == nil {
		h.unavailable(c)
		return
	}

	detail, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListCategories handles GET /categories
func (h *Handler) ListCategories(c *gin.Context) {
	if h.catalog == nil {
		h.unavailable(c)
		return
	}

	facets, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, facetListResponse{Data: facets, Meta: listMeta{TotalItems: len(facets)}})
}

// CategoryDetail handles GET /categories/:slug
func (h *Handler) CategoryDetail(c *gin.Context) {
	if h.catalog == nil {
		h.unavailable(c)
		return
	}

	page := usecase.ParsePage(c.Query("page"), h.catalog.MaxPage())
	result, ref, err := h.catalog.CategoryProducts(c.Request.Context(), c.Param("slug"), page)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, categoryPageResponse{PagedResult: result, Category: ref})
}

// ListBrands handles GET /marques
func (h *Handler) ListBrands(c *gin.Context) {
	if h.catalog == nil {
		h.unavailable(c)
		return
	}

	facets, err := h.catalog.ListBrands(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, facetListResponse{Data: facets, Meta: listMeta{TotalItems: len(facets)}})
}

// BrandDetail handles GET /marques/:nom
func (h *Handler) BrandDetail(c *gin.Context) {
	if h.catalog == nil {
		h.unavailable(c)
		return
	}

	page := usecase.ParsePage(c.Query("page"), h.catalog.MaxPage())
	result, ref, err := h.catalog.BrandProducts(c.Request.Context(), c.Param("nom"), page)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, brandPageResponse{PagedResult: result, Brand: ref})
}

// ListStores handles GET /boutiques
func (h *Handler) ListStores(c *gin.Context) {
	if h.catalog == nil {
		h.unavailable(c)
		return
	}

	stores := h.catalog.ListStores()
	c.JSON(http.StatusOK, storeListResponse{Data: stores, Meta: listMeta{TotalItems: len(stores)}})
}

func (h *Handler) unavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"erreur": "Service indisponible"})
}

// respondError maps domain errors to status codes and French messages
func (h *Handler) respondError(c *gin.Context, err error) {
	status, message := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	c.JSON(status, gin.H{"erreur": message})
}

func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest, "Identifiant invalide"
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "Requête invalide"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "Produit introuvable"
	case errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound, "Catégorie introuvable"
	case errors.Is(err, domain.ErrBrandNotFound):
		return http.StatusNotFound, "Marque introuvable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Délai dépassé"
	default:
		return http.StatusInternalServerError, "Erreur serveur"
	}
}
