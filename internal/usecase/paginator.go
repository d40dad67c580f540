package usecase

import (
	"strconv"
	"strings"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// Paging defaults shared by the fetch heuristics and the final slice
const (
	DefaultPageSize = 12
	DefaultMaxPage  = 100
)

// ClampPage bounds a page number to [1, maxPage]
func ClampPage(page, maxPage int) int {
	if maxPage < 1 {
		maxPage = DefaultMaxPage
	}
	return max(1, min(page, maxPage))
}

// ParsePage reads a page query parameter. Missing or malformed values mean page 1.
func ParsePage(raw string, maxPage int) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return ClampPage(page, maxPage)
}

// Paginate slices one page out of items. Total pages never drop below one.
func Paginate(items []domain.ProductDTO, page, pageSize, maxPage int) domain.PagedResult {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	page = ClampPage(page, maxPage)

	total := len(items)
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	data := make([]domain.ProductDTO, end-start)
	copy(data, items[start:end])

	return domain.PagedResult{
		Data: data,
		Meta: domain.PageMeta{
			Page:       page,
			TotalPages: max(1, (total+pageSize-1)/pageSize),
			TotalItems: total,
			PerPage:    pageSize,
		},
	}
}

// EmptyPage is returned when a request carries no search terms at all
func EmptyPage(pageSize int) domain.PagedResult {
	return domain.PagedResult{
		Data: []domain.ProductDTO{},
		Meta: domain.PageMeta{Page: 1, TotalPages: 0, TotalItems: 0, PerPage: pageSize},
	}
}
