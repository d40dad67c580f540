package usecase

import (
	"math"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// Deduplicate merges products sharing a non-empty reference and keeps the one
// with the lowest minimum price. A missing price compares as +Inf, ties keep the
// first seen product, and each group stays at the position it was first seen.
// Products without a reference are all kept.
func Deduplicate(products []domain.ProductDTO) []domain.ProductDTO {
	if len(products) == 0 {
		return products
	}

	out := make([]domain.ProductDTO, 0, len(products))
	slot := make(map[string]int)

	for _, p := range products {
		if p.Reference == "" {
			out = append(out, p)
			continue
		}

		i, seen := slot[p.Reference]
		if !seen {
			slot[p.Reference] = len(out)
			out = append(out, p)
			continue
		}

		if comparablePrice(p.MinPrice) < comparablePrice(out[i].MinPrice) {
			out[i] = p
		}
	}

	return out
}

func comparablePrice(p *float64) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return *p
}
