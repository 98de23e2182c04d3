package services

import (
	"fmt"
	"math"

	"storefront-api/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// NormalizePage rejects non-positive values and pages whose offset would not
// fit in an int, and caps limit at MaxLimit.
func NormalizePage(page, limit int) (int, int, error) {
	if page < 1 || limit < 1 {
		return 0, 0, fmt.Errorf("%w: page and limit must be positive", domain.ErrInvalidInput)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page-1 > math.MaxInt/limit {
		return 0, 0, fmt.Errorf("%w: page is too large", domain.ErrInvalidInput)
	}
	return page, limit, nil
}

func pageWindow(page, limit int) (offset, size int, err error) {
	page, limit, err = NormalizePage(page, limit)
	if err != nil {
		return 0, 0, err
	}
	return (page - 1) * limit, limit, nil
}

// PageCount is ceil(total/limit).
func PageCount(total int64, limit int) int64 {
	if limit < 1 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
