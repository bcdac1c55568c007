// Package pipeline implements the products query: filter, sort, then
// paginate a product collection.
package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/llehouerou/go-graphql-catalog/internal/store"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ASCENDING"
	Descending Direction = "DESCENDING"
)

// Filter selects, orders and pages products.
type Filter struct {
	Available      bool
	MinPrice       *float64
	MaxPrice       *float64
	UpdatedSince   *time.Time
	SortBy         string
	Sort           Direction
	ResultsPerPage int
	Page           int
}

// UnknownSortKeyError is returned for a SortBy token with no accessor.
type UnknownSortKeyError struct {
	Key string
}

func (e *UnknownSortKeyError) Error() string {
	return fmt.Sprintf("unknown sort key %q (accepted: %s)", e.Key, strings.Join(SortKeys(), ", "))
}

// Run applies f to products and returns a new slice. A nil filter returns
// the whole collection in its original order.
//
// Sorting is stable and ascending unless Sort is Descending. Keys compare
// numerically (booleans as 0 and 1, lastUpdated as a timestamp) or as text
// (id, name, size). An attribute the product does not have (no price, no
// size, a flag of the other variant) is numeric zero, and on a text key that
// zero sorts before any text.
func Run(products []store.Product, f *Filter) ([]store.Product, error) {
	if f == nil {
		return append([]store.Product{}, products...), nil
	}

	key, ok := sortKeys[f.SortBy]
	if !ok {
		return nil, &UnknownSortKeyError{Key: f.SortBy}
	}

	filtered := make([]store.Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			filtered = append(filtered, p)
		}
	}

	sortProducts(filtered, key, f.Sort == Descending)

	return Paginate(filtered, f.ResultsPerPage, f.Page), nil
}

func (f *Filter) matches(p store.Product) bool {
	if p.Available != f.Available {
		return false
	}
	if f.MinPrice != nil && (p.Price == nil || *p.Price < *f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && (p.Price == nil || *p.Price > *f.MaxPrice) {
		return false
	}
	if f.UpdatedSince != nil && p.LastUpdated.Before(*f.UpdatedSince) {
		return false
	}
	return true
}

func sortProducts(products []store.Product, key accessor, descending bool) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := key(products[i]), key(products[j])
		if descending {
			return b.less(a)
		}
		return a.less(b)
	})
}

// Paginate returns the page of items selected by resultsPerPage and the
// 1-based page number.
//
// The start offset is resultsPerPage*(page-1) when page > 1 and page-1
// otherwise, so page 0 and below start that many items before the end of
// the collection. Bounds are clamped like slice expressions that accept
// negative indexes; a range that is out of bounds yields fewer items or none.
func Paginate[T any](items []T, resultsPerPage, page int) []T {
	p := page - 1
	start := p
	if p > 0 {
		start = resultsPerPage * p
	}
	stop := start + resultsPerPage

	n := len(items)
	start, stop = clampIndex(start, n), clampIndex(stop, n)
	if start >= stop {
		return []T{}
	}
	return append([]T{}, items[start:stop]...)
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}
