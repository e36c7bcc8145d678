// Package pagination slices ordered result sets into 1-based pages.
//
// Page numbers are forgiving: an absent or non-numeric page serves the first
// page, and a number outside the valid range serves the last one. An empty
// result set still has one (empty) page.
package pagination

import (
	"strconv"
	"strings"
)

const DefaultPageSize = 10

type Page struct {
	Number   int
	PageSize int
	Total    int
	NumPages int
}

// New resolves the raw page parameter against a result set of total items.
func New(total int, raw string, pageSize int) Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	numPages := 1
	if total > 0 {
		numPages = (total + pageSize - 1) / pageSize
	}

	return Page{
		Number:   resolveNumber(raw, numPages),
		PageSize: pageSize,
		Total:    total,
		NumPages: numPages,
	}
}

func resolveNumber(raw string, numPages int) int {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	if number < 1 || number > numPages {
		return numPages
	}
	return number
}

// Slice paginates an in-memory sequence.
func Slice[T any](items []T, raw string, pageSize int) ([]T, Page) {
	page := New(len(items), raw, pageSize)
	start, end := page.Bounds()
	return items[start:end], page
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PageSize
}

func (p Page) Limit() int {
	return p.PageSize
}

// Bounds returns the half-open index range of the page within the full set.
func (p Page) Bounds() (int, int) {
	start := p.Offset()
	if start > p.Total {
		start = p.Total
	}
	end := start + p.PageSize
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

func (p Page) HasOtherPages() bool {
	return p.NumPages > 1
}

// Numbers lists every page number, used for the page links.
func (p Page) Numbers() []int {
	numbers := make([]int, p.NumPages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}
