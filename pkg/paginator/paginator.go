// Package paginator slices ordered result sets into fixed-size, 1-based pages.
package paginator

import (
	"strconv"
	"strings"
)

// Meta describes one page of a listing.
type Meta struct {
	Number   int   `json:"page"`
	Size     int   `json:"page_size"`
	Total    int64 `json:"total"`
	NumPages int   `json:"num_pages"`
}

// Page is a page of items plus its navigation metadata.
type Page[T any] struct {
	Meta
	Items []T `json:"items"`
}

// Resolve turns a raw ?page= value into a valid page for total records.
// Non-numeric input selects the first page; out-of-range input is clamped to
// the nearest boundary page. An empty listing has one empty page.
func Resolve(raw string, total int64, size int) Meta {
	if size < 1 {
		size = 1
	}
	if total < 0 {
		total = 0
	}
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		number = 1
	case number < 1:
		number = 1
	case number > numPages:
		number = numPages
	}
	return Meta{Number: number, Size: size, Total: total, NumPages: numPages}
}

// Offset is the number of records that precede this page.
func (m Meta) Offset() int { return (m.Number - 1) * m.Size }

// Limit is the page size, for use as a query LIMIT.
func (m Meta) Limit() int { return m.Size }

// HasNext reports whether a later page exists.
func (m Meta) HasNext() bool { return m.Number < m.NumPages }

// HasPrevious reports whether an earlier page exists.
func (m Meta) HasPrevious() bool { return m.Number > 1 }

// HasOtherPages reports whether the listing spans more than one page.
func (m Meta) HasOtherPages() bool {
	return m.HasNext() || m.HasPrevious()
}

// NextNumber is the page number after this one. Only meaningful when HasNext.
func (m Meta) NextNumber() int { return m.Number + 1 }

// PreviousNumber is the page number before this one. Only meaningful when HasPrevious.
func (m Meta) PreviousNumber() int { return m.Number - 1 }

// Len is the number of items that belong on this page.
func (m Meta) Len() int {
	remaining := int(m.Total) - m.Offset()
	if remaining < 0 {
		return 0
	}
	if remaining > m.Size {
		return m.Size
	}
	return remaining
}
