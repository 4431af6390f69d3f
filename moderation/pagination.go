package moderation

import "iter"

// CasePageSize is how many cases one page of a case list shows.
const CasePageSize = 10

// Pager splits an ordered, pre-fetched list into fixed-size pages.
type Pager[T any] struct {
	items []T
	size  int
}

func NewPager[T any](items []T, size int) *Pager[T] {
	if size <= 0 {
		size = CasePageSize
	}
	return &Pager[T]{items: items, size: size}
}

// Len is the total number of items.
func (p *Pager[T]) Len() int {
	return len(p.items)
}

// Pages is the number of pages. An empty list still has one (empty) page.
func (p *Pager[T]) Pages() int {
	if len(p.items) == 0 {
		return 1
	}
	return (len(p.items) + p.size - 1) / p.size
}

// Clamp bounds a zero-based page index to the valid range.
func (p *Pager[T]) Clamp(page int) int {
	if page < 0 {
		return 0
	}
	if last := p.Pages() - 1; page > last {
		return last
	}
	return page
}

// Page returns the items of the zero-based page, clamped to the valid range.
func (p *Pager[T]) Page(page int) []T {
	page = p.Clamp(page)
	start := page * p.size
	if start >= len(p.items) {
		return nil
	}
	end := start + p.size
	if end > len(p.items) {
		end = len(p.items)
	}
	return p.items[start:end]
}

// All yields every page in order. It can be ranged over any number of times.
func (p *Pager[T]) All() iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		for i := 0; i < p.Pages(); i++ {
			if !yield(i, p.Page(i)) {
				return
			}
		}
	}
}
