// Package listquery is the search, sort and paginate pipeline shared by the
// blog, member and comment lists.
package listquery

import (
	"slices"
	"strings"
)

// Fields returns the searchable strings of an item.
type Fields[T any] func(T) []string

// Compare orders two items the way slices.SortStableFunc expects.
type Compare[T any] func(a, b T) int

// Query is a user's current view of a list.
type Query struct {
	Search string
	Sort   string
	Page   int
}

// Pipeline binds search fields, named sort keys and a page size for one item type.
type Pipeline[T any] struct {
	Fields      Fields[T]
	Sorts       map[string]Compare[T]
	DefaultSort string
	PageSize    int
}

// Run filters, sorts and paginates items without modifying them.
// An unknown sort key falls back to DefaultSort; an unknown default keeps input order.
func (p Pipeline[T]) Run(items []T, q Query) Page[T] {
	out := Filter(items, q.Search, p.Fields)
	cmp, ok := p.Sorts[q.Sort]
	if !ok {
		cmp = p.Sorts[p.DefaultSort]
	}
	if cmp != nil {
		out = Sort(out, cmp)
	}
	return Paginate(out, q.Page, p.PageSize)
}

// SortKeys returns the known sort names in lexical order.
func (p Pipeline[T]) SortKeys() []string {
	keys := make([]string, 0, len(p.Sorts))
	for k := range p.Sorts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Filter keeps the items where some field contains q, ignoring case.
// Whitespace in q is significant; only the empty query keeps everything.
// The result never aliases items.
func Filter[T any](items []T, q string, fields Fields[T]) []T {
	q = strings.ToLower(q)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if q == "" || matches(fields(it), q) {
			out = append(out, it)
		}
	}
	return out
}

func matches(fields []string, q string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of items.
func Sort[T any](items []T, cmp Compare[T]) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, cmp)
	return out
}

// Reverse flips a comparison.
func Reverse[T any](cmp Compare[T]) Compare[T] {
	return func(a, b T) int { return cmp(b, a) }
}
