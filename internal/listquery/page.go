package listquery

// DefaultPageSize applies when a pipeline sets none.
const DefaultPageSize = 10

// Page holds one page of items plus navigation metadata.
//
// NextPage and PreviousPage are nil when there is no such page.
type Page[T any] struct {
	Data         []T      `json:"data"`
	Page         int      `json:"page"`
	Total        int      `json:"total"`
	PageSize     int      `json:"page_size"`
	TotalPages   int      `json:"total_pages"`
	NextPage     *int     `json:"next_page,omitempty"`
	PreviousPage *int     `json:"previous_page,omitempty"`
	Buttons      []Button `json:"buttons"`
}

// Paginate cuts items into pages of size and returns page n, clamped to the valid range.
func Paginate[T any](items []T, n, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	n = Clamp(n, pages)

	lo := min((n-1)*size, total)
	hi := min(lo+size, total)

	p := Page[T]{
		Data:       items[lo:hi:hi],
		Page:       n,
		Total:      total,
		PageSize:   size,
		TotalPages: pages,
		Buttons:    Buttons(n, pages, false),
	}
	if n < pages {
		next := n + 1
		p.NextPage = &next
	}
	if n > 1 && n <= pages {
		prev := n - 1
		p.PreviousPage = &prev
	}
	return p
}

// Clamp bounds page to [1, totalPages]; with no pages it is 1.
func Clamp(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Button is one pagination control: a page number or an ellipsis.
type Button struct {
	Page     int  `json:"page,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Buttons lays out the page controls: the first and last page always, the
// current page, and its neighbours unless compact. Every run of hidden pages
// becomes a single ellipsis.
func Buttons(current, totalPages int, compact bool) []Button {
	if totalPages <= 0 {
		return nil
	}
	current = Clamp(current, totalPages)
	span := 1
	if compact {
		span = 0
	}

	var out []Button
	gap := false
	for p := 1; p <= totalPages; p++ {
		visible := p == 1 || p == totalPages || (p >= current-span && p <= current+span)
		if !visible {
			if !gap {
				out = append(out, Button{Ellipsis: true})
				gap = true
			}
			continue
		}
		gap = false
		out = append(out, Button{Page: p, Current: p == current})
	}
	return out
}
