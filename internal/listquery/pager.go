package listquery

// Pager tracks the current page of one list. Changing the search text or
// sort key sends it back to page 1; Next, Prev and Jump clamp to the
// available pages.
type Pager struct {
	search string
	sort   string
	page   int
}

// NewPager starts on page 1.
func NewPager() *Pager { return &Pager{page: 1} }

// Page returns the current page.
func (p *Pager) Page() int { return max(p.page, 1) }

// Query returns the pager state as a Query.
func (p *Pager) Query() Query {
	return Query{Search: p.search, Sort: p.sort, Page: p.Page()}
}

// SetSearch changes the search text.
func (p *Pager) SetSearch(s string) {
	if s != p.search {
		p.search = s
		p.page = 1
	}
}

// SetSort changes the sort key.
func (p *Pager) SetSort(s string) {
	if s != p.sort {
		p.sort = s
		p.page = 1
	}
}

// Next moves one page forward.
func (p *Pager) Next(totalPages int) int { return p.Jump(p.Page()+1, totalPages) }

// Prev moves one page back.
func (p *Pager) Prev(totalPages int) int { return p.Jump(p.Page()-1, totalPages) }

// Jump moves to page n.
func (p *Pager) Jump(n, totalPages int) int {
	p.page = Clamp(n, totalPages)
	return p.page
}
