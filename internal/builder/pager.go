package builder

// Pager describes the page of records being rendered
type Pager struct {
	// Current is the 1-based page number
	Current int
	// PerPage is the page size
	PerPage int
	// Total is the number of records across all pages
	Total int
}

// Count returns the number of pages, at least 1
func (p Pager) Count() int {
	if p.PerPage <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// Offset returns the index of the first record on the current page
func (p Pager) Offset() int {
	if p.Current <= 1 || p.PerPage <= 0 {
		return 0
	}
	return (p.Current - 1) * p.PerPage
}
