package repositories

import "strings"

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// Page describes the window and ordering of a list query
type Page struct {
	Offset int
	Limit  int
	Sort   string
	Desc   bool
}

// Normalize applies the default and maximum limit and clamps the offset
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	p.Sort = strings.ToLower(p.Sort)
	return p
}

// Window returns the [start, end) slice bounds for total items
func (p Page) Window(total int) (int, int) {
	p = p.Normalize()
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}
