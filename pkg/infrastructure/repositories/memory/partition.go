package memory

import (
	"sort"
	"strings"

	"github.com/vsinha/vantax/pkg/domain/repositories"
)

// partition holds one company's rows in creation order with an id index.
type partition[ID comparable, T any] struct {
	rows  []T
	index map[ID]int
}

func newPartition[ID comparable, T any](expected int) *partition[ID, T] {
	return &partition[ID, T]{
		rows:  make([]T, 0, expected),
		index: make(map[ID]int, expected),
	}
}

func (p *partition[ID, T]) get(id ID) (*T, bool) {
	i, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return &p.rows[i], true
}

// put inserts or replaces the row stored under id.
func (p *partition[ID, T]) put(id ID, v T) {
	if i, ok := p.index[id]; ok {
		p.rows[i] = v
		return
	}
	p.index[id] = len(p.rows)
	p.rows = append(p.rows, v)
}

func (p *partition[ID, T]) remove(id ID, idOf func(*T) ID) bool {
	i, ok := p.index[id]
	if !ok {
		return false
	}
	p.rows = append(p.rows[:i], p.rows[i+1:]...)
	delete(p.index, id)
	for j := i; j < len(p.rows); j++ {
		p.index[idOf(&p.rows[j])] = j
	}
	return true
}

// lessFuncs maps a lower-case sort key onto an ordering.
type lessFuncs[T any] map[string]func(a, b *T) bool

// paginate sorts the matched rows (stable, creation order when no key
// matches) and cuts out the requested window. The total is the number of
// rows before windowing.
func paginate[T any](rows []*T, page repositories.Page, less lessFuncs[T]) ([]*T, int) {
	page = page.Normalize()
	if fn, ok := less[page.Sort]; ok {
		sort.SliceStable(rows, func(i, j int) bool {
			if page.Desc {
				return fn(rows[j], rows[i])
			}
			return fn(rows[i], rows[j])
		})
	} else if page.Desc {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	start, end := page.Window(len(rows))
	return rows[start:end], len(rows)
}

// matchesQuery reports whether q is a case-insensitive substring of any field.
func matchesQuery(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// equalFoldOrEmpty reports whether filter is empty or equals value ignoring case.
func equalFoldOrEmpty(filter, value string) bool {
	return filter == "" || strings.EqualFold(filter, value)
}
