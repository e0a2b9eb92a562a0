package dto

import "github.com/vsinha/vantax/pkg/domain/repositories"

// ListResult is one page of a filtered listing
type ListResult[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// NewListResult wraps items with the normalized page they were cut from
func NewListResult[T any](items []T, total int, page repositories.Page) *ListResult[T] {
	page = page.Normalize()
	if items == nil {
		items = []T{}
	}
	return &ListResult[T]{
		Items:  items,
		Total:  total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}
}
