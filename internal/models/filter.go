package models

import "strings"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListFilter: нормализованные параметры списка (search/order/page).
type ListFilter struct {
	Search         string `form:"search"`
	OrderBy        string `form:"order_by"`
	OrderDirection string `form:"order_direction"`
	Page           int    `form:"page"`
	Size           int    `form:"size"`
}

// Normalize clamps paging values and lower-cases the direction.
func (f ListFilter) Normalize() ListFilter {
	f.Search = strings.TrimSpace(f.Search)
	f.OrderBy = strings.ToLower(strings.TrimSpace(f.OrderBy))
	f.OrderDirection = strings.ToLower(strings.TrimSpace(f.OrderDirection))
	if f.OrderDirection != "asc" {
		f.OrderDirection = "desc"
	}
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Size < 1 {
		f.Size = DefaultPageSize
	}
	if f.Size > MaxPageSize {
		f.Size = MaxPageSize
	}
	return f
}

func (f ListFilter) Offset() int { return (f.Page - 1) * f.Size }

// Page is the list envelope shared by all entities.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

func NewPage[T any](items []T, total int, f ListFilter) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if f.Size > 0 {
		pages = (total + f.Size - 1) / f.Size
	}
	return &Page[T]{Items: items, Total: total, Page: f.Page, Size: f.Size, Pages: pages}
}
