package dto

type ProductFilters struct {
	SearchQuery  string // name or sku
	IsReturnable *bool
	SortBy       string // name, sku, created_at
	SortOrder    string // asc, desc
	Page         int
	PageSize     int
}
