package dto

type CreateProductInput struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	IsReturnable bool   `json:"isReturnable"`
}
