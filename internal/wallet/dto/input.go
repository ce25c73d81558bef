package dto

import "github.com/fekuna/blueice-inventory-service/internal/model"

type OrderBottleItem struct {
	ProductID       string `json:"product_id"`
	FilledGiven     int    `json:"filled_given"`
	EmptyTaken      int    `json:"empty_taken"`
	DamagedReturned int    `json:"damaged_returned"`
}

// OrderBottlesInput is the bottle exchange of one completed order.
type OrderBottlesInput struct {
	OrderID    string            `json:"order_id"`
	CustomerID string            `json:"customer_id"`
	Items      []OrderBottleItem `json:"items"`
}

type OrderBottlesResult struct {
	Wallets []model.BottleWallet `json:"wallets"`
	Skipped int                  `json:"skipped"`
}
