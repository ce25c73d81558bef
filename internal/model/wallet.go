package model

import "time"

// BottleWallet is the running count of bottles of one product held by one customer.
type BottleWallet struct {
	CustomerID    string    `db:"customer_id" json:"customerId"`
	ProductID     string    `db:"product_id" json:"productId"`
	BottleBalance int       `db:"bottle_balance" json:"bottleBalance"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// BottleDelta is what one completed order did to one product's bottles.
type BottleDelta struct {
	OrderID         string    `db:"order_id" json:"orderId"`
	CustomerID      string    `db:"customer_id" json:"customerId"`
	ProductID       string    `db:"product_id" json:"productId"`
	FilledGiven     int       `db:"filled_given" json:"filledGiven"`
	EmptyTaken      int       `db:"empty_taken" json:"emptyTaken"`
	DamagedReturned int       `db:"damaged_returned" json:"damagedReturned"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

func (d *BottleDelta) Net() int {
	return d.FilledGiven - d.EmptyTaken - d.DamagedReturned
}

// BottleHolder joins a positive wallet with the customer and product it belongs to.
type BottleHolder struct {
	CustomerID      string  `db:"customer_id" json:"customerId"`
	CustomerName    string  `db:"customer_name" json:"customerName"`
	CustomerPhone   *string `db:"customer_phone" json:"customerPhone"`
	CustomerAddress *string `db:"customer_address" json:"customerAddress"`
	ProductID       string  `db:"product_id" json:"productId"`
	ProductName     string  `db:"product_name" json:"productName"`
	ProductSKU      string  `db:"product_sku" json:"productSku"`
	BottleBalance   int     `db:"bottle_balance" json:"bottleBalance"`
}
