package model

import "time"

type MovementKind string

const (
	MovementRestock MovementKind = "RESTOCK"
	MovementRefill  MovementKind = "REFILL"
	MovementDamage  MovementKind = "DAMAGE"
	MovementLoss    MovementKind = "LOSS"
	MovementAdjust  MovementKind = "ADJUST"
)

func (k MovementKind) Valid() bool {
	switch k {
	case MovementRestock, MovementRefill, MovementDamage, MovementLoss, MovementAdjust:
		return true
	}
	return false
}

// StockMovement is one append-only entry of the movement log, written in the
// same transaction as the counter change it describes.
type StockMovement struct {
	ID            string       `db:"id" json:"id"`
	ProductID     string       `db:"product_id" json:"productId"`
	Kind          MovementKind `db:"kind" json:"kind"`
	FilledChange  int          `db:"filled_change" json:"filledChange"`
	EmptyChange   int          `db:"empty_change" json:"emptyChange"`
	DamagedChange int          `db:"damaged_change" json:"damagedChange"`
	FilledAfter   int          `db:"filled_after" json:"filledAfter"`
	EmptyAfter    int          `db:"empty_after" json:"emptyAfter"`
	DamagedAfter  int          `db:"damaged_after" json:"damagedAfter"`
	Reason        *string      `db:"reason" json:"reason,omitempty"`
	Notes         *string      `db:"notes" json:"notes,omitempty"`
	CreatedBy     *string      `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}

func (m *StockMovement) Change() StockLevels {
	return StockLevels{Filled: m.FilledChange, Empty: m.EmptyChange, Damaged: m.DamagedChange}
}

func (m *StockMovement) After() StockLevels {
	return StockLevels{Filled: m.FilledAfter, Empty: m.EmptyAfter, Damaged: m.DamagedAfter}
}

func (m *StockMovement) Before() StockLevels {
	return m.After().Sub(m.Change())
}

// ProductStock is one row of the inventory dashboard.
type ProductStock struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	SKU                  string `json:"sku"`
	StockFilled          int    `json:"stockFilled"`
	StockEmpty           int    `json:"stockEmpty"`
	StockDamaged         int    `json:"stockDamaged"`
	IsReturnable         bool   `json:"isReturnable"`
	BottlesWithCustomers int    `json:"bottlesWithCustomers"`
	TotalBottles         int    `json:"totalBottles"`
}

type StockTotals struct {
	Filled        int `json:"filled"`
	Empty         int `json:"empty"`
	Damaged       int `json:"damaged"`
	WithCustomers int `json:"withCustomers"`
	Total         int `json:"total"`
}

type InventoryStats struct {
	Products []ProductStock `json:"products"`
	Totals   StockTotals    `json:"totals"`
}
