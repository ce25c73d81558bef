package dto

import "github.com/fekuna/blueice-inventory-service/internal/model"

type RestockInput struct {
	ProductID string  `json:"productId"`
	Filled    int     `json:"filledQty"`
	Empty     int     `json:"emptyQty"`
	Notes     *string `json:"notes,omitempty"`
}

type RefillInput struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes,omitempty"`
}

type DamageInput struct {
	ProductID string             `json:"productId"`
	Quantity  int                `json:"quantity"`
	Type      model.MovementKind `json:"type"` // DAMAGE or LOSS
	Reason    string             `json:"reason"`
	Notes     *string            `json:"notes,omitempty"`
}

type AdjustmentInput struct {
	ProductID    string  `json:"productId"`
	StockFilled  int     `json:"stockFilled"`
	StockEmpty   int     `json:"stockEmpty"`
	StockDamaged int     `json:"stockDamaged"`
	Reason       string  `json:"reason"`
	Notes        *string `json:"notes,omitempty"`
}
