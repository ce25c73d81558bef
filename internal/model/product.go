package model

// Product is the catalogue entry and its stock record. The three counters are
// only written through stock movements.
type Product struct {
	BaseModel
	Name         string `db:"name" json:"name"`
	SKU          string `db:"sku" json:"sku"`
	IsReturnable bool   `db:"is_returnable" json:"isReturnable"`
	StockFilled  int    `db:"stock_filled" json:"stockFilled"`
	StockEmpty   int    `db:"stock_empty" json:"stockEmpty"`
	StockDamaged int    `db:"stock_damaged" json:"stockDamaged"`
}

func (p *Product) Stock() StockLevels {
	return StockLevels{Filled: p.StockFilled, Empty: p.StockEmpty, Damaged: p.StockDamaged}
}

func (p *Product) SetStock(s StockLevels) {
	p.StockFilled = s.Filled
	p.StockEmpty = s.Empty
	p.StockDamaged = s.Damaged
}

// StockLevels is the filled/empty/damaged triple held in the warehouse.
type StockLevels struct {
	Filled  int `json:"filled"`
	Empty   int `json:"empty"`
	Damaged int `json:"damaged"`
}

func (s StockLevels) Total() int {
	return s.Filled + s.Empty + s.Damaged
}

func (s StockLevels) Sub(o StockLevels) StockLevels {
	return StockLevels{Filled: s.Filled - o.Filled, Empty: s.Empty - o.Empty, Damaged: s.Damaged - o.Damaged}
}

func (s StockLevels) NonNegative() bool {
	return s.Filled >= 0 && s.Empty >= 0 && s.Damaged >= 0
}
