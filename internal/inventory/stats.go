package inventory

import "github.com/fekuna/blueice-inventory-service/internal/model"

// BuildStats rolls products and their positive wallet sums into the dashboard
// view. Products keep the order they are given in.
func BuildStats(products []model.Product, withCustomers map[string]int) *model.InventoryStats {
	stats := &model.InventoryStats{Products: make([]model.ProductStock, 0, len(products))}

	for _, p := range products {
		held := withCustomers[p.ID]
		if held < 0 {
			held = 0
		}
		row := model.ProductStock{
			ID:                   p.ID,
			Name:                 p.Name,
			SKU:                  p.SKU,
			StockFilled:          p.StockFilled,
			StockEmpty:           p.StockEmpty,
			StockDamaged:         p.StockDamaged,
			IsReturnable:         p.IsReturnable,
			BottlesWithCustomers: held,
			TotalBottles:         p.Stock().Total() + held,
		}
		stats.Products = append(stats.Products, row)

		stats.Totals.Filled += row.StockFilled
		stats.Totals.Empty += row.StockEmpty
		stats.Totals.Damaged += row.StockDamaged
		stats.Totals.WithCustomers += held
	}
	stats.Totals.Total = stats.Totals.Filled + stats.Totals.Empty + stats.Totals.Damaged + stats.Totals.WithCustomers

	return stats
}
