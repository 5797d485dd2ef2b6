package ledger

import "github.com/shopspring/decimal"

// WeightedUnitCost aplica costo promedio ponderado al reabastecer un lote existente.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func WeightedUnitCost(stock, cost, inQty, inCost decimal.Decimal) decimal.Decimal {
	sum := stock.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return inCost
	}
	num := stock.Mul(cost).Add(inQty.Mul(inCost))
	return num.Div(sum).Round(4)
}
