package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost costo promedio ponderado tras una recepción con costo.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Un stock actual negativo (corrección) no aporta costo: se toma como cero.
func WeightedAverageCost(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockActual.IsNegative() {
		stockActual = decimal.Zero
	}
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.DivRound(sum, costScale)
}

// costScale decimales conservados en el costo promedio.
const costScale = 6

// DeviationPct desviación porcentual absoluta de value respecto a base. Cero si base es cero.
func DeviationPct(value, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return value.Sub(base).Abs().Mul(decimal.NewFromInt(100)).DivRound(base.Abs(), 4)
}
