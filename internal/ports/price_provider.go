package ports

import "context"

// PriceProvider entrega precios spot y variación 24h de criptomonedas.
// Lo consume el analyzer para estimar probabilidades de tendencia.
type PriceProvider interface {
	// SpotPrice devuelve el precio USD actual del símbolo (BTC, ETH, ...).
	// ok=false si el símbolo no está soportado o no hay dato fresco.
	SpotPrice(ctx context.Context, symbol string) (price float64, ok bool)

	// Change24h devuelve la variación porcentual de las últimas 24h.
	Change24h(ctx context.Context, symbol string) (change float64, ok bool)
}
