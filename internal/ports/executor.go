package ports

import "context"

// PlaceOrderRequest describe una orden limit BUY sobre un token CLOB.
type PlaceOrderRequest struct {
	TokenID string
	Price   float64 // 0-1, en unidades de probabilidad
	Size    float64 // USDC totales a comprometer
	NegRisk bool
}

// PlacedOrder es la confirmación del CLOB para una orden aceptada.
type PlacedOrder struct {
	OrderID string
	Status  string
}

// OrderExecutor coloca órdenes reales en el CLOB (solo modo live).
// El engine lo trata como best-effort: si falla, no se muta el ledger.
type OrderExecutor interface {
	// PlaceOrder firma y envía una orden limit BUY. Devuelve el order ID
	// del CLOB o un error de ejecución.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlacedOrder, error)

	// IsNegRisk devuelve true si el token pertenece a un mercado NegRisk.
	IsNegRisk(ctx context.Context, tokenID string) (bool, error)
}
