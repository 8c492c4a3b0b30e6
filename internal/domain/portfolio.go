package domain

// Portfolio es el estado observable del ledger al final de una iteración.
type Portfolio struct {
	Balance        float64
	InitialBalance float64
	Trades         []Trade
}

// Open devuelve los trades todavía sin resolver.
func (p Portfolio) Open() []Trade {
	var open []Trade
	for _, t := range p.Trades {
		if !t.Resolved {
			open = append(open, t)
		}
	}
	return open
}

// Record devuelve (wins, losses) sobre los trades resueltos.
func (p Portfolio) Record() (wins, losses int) {
	for _, t := range p.Trades {
		if !t.Resolved {
			continue
		}
		if t.Result == ResultWin {
			wins++
		} else {
			losses++
		}
	}
	return wins, losses
}

// PnL devuelve la ganancia/pérdida acumulada respecto al balance inicial.
func (p Portfolio) PnL() float64 {
	return p.Balance - p.InitialBalance
}
