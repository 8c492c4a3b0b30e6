package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier imprimiendo el portfolio por stdout.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
// Con table=false imprime solo el resumen de una línea.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el estado del portfolio al final de una iteración.
func (c *Console) Notify(_ context.Context, p domain.Portfolio) error {
	open := p.Open()
	wins, losses := p.Record()

	fmt.Fprintf(c.out, "[%s] balance %.2f USDC (%+.2f) | open:%d W:%d L:%d\n",
		time.Now().Format("15:04:05"), p.Balance, p.PnL(), len(open), wins, losses)

	if !c.table || len(open) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "Side", "Amount", "Price", "Snapshot", "Expires")

	for i, t := range open {
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(t.Title, 40),
			string(t.Type),
			fmt.Sprintf("%.2f", t.Amount),
			fmt.Sprintf("%.2f", t.Price),
			fmt.Sprintf("%.2f", t.CurrentBalance),
			t.ExpiresAt.Format("01-02 15:04"),
		)
	}

	table.Render()
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
