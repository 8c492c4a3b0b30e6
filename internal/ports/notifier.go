package ports

import (
	"context"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// Notifier publica el estado del portfolio al final de cada iteración.
type Notifier interface {
	Notify(ctx context.Context, p domain.Portfolio) error
}
