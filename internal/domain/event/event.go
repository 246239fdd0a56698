// Package event eventos de dominio del pipeline. Se escriben en el outbox dentro de la misma
// transacción que el cambio de estado y se publican tras el commit.
package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Type tipo de evento.
type Type string

const (
	SaleStatusChanged Type = "sale.status_changed"
	DepositConfirmed  Type = "deposit.confirmed"
)

// SaleStatus estado resultante de una venta tras un comando.
type SaleStatus struct {
	SaleID     string          `json:"sale_id"`
	CustomerID string          `json:"customer_id"`
	Status     string          `json:"status"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Currency   string          `json:"currency"`
	DepositID  string          `json:"deposit_id,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// Event envelope persistido en el outbox.
type Event struct {
	ID         string
	Type       Type
	TenantID   string
	ActorID    string
	Payload    SaleStatus
	OccurredAt time.Time
}

// Handler procesa un evento. Debe ser seguro para llamadas concurrentes e idempotente.
type Handler interface {
	HandleEvent(ctx context.Context, evt Event) error
}

// HandlerFunc adapta una función a Handler.
type HandlerFunc func(ctx context.Context, evt Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Publisher entrega eventos a los suscriptores.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
