package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositStatus ciclo de vida de una seña (kapora).
type DepositStatus string

const (
	DepositPending       DepositStatus = "Pending"
	DepositPaid          DepositStatus = "Paid"
	DepositRefundPending DepositStatus = "RefundPending"
	DepositRefunded      DepositStatus = "Refunded"
	DepositCancelled     DepositStatus = "Cancelled"
)

// Deposit monto en garantía atado a exactamente una venta u oferta.
type Deposit struct {
	ID         string
	TenantID   string
	CustomerID string
	SaleID     string
	OfferID    string
	Amount     decimal.Decimal
	Currency   string
	Status     DepositStatus
	PaidAt     *time.Time
	RefundedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OnSale indica si la seña pertenece a la ruta de venta (reserva) y no a una oferta.
func (d *Deposit) OnSale() bool { return d.SaleID != "" }

// Valid comprueba que esté atada a exactamente uno de {venta, oferta}.
func (d *Deposit) Valid() bool {
	return (d.SaleID == "") != (d.OfferID == "")
}
