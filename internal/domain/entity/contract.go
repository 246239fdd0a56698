package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Contract registro legal de una venta ganada.
type Contract struct {
	ID             string
	TenantID       string
	SaleID         string
	OfferID        string
	UnitID         string
	CustomerID     string
	ContractNumber string
	ContractDate   time.Time
	Amount         decimal.Decimal
	TotalAmount    decimal.Decimal // incluye intereses del plan si lo hay
	Currency       string
	Notes          string
	CreatedAt      time.Time
}

// ContractNumberFor deriva el número de contrato de la oferta: CNT-<8 primeros caracteres>.
func ContractNumberFor(offerID string) string {
	id := offerID
	if len(id) > 8 {
		id = id[:8]
	}
	return "CNT-" + strings.ToUpper(id)
}
