package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitStatus disponibilidad de una unidad.
type UnitStatus string

const (
	UnitForSale  UnitStatus = "ForSale"
	UnitReserved UnitStatus = "Reserved"
	UnitSold     UnitStatus = "Sold"
)

// Unit activo físico vendible (departamento, local, lote).
type Unit struct {
	ID        string
	TenantID  string
	ProjectID string
	Code      string
	Status    UnitStatus
	Price     decimal.Decimal
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Project agrupa unidades; los equipos de venta se asignan por proyecto.
type Project struct {
	ID        string
	TenantID  string
	Name      string
	City      string
	CreatedAt time.Time
}
