package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus estado de una venta dentro del pipeline.
type SaleStatus string

const (
	SaleLead           SaleStatus = "Lead"
	SaleProspect       SaleStatus = "Prospect"
	SaleReservation    SaleStatus = "Reservation"
	SaleOpsiyonDeposit SaleStatus = "Opsiyon-KaporaBekleniyor"
	SaleProposal       SaleStatus = "Proposal"
	SaleTeklifDeposit  SaleStatus = "Teklif-KaporaBekleniyor"
	SaleNegotiation    SaleStatus = "Negotiation"
	SaleSold           SaleStatus = "Sold"
	SaleCompleted      SaleStatus = "Completed"
	SaleLost           SaleStatus = "Lost"
	SaleContract       SaleStatus = "Contract" // heredado de importaciones; se cuenta como cerrado
)

// Sale un intento de venta de un cliente (opcionalmente sobre una unidad).
type Sale struct {
	ID                string
	TenantID          string
	CustomerID        string
	UnitID            string // vacío = sin unidad
	AssignedTo        string
	Status            SaleStatus
	FinalPrice        decimal.NullDecimal
	Currency          string
	ReservationExpiry *time.Time
	ContractDate      *time.Time
	RestartedAt       *time.Time // solo en ventas Lost reemplazadas por restartSale
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasUnit indica si la venta tiene unidad asignada.
func (s *Sale) HasUnit() bool { return s.UnitID != "" }
