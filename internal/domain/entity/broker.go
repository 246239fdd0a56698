package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeadStatus vocabulario externo del sistema de referidos.
type LeadStatus string

const (
	LeadNew            LeadStatus = "New"
	LeadQualified      LeadStatus = "Qualified"
	LeadReserved       LeadStatus = "Reserved"
	LeadOfferSent      LeadStatus = "OfferSent"
	LeadContractSigned LeadStatus = "ContractSigned"
	LeadRejected       LeadStatus = "Rejected"
)

// CommissionType política de comisión de un broker.
type CommissionType string

const (
	CommissionFlat   CommissionType = "flat"
	CommissionTiered CommissionType = "tiered"
)

// CommissionTier tramo: a partir de MinSuccesses cierres se aplica Rate (%).
type CommissionTier struct {
	MinSuccesses int             `json:"min_successes"`
	Rate         decimal.Decimal `json:"rate"`
}

// Broker agente externo que refiere clientes.
type Broker struct {
	ID              string
	TenantID        string
	Name            string
	Phone           string
	Active          bool
	CommissionType  CommissionType
	CommissionRate  decimal.Decimal // % para flat
	CommissionTiers []CommissionTier
	CreatedAt       time.Time
}

// BrokerLead espejo externo del avance de una venta.
type BrokerLead struct {
	ID                 string
	TenantID           string
	BrokerID           string
	Phone              string // clave de propiedad, normalizado
	CustomerID         string
	Status             LeadStatus
	OwnershipExpiresAt time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// OwnsPhone indica si el lead mantiene la propiedad del teléfono en el instante dado.
func (l *BrokerLead) OwnsPhone(at time.Time) bool {
	return l.Status != LeadRejected && at.Before(l.OwnershipExpiresAt)
}

// LeadHistory fila de auditoría de cambios de estado.
type LeadHistory struct {
	ID        string
	LeadID    string
	OldStatus LeadStatus
	NewStatus LeadStatus
	ChangedBy string
	Notes     string
	CreatedAt time.Time
}

// Commission registro de comisión generado al firmarse el contrato.
type Commission struct {
	ID         string
	TenantID   string
	BrokerID   string
	LeadID     string
	SaleID     string
	BaseAmount decimal.Decimal
	Rate       decimal.Decimal
	Amount     decimal.Decimal
	Currency   string
	Status     string
	CreatedAt  time.Time
}
