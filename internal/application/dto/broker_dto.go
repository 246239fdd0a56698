package dto

import "github.com/shopspring/decimal"

// CommissionTierRequest tramo de comisión escalonada.
type CommissionTierRequest struct {
	MinSuccesses int             `json:"min_successes"`
	Rate         decimal.Decimal `json:"rate"`
}

// CreateBrokerRequest body para POST /api/brokers.
type CreateBrokerRequest struct {
	Name           string                  `json:"name"`
	Phone          string                  `json:"phone,omitempty"`
	CommissionType string                  `json:"commission_type"` // flat | tiered
	CommissionRate decimal.Decimal         `json:"commission_rate"`
	Tiers          []CommissionTierRequest `json:"tiers,omitempty"`
}

// BrokerResponse broker en respuestas.
type BrokerResponse struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Phone          string                  `json:"phone,omitempty"`
	Active         bool                    `json:"active"`
	CommissionType string                  `json:"commission_type"`
	CommissionRate decimal.Decimal         `json:"commission_rate"`
	Tiers          []CommissionTierRequest `json:"tiers,omitempty"`
}

// RegisterLeadRequest body para POST /api/broker-leads.
type RegisterLeadRequest struct {
	BrokerID   string `json:"broker_id"`
	Phone      string `json:"phone"`
	CustomerID string `json:"customer_id,omitempty"`
}

// LinkCustomerRequest body para PUT /api/broker-leads/:id/customer.
type LinkCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

// UpdateLeadStatusRequest body para PUT /api/broker-leads/:id/status.
// BaseAmount es la base de la comisión cuando el estado es ContractSigned.
type UpdateLeadStatusRequest struct {
	Status     string          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	BaseAmount decimal.Decimal `json:"base_amount"`
	Currency   string          `json:"currency,omitempty"`
}

// BrokerLeadResponse lead referido en respuestas.
type BrokerLeadResponse struct {
	ID                 string `json:"id"`
	BrokerID           string `json:"broker_id"`
	Phone              string `json:"phone"`
	CustomerID         string `json:"customer_id,omitempty"`
	Status             string `json:"status"`
	OwnershipExpiresAt string `json:"ownership_expires_at"`
	CreatedAt          string `json:"created_at"`
}

// LeadHistoryResponse fila del historial de estados.
type LeadHistoryResponse struct {
	OldStatus string `json:"old_status,omitempty"`
	NewStatus string `json:"new_status"`
	ChangedBy string `json:"changed_by"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

// CommissionResponse comisión generada.
type CommissionResponse struct {
	ID         string          `json:"id"`
	BrokerID   string          `json:"broker_id"`
	LeadID     string          `json:"lead_id"`
	SaleID     string          `json:"sale_id,omitempty"`
	BaseAmount decimal.Decimal `json:"base_amount"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     string          `json:"status"`
}

// LeadUpdateResponse resultado de un cambio de estado del lead.
type LeadUpdateResponse struct {
	Lead       BrokerLeadResponse  `json:"lead"`
	Changed    bool                `json:"changed"`
	Commission *CommissionResponse `json:"commission,omitempty"`
}
