package dto

import "github.com/shopspring/decimal"

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerID string `json:"customer_id"`
	UnitID     string `json:"unit_id,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// UpdateSaleStatusRequest body para PUT /api/sales/:id/status.
type UpdateSaleStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// MatchUnitRequest body para PUT /api/sales/:id/unit.
type MatchUnitRequest struct {
	UnitID string `json:"unit_id"`
}

// ReservationRequest body para POST /api/sales/:id/reservation.
// DepositAmount > 0 deja la venta en Opsiyon-KaporaBekleniyor hasta confirmar la seña.
type ReservationRequest struct {
	UnitID        string          `json:"unit_id"`
	ExpiryDate    string          `json:"expiry_date"` // YYYY-MM-DD
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Currency      string          `json:"currency,omitempty"`
}

// NotesRequest body opcional con notas (cancelaciones, rechazos).
type NotesRequest struct {
	Notes string `json:"notes,omitempty"`
}

// SaleResponse venta en respuestas.
type SaleResponse struct {
	ID                string           `json:"id"`
	TenantID          string           `json:"tenant_id"`
	CustomerID        string           `json:"customer_id"`
	UnitID            string           `json:"unit_id,omitempty"`
	AssignedTo        string           `json:"assigned_to,omitempty"`
	Status            string           `json:"status"`
	FinalPrice        *decimal.Decimal `json:"final_price,omitempty"`
	Currency          string           `json:"currency"`
	ReservationExpiry string           `json:"reservation_expiry,omitempty"`
	ContractDate      string           `json:"contract_date,omitempty"`
	Restarted         bool             `json:"restarted"`
	CreatedBy         string           `json:"created_by"`
	CreatedAt         string           `json:"created_at"`
}

// SaleListResponse listado paginado de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// FailedStepResponse paso secundario que no se aplicó.
type FailedStepResponse struct {
	Step  string `json:"step"`
	Error string `json:"error"`
}

// OutcomeResponse resultado de un comando del pipeline.
type OutcomeResponse struct {
	Sale          *SaleResponse        `json:"sale,omitempty"`
	Offer         *OfferResponse       `json:"offer,omitempty"`
	Deposit       *DepositResponse     `json:"deposit,omitempty"`
	Contract      *ContractResponse    `json:"contract,omitempty"`
	Negotiation   *NegotiationResponse `json:"negotiation,omitempty"`
	RefundStarted bool                 `json:"refund_started,omitempty"`
	Partial       bool                 `json:"partial"`
	Failed        []FailedStepResponse `json:"failed,omitempty"`
}
