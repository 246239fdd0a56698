package dto

import "github.com/shopspring/decimal"

// OfferResponse oferta en respuestas.
type OfferResponse struct {
	ID          string            `json:"id"`
	CustomerID  string            `json:"customer_id"`
	UnitID      string            `json:"unit_id"`
	SaleID      string            `json:"sale_id,omitempty"`
	UserID      string            `json:"user_id"`
	Price       decimal.Decimal   `json:"price"`
	Currency    string            `json:"currency"`
	Status      string            `json:"status"`
	ValidUntil  string            `json:"valid_until"`
	PaymentPlan *PlanSnapshotView `json:"payment_plan,omitempty"`
	AcceptedAt  string            `json:"accepted_at,omitempty"`
}

// CreateNegotiationRequest body para POST /api/offers/:id/negotiations.
type CreateNegotiationRequest struct {
	Source             string            `json:"source"` // sales | customer
	ProposedPrice      decimal.Decimal   `json:"proposed_price"`
	ProposedCurrency   string            `json:"proposed_currency,omitempty"`
	ProposedValidUntil string            `json:"proposed_valid_until,omitempty"` // YYYY-MM-DD
	PaymentPlan        *PlanTermsRequest `json:"payment_plan,omitempty"`
	Notes              string            `json:"notes,omitempty"`
}

// ApproveNegotiationRequest body para POST /api/negotiations/:id/approve.
// Con DepositAmount > 0 la oferta queda esperando la seña; si no, se cierra en el acto.
type ApproveNegotiationRequest struct {
	DepositAmount decimal.Decimal `json:"deposit_amount"`
}

// NegotiationResponse contraoferta en respuestas.
type NegotiationResponse struct {
	ID                  string            `json:"id"`
	OfferID             string            `json:"offer_id"`
	ProposedBy          string            `json:"proposed_by"`
	Source              string            `json:"source"`
	ProposedPrice       decimal.Decimal   `json:"proposed_price"`
	ProposedCurrency    string            `json:"proposed_currency"`
	ProposedValidUntil  string            `json:"proposed_valid_until,omitempty"`
	ProposedPaymentPlan *PlanSnapshotView `json:"proposed_payment_plan,omitempty"`
	Status              string            `json:"status"`
	Notes               string            `json:"notes,omitempty"`
	CreatedAt           string            `json:"created_at"`
}

// ContractResponse contrato generado al cerrar una oferta.
type ContractResponse struct {
	ID             string          `json:"id"`
	SaleID         string          `json:"sale_id,omitempty"`
	OfferID        string          `json:"offer_id"`
	UnitID         string          `json:"unit_id"`
	CustomerID     string          `json:"customer_id"`
	ContractNumber string          `json:"contract_number"`
	ContractDate   string          `json:"contract_date"`
	Amount         decimal.Decimal `json:"amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Currency       string          `json:"currency"`
}

// DepositResponse seña en respuestas.
type DepositResponse struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	SaleID     string          `json:"sale_id,omitempty"`
	OfferID    string          `json:"offer_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     string          `json:"status"`
	PaidAt     string          `json:"paid_at,omitempty"`
	RefundedAt string          `json:"refunded_at,omitempty"`
}
