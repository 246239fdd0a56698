package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferStatus estado de una oferta.
type OfferStatus string

const (
	OfferSent           OfferStatus = "Sent"
	OfferDepositPending OfferStatus = "Teklif-KaporaBekleniyor"
	OfferAccepted       OfferStatus = "Accepted"
	OfferCancelled      OfferStatus = "Cancelled"
)

// Offer propuesta con precio para un par (cliente, unidad).
type Offer struct {
	ID          string
	TenantID    string
	CustomerID  string
	UnitID      string
	SaleID      string
	UserID      string
	Price       decimal.Decimal
	Currency    string
	Status      OfferStatus
	ValidUntil  time.Time
	PaymentPlan *PlanSnapshot
	AcceptedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Open indica si la oferta todavía admite negociación.
func (o *Offer) Open() bool {
	return o.Status == OfferSent
}

// NegotiationSource quién propuso la contraoferta.
type NegotiationSource string

const (
	SourceSales    NegotiationSource = "Sales"
	SourceCustomer NegotiationSource = "Customer"
)

// NegotiationStatus estado de una contraoferta.
type NegotiationStatus string

const (
	NegotiationPending  NegotiationStatus = "Pending"
	NegotiationApproved NegotiationStatus = "Approved"
	NegotiationRejected NegotiationStatus = "Rejected"
)

// Negotiation contraoferta sobre una Offer.
type Negotiation struct {
	ID                  string
	TenantID            string
	OfferID             string
	ProposedBy          string
	Source              NegotiationSource
	ProposedPrice       decimal.Decimal
	ProposedCurrency    string
	ProposedValidUntil  *time.Time
	ProposedPaymentPlan *PlanSnapshot
	Status              NegotiationStatus
	Notes               string
	DecidedAt           *time.Time
	CreatedAt           time.Time
}
