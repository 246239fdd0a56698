package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterestMethod forma de aplicar el interés mensual.
type InterestMethod string

const (
	InterestFlat    InterestMethod = "flat"    // add-on sobre el saldo financiado
	InterestAnnuity InterestMethod = "annuity" // cuota fija con interés compuesto
)

// PaymentKind tipo de ítem del cronograma.
type PaymentKind string

const (
	KindDownPayment PaymentKind = "DownPayment"
	KindInterim     PaymentKind = "Interim"
	KindInstallment PaymentKind = "Installment"
)

// PaymentPlan cronograma persistido de una venta; se vincula al contrato al cerrarse.
type PaymentPlan struct {
	ID             string
	TenantID       string
	SaleID         string
	ContractID     string
	Name           string
	Currency       string
	Principal      decimal.Decimal
	DownPayment    decimal.Decimal
	MonthlyRate    decimal.Decimal
	InterestMethod InterestMethod
	TotalInterest  decimal.Decimal
	GrandTotal     decimal.Decimal
	Items          []PaymentItem
	CreatedAt      time.Time
}

// PaymentItem cuota del cronograma.
type PaymentItem struct {
	ID            string
	PaymentPlanID string
	DueDate       time.Time
	Amount        decimal.Decimal
	Principal     decimal.Decimal
	Interest      decimal.Decimal
	Kind          PaymentKind
	Description   string
	Status        string // Pending | Paid
}

// PlanSnapshotVersion versión del formato serializado en offers/negotiations.
const PlanSnapshotVersion = 1

// PlanSnapshot copia inmutable de un plan guardada en una oferta o contraoferta.
type PlanSnapshot struct {
	Version        int                `json:"version"`
	Name           string             `json:"name"`
	Currency       string             `json:"currency"`
	Principal      decimal.Decimal    `json:"principal"`
	DownPayment    decimal.Decimal    `json:"down_payment"`
	MonthlyRate    decimal.Decimal    `json:"monthly_rate"`
	InterestMethod InterestMethod     `json:"interest_method"`
	TotalInterest  decimal.Decimal    `json:"total_interest"`
	GrandTotal     decimal.Decimal    `json:"grand_total"`
	Items          []PlanSnapshotItem `json:"items"`
}

// PlanSnapshotItem cuota dentro de un snapshot.
type PlanSnapshotItem struct {
	DueDate     time.Time       `json:"due_date"`
	Amount      decimal.Decimal `json:"amount"`
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Kind        PaymentKind     `json:"kind"`
	Description string          `json:"description"`
}

// Snapshot congela el plan.
func (p *PaymentPlan) Snapshot() *PlanSnapshot {
	s := &PlanSnapshot{
		Version:        PlanSnapshotVersion,
		Name:           p.Name,
		Currency:       p.Currency,
		Principal:      p.Principal,
		DownPayment:    p.DownPayment,
		MonthlyRate:    p.MonthlyRate,
		InterestMethod: p.InterestMethod,
		TotalInterest:  p.TotalInterest,
		GrandTotal:     p.GrandTotal,
		Items:          make([]PlanSnapshotItem, 0, len(p.Items)),
	}
	for _, it := range p.Items {
		s.Items = append(s.Items, PlanSnapshotItem{
			DueDate:     it.DueDate,
			Amount:      it.Amount,
			Principal:   it.Principal,
			Interest:    it.Interest,
			Kind:        it.Kind,
			Description: it.Description,
		})
	}
	return s
}

// SameTerms true si ambos snapshots describen el mismo cronograma (importes y fechas).
func (s *PlanSnapshot) SameTerms(o *PlanSnapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Currency != o.Currency || s.InterestMethod != o.InterestMethod ||
		!s.Principal.Equal(o.Principal) || !s.DownPayment.Equal(o.DownPayment) ||
		!s.MonthlyRate.Equal(o.MonthlyRate) || !s.GrandTotal.Equal(o.GrandTotal) ||
		len(s.Items) != len(o.Items) {
		return false
	}
	for i := range s.Items {
		a, b := s.Items[i], o.Items[i]
		if a.Kind != b.Kind || !a.DueDate.Equal(b.DueDate) || !a.Amount.Equal(b.Amount) {
			return false
		}
	}
	return true
}
