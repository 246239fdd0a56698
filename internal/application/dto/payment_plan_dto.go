package dto

import "github.com/shopspring/decimal"

// InterimRequest pago intermedio (balón) a MonthOffset meses del inicio.
type InterimRequest struct {
	MonthOffset int             `json:"month_offset"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// PlanTermsRequest condiciones de financiación.
// MonthlyRate en porcentaje (1.5 = 1,5 % mensual). InterestMethod: flat | annuity.
type PlanTermsRequest struct {
	Name             string           `json:"name,omitempty"`
	DownPayment      decimal.Decimal  `json:"down_payment"`
	MonthlyRate      decimal.Decimal  `json:"monthly_rate"`
	InstallmentCount int              `json:"installment_count"`
	StartDate        string           `json:"start_date"` // YYYY-MM-DD
	Interims         []InterimRequest `json:"interims,omitempty"`
	InterestMethod   string           `json:"interest_method,omitempty"`
}

// CreatePaymentPlanRequest body para POST /api/sales/:id/payment-plan.
// Principal cero toma el precio de la venta.
type CreatePaymentPlanRequest struct {
	Principal decimal.Decimal `json:"principal"`
	PlanTermsRequest
}

// PreviewScheduleRequest body para POST /api/payment-plans/preview.
type PreviewScheduleRequest struct {
	Principal decimal.Decimal `json:"principal"`
	PlanTermsRequest
}

// ScheduleItemResponse cuota del cronograma.
type ScheduleItemResponse struct {
	DueDate     string          `json:"due_date"`
	Amount      decimal.Decimal `json:"amount"`
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Status      string          `json:"status,omitempty"`
}

// ScheduleResponse cronograma calculado sin persistir.
type ScheduleResponse struct {
	Principal      decimal.Decimal        `json:"principal"`
	DownPayment    decimal.Decimal        `json:"down_payment"`
	Financed       decimal.Decimal        `json:"financed"`
	TotalInterest  decimal.Decimal        `json:"total_interest"`
	GrandTotal     decimal.Decimal        `json:"grand_total"`
	InterestMethod string                 `json:"interest_method"`
	Items          []ScheduleItemResponse `json:"items"`
}

// PaymentPlanResponse plan persistido.
type PaymentPlanResponse struct {
	ID             string                 `json:"id"`
	SaleID         string                 `json:"sale_id,omitempty"`
	ContractID     string                 `json:"contract_id,omitempty"`
	Name           string                 `json:"name"`
	Currency       string                 `json:"currency"`
	Principal      decimal.Decimal        `json:"principal"`
	DownPayment    decimal.Decimal        `json:"down_payment"`
	MonthlyRate    decimal.Decimal        `json:"monthly_rate"`
	InterestMethod string                 `json:"interest_method"`
	TotalInterest  decimal.Decimal        `json:"total_interest"`
	GrandTotal     decimal.Decimal        `json:"grand_total"`
	Items          []ScheduleItemResponse `json:"items"`
}

// PlanSnapshotView copia del plan guardada en ofertas y contraofertas.
type PlanSnapshotView struct {
	Name           string                 `json:"name"`
	Currency       string                 `json:"currency"`
	Principal      decimal.Decimal        `json:"principal"`
	DownPayment    decimal.Decimal        `json:"down_payment"`
	TotalInterest  decimal.Decimal        `json:"total_interest"`
	GrandTotal     decimal.Decimal        `json:"grand_total"`
	InterestMethod string                 `json:"interest_method"`
	Items          []ScheduleItemResponse `json:"items"`
}
