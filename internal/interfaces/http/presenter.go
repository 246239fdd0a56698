package http

import (
	"strings"
	"time"

	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/schedule"
)

// ── Entrada ───────────────────────────────────────────────────────────────────

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, domain.Validation("%s debe tener formato YYYY-MM-DD", field)
	}
	return t, nil
}

func parseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func planTerms(in dto.PlanTermsRequest) (sales.PlanTerms, error) {
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return sales.PlanTerms{}, err
	}
	method := entity.InterestMethod(strings.ToLower(in.InterestMethod))
	if method == "" {
		method = entity.InterestFlat
	}
	if method != entity.InterestFlat && method != entity.InterestAnnuity {
		return sales.PlanTerms{}, domain.Validation("interest_method inválido %q", in.InterestMethod)
	}
	interims := make([]schedule.Interim, 0, len(in.Interims))
	for _, it := range in.Interims {
		interims = append(interims, schedule.Interim{MonthOffset: it.MonthOffset, Amount: it.Amount, Description: it.Description})
	}
	return sales.PlanTerms{
		Name:             in.Name,
		DownPayment:      in.DownPayment,
		MonthlyRate:      in.MonthlyRate,
		InstallmentCount: in.InstallmentCount,
		StartDate:        start,
		Interims:         interims,
		Method:           method,
	}, nil
}

func negotiationSource(s string) entity.NegotiationSource {
	switch strings.ToLower(s) {
	case "customer":
		return entity.SourceCustomer
	case "sales", "":
		return entity.SourceSales
	}
	return entity.NegotiationSource(s)
}

// ── Salida ────────────────────────────────────────────────────────────────────

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	if s == nil {
		return nil
	}
	out := &dto.SaleResponse{
		ID:                s.ID,
		TenantID:          s.TenantID,
		CustomerID:        s.CustomerID,
		UnitID:            s.UnitID,
		AssignedTo:        s.AssignedTo,
		Status:            string(s.Status),
		Currency:          s.Currency,
		ReservationExpiry: formatDate(s.ReservationExpiry),
		ContractDate:      formatDate(s.ContractDate),
		Restarted:         s.RestartedAt != nil,
		CreatedBy:         s.CreatedBy,
		CreatedAt:         formatTime(&s.CreatedAt),
	}
	if s.FinalPrice.Valid {
		p := s.FinalPrice.Decimal
		out.FinalPrice = &p
	}
	return out
}

func toScheduleItems(items []entity.PlanSnapshotItem) []dto.ScheduleItemResponse {
	out := make([]dto.ScheduleItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.ScheduleItemResponse{
			DueDate:     it.DueDate.Format(dto.DateLayout),
			Amount:      it.Amount,
			Principal:   it.Principal,
			Interest:    it.Interest,
			Kind:        string(it.Kind),
			Description: it.Description,
		})
	}
	return out
}

func toPlanSnapshotView(p *entity.PlanSnapshot) *dto.PlanSnapshotView {
	if p == nil {
		return nil
	}
	return &dto.PlanSnapshotView{
		Name:           p.Name,
		Currency:       p.Currency,
		Principal:      p.Principal,
		DownPayment:    p.DownPayment,
		TotalInterest:  p.TotalInterest,
		GrandTotal:     p.GrandTotal,
		InterestMethod: string(p.InterestMethod),
		Items:          toScheduleItems(p.Items),
	}
}

func toOfferResponse(o *entity.Offer) *dto.OfferResponse {
	if o == nil {
		return nil
	}
	return &dto.OfferResponse{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		UnitID:      o.UnitID,
		SaleID:      o.SaleID,
		UserID:      o.UserID,
		Price:       o.Price,
		Currency:    o.Currency,
		Status:      string(o.Status),
		ValidUntil:  formatDate(&o.ValidUntil),
		PaymentPlan: toPlanSnapshotView(o.PaymentPlan),
		AcceptedAt:  formatTime(o.AcceptedAt),
	}
}

func toNegotiationResponse(n *entity.Negotiation) *dto.NegotiationResponse {
	if n == nil {
		return nil
	}
	return &dto.NegotiationResponse{
		ID:                  n.ID,
		OfferID:             n.OfferID,
		ProposedBy:          n.ProposedBy,
		Source:              string(n.Source),
		ProposedPrice:       n.ProposedPrice,
		ProposedCurrency:    n.ProposedCurrency,
		ProposedValidUntil:  formatDate(n.ProposedValidUntil),
		ProposedPaymentPlan: toPlanSnapshotView(n.ProposedPaymentPlan),
		Status:              string(n.Status),
		Notes:               n.Notes,
		CreatedAt:           formatTime(&n.CreatedAt),
	}
}

func toDepositResponse(d *entity.Deposit) *dto.DepositResponse {
	if d == nil {
		return nil
	}
	return &dto.DepositResponse{
		ID:         d.ID,
		CustomerID: d.CustomerID,
		SaleID:     d.SaleID,
		OfferID:    d.OfferID,
		Amount:     d.Amount,
		Currency:   d.Currency,
		Status:     string(d.Status),
		PaidAt:     formatTime(d.PaidAt),
		RefundedAt: formatTime(d.RefundedAt),
	}
}

func toContractResponse(c *entity.Contract) *dto.ContractResponse {
	if c == nil {
		return nil
	}
	return &dto.ContractResponse{
		ID:             c.ID,
		SaleID:         c.SaleID,
		OfferID:        c.OfferID,
		UnitID:         c.UnitID,
		CustomerID:     c.CustomerID,
		ContractNumber: c.ContractNumber,
		ContractDate:   formatDate(&c.ContractDate),
		Amount:         c.Amount,
		TotalAmount:    c.TotalAmount,
		Currency:       c.Currency,
	}
}

func toOutcomeResponse(o *sales.Outcome) *dto.OutcomeResponse {
	out := &dto.OutcomeResponse{
		Sale:          toSaleResponse(o.Sale),
		Offer:         toOfferResponse(o.Offer),
		Deposit:       toDepositResponse(o.Deposit),
		Contract:      toContractResponse(o.Contract),
		Negotiation:   toNegotiationResponse(o.Negotiation),
		RefundStarted: o.RefundStarted,
		Partial:       o.Partial(),
	}
	for _, f := range o.Failed {
		out.Failed = append(out.Failed, dto.FailedStepResponse{Step: f.Step, Error: f.Err.Error()})
	}
	return out
}

func toScheduleResponse(r *schedule.Result) *dto.ScheduleResponse {
	out := &dto.ScheduleResponse{
		Principal:      r.Principal,
		DownPayment:    r.DownPayment,
		Financed:       r.Financed,
		TotalInterest:  r.TotalInterest,
		GrandTotal:     r.GrandTotal,
		InterestMethod: string(r.Method),
		Items:          make([]dto.ScheduleItemResponse, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, dto.ScheduleItemResponse{
			DueDate:     it.DueDate.Format(dto.DateLayout),
			Amount:      it.Amount,
			Principal:   it.Principal,
			Interest:    it.Interest,
			Kind:        string(it.Kind),
			Description: it.Description,
		})
	}
	return out
}

func toPaymentPlanResponse(p *entity.PaymentPlan) *dto.PaymentPlanResponse {
	out := &dto.PaymentPlanResponse{
		ID:             p.ID,
		SaleID:         p.SaleID,
		ContractID:     p.ContractID,
		Name:           p.Name,
		Currency:       p.Currency,
		Principal:      p.Principal,
		DownPayment:    p.DownPayment,
		MonthlyRate:    p.MonthlyRate,
		InterestMethod: string(p.InterestMethod),
		TotalInterest:  p.TotalInterest,
		GrandTotal:     p.GrandTotal,
		Items:          make([]dto.ScheduleItemResponse, 0, len(p.Items)),
	}
	for _, it := range p.Items {
		out.Items = append(out.Items, dto.ScheduleItemResponse{
			DueDate:     it.DueDate.Format(dto.DateLayout),
			Amount:      it.Amount,
			Principal:   it.Principal,
			Interest:    it.Interest,
			Kind:        string(it.Kind),
			Description: it.Description,
			Status:      it.Status,
		})
	}
	return out
}
