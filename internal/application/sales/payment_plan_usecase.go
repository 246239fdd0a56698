package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/schedule"
)

// PlanTerms condiciones de financiación; el capital lo aporta la venta o la contraoferta.
type PlanTerms struct {
	Name             string
	DownPayment      decimal.Decimal
	MonthlyRate      decimal.Decimal
	InstallmentCount int
	StartDate        time.Time
	Interims         []schedule.Interim
	Method           entity.InterestMethod
}

// PaymentPlanUseCase cronogramas de pago de una venta.
type PaymentPlanUseCase struct {
	*core
}

// NewPaymentPlanUseCase construye el caso de uso.
func NewPaymentPlanUseCase(d Deps) *PaymentPlanUseCase {
	return &PaymentPlanUseCase{core: newCore(d)}
}

// buildPlan calcula el cronograma sin persistirlo (sin ids).
func buildPlan(t PlanTerms, principal decimal.Decimal, currency string) (*entity.PaymentPlan, error) {
	res, err := schedule.Calculate(schedule.Input{
		Principal:        principal,
		DownPayment:      t.DownPayment,
		MonthlyRate:      t.MonthlyRate,
		InstallmentCount: t.InstallmentCount,
		StartDate:        t.StartDate,
		Interims:         t.Interims,
		Method:           t.Method,
	})
	if err != nil {
		return nil, err
	}
	name := t.Name
	if name == "" {
		name = fmt.Sprintf("Plan %d cuotas", t.InstallmentCount)
	}
	p := &entity.PaymentPlan{
		Name:           name,
		Currency:       currency,
		Principal:      res.Principal,
		DownPayment:    res.DownPayment,
		MonthlyRate:    t.MonthlyRate,
		InterestMethod: res.Method,
		TotalInterest:  res.TotalInterest,
		GrandTotal:     res.GrandTotal,
		Items:          make([]entity.PaymentItem, 0, len(res.Items)),
	}
	for _, it := range res.Items {
		p.Items = append(p.Items, entity.PaymentItem{
			DueDate:     it.DueDate,
			Amount:      it.Amount,
			Principal:   it.Principal,
			Interest:    it.Interest,
			Kind:        it.Kind,
			Description: it.Description,
			Status:      "Pending",
		})
	}
	return p, nil
}

// assignIDs completa ids y pertenencia antes de persistir.
func assignIDs(p *entity.PaymentPlan, tenantID, saleID string, now time.Time) {
	p.ID = newID()
	p.TenantID = tenantID
	p.SaleID = saleID
	p.CreatedAt = now
	for i := range p.Items {
		p.Items[i].ID = newID()
		p.Items[i].PaymentPlanID = p.ID
	}
}

// planFromSnapshot materializa el plan guardado en una oferta.
func planFromSnapshot(s *entity.PlanSnapshot, tenantID, saleID string, now time.Time) *entity.PaymentPlan {
	p := &entity.PaymentPlan{
		Name:           s.Name,
		Currency:       s.Currency,
		Principal:      s.Principal,
		DownPayment:    s.DownPayment,
		MonthlyRate:    s.MonthlyRate,
		InterestMethod: s.InterestMethod,
		TotalInterest:  s.TotalInterest,
		GrandTotal:     s.GrandTotal,
		Items:          make([]entity.PaymentItem, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		p.Items = append(p.Items, entity.PaymentItem{
			DueDate:     it.DueDate,
			Amount:      it.Amount,
			Principal:   it.Principal,
			Interest:    it.Interest,
			Kind:        it.Kind,
			Description: it.Description,
			Status:      "Pending",
		})
	}
	assignIDs(p, tenantID, saleID, now)
	return p
}

// PreviewSchedule calcula sin persistir.
func (uc *PaymentPlanUseCase) PreviewSchedule(in schedule.Input) (*schedule.Result, error) {
	return schedule.Calculate(in)
}

// CreatePaymentPlan calcula y guarda el plan de la venta. principal cero = precio de la venta.
// Si la venta está en Proposal, la oferta Sent se refresca con el nuevo snapshot.
func (uc *PaymentPlanUseCase) CreatePaymentPlan(ctx context.Context, tenantID, actorID, saleID string, principal decimal.Decimal, terms PlanTerms) (*entity.PaymentPlan, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	var out *entity.PaymentPlan
	err := uc.exec(ctx, []string{saleKey(saleID)}, func(r Repos) error {
		s, err := uc.loadSale(ctx, r, tenantID, saleID)
		if err != nil {
			return err
		}
		if s.Status == entity.SaleLost || s.Status == entity.SaleCompleted {
			return fmt.Errorf("%w: la venta está %s", domain.ErrInvalidTransition, s.Status)
		}
		if principal.IsZero() {
			principal, err = uc.salePrice(ctx, r, s)
			if err != nil {
				return err
			}
		}
		cur, err := normalizeCurrency(s.Currency, uc.policy.DefaultCurrency)
		if err != nil {
			return err
		}
		p, err := buildPlan(terms, principal, cur)
		if err != nil {
			return err
		}
		assignIDs(p, tenantID, s.ID, uc.now())
		if err := r.Plans.Create(ctx, p); err != nil {
			return err
		}
		if s.Status == entity.SaleProposal && s.HasUnit() {
			validUntil := uc.now().Add(uc.policy.OfferValidity)
			if s.ReservationExpiry != nil {
				validUntil = *s.ReservationExpiry
			}
			if _, err := uc.ensureSentOffer(ctx, r, s, validUntil, actorID); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
