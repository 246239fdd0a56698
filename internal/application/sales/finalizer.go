package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/pipeline"
)

// finalizeOffer acepta la oferta, cierra la venta del par en Sold, vende la unidad y crea el contrato
// CNT-<8 primeros caracteres del id de la oferta>. Sin venta activa para el par la oferta está
// obsoleta y se rechaza con ErrConflict.
// Idempotente: si el contrato ya existe se devuelve sin repetir efectos.
func (c *core) finalizeOffer(ctx context.Context, r Repos, off *entity.Offer, actorID string, o *Outcome) error {
	number := entity.ContractNumberFor(off.ID)
	existing, err := r.Contracts.GetByNumber(ctx, off.TenantID, number)
	if err != nil {
		return err
	}
	if existing != nil {
		o.Offer = off
		o.Contract = existing
		return nil
	}
	if off.Status == entity.OfferCancelled {
		return fmt.Errorf("%w: la oferta está cancelada", domain.ErrConflict)
	}

	found, err := r.Sales.FindActiveByCustomerAndUnit(ctx, off.TenantID, off.CustomerID, off.UnitID)
	if err != nil {
		return err
	}
	if found == nil {
		return fmt.Errorf("%w: la oferta %s no tiene venta activa para el cliente y la unidad", domain.ErrConflict, off.ID)
	}
	sale, err := c.loadSale(ctx, r, off.TenantID, found.ID)
	if err != nil {
		return err
	}

	now := c.now()
	off.Status = entity.OfferAccepted
	off.AcceptedAt = &now
	off.UpdatedAt = now
	if err := r.Offers.Update(ctx, off); err != nil {
		return err
	}
	o.Offer = off

	sale.FinalPrice = decimal.NewNullDecimal(off.Price)
	sale.Currency = off.Currency
	sale.ContractDate = &now
	if pipeline.SellsUnit(sale.Status) {
		sale.UpdatedAt = now
		if err := r.Sales.Update(ctx, sale); err != nil {
			return err
		}
		o.Sale = sale
	} else if err := c.moveSale(ctx, r, sale, entity.SaleSold, actorID, "contrato "+number, o); err != nil {
		return err
	}

	latest, err := r.Plans.GetLatestBySale(ctx, off.TenantID, sale.ID)
	if err != nil {
		return err
	}
	plan, linked := contractPlan(latest, off, sale.ID, now)
	total := off.Price
	if plan != nil {
		total = plan.GrandTotal
	}

	contract := &entity.Contract{
		ID:             newID(),
		TenantID:       off.TenantID,
		OfferID:        off.ID,
		SaleID:         sale.ID,
		UnitID:         off.UnitID,
		CustomerID:     off.CustomerID,
		ContractNumber: number,
		ContractDate:   now,
		Amount:         off.Price,
		TotalAmount:    total,
		Currency:       off.Currency,
		CreatedAt:      now,
	}
	if err := r.Contracts.Create(ctx, contract); err != nil {
		return err
	}

	switch {
	case plan == nil:
	case linked:
		if err := r.Plans.LinkContract(ctx, off.TenantID, plan.ID, contract.ID); err != nil {
			return err
		}
	default:
		plan.ContractID = contract.ID
		if err := r.Plans.Create(ctx, plan); err != nil {
			return err
		}
	}
	o.Contract = contract
	c.log.Info().Str("offer_id", off.ID).Str("contract", number).Bool("plan_linked", linked).Msg("oferta cerrada")
	return nil
}

// contractPlan elige el cronograma del contrato. Manda la oferta: el último plan de la venta se
// vincula solo si coincide con el snapshot de la oferta (o, sin snapshot, si su principal es el
// precio de la oferta). Si el snapshot difiere se materializa (linked=false). nil = sin plan.
func contractPlan(latest *entity.PaymentPlan, off *entity.Offer, saleID string, now time.Time) (plan *entity.PaymentPlan, linked bool) {
	if off.PaymentPlan != nil {
		if latest != nil && latest.Snapshot().SameTerms(off.PaymentPlan) {
			return latest, true
		}
		return planFromSnapshot(off.PaymentPlan, off.TenantID, saleID, now), false
	}
	if latest != nil && latest.Principal.Equal(off.Price) {
		return latest, true
	}
	return nil, false
}
