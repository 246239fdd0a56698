package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// NegotiationInput contraoferta propuesta sobre una oferta.
type NegotiationInput struct {
	Source             entity.NegotiationSource
	ProposedPrice      decimal.Decimal
	ProposedCurrency   string
	ProposedValidUntil *time.Time
	Plan               *PlanTerms
	Notes              string
}

// OfferUseCase ciclo de vida de ofertas y contraofertas.
type OfferUseCase struct {
	*core
}

// NewOfferUseCase construye el caso de uso.
func NewOfferUseCase(d Deps) *OfferUseCase {
	return &OfferUseCase{core: newCore(d)}
}

func (c *core) loadOffer(ctx context.Context, r Repos, tenantID, offerID string) (*entity.Offer, error) {
	off, err := r.Offers.GetForUpdate(ctx, tenantID, offerID)
	if err != nil {
		return nil, err
	}
	if off == nil {
		return nil, domain.NotFound("offer", offerID)
	}
	return off, nil
}

// ensureSentOffer crea la oferta Sent del par (cliente, unidad) o refresca la existente.
// Precio: final_price de la venta o, si no hay, el de la unidad. Plan: snapshot del último plan de la venta.
func (c *core) ensureSentOffer(ctx context.Context, r Repos, s *entity.Sale, validUntil time.Time, actorID string) (*entity.Offer, error) {
	u, err := r.Units.GetByID(ctx, s.TenantID, s.UnitID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("unit", s.UnitID)
	}
	price := u.Price
	if s.FinalPrice.Valid {
		price = s.FinalPrice.Decimal
	}
	cur := s.Currency
	if cur == "" {
		cur = u.Currency
	}
	var snap *entity.PlanSnapshot
	plan, err := r.Plans.GetLatestBySale(ctx, s.TenantID, s.ID)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		snap = plan.Snapshot()
	}

	offers, err := r.Offers.ListByCustomerAndUnit(ctx, s.TenantID, s.CustomerID, s.UnitID)
	if err != nil {
		return nil, err
	}
	now := c.now()
	for _, off := range offers {
		if off.Status != entity.OfferSent {
			continue
		}
		off.SaleID = s.ID
		off.Price = price
		off.Currency = cur
		off.ValidUntil = validUntil
		off.PaymentPlan = snap
		off.UpdatedAt = now
		if err := r.Offers.Update(ctx, off); err != nil {
			return nil, err
		}
		return off, nil
	}

	off := &entity.Offer{
		ID:          newID(),
		TenantID:    s.TenantID,
		CustomerID:  s.CustomerID,
		UnitID:      s.UnitID,
		SaleID:      s.ID,
		UserID:      actorID,
		Price:       price,
		Currency:    cur,
		Status:      entity.OfferSent,
		ValidUntil:  validUntil,
		PaymentPlan: snap,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.Offers.Create(ctx, off); err != nil {
		return nil, err
	}
	return off, nil
}

// discardOffers retira las ofertas no aceptadas del par: se borran si no tienen señas,
// se cancelan si solo tienen señas pendientes y se conservan si hay una seña pagada o en devolución.
func (c *core) discardOffers(ctx context.Context, r Repos, s *entity.Sale) error {
	offers, err := r.Offers.ListByCustomerAndUnit(ctx, s.TenantID, s.CustomerID, s.UnitID)
	if err != nil {
		return err
	}
	now := c.now()
	for _, off := range offers {
		if off.Status == entity.OfferAccepted || off.Status == entity.OfferCancelled {
			continue
		}
		deposits, err := r.Deposits.ListByOffer(ctx, s.TenantID, off.ID)
		if err != nil {
			return err
		}
		if holdsMoney(deposits) {
			continue
		}
		if len(deposits) == 0 {
			if err := r.Offers.Delete(ctx, s.TenantID, off.ID); err != nil {
				return err
			}
			continue
		}
		for _, d := range deposits {
			if d.Status == entity.DepositPending {
				d.Status = entity.DepositCancelled
				d.UpdatedAt = now
				if err := r.Deposits.Update(ctx, d); err != nil {
					return err
				}
			}
		}
		off.Status = entity.OfferCancelled
		off.UpdatedAt = now
		if err := r.Offers.Update(ctx, off); err != nil {
			return err
		}
	}
	return nil
}

func holdsMoney(deposits []*entity.Deposit) bool {
	for _, d := range deposits {
		if d.Status == entity.DepositPaid || d.Status == entity.DepositRefundPending {
			return true
		}
	}
	return false
}

// CreateNegotiation registra una contraoferta Pending; no modifica la oferta.
func (uc *OfferUseCase) CreateNegotiation(ctx context.Context, tenantID, actorID, offerID string, in NegotiationInput) (*entity.Negotiation, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	if !in.ProposedPrice.IsPositive() {
		return nil, domain.Validation("proposed_price debe ser mayor a 0")
	}
	if in.Source == "" {
		in.Source = entity.SourceSales
	}
	if in.Source != entity.SourceSales && in.Source != entity.SourceCustomer {
		return nil, domain.Validation("source inválido %q", in.Source)
	}

	var out *entity.Negotiation
	err := uc.exec(ctx, []string{offerKey(offerID)}, func(r Repos) error {
		off, err := uc.loadOffer(ctx, r, tenantID, offerID)
		if err != nil {
			return err
		}
		if !off.Open() {
			return fmt.Errorf("%w: la oferta está %s", domain.ErrConflict, off.Status)
		}
		cur, err := normalizeCurrency(in.ProposedCurrency, off.Currency)
		if err != nil {
			return err
		}
		var snap *entity.PlanSnapshot
		if in.Plan != nil {
			plan, err := buildPlan(*in.Plan, in.ProposedPrice, cur)
			if err != nil {
				return err
			}
			snap = plan.Snapshot()
		}
		n := &entity.Negotiation{
			ID:                  newID(),
			TenantID:            tenantID,
			OfferID:             off.ID,
			ProposedBy:          actorID,
			Source:              in.Source,
			ProposedPrice:       in.ProposedPrice,
			ProposedCurrency:    cur,
			ProposedValidUntil:  in.ProposedValidUntil,
			ProposedPaymentPlan: snap,
			Status:              entity.NegotiationPending,
			Notes:               in.Notes,
			CreatedAt:           uc.now(),
		}
		if err := r.Negotiations.Create(ctx, n); err != nil {
			return err
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *core) loadPendingNegotiation(ctx context.Context, r Repos, tenantID, negotiationID string) (*entity.Negotiation, error) {
	n, err := r.Negotiations.GetByID(ctx, tenantID, negotiationID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.NotFound("negotiation", negotiationID)
	}
	if n.Status != entity.NegotiationPending {
		return nil, fmt.Errorf("%w: la contraoferta ya está %s", domain.ErrConflict, n.Status)
	}
	return n, nil
}

// RejectNegotiation descarta una contraoferta Pending.
func (uc *OfferUseCase) RejectNegotiation(ctx context.Context, tenantID, actorID, negotiationID, notes string) (*entity.Negotiation, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	var out *entity.Negotiation
	err := uc.exec(ctx, []string{"negotiation:" + negotiationID}, func(r Repos) error {
		n, err := uc.loadPendingNegotiation(ctx, r, tenantID, negotiationID)
		if err != nil {
			return err
		}
		now := uc.now()
		n.Status = entity.NegotiationRejected
		n.DecidedAt = &now
		if notes != "" {
			n.Notes = notes
		}
		if err := r.Negotiations.Update(ctx, n); err != nil {
			return err
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveNegotiation aprueba la contraoferta y reescribe la oferta con sus términos.
// Con seña: oferta y venta pasan a Teklif-KaporaBekleniyor y se abre la seña sobre la oferta
// (falla si no hay venta activa del par). Sin seña: se cierra la oferta con finalizeOffer.
func (uc *OfferUseCase) ApproveNegotiation(ctx context.Context, tenantID, actorID, negotiationID string, depositAmount decimal.Decimal) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	if depositAmount.IsNegative() {
		return nil, domain.Validation("deposit_amount no puede ser negativo")
	}
	o := &Outcome{}
	err := uc.exec(ctx, []string{"negotiation:" + negotiationID}, func(r Repos) error {
		n, err := uc.loadPendingNegotiation(ctx, r, tenantID, negotiationID)
		if err != nil {
			return err
		}
		off, err := uc.loadOffer(ctx, r, tenantID, n.OfferID)
		if err != nil {
			return err
		}
		if !off.Open() {
			return fmt.Errorf("%w: la oferta está %s", domain.ErrConflict, off.Status)
		}

		now := uc.now()
		n.Status = entity.NegotiationApproved
		n.DecidedAt = &now
		if err := r.Negotiations.Update(ctx, n); err != nil {
			return err
		}
		others, err := r.Negotiations.ListByOffer(ctx, tenantID, off.ID)
		if err != nil {
			return err
		}
		for _, other := range others {
			if other.ID == n.ID || other.Status != entity.NegotiationPending {
				continue
			}
			other.Status = entity.NegotiationRejected
			other.DecidedAt = &now
			if err := r.Negotiations.Update(ctx, other); err != nil {
				return err
			}
		}
		o.Negotiation = n

		applyProposal(off, n)
		off.UpdatedAt = now

		if !depositAmount.IsPositive() {
			if err := r.Offers.Update(ctx, off); err != nil {
				return err
			}
			return uc.finalizeOffer(ctx, r, off, actorID, o)
		}

		off.Status = entity.OfferDepositPending
		if err := r.Offers.Update(ctx, off); err != nil {
			return err
		}
		o.Offer = off

		found, err := r.Sales.FindActiveByCustomerAndUnit(ctx, tenantID, off.CustomerID, off.UnitID)
		if err != nil {
			return err
		}
		if found == nil {
			return fmt.Errorf("%w: no hay venta activa para la oferta %s", domain.ErrNotFound, off.ID)
		}
		s, err := uc.loadSale(ctx, r, tenantID, found.ID)
		if err != nil {
			return err
		}
		s.FinalPrice = decimal.NewNullDecimal(off.Price)
		s.Currency = off.Currency
		if err := uc.moveSale(ctx, r, s, entity.SaleTeklifDeposit, actorID, n.Notes, o); err != nil {
			return err
		}

		d := &entity.Deposit{
			ID:         newID(),
			TenantID:   tenantID,
			CustomerID: off.CustomerID,
			OfferID:    off.ID,
			Amount:     depositAmount,
			Currency:   off.Currency,
			Status:     entity.DepositPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.Deposits.Create(ctx, d); err != nil {
			return err
		}
		o.Deposit = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("negotiation_id", negotiationID).Str("offer_id", o.Offer.ID).Bool("with_deposit", o.Deposit != nil).Msg("contraoferta aprobada")
	return o, nil
}

func applyProposal(off *entity.Offer, n *entity.Negotiation) {
	off.Price = n.ProposedPrice
	if n.ProposedCurrency != "" {
		off.Currency = n.ProposedCurrency
	}
	if n.ProposedValidUntil != nil {
		off.ValidUntil = *n.ProposedValidUntil
	}
	switch {
	case n.ProposedPaymentPlan != nil:
		off.PaymentPlan = n.ProposedPaymentPlan
	case off.PaymentPlan != nil && !off.PaymentPlan.Principal.Equal(off.Price):
		// el cronograma anterior no corresponde al precio pactado
		off.PaymentPlan = nil
	}
}

// FinalizeOffer acepta la oferta y genera el contrato.
func (uc *OfferUseCase) FinalizeOffer(ctx context.Context, tenantID, actorID, offerID string) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	o := &Outcome{}
	err := uc.exec(ctx, []string{offerKey(offerID)}, func(r Repos) error {
		off, err := uc.loadOffer(ctx, r, tenantID, offerID)
		if err != nil {
			return err
		}
		return uc.finalizeOffer(ctx, r, off, actorID, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ApproveOfferDirectly copia los términos de la última contraoferta (si hay) y marca la oferta
// Accepted. No toca venta, unidad ni contrato.
func (uc *OfferUseCase) ApproveOfferDirectly(ctx context.Context, tenantID, actorID, offerID string) (*entity.Offer, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	var out *entity.Offer
	err := uc.exec(ctx, []string{offerKey(offerID)}, func(r Repos) error {
		off, err := uc.loadOffer(ctx, r, tenantID, offerID)
		if err != nil {
			return err
		}
		if off.Status != entity.OfferSent && off.Status != entity.OfferDepositPending {
			return fmt.Errorf("%w: la oferta está %s", domain.ErrConflict, off.Status)
		}
		history, err := r.Negotiations.ListByOffer(ctx, tenantID, off.ID)
		if err != nil {
			return err
		}
		if len(history) > 0 {
			applyProposal(off, history[len(history)-1])
		}
		now := uc.now()
		off.Status = entity.OfferAccepted
		off.AcceptedAt = &now
		off.UpdatedAt = now
		if err := r.Offers.Update(ctx, off); err != nil {
			return err
		}
		out = off
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetOffer consulta una oferta.
func (uc *OfferUseCase) GetOffer(ctx context.Context, tenantID, offerID string) (*entity.Offer, error) {
	var out *entity.Offer
	err := uc.tx.RunSales(ctx, func(r Repos) error {
		off, err := r.Offers.GetByID(ctx, tenantID, offerID)
		if err != nil {
			return err
		}
		if off == nil {
			return domain.NotFound("offer", offerID)
		}
		out = off
		return nil
	})
	return out, err
}

// ListNegotiations historial de contraofertas de una oferta.
func (uc *OfferUseCase) ListNegotiations(ctx context.Context, tenantID, offerID string) ([]*entity.Negotiation, error) {
	var out []*entity.Negotiation
	err := uc.tx.RunSales(ctx, func(r Repos) error {
		list, err := r.Negotiations.ListByOffer(ctx, tenantID, offerID)
		out = list
		return err
	})
	return out, err
}
