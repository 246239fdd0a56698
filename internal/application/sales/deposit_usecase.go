package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/domain/pipeline"
)

// DepositUseCase seguimiento de señas: Pending → Paid → RefundPending → Refunded, o Pending → Cancelled.
type DepositUseCase struct {
	*core
}

// NewDepositUseCase construye el caso de uso.
func NewDepositUseCase(d Deps) *DepositUseCase {
	return &DepositUseCase{core: newCore(d)}
}

func (c *core) loadDeposit(ctx context.Context, r Repos, tenantID, depositID string) (*entity.Deposit, error) {
	d, err := r.Deposits.GetForUpdate(ctx, tenantID, depositID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.NotFound("deposit", depositID)
	}
	return d, nil
}

func wrongDepositState(d *entity.Deposit, want entity.DepositStatus) error {
	return fmt.Errorf("%w: la seña está %s (se requiere %s)", domain.ErrInvalidTransition, d.Status, want)
}

// ConfirmDeposit marca la seña Paid. Ruta venta: Opsiyon pasa a Reservation. Ruta oferta: finalizeOffer.
func (uc *DepositUseCase) ConfirmDeposit(ctx context.Context, tenantID, actorID, depositID string) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	o := &Outcome{}
	err := uc.exec(ctx, []string{depositKey(depositID)}, func(r Repos) error {
		d, err := uc.loadDeposit(ctx, r, tenantID, depositID)
		if err != nil {
			return err
		}
		if d.Status != entity.DepositPending {
			return wrongDepositState(d, entity.DepositPending)
		}
		now := uc.now()
		d.Status = entity.DepositPaid
		d.PaidAt = &now
		d.UpdatedAt = now
		if err := r.Deposits.Update(ctx, d); err != nil {
			return err
		}
		o.Deposit = d

		if !d.OnSale() {
			off, err := uc.loadOffer(ctx, r, tenantID, d.OfferID)
			if err != nil {
				return err
			}
			return uc.finalizeOffer(ctx, r, off, actorID, o)
		}

		s, err := uc.loadSale(ctx, r, tenantID, d.SaleID)
		if err != nil {
			return err
		}
		if s.Status == entity.SaleOpsiyonDeposit {
			s.Status = entity.SaleReservation
			s.UpdatedAt = now
			if err := r.Sales.Update(ctx, s); err != nil {
				return err
			}
			uc.metrics.Transition(entity.SaleOpsiyonDeposit, entity.SaleReservation)
		}
		o.Sale = s
		return uc.emit(ctx, r, event.DepositConfirmed, tenantID, actorID, s, "seña confirmada", d.ID)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("deposit_id", depositID).Msg("seña confirmada")
	return o, nil
}

func (c *core) startRefund(ctx context.Context, r Repos, d *entity.Deposit) error {
	if d.Status != entity.DepositPaid {
		return wrongDepositState(d, entity.DepositPaid)
	}
	d.Status = entity.DepositRefundPending
	d.UpdatedAt = c.now()
	return r.Deposits.Update(ctx, d)
}

// StartRefund inicia la devolución de una seña pagada.
func (uc *DepositUseCase) StartRefund(ctx context.Context, tenantID, actorID, depositID string) (*entity.Deposit, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	var out *entity.Deposit
	err := uc.exec(ctx, []string{depositKey(depositID)}, func(r Repos) error {
		d, err := uc.loadDeposit(ctx, r, tenantID, depositID)
		if err != nil {
			return err
		}
		if err := uc.startRefund(ctx, r, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ConfirmRefund completa la devolución. Ruta venta: la venta pasa a Lost y libera la unidad.
// Ruta oferta: la oferta se cancela.
func (uc *DepositUseCase) ConfirmRefund(ctx context.Context, tenantID, actorID, depositID string) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	o := &Outcome{}
	err := uc.exec(ctx, []string{depositKey(depositID)}, func(r Repos) error {
		d, err := uc.loadDeposit(ctx, r, tenantID, depositID)
		if err != nil {
			return err
		}
		if d.Status != entity.DepositRefundPending {
			return wrongDepositState(d, entity.DepositRefundPending)
		}
		now := uc.now()
		d.Status = entity.DepositRefunded
		d.RefundedAt = &now
		d.UpdatedAt = now
		if err := r.Deposits.Update(ctx, d); err != nil {
			return err
		}
		o.Deposit = d

		if !d.OnSale() {
			off, err := uc.loadOffer(ctx, r, tenantID, d.OfferID)
			if err != nil {
				return err
			}
			if off.Status != entity.OfferAccepted {
				off.Status = entity.OfferCancelled
				off.UpdatedAt = now
				if err := r.Offers.Update(ctx, off); err != nil {
					return err
				}
			}
			o.Offer = off
			return nil
		}

		s, err := uc.loadSale(ctx, r, tenantID, d.SaleID)
		if err != nil {
			return err
		}
		if s.Status == entity.SaleLost {
			o.Sale = s
			return nil
		}
		if !pipeline.CanTransition(s.Status, entity.SaleLost) {
			return fmt.Errorf("%w: la venta está %s", domain.ErrInvalidTransition, s.Status)
		}
		return uc.moveSale(ctx, r, s, entity.SaleLost, actorID, "seña devuelta", o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// CancelDeposit cancela una seña pendiente; sin efectos en cascada.
func (uc *DepositUseCase) CancelDeposit(ctx context.Context, tenantID, actorID, depositID string) (*entity.Deposit, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	var out *entity.Deposit
	err := uc.exec(ctx, []string{depositKey(depositID)}, func(r Repos) error {
		d, err := uc.loadDeposit(ctx, r, tenantID, depositID)
		if err != nil {
			return err
		}
		if d.Status != entity.DepositPending {
			return wrongDepositState(d, entity.DepositPending)
		}
		d.Status = entity.DepositCancelled
		d.UpdatedAt = uc.now()
		if err := r.Deposits.Update(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListDeposits señas de una venta o de una oferta.
func (uc *DepositUseCase) ListDeposits(ctx context.Context, tenantID, saleID, offerID string) ([]*entity.Deposit, error) {
	if (saleID == "") == (offerID == "") {
		return nil, domain.Validation("indique sale_id u offer_id")
	}
	var out []*entity.Deposit
	err := uc.tx.RunSales(ctx, func(r Repos) error {
		var err error
		if saleID != "" {
			out, err = r.Deposits.ListBySale(ctx, tenantID, saleID)
		} else {
			out, err = r.Deposits.ListByOffer(ctx, tenantID, offerID)
		}
		return err
	})
	return out, err
}
