package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/domain/pipeline"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

// CreateSaleInput datos para abrir una venta.
type CreateSaleInput struct {
	CustomerID string
	UnitID     string
	AssignedTo string
	Currency   string
}

// ReservationInput datos para reservar una unidad.
type ReservationInput struct {
	UnitID        string
	Expiry        time.Time
	DepositAmount decimal.Decimal
	Currency      string
}

// PipelineUseCase máquina de estados de la venta y sus efectos sobre unidad, ofertas y señas.
type PipelineUseCase struct {
	*core
}

// NewPipelineUseCase construye el caso de uso.
func NewPipelineUseCase(d Deps) *PipelineUseCase {
	return &PipelineUseCase{core: newCore(d)}
}

func requireActor(tenantID, actorID string) error {
	if tenantID == "" || actorID == "" {
		return domain.Validation("tenant y actor son requeridos")
	}
	return nil
}

func (c *core) loadSale(ctx context.Context, r Repos, tenantID, saleID string) (*entity.Sale, error) {
	s, err := r.Sales.GetForUpdate(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("sale", saleID)
	}
	return s, nil
}

// CreateSale inserta la venta en Prospect si trae unidad, si no en Lead.
func (uc *PipelineUseCase) CreateSale(ctx context.Context, tenantID, actorID string, in CreateSaleInput) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	if in.CustomerID == "" {
		return nil, domain.Validation("customer_id es requerido")
	}
	keys := []string{"customer:" + in.CustomerID}
	if in.UnitID != "" {
		keys = append(keys, unitKey(in.UnitID))
	}
	o := &Outcome{}
	err := uc.exec(ctx, keys, func(r Repos) error {
		cust, err := r.Customers.GetByID(ctx, tenantID, in.CustomerID)
		if err != nil {
			return err
		}
		if cust == nil {
			return domain.NotFound("customer", in.CustomerID)
		}

		status := entity.SaleLead
		fallback := uc.policy.DefaultCurrency
		if in.UnitID != "" {
			u, err := uc.lockUnit(ctx, r, tenantID, in.UnitID)
			if err != nil {
				return err
			}
			if err := uc.ensureMatchable(ctx, r, u, ""); err != nil {
				return err
			}
			if err := uc.ensureNoActivePair(ctx, r, tenantID, in.CustomerID, in.UnitID, ""); err != nil {
				return err
			}
			status = entity.SaleProspect
			fallback = u.Currency
		}
		cur, err := normalizeCurrency(in.Currency, fallback)
		if err != nil {
			return err
		}

		now := uc.now()
		s := &entity.Sale{
			ID:         newID(),
			TenantID:   tenantID,
			CustomerID: in.CustomerID,
			UnitID:     in.UnitID,
			AssignedTo: in.AssignedTo,
			Status:     status,
			Currency:   cur,
			CreatedBy:  actorID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.Sales.Create(ctx, s); err != nil {
			return err
		}
		uc.metrics.Transition("", status)
		o.Sale = s
		return uc.emit(ctx, r, event.SaleStatusChanged, tenantID, actorID, s, "", "")
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sale_id", o.Sale.ID).Str("status", string(o.Sale.Status)).Msg("venta creada")
	return o, nil
}

// UpdateSaleStatus cambia el estado aplicando los efectos sobre unidad y ofertas.
func (uc *PipelineUseCase) UpdateSaleStatus(ctx context.Context, tenantID, actorID, saleID, status, notes string) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	to, ok := pipeline.Parse(status)
	if !ok {
		return nil, domain.Validation("estado desconocido %q", status)
	}
	o := &Outcome{}
	err := uc.exec(ctx, []string{saleKey(saleID)}, func(r Repos) error {
		s, err := uc.loadSale(ctx, r, tenantID, saleID)
		if err != nil {
			return err
		}
		return uc.moveSale(ctx, r, s, to, actorID, notes, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// moveSale aplica una transición (o reafirma el estado actual) dentro de la transacción:
//   - la unidad sigue a la venta: retenida en Reservation..Negotiation, vendida en Sold/Completed,
//     liberada en Lead/Prospect/Lost
//   - al entrar en Proposal se crea o refresca la oferta Sent del par (cliente, unidad)
//   - al retroceder desde Reservation o posterior (o ir a Lost) se descartan las ofertas no aceptadas
//
// Siempre persiste la venta y emite el evento para el espejo de brokers.
func (c *core) moveSale(ctx context.Context, r Repos, s *entity.Sale, to entity.SaleStatus, actorID, notes string, o *Outcome) error {
	from := s.Status
	if from != to {
		if !pipeline.CanTransition(from, to) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, to)
		}
		if to == entity.SaleLead && s.HasUnit() {
			return domain.Validation("desasigne la unidad antes de volver a %s", to)
		}
		if pipeline.RequiresUnit(to) && !s.HasUnit() {
			return domain.Validation("el estado %s requiere una unidad asignada", to)
		}
	}

	if s.HasUnit() {
		var err error
		switch {
		case pipeline.SellsUnit(to):
			_, err = c.sellUnit(ctx, r, s.TenantID, s.UnitID, s.ID)
		case pipeline.HoldsUnit(to):
			_, err = c.reserveUnit(ctx, r, s.TenantID, s.UnitID, s.ID)
		default:
			err = c.releaseUnit(ctx, r, s.TenantID, s.UnitID, s.ID)
		}
		if err != nil {
			return err
		}
	}

	if from != to && s.HasUnit() && leavesOfferStage(from, to) {
		if err := c.discardOffers(ctx, r, s); err != nil {
			return err
		}
	}

	s.Status = to
	s.UpdatedAt = c.now()
	if err := r.Sales.Update(ctx, s); err != nil {
		return err
	}

	if to == entity.SaleProposal && from != to {
		validUntil := c.now().Add(c.policy.OfferValidity)
		if s.ReservationExpiry != nil {
			validUntil = *s.ReservationExpiry
		}
		off, err := c.ensureSentOffer(ctx, r, s, validUntil, actorID)
		if err != nil {
			return err
		}
		o.Offer = off
	}

	if from != to {
		c.metrics.Transition(from, to)
	}
	o.Sale = s
	return c.emit(ctx, r, event.SaleStatusChanged, s.TenantID, actorID, s, notes, "")
}

// leavesOfferStage true al salir hacia atrás (o a Lost) desde una etapa con oferta viva:
// la de seguimiento de la reserva o la de Proposal, Teklif y Negotiation.
func leavesOfferStage(from, to entity.SaleStatus) bool {
	switch from {
	case entity.SaleReservation, entity.SaleOpsiyonDeposit,
		entity.SaleProposal, entity.SaleTeklifDeposit, entity.SaleNegotiation:
		return pipeline.IsBackward(from, to)
	}
	return false
}

// switchUnit descarta las ofertas del par actual y libera la unidad antes de cambiarla.
func (c *core) switchUnit(ctx context.Context, r Repos, s *entity.Sale) error {
	if !s.HasUnit() {
		return nil
	}
	if err := c.discardOffers(ctx, r, s); err != nil {
		return err
	}
	return c.releaseUnit(ctx, r, s.TenantID, s.UnitID, s.ID)
}

func (c *core) ensureNoActivePair(ctx context.Context, r Repos, tenantID, customerID, unitID, saleID string) error {
	dup, err := r.Sales.FindActiveByCustomerAndUnit(ctx, tenantID, customerID, unitID)
	if err != nil {
		return err
	}
	if dup != nil && dup.ID != saleID {
		return fmt.Errorf("%w: ya existe la venta %s para el cliente y la unidad", domain.ErrConflict, dup.ID)
	}
	return nil
}

// MatchUnitToSale asigna la unidad; Lead pasa a Prospect. Las ofertas de la unidad anterior se descartan.
func (uc *PipelineUseCase) MatchUnitToSale(ctx context.Context, tenantID, actorID, saleID, unitID string) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	if unitID == "" {
		return nil, domain.Validation("unit_id es requerido")
	}
	o := &Outcome{}
	err := uc.exec(ctx, []string{saleKey(saleID), unitKey(unitID)}, func(r Repos) error {
		s, err := uc.loadSale(ctx, r, tenantID, saleID)
		if err != nil {
			return err
		}
		if pipeline.IsTerminal(s.Status) {
			return fmt.Errorf("%w: la venta está en %s", domain.ErrInvalidTransition, s.Status)
		}
		if s.UnitID == unitID {
			o.Sale = s
			return nil
		}
		u, err := uc.lockUnit(ctx, r, tenantID, unitID)
		if err != nil {
			return err
		}
		if err := uc.ensureNoActivePair(ctx, r, tenantID, s.CustomerID, unitID, s.ID); err != nil {
			return err
		}
		if err := uc.switchUnit(ctx, r, s); err != nil {
			return err
		}
		if pipeline.HoldsUnit(s.Status) {
			if _, err := uc.reserveUnit(ctx, r, tenantID, unitID, s.ID); err != nil {
				return err
			}
		} else if err := uc.ensureMatchable(ctx, r, u, s.ID); err != nil {
			return err
		}

		from := s.Status
		s.UnitID = unitID
		if s.Status == entity.SaleLead {
			s.Status = entity.SaleProspect
		}
		s.UpdatedAt = uc.now()
		if err := r.Sales.Update(ctx, s); err != nil {
			return err
		}
		if from != s.Status {
			uc.metrics.Transition(from, s.Status)
		}
		o.Sale = s
		return uc.emit(ctx, r, event.SaleStatusChanged, tenantID, actorID, s, "", "")
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// UnmatchUnitFromSale quita la unidad; Prospect vuelve a Lead, el resto de estados no cambia.
func (uc *PipelineUseCase) UnmatchUnitFromSale(ctx context.Context, tenantID, actorID, saleID string) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	o := &Outcome{}
	err := uc.exec(ctx, []string{saleKey(saleID)}, func(r Repos) error {
		s, err := uc.loadSale(ctx, r, tenantID, saleID)
		if err != nil {
			return err
		}
		if pipeline.IsTerminal(s.Status) {
			return fmt.Errorf("%w: la venta está en %s", domain.ErrInvalidTransition, s.Status)
		}
		o.Sale = s
		if !s.HasUnit() {
			return nil
		}
		if err := uc.switchUnit(ctx, r, s); err != nil {
			return err
		}
		from := s.Status
		s.UnitID = ""
		if s.Status == entity.SaleProspect {
			s.Status = entity.SaleLead
		}
		s.UpdatedAt = uc.now()
		if err := r.Sales.Update(ctx, s); err != nil {
			return err
		}
		if from != s.Status {
			uc.metrics.Transition(from, s.Status)
		}
		return uc.emit(ctx, r, event.SaleStatusChanged, tenantID, actorID, s, "", "")
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateSaleToReservation reserva la unidad: Opsiyon-KaporaBekleniyor si hay seña, si no Reservation.
// Abre la seña y crea la oferta de seguimiento (paso secundario).
func (uc *PipelineUseCase) UpdateSaleToReservation(ctx context.Context, tenantID, actorID, saleID string, in ReservationInput) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	if in.UnitID == "" {
		return nil, domain.Validation("unit_id es requerido")
	}
	if in.Expiry.IsZero() {
		return nil, domain.Validation("expiry_date es requerido")
	}
	if in.DepositAmount.IsNegative() {
		return nil, domain.Validation("deposit_amount no puede ser negativo")
	}
	target := entity.SaleReservation
	if in.DepositAmount.IsPositive() {
		target = entity.SaleOpsiyonDeposit
	}

	o := &Outcome{}
	err := uc.exec(ctx, []string{saleKey(saleID), unitKey(in.UnitID)}, func(r Repos) error {
		s, err := uc.loadSale(ctx, r, tenantID, saleID)
		if err != nil {
			return err
		}
		if s.Status != target && !pipeline.CanTransition(s.Status, target) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, s.Status, target)
		}
		if err := uc.ensureNoActivePair(ctx, r, tenantID, s.CustomerID, in.UnitID, s.ID); err != nil {
			return err
		}
		if s.UnitID != in.UnitID {
			if err := uc.switchUnit(ctx, r, s); err != nil {
				return err
			}
		}
		u, err := uc.lockUnit(ctx, r, tenantID, in.UnitID)
		if err != nil {
			return err
		}
		cur, err := normalizeCurrency(in.Currency, u.Currency)
		if err != nil {
			return err
		}

		expiry := in.Expiry
		s.UnitID = in.UnitID
		s.ReservationExpiry = &expiry
		if err := uc.moveSale(ctx, r, s, target, actorID, "", o); err != nil {
			return err
		}

		if in.DepositAmount.IsPositive() {
			now := uc.now()
			d := &entity.Deposit{
				ID:         newID(),
				TenantID:   tenantID,
				CustomerID: s.CustomerID,
				SaleID:     s.ID,
				Amount:     in.DepositAmount,
				Currency:   cur,
				Status:     entity.DepositPending,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := r.Deposits.Create(ctx, d); err != nil {
				return err
			}
			o.Deposit = d
		}

		return uc.bestEffort(ctx, r, o, StepTrackingOffer, func() error {
			off, err := uc.ensureSentOffer(ctx, r, s, expiry, actorID)
			if err != nil {
				return err
			}
			o.Offer = off
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sale_id", saleID).Str("unit_id", in.UnitID).Str("status", string(target)).Bool("partial", o.Partial()).Msg("unidad reservada")
	return o, nil
}

// CancelReservation con seña pagada solo inicia la devolución (RefundPending) y no toca la venta;
// si no, cancela las señas pendientes, vuelve a Prospect y libera la unidad.
func (uc *PipelineUseCase) CancelReservation(ctx context.Context, tenantID, actorID, saleID, notes string) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	o := &Outcome{}
	err := uc.exec(ctx, []string{saleKey(saleID)}, func(r Repos) error {
		s, err := uc.loadSale(ctx, r, tenantID, saleID)
		if err != nil {
			return err
		}
		if !pipeline.IsReservation(s.Status) {
			return fmt.Errorf("%w: la venta no está reservada (%s)", domain.ErrInvalidTransition, s.Status)
		}
		deposits, err := r.Deposits.ListBySale(ctx, tenantID, s.ID)
		if err != nil {
			return err
		}
		o.Sale = s
		for _, d := range deposits {
			if d.Status == entity.DepositPaid {
				if err := uc.startRefund(ctx, r, d); err != nil {
					return err
				}
				o.Deposit = d
				o.RefundStarted = true
			}
		}
		if o.RefundStarted {
			return nil
		}
		for _, d := range deposits {
			if d.Status == entity.DepositPending {
				d.Status = entity.DepositCancelled
				d.UpdatedAt = uc.now()
				if err := r.Deposits.Update(ctx, d); err != nil {
					return err
				}
			}
		}
		s.ReservationExpiry = nil
		return uc.moveSale(ctx, r, s, entity.SaleProspect, actorID, notes, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// RestartSale crea una venta nueva a partir de una Lost y marca la anterior como reemplazada.
// La unidad se arrastra solo si sigue libre.
func (uc *PipelineUseCase) RestartSale(ctx context.Context, tenantID, actorID, saleID string) (*Outcome, error) {
	if err := requireActor(tenantID, actorID); err != nil {
		return nil, err
	}
	o := &Outcome{}
	err := uc.exec(ctx, []string{saleKey(saleID)}, func(r Repos) error {
		old, err := uc.loadSale(ctx, r, tenantID, saleID)
		if err != nil {
			return err
		}
		if old.Status != entity.SaleLost {
			return fmt.Errorf("%w: solo se reinician ventas Lost (%s)", domain.ErrInvalidTransition, old.Status)
		}
		if old.RestartedAt != nil {
			return fmt.Errorf("%w: la venta ya fue reiniciada", domain.ErrConflict)
		}

		now := uc.now()
		ns := &entity.Sale{
			ID:         newID(),
			TenantID:   tenantID,
			CustomerID: old.CustomerID,
			AssignedTo: old.AssignedTo,
			Status:     entity.SaleLead,
			Currency:   old.Currency,
			CreatedBy:  actorID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if old.HasUnit() {
			err := uc.bestEffort(ctx, r, o, StepCarryUnit, func() error {
				u, err := uc.lockUnit(ctx, r, tenantID, old.UnitID)
				if err != nil {
					return err
				}
				if err := uc.ensureMatchable(ctx, r, u, ""); err != nil {
					return err
				}
				if err := uc.ensureNoActivePair(ctx, r, tenantID, old.CustomerID, u.ID, ""); err != nil {
					return err
				}
				ns.UnitID = u.ID
				ns.Status = entity.SaleProspect
				return nil
			})
			if err != nil {
				return err
			}
		}

		old.RestartedAt = &now
		old.UpdatedAt = now
		if err := r.Sales.Update(ctx, old); err != nil {
			return err
		}
		if err := r.Sales.Create(ctx, ns); err != nil {
			return err
		}
		uc.metrics.Transition("", ns.Status)
		o.Sale = ns
		return uc.emit(ctx, r, event.SaleStatusChanged, tenantID, actorID, ns, "restart", "")
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("old_sale_id", saleID).Str("sale_id", o.Sale.ID).Msg("venta reiniciada")
	return o, nil
}

// GetSale consulta una venta.
func (uc *PipelineUseCase) GetSale(ctx context.Context, tenantID, saleID string) (*entity.Sale, error) {
	var out *entity.Sale
	err := uc.tx.RunSales(ctx, func(r Repos) error {
		s, err := r.Sales.GetByID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NotFound("sale", saleID)
		}
		out = s
		return nil
	})
	return out, err
}

// ListSales lista ventas del tenant con filtros opcionales.
func (uc *PipelineUseCase) ListSales(ctx context.Context, tenantID string, f repository.SaleFilter, limit, offset int) ([]*entity.Sale, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var out []*entity.Sale
	err := uc.tx.RunSales(ctx, func(r Repos) error {
		list, err := r.Sales.List(ctx, tenantID, f, limit, offset)
		out = list
		return err
	})
	return out, err
}
