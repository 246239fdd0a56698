package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/domain/pipeline"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository        = (*saleRepo)(nil)
	_ repository.OfferRepository       = (*offerRepo)(nil)
	_ repository.NegotiationRepository = (*negotiationRepo)(nil)
	_ repository.DepositRepository     = (*depositRepo)(nil)
	_ repository.ContractRepository    = (*contractRepo)(nil)
	_ repository.PaymentPlanRepository = (*planRepo)(nil)
	_ repository.OutboxRepository      = (*outboxRepo)(nil)
)

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func duplicate(kind, id string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrDuplicate, kind, id)
}

// ── Sales ─────────────────────────────────────────────────────────────────────

type saleRepo struct {
	s  *Store
	tx bool
}

func (r *saleRepo) Create(_ context.Context, v *entity.Sale) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("sales.create"); err != nil {
			return err
		}
		if _, ok := d.sales[v.ID]; ok {
			return duplicate("sale", v.ID)
		}
		d.sales[v.ID] = clonePtr(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.sales[id]; ok && v.TenantID == tenantID {
			out = clonePtr(v)
		}
		return nil
	})
	return out, err
}

func (r *saleRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *saleRepo) Update(_ context.Context, v *entity.Sale) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("sales.update"); err != nil {
			return err
		}
		if cur, ok := d.sales[v.ID]; !ok || cur.TenantID != v.TenantID {
			return domain.NotFound("sale", v.ID)
		}
		d.sales[v.ID] = clonePtr(v)
		return nil
	})
}

func (r *saleRepo) List(_ context.Context, tenantID string, f repository.SaleFilter, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.sales {
			if v.TenantID != tenantID {
				continue
			}
			if f.Status != "" && v.Status != f.Status {
				continue
			}
			if f.AssignedTo != "" && v.AssignedTo != f.AssignedTo {
				continue
			}
			if f.CustomerID != "" && v.CustomerID != f.CustomerID {
				continue
			}
			out = append(out, clonePtr(v))
		}
		// más recientes primero
		sort.SliceStable(out, func(i, j int) bool { return d.order[out[i].ID] > d.order[out[j].ID] })
		return nil
	})
	return page(out, limit, offset), err
}

func (r *saleRepo) FindActiveByCustomerAndUnit(_ context.Context, tenantID, customerID, unitID string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.s.with(r.tx, func(d *state) error {
		var found []*entity.Sale
		for _, v := range d.sales {
			if v.TenantID == tenantID && v.CustomerID == customerID && v.UnitID == unitID && v.Status != entity.SaleLost {
				found = append(found, v)
			}
		}
		if len(found) == 0 {
			return nil
		}
		sortByOrder(d, found, func(v *entity.Sale) string { return v.ID })
		out = clonePtr(found[len(found)-1])
		return nil
	})
	return out, err
}

func (r *saleRepo) ListHoldingByUnit(_ context.Context, tenantID, unitID, exceptSaleID string) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.sales {
			if v.TenantID == tenantID && v.UnitID == unitID && v.ID != exceptSaleID && pipeline.HoldsUnit(v.Status) {
				out = append(out, clonePtr(v))
			}
		}
		sortByOrder(d, out, func(v *entity.Sale) string { return v.ID })
		return nil
	})
	return out, err
}

func (r *saleRepo) CountOpenByAssignees(_ context.Context, tenantID string, userIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(userIDs))
	err := r.s.with(r.tx, func(d *state) error {
		wanted := make(map[string]bool, len(userIDs))
		for _, id := range userIDs {
			wanted[id] = true
			out[id] = 0
		}
		for _, v := range d.sales {
			if v.TenantID == tenantID && wanted[v.AssignedTo] && pipeline.IsOpen(v.Status) {
				out[v.AssignedTo]++
			}
		}
		return nil
	})
	return out, err
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── Offers ────────────────────────────────────────────────────────────────────

type offerRepo struct {
	s  *Store
	tx bool
}

func (r *offerRepo) Create(_ context.Context, v *entity.Offer) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("offers.create"); err != nil {
			return err
		}
		if _, ok := d.offers[v.ID]; ok {
			return duplicate("offer", v.ID)
		}
		if v.Status == entity.OfferSent {
			for _, o := range d.offers {
				if o.Status == entity.OfferSent && o.TenantID == v.TenantID && o.CustomerID == v.CustomerID && o.UnitID == v.UnitID {
					return duplicate("offer enviada del par", o.ID)
				}
			}
		}
		d.offers[v.ID] = clonePtr(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *offerRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Offer, error) {
	var out *entity.Offer
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.offers[id]; ok && v.TenantID == tenantID {
			out = clonePtr(v)
		}
		return nil
	})
	return out, err
}

func (r *offerRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Offer, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *offerRepo) Update(_ context.Context, v *entity.Offer) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("offers.update"); err != nil {
			return err
		}
		if cur, ok := d.offers[v.ID]; !ok || cur.TenantID != v.TenantID {
			return domain.NotFound("offer", v.ID)
		}
		d.offers[v.ID] = clonePtr(v)
		return nil
	})
}

func (r *offerRepo) Delete(_ context.Context, tenantID, id string) error {
	return r.s.with(r.tx, func(d *state) error {
		if cur, ok := d.offers[id]; !ok || cur.TenantID != tenantID {
			return domain.NotFound("offer", id)
		}
		delete(d.offers, id)
		return nil
	})
}

func (r *offerRepo) ListByCustomerAndUnit(_ context.Context, tenantID, customerID, unitID string) ([]*entity.Offer, error) {
	var out []*entity.Offer
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.offers {
			if v.TenantID == tenantID && v.CustomerID == customerID && v.UnitID == unitID {
				out = append(out, clonePtr(v))
			}
		}
		sortByOrder(d, out, func(v *entity.Offer) string { return v.ID })
		return nil
	})
	return out, err
}

// ── Negotiations ──────────────────────────────────────────────────────────────

type negotiationRepo struct {
	s  *Store
	tx bool
}

func (r *negotiationRepo) Create(_ context.Context, v *entity.Negotiation) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("negotiations.create"); err != nil {
			return err
		}
		if _, ok := d.negotiations[v.ID]; ok {
			return duplicate("negotiation", v.ID)
		}
		d.negotiations[v.ID] = clonePtr(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *negotiationRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Negotiation, error) {
	var out *entity.Negotiation
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.negotiations[id]; ok && v.TenantID == tenantID {
			out = clonePtr(v)
		}
		return nil
	})
	return out, err
}

func (r *negotiationRepo) Update(_ context.Context, v *entity.Negotiation) error {
	return r.s.with(r.tx, func(d *state) error {
		if cur, ok := d.negotiations[v.ID]; !ok || cur.TenantID != v.TenantID {
			return domain.NotFound("negotiation", v.ID)
		}
		d.negotiations[v.ID] = clonePtr(v)
		return nil
	})
}

func (r *negotiationRepo) ListByOffer(_ context.Context, tenantID, offerID string) ([]*entity.Negotiation, error) {
	var out []*entity.Negotiation
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.negotiations {
			if v.TenantID == tenantID && v.OfferID == offerID {
				out = append(out, clonePtr(v))
			}
		}
		sortByOrder(d, out, func(v *entity.Negotiation) string { return v.ID })
		return nil
	})
	return out, err
}

// ── Deposits ──────────────────────────────────────────────────────────────────

type depositRepo struct {
	s  *Store
	tx bool
}

func (r *depositRepo) Create(_ context.Context, v *entity.Deposit) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("deposits.create"); err != nil {
			return err
		}
		if !v.Valid() {
			return domain.Validation("la seña debe apuntar a una venta o a una oferta")
		}
		if _, ok := d.deposits[v.ID]; ok {
			return duplicate("deposit", v.ID)
		}
		d.deposits[v.ID] = clonePtr(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *depositRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Deposit, error) {
	var out *entity.Deposit
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.deposits[id]; ok && v.TenantID == tenantID {
			out = clonePtr(v)
		}
		return nil
	})
	return out, err
}

func (r *depositRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Deposit, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *depositRepo) Update(_ context.Context, v *entity.Deposit) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("deposits.update"); err != nil {
			return err
		}
		if cur, ok := d.deposits[v.ID]; !ok || cur.TenantID != v.TenantID {
			return domain.NotFound("deposit", v.ID)
		}
		d.deposits[v.ID] = clonePtr(v)
		return nil
	})
}

func (r *depositRepo) ListBySale(_ context.Context, tenantID, saleID string) ([]*entity.Deposit, error) {
	return r.list(tenantID, func(v *entity.Deposit) bool { return v.SaleID == saleID })
}

func (r *depositRepo) ListByOffer(_ context.Context, tenantID, offerID string) ([]*entity.Deposit, error) {
	return r.list(tenantID, func(v *entity.Deposit) bool { return v.OfferID == offerID })
}

func (r *depositRepo) list(tenantID string, match func(*entity.Deposit) bool) ([]*entity.Deposit, error) {
	var out []*entity.Deposit
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.deposits {
			if v.TenantID == tenantID && match(v) {
				out = append(out, clonePtr(v))
			}
		}
		sortByOrder(d, out, func(v *entity.Deposit) string { return v.ID })
		return nil
	})
	return out, err
}

// ── Contracts ─────────────────────────────────────────────────────────────────

type contractRepo struct {
	s  *Store
	tx bool
}

func (r *contractRepo) Create(_ context.Context, v *entity.Contract) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("contracts.create"); err != nil {
			return err
		}
		for _, c := range d.contracts {
			if c.TenantID == v.TenantID && c.ContractNumber == v.ContractNumber {
				return duplicate("contract", v.ContractNumber)
			}
		}
		d.contracts[v.ID] = clonePtr(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *contractRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Contract, error) {
	var out *entity.Contract
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.contracts[id]; ok && v.TenantID == tenantID {
			out = clonePtr(v)
		}
		return nil
	})
	return out, err
}

func (r *contractRepo) GetByNumber(_ context.Context, tenantID, number string) (*entity.Contract, error) {
	var out *entity.Contract
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.contracts {
			if v.TenantID == tenantID && v.ContractNumber == number {
				out = clonePtr(v)
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ── Payment plans ─────────────────────────────────────────────────────────────

type planRepo struct {
	s  *Store
	tx bool
}

func clonePlan(p *entity.PaymentPlan) *entity.PaymentPlan {
	c := *p
	c.Items = append([]entity.PaymentItem(nil), p.Items...)
	return &c
}

func (r *planRepo) Create(_ context.Context, v *entity.PaymentPlan) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("plans.create"); err != nil {
			return err
		}
		if _, ok := d.plans[v.ID]; ok {
			return duplicate("payment_plan", v.ID)
		}
		d.plans[v.ID] = clonePlan(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *planRepo) GetByID(_ context.Context, tenantID, id string) (*entity.PaymentPlan, error) {
	var out *entity.PaymentPlan
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.plans[id]; ok && v.TenantID == tenantID {
			out = clonePlan(v)
		}
		return nil
	})
	return out, err
}

func (r *planRepo) GetLatestBySale(_ context.Context, tenantID, saleID string) (*entity.PaymentPlan, error) {
	return r.latest(tenantID, func(p *entity.PaymentPlan) bool { return p.SaleID == saleID && p.ContractID == "" })
}

func (r *planRepo) GetByContract(_ context.Context, tenantID, contractID string) (*entity.PaymentPlan, error) {
	return r.latest(tenantID, func(p *entity.PaymentPlan) bool { return p.ContractID == contractID })
}

func (r *planRepo) latest(tenantID string, match func(*entity.PaymentPlan) bool) (*entity.PaymentPlan, error) {
	var out *entity.PaymentPlan
	err := r.s.with(r.tx, func(d *state) error {
		var best *entity.PaymentPlan
		for _, v := range d.plans {
			if v.TenantID != tenantID || !match(v) {
				continue
			}
			if best == nil || d.order[v.ID] > d.order[best.ID] {
				best = v
			}
		}
		if best != nil {
			out = clonePlan(best)
		}
		return nil
	})
	return out, err
}

func (r *planRepo) LinkContract(_ context.Context, tenantID, planID, contractID string) error {
	return r.s.with(r.tx, func(d *state) error {
		v, ok := d.plans[planID]
		if !ok || v.TenantID != tenantID {
			return domain.NotFound("payment_plan", planID)
		}
		c := clonePlan(v)
		c.ContractID = contractID
		d.plans[planID] = c
		return nil
	})
}

// ── Outbox ────────────────────────────────────────────────────────────────────

type outboxRepo struct {
	s  *Store
	tx bool
}

func (r *outboxRepo) Append(_ context.Context, evt event.Event) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("outbox.append"); err != nil {
			return err
		}
		if _, ok := d.outbox[evt.ID]; ok {
			return duplicate("event", evt.ID)
		}
		d.outbox[evt.ID] = outboxRow{evt: evt}
		return nil
	})
}

func (r *outboxRepo) ListPending(_ context.Context, limit int) ([]event.Event, error) {
	var out []event.Event
	err := r.s.with(r.tx, func(d *state) error {
		for _, row := range d.outbox {
			if row.dispatchedAt == nil {
				out = append(out, row.evt)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *outboxRepo) MarkDispatched(_ context.Context, id string, at time.Time) error {
	return r.s.with(r.tx, func(d *state) error {
		row, ok := d.outbox[id]
		if !ok {
			return domain.NotFound("event", id)
		}
		row.dispatchedAt = &at
		d.outbox[id] = row
		return nil
	})
}
