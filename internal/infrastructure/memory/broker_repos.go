package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var (
	_ repository.BrokerRepository     = (*brokerRepo)(nil)
	_ repository.BrokerLeadRepository = (*leadRepo)(nil)
	_ repository.CommissionRepository = (*commissionRepo)(nil)
)

// ── Brokers ───────────────────────────────────────────────────────────────────

type brokerRepo struct {
	s  *Store
	tx bool
}

func cloneBroker(b *entity.Broker) *entity.Broker {
	c := *b
	c.CommissionTiers = append([]entity.CommissionTier(nil), b.CommissionTiers...)
	return &c
}

func (r *brokerRepo) Create(_ context.Context, v *entity.Broker) error {
	return r.s.with(r.tx, func(d *state) error {
		if _, ok := d.brokers[v.ID]; ok {
			return duplicate("broker", v.ID)
		}
		d.brokers[v.ID] = cloneBroker(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *brokerRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Broker, error) {
	var out *entity.Broker
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.brokers[id]; ok && v.TenantID == tenantID {
			out = cloneBroker(v)
		}
		return nil
	})
	return out, err
}

// ── Leads ─────────────────────────────────────────────────────────────────────

type leadRepo struct {
	s  *Store
	tx bool
}

func (r *leadRepo) Create(_ context.Context, v *entity.BrokerLead) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("leads.create"); err != nil {
			return err
		}
		if _, ok := d.leads[v.ID]; ok {
			return duplicate("broker_lead", v.ID)
		}
		d.leads[v.ID] = clonePtr(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *leadRepo) GetByID(_ context.Context, tenantID, id string) (*entity.BrokerLead, error) {
	var out *entity.BrokerLead
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.leads[id]; ok && v.TenantID == tenantID {
			out = clonePtr(v)
		}
		return nil
	})
	return out, err
}

func (r *leadRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.BrokerLead, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *leadRepo) GetByCustomer(_ context.Context, tenantID, customerID string) (*entity.BrokerLead, error) {
	var out *entity.BrokerLead
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.leads {
			if v.TenantID == tenantID && v.CustomerID != "" && v.CustomerID == customerID {
				out = clonePtr(v)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *leadRepo) GetOwnerOfPhone(_ context.Context, tenantID, phone string, at time.Time) (*entity.BrokerLead, error) {
	var out *entity.BrokerLead
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.leads {
			if v.TenantID == tenantID && v.Phone == phone && v.OwnsPhone(at) {
				out = clonePtr(v)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *leadRepo) Update(_ context.Context, v *entity.BrokerLead) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("leads.update"); err != nil {
			return err
		}
		if cur, ok := d.leads[v.ID]; !ok || cur.TenantID != v.TenantID {
			return domain.NotFound("broker_lead", v.ID)
		}
		d.leads[v.ID] = clonePtr(v)
		return nil
	})
}

func (r *leadRepo) AppendHistory(_ context.Context, h *entity.LeadHistory) error {
	return r.s.with(r.tx, func(d *state) error {
		d.history[h.LeadID] = append(d.history[h.LeadID], clonePtr(h))
		return nil
	})
}

func (r *leadRepo) ListHistory(_ context.Context, leadID string) ([]*entity.LeadHistory, error) {
	var out []*entity.LeadHistory
	err := r.s.with(r.tx, func(d *state) error {
		for _, h := range d.history[leadID] {
			out = append(out, clonePtr(h))
		}
		return nil
	})
	return out, err
}

// ── Commissions ───────────────────────────────────────────────────────────────

type commissionRepo struct {
	s  *Store
	tx bool
}

func (r *commissionRepo) Create(_ context.Context, v *entity.Commission) error {
	return r.s.with(r.tx, func(d *state) error {
		for _, c := range d.commissions {
			if c.TenantID == v.TenantID && c.LeadID == v.LeadID {
				return duplicate("commission", v.LeadID)
			}
		}
		d.commissions[v.ID] = clonePtr(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *commissionRepo) GetByLead(_ context.Context, tenantID, leadID string) (*entity.Commission, error) {
	var out *entity.Commission
	err := r.s.with(r.tx, func(d *state) error {
		for _, c := range d.commissions {
			if c.TenantID == tenantID && c.LeadID == leadID {
				out = clonePtr(c)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *commissionRepo) CountByBroker(_ context.Context, tenantID, brokerID string) (int, error) {
	n := 0
	err := r.s.with(r.tx, func(d *state) error {
		for _, c := range d.commissions {
			if c.TenantID == tenantID && c.BrokerID == brokerID {
				n++
			}
		}
		return nil
	})
	return n, err
}
