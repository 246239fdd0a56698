package memory

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var (
	_ repository.UnitRepository     = (*unitRepo)(nil)
	_ repository.ProjectRepository  = (*projectRepo)(nil)
	_ repository.CustomerRepository = (*customerRepo)(nil)
	_ repository.TeamRepository     = (*teamRepo)(nil)
)

// ── Units ─────────────────────────────────────────────────────────────────────

type unitRepo struct {
	s  *Store
	tx bool
}

func (r *unitRepo) Create(_ context.Context, v *entity.Unit) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("units.create"); err != nil {
			return err
		}
		for _, u := range d.units {
			if u.TenantID == v.TenantID && u.ProjectID == v.ProjectID && u.Code == v.Code {
				return duplicate("unit", v.Code)
			}
		}
		d.units[v.ID] = clonePtr(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *unitRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Unit, error) {
	var out *entity.Unit
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.units[id]; ok && v.TenantID == tenantID {
			out = clonePtr(v)
		}
		return nil
	})
	return out, err
}

func (r *unitRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Unit, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *unitRepo) Update(_ context.Context, v *entity.Unit) error {
	return r.s.with(r.tx, func(d *state) error {
		if err := r.s.fault("units.update"); err != nil {
			return err
		}
		if cur, ok := d.units[v.ID]; !ok || cur.TenantID != v.TenantID {
			return domain.NotFound("unit", v.ID)
		}
		d.units[v.ID] = clonePtr(v)
		return nil
	})
}

func (r *unitRepo) ListByProject(_ context.Context, tenantID, projectID string, limit, offset int) ([]*entity.Unit, error) {
	var out []*entity.Unit
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.units {
			if v.TenantID == tenantID && v.ProjectID == projectID {
				out = append(out, clonePtr(v))
			}
		}
		sortByOrder(d, out, func(v *entity.Unit) string { return v.ID })
		return nil
	})
	return page(out, limit, offset), err
}

// ── Projects ──────────────────────────────────────────────────────────────────

type projectRepo struct {
	s  *Store
	tx bool
}

func (r *projectRepo) Create(_ context.Context, v *entity.Project) error {
	return r.s.with(r.tx, func(d *state) error {
		if _, ok := d.projects[v.ID]; ok {
			return duplicate("project", v.ID)
		}
		d.projects[v.ID] = clonePtr(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *projectRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Project, error) {
	var out *entity.Project
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.projects[id]; ok && v.TenantID == tenantID {
			out = clonePtr(v)
		}
		return nil
	})
	return out, err
}

// ── Customers ─────────────────────────────────────────────────────────────────

type customerRepo struct {
	s  *Store
	tx bool
}

func (r *customerRepo) Create(_ context.Context, v *entity.Customer) error {
	return r.s.with(r.tx, func(d *state) error {
		if _, ok := d.customers[v.ID]; ok {
			return duplicate("customer", v.ID)
		}
		d.customers[v.ID] = clonePtr(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *customerRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.s.with(r.tx, func(d *state) error {
		if v, ok := d.customers[id]; ok && v.TenantID == tenantID {
			out = clonePtr(v)
		}
		return nil
	})
	return out, err
}

func (r *customerRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.customers {
			if v.TenantID == tenantID {
				out = append(out, clonePtr(v))
			}
		}
		sortByOrder(d, out, func(v *entity.Customer) string { return v.ID })
		return nil
	})
	return page(out, limit, offset), err
}

// ── Teams ─────────────────────────────────────────────────────────────────────

type teamRepo struct {
	s  *Store
	tx bool
}

func cloneTeam(t *entity.Team) *entity.Team {
	c := *t
	c.ProjectIDs = append([]string(nil), t.ProjectIDs...)
	c.MemberIDs = append([]string(nil), t.MemberIDs...)
	return &c
}

func (r *teamRepo) Create(_ context.Context, v *entity.Team) error {
	return r.s.with(r.tx, func(d *state) error {
		if _, ok := d.teams[v.ID]; ok {
			return duplicate("team", v.ID)
		}
		d.teams[v.ID] = cloneTeam(v)
		d.touch(v.ID)
		return nil
	})
}

func (r *teamRepo) ListByProject(_ context.Context, tenantID, projectID string) ([]*entity.Team, error) {
	var out []*entity.Team
	err := r.s.with(r.tx, func(d *state) error {
		for _, v := range d.teams {
			if v.TenantID != tenantID {
				continue
			}
			for _, p := range v.ProjectIDs {
				if p == projectID {
					out = append(out, cloneTeam(v))
					break
				}
			}
		}
		sortByOrder(d, out, func(v *entity.Team) string { return v.ID })
		return nil
	})
	return out, err
}
