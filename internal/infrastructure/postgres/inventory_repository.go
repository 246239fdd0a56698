package postgres

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var (
	_ repository.UnitRepository    = (*UnitRepo)(nil)
	_ repository.ProjectRepository = (*ProjectRepo)(nil)
	_ repository.TeamRepository    = (*TeamRepo)(nil)
)

// UnitRepo implementación de UnitRepository.
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

const unitColumns = `id, tenant_id, project_id, code, status, price, currency, created_at, updated_at`

func scanUnit(row rowScanner) (*entity.Unit, error) {
	var u entity.Unit
	var status string
	if err := row.Scan(&u.ID, &u.TenantID, &u.ProjectID, &u.Code, &status, &u.Price, &u.Currency, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Status = entity.UnitStatus(status)
	return &u, nil
}

// Create persiste una unidad; el código es único dentro del proyecto.
func (r *UnitRepo) Create(ctx context.Context, u *entity.Unit) error {
	query := `
		INSERT INTO units (id, tenant_id, project_id, code, status, price, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.TenantID, u.ProjectID, u.Code, string(u.Status), u.Price, u.Currency, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert unit", err)
	}
	return nil
}

func (r *UnitRepo) get(ctx context.Context, tenantID, id, suffix string) (*entity.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE tenant_id = $1 AND id = $2` + suffix
	u, err := scanUnit(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get unit", err)
	}
	return u, nil
}

// GetByID obtiene una unidad del tenant; nil si no existe.
func (r *UnitRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Unit, error) {
	return r.get(ctx, tenantID, id, "")
}

// GetForUpdate bloquea la fila de la unidad.
func (r *UnitRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Unit, error) {
	return r.get(ctx, tenantID, id, " FOR UPDATE")
}

// Update guarda estado y precio.
func (r *UnitRepo) Update(ctx context.Context, u *entity.Unit) error {
	query := `
		UPDATE units SET status = $3, price = $4, currency = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2`
	_, err := r.q.Exec(ctx, query, u.TenantID, u.ID, string(u.Status), u.Price, u.Currency, u.UpdatedAt)
	if err != nil {
		return wrapErr("update unit", err)
	}
	return nil
}

// ListByProject unidades del proyecto por código.
func (r *UnitRepo) ListByProject(ctx context.Context, tenantID, projectID string, limit, offset int) ([]*entity.Unit, error) {
	query := `
		SELECT ` + unitColumns + ` FROM units
		WHERE tenant_id = $1 AND project_id = $2
		ORDER BY code
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, projectID, limit, offset)
	if err != nil {
		return nil, wrapErr("list units", err)
	}
	defer rows.Close()
	var list []*entity.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, wrapErr("list units", err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list units", err)
	}
	return list, nil
}

// ProjectRepo implementación de ProjectRepository.
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador.
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

// Create persiste un proyecto.
func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	query := `INSERT INTO projects (id, tenant_id, name, city, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.TenantID, p.Name, p.City, p.CreatedAt); err != nil {
		return wrapErr("insert project", err)
	}
	return nil
}

// GetByID obtiene un proyecto; nil si no existe.
func (r *ProjectRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Project, error) {
	query := `SELECT id, tenant_id, name, city, created_at FROM projects WHERE tenant_id = $1 AND id = $2`
	var p entity.Project
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(&p.ID, &p.TenantID, &p.Name, &p.City, &p.CreatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get project", err)
	}
	return &p, nil
}

// TeamRepo implementación de TeamRepository. Proyectos y miembros se guardan como TEXT[].
type TeamRepo struct {
	q Querier
}

// NewTeamRepository construye el adaptador.
func NewTeamRepository(q Querier) *TeamRepo {
	return &TeamRepo{q: q}
}

// Create persiste un equipo; MemberIDs conserva el orden de alta.
func (r *TeamRepo) Create(ctx context.Context, t *entity.Team) error {
	query := `
		INSERT INTO teams (id, tenant_id, name, project_ids, member_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, t.ID, t.TenantID, t.Name, t.ProjectIDs, t.MemberIDs, t.CreatedAt)
	if err != nil {
		return wrapErr("insert team", err)
	}
	return nil
}

// ListByProject equipos que cubren el proyecto, en orden de creación.
func (r *TeamRepo) ListByProject(ctx context.Context, tenantID, projectID string) ([]*entity.Team, error) {
	query := `
		SELECT id, tenant_id, name, project_ids, member_ids, created_at FROM teams
		WHERE tenant_id = $1 AND $2 = ANY(project_ids)
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, projectID)
	if err != nil {
		return nil, wrapErr("list teams", err)
	}
	defer rows.Close()
	var list []*entity.Team
	for rows.Next() {
		var t entity.Team
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Name, &t.ProjectIDs, &t.MemberIDs, &t.CreatedAt); err != nil {
			return nil, wrapErr("list teams", err)
		}
		list = append(list, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list teams", err)
	}
	return list, nil
}
