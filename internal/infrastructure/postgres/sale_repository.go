package postgres

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/pipeline"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, tenant_id, customer_id, COALESCE(unit_id, ''), assigned_to, status, final_price,
	currency, reservation_expiry, contract_date, restarted_at, created_by, created_at, updated_at`

// rowScanner lo común entre pgx.Row y pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*entity.Sale, error) {
	var s entity.Sale
	var status string
	err := row.Scan(
		&s.ID, &s.TenantID, &s.CustomerID, &s.UnitID, &s.AssignedTo, &status, &s.FinalPrice,
		&s.Currency, &s.ReservationExpiry, &s.ContractDate, &s.RestartedAt, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = entity.SaleStatus(status)
	return &s, nil
}

func statusesWhere(match func(entity.SaleStatus) bool) []string {
	var out []string
	for _, st := range pipeline.Statuses() {
		if match(st) {
			out = append(out, string(st))
		}
	}
	return out
}

var (
	holdingStatuses = statusesWhere(pipeline.HoldsUnit)
	openStatuses    = statusesWhere(pipeline.IsOpen)
)

// Create persiste una nueva venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, tenant_id, customer_id, unit_id, assigned_to, status, final_price, currency,
			reservation_expiry, contract_date, restarted_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.TenantID, s.CustomerID, nullIfEmpty(s.UnitID), s.AssignedTo, string(s.Status), s.FinalPrice, s.Currency,
		s.ReservationExpiry, s.ContractDate, s.RestartedAt, s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert sale", err)
	}
	return nil
}

func (r *SaleRepo) get(ctx context.Context, tenantID, id, suffix string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE tenant_id = $1 AND id = $2` + suffix
	s, err := scanSale(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get sale", err)
	}
	return s, nil
}

// GetByID obtiene una venta del tenant; nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return r.get(ctx, tenantID, id, "")
}

// GetForUpdate como GetByID pero bloquea la fila (SELECT FOR UPDATE).
func (r *SaleRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return r.get(ctx, tenantID, id, " FOR UPDATE")
}

// Update guarda el estado completo de la venta.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales SET unit_id = $3, assigned_to = $4, status = $5, final_price = $6, currency = $7,
			reservation_expiry = $8, contract_date = $9, restarted_at = $10, updated_at = $11
		WHERE tenant_id = $1 AND id = $2`
	_, err := r.q.Exec(ctx, query,
		s.TenantID, s.ID, nullIfEmpty(s.UnitID), s.AssignedTo, string(s.Status), s.FinalPrice, s.Currency,
		s.ReservationExpiry, s.ContractDate, s.RestartedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update sale", err)
	}
	return nil
}

func (r *SaleRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return list, nil
}

// List ventas del tenant, más recientes primero. Los filtros vacíos no aplican.
func (r *SaleRepo) List(ctx context.Context, tenantID string, f repository.SaleFilter, limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + ` FROM sales
		WHERE tenant_id = $1
			AND ($2 = '' OR status = $2)
			AND ($3 = '' OR assigned_to = $3)
			AND ($4 = '' OR customer_id = $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5 OFFSET $6`
	return r.list(ctx, "list sales", query, tenantID, string(f.Status), f.AssignedTo, f.CustomerID, limit, offset)
}

// FindActiveByCustomerAndUnit venta no Lost más reciente del par.
func (r *SaleRepo) FindActiveByCustomerAndUnit(ctx context.Context, tenantID, customerID, unitID string) (*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + ` FROM sales
		WHERE tenant_id = $1 AND customer_id = $2 AND COALESCE(unit_id, '') = $3 AND status <> $4
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	s, err := scanSale(r.q.QueryRow(ctx, query, tenantID, customerID, unitID, string(entity.SaleLost)))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr("find active sale", err)
	}
	return s, nil
}

// ListHoldingByUnit ventas que retienen la unidad, salvo exceptSaleID.
func (r *SaleRepo) ListHoldingByUnit(ctx context.Context, tenantID, unitID, exceptSaleID string) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + ` FROM sales
		WHERE tenant_id = $1 AND unit_id = $2 AND id <> $3 AND status = ANY($4)
		ORDER BY created_at, id`
	return r.list(ctx, "list holding sales", query, tenantID, unitID, exceptSaleID, holdingStatuses)
}

// CountOpenByAssignees ventas abiertas por vendedor; los que no tienen ninguna cuentan 0.
func (r *SaleRepo) CountOpenByAssignees(ctx context.Context, tenantID string, userIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(userIDs))
	for _, id := range userIDs {
		out[id] = 0
	}
	query := `
		SELECT assigned_to, COUNT(*) FROM sales
		WHERE tenant_id = $1 AND assigned_to = ANY($2) AND status = ANY($3)
		GROUP BY assigned_to`
	rows, err := r.q.Query(ctx, query, tenantID, userIDs, openStatuses)
	if err != nil {
		return nil, wrapErr("count open sales", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, wrapErr("count open sales", err)
		}
		out[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("count open sales", err)
	}
	return out, nil
}
