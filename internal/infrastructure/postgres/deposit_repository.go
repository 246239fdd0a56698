package postgres

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var _ repository.DepositRepository = (*DepositRepo)(nil)

// DepositRepo implementación de DepositRepository.
type DepositRepo struct {
	q Querier
}

// NewDepositRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDepositRepository(q Querier) *DepositRepo {
	return &DepositRepo{q: q}
}

const depositColumns = `id, tenant_id, customer_id, COALESCE(sale_id, ''), COALESCE(offer_id, ''), amount, currency,
	status, paid_at, refunded_at, created_at, updated_at`

func scanDeposit(row rowScanner) (*entity.Deposit, error) {
	var d entity.Deposit
	var status string
	err := row.Scan(
		&d.ID, &d.TenantID, &d.CustomerID, &d.SaleID, &d.OfferID, &d.Amount, &d.Currency,
		&status, &d.PaidAt, &d.RefundedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = entity.DepositStatus(status)
	return &d, nil
}

// Create persiste una seña; la tabla exige exactamente uno de sale_id u offer_id.
func (r *DepositRepo) Create(ctx context.Context, d *entity.Deposit) error {
	query := `
		INSERT INTO deposits (id, tenant_id, customer_id, sale_id, offer_id, amount, currency,
			status, paid_at, refunded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.TenantID, d.CustomerID, nullIfEmpty(d.SaleID), nullIfEmpty(d.OfferID), d.Amount, d.Currency,
		string(d.Status), d.PaidAt, d.RefundedAt, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert deposit", err)
	}
	return nil
}

func (r *DepositRepo) get(ctx context.Context, tenantID, id, suffix string) (*entity.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE tenant_id = $1 AND id = $2` + suffix
	d, err := scanDeposit(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get deposit", err)
	}
	return d, nil
}

// GetByID obtiene una seña; nil si no existe.
func (r *DepositRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Deposit, error) {
	return r.get(ctx, tenantID, id, "")
}

// GetForUpdate bloquea la fila de la seña.
func (r *DepositRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Deposit, error) {
	return r.get(ctx, tenantID, id, " FOR UPDATE")
}

// Update guarda estado y fechas.
func (r *DepositRepo) Update(ctx context.Context, d *entity.Deposit) error {
	query := `
		UPDATE deposits SET status = $3, paid_at = $4, refunded_at = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2`
	if _, err := r.q.Exec(ctx, query, d.TenantID, d.ID, string(d.Status), d.PaidAt, d.RefundedAt, d.UpdatedAt); err != nil {
		return wrapErr("update deposit", err)
	}
	return nil
}

func (r *DepositRepo) listBy(ctx context.Context, column, tenantID, id string) ([]*entity.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE tenant_id = $1 AND ` + column + ` = $2 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, id)
	if err != nil {
		return nil, wrapErr("list deposits", err)
	}
	defer rows.Close()
	var list []*entity.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, wrapErr("list deposits", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list deposits", err)
	}
	return list, nil
}

// ListBySale señas de la venta.
func (r *DepositRepo) ListBySale(ctx context.Context, tenantID, saleID string) ([]*entity.Deposit, error) {
	return r.listBy(ctx, "sale_id", tenantID, saleID)
}

// ListByOffer señas de la oferta.
func (r *DepositRepo) ListByOffer(ctx context.Context, tenantID, offerID string) ([]*entity.Deposit, error) {
	return r.listBy(ctx, "offer_id", tenantID, offerID)
}
