package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var (
	_ repository.ContractRepository    = (*ContractRepo)(nil)
	_ repository.PaymentPlanRepository = (*PaymentPlanRepo)(nil)
)

// ContractRepo implementación de ContractRepository.
type ContractRepo struct {
	q Querier
}

// NewContractRepository construye el adaptador. Pasar pool o tx (Querier).
func NewContractRepository(q Querier) *ContractRepo {
	return &ContractRepo{q: q}
}

const contractColumns = `id, tenant_id, COALESCE(sale_id, ''), offer_id, unit_id, customer_id, contract_number,
	contract_date, amount, total_amount, currency, notes, created_at`

func (r *ContractRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.Contract, error) {
	var c entity.Contract
	err := r.q.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE `+where, args...).Scan(
		&c.ID, &c.TenantID, &c.SaleID, &c.OfferID, &c.UnitID, &c.CustomerID, &c.ContractNumber,
		&c.ContractDate, &c.Amount, &c.TotalAmount, &c.Currency, &c.Notes, &c.CreatedAt,
	)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return &c, nil
}

// Create persiste un contrato; el número es único por tenant.
func (r *ContractRepo) Create(ctx context.Context, c *entity.Contract) error {
	query := `
		INSERT INTO contracts (id, tenant_id, sale_id, offer_id, unit_id, customer_id, contract_number,
			contract_date, amount, total_amount, currency, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.TenantID, nullIfEmpty(c.SaleID), c.OfferID, c.UnitID, c.CustomerID, c.ContractNumber,
		c.ContractDate, c.Amount, c.TotalAmount, c.Currency, c.Notes, c.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert contract", err)
	}
	return nil
}

// GetByID obtiene un contrato; nil si no existe.
func (r *ContractRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Contract, error) {
	return r.getOne(ctx, "get contract", `tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetByNumber obtiene un contrato por su número.
func (r *ContractRepo) GetByNumber(ctx context.Context, tenantID, number string) (*entity.Contract, error) {
	return r.getOne(ctx, "get contract by number", `tenant_id = $1 AND contract_number = $2`, tenantID, number)
}

// PaymentPlanRepo implementación de PaymentPlanRepository: cabecera en payment_plans e ítems en payment_items.
type PaymentPlanRepo struct {
	q Querier
}

// NewPaymentPlanRepository construye el adaptador.
func NewPaymentPlanRepository(q Querier) *PaymentPlanRepo {
	return &PaymentPlanRepo{q: q}
}

const planColumns = `id, tenant_id, COALESCE(sale_id, ''), COALESCE(contract_id, ''), name, currency, principal,
	down_payment, monthly_rate, interest_method, total_interest, grand_total, created_at`

// Create persiste el plan y sus ítems; los ítems sin ID reciben uno nuevo.
func (r *PaymentPlanRepo) Create(ctx context.Context, p *entity.PaymentPlan) error {
	query := `
		INSERT INTO payment_plans (id, tenant_id, sale_id, contract_id, name, currency, principal,
			down_payment, monthly_rate, interest_method, total_interest, grand_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.TenantID, nullIfEmpty(p.SaleID), nullIfEmpty(p.ContractID), p.Name, p.Currency, p.Principal,
		p.DownPayment, p.MonthlyRate, string(p.InterestMethod), p.TotalInterest, p.GrandTotal, p.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert payment plan", err)
	}
	itemQuery := `
		INSERT INTO payment_items (id, payment_plan_id, position, due_date, amount, principal, interest, kind, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range p.Items {
		it := &p.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.PaymentPlanID = p.ID
		if it.Status == "" {
			it.Status = "Pending"
		}
		_, err := r.q.Exec(ctx, itemQuery,
			it.ID, p.ID, i, it.DueDate, it.Amount, it.Principal, it.Interest, string(it.Kind), it.Description, it.Status,
		)
		if err != nil {
			return wrapErr(fmt.Sprintf("insert payment item %d", i), err)
		}
	}
	return nil
}

func (r *PaymentPlanRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.PaymentPlan, error) {
	var p entity.PaymentPlan
	var method string
	err := r.q.QueryRow(ctx, `SELECT `+planColumns+` FROM payment_plans WHERE `+where, args...).Scan(
		&p.ID, &p.TenantID, &p.SaleID, &p.ContractID, &p.Name, &p.Currency, &p.Principal,
		&p.DownPayment, &p.MonthlyRate, &method, &p.TotalInterest, &p.GrandTotal, &p.CreatedAt,
	)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	p.InterestMethod = entity.InterestMethod(method)
	if p.Items, err = r.items(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentPlanRepo) items(ctx context.Context, planID string) ([]entity.PaymentItem, error) {
	query := `
		SELECT id, payment_plan_id, due_date, amount, principal, interest, kind, description, status
		FROM payment_items WHERE payment_plan_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, planID)
	if err != nil {
		return nil, wrapErr("list payment items", err)
	}
	defer rows.Close()
	var list []entity.PaymentItem
	for rows.Next() {
		var it entity.PaymentItem
		var kind string
		if err := rows.Scan(&it.ID, &it.PaymentPlanID, &it.DueDate, &it.Amount, &it.Principal, &it.Interest, &kind, &it.Description, &it.Status); err != nil {
			return nil, wrapErr("list payment items", err)
		}
		it.Kind = entity.PaymentKind(kind)
		list = append(list, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list payment items", err)
	}
	return list, nil
}

// GetByID obtiene un plan con sus ítems.
func (r *PaymentPlanRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.PaymentPlan, error) {
	return r.getOne(ctx, "get payment plan", `tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetLatestBySale plan más reciente de la venta que aún no tiene contrato.
func (r *PaymentPlanRepo) GetLatestBySale(ctx context.Context, tenantID, saleID string) (*entity.PaymentPlan, error) {
	return r.getOne(ctx, "get payment plan by sale",
		`tenant_id = $1 AND sale_id = $2 AND contract_id IS NULL ORDER BY created_at DESC, id DESC LIMIT 1`, tenantID, saleID)
}

// GetByContract plan vinculado al contrato.
func (r *PaymentPlanRepo) GetByContract(ctx context.Context, tenantID, contractID string) (*entity.PaymentPlan, error) {
	return r.getOne(ctx, "get payment plan by contract",
		`tenant_id = $1 AND contract_id = $2 ORDER BY created_at DESC LIMIT 1`, tenantID, contractID)
}

// LinkContract vincula el plan al contrato.
func (r *PaymentPlanRepo) LinkContract(ctx context.Context, tenantID, planID, contractID string) error {
	tag, err := r.q.Exec(ctx, `UPDATE payment_plans SET contract_id = $3 WHERE tenant_id = $1 AND id = $2`, tenantID, planID, contractID)
	if err != nil {
		return wrapErr("link payment plan", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr("link payment plan", fmt.Errorf("plan %s no existe", planID))
	}
	return nil
}
