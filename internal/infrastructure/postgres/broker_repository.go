package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var (
	_ repository.BrokerRepository     = (*BrokerRepo)(nil)
	_ repository.BrokerLeadRepository = (*BrokerLeadRepo)(nil)
	_ repository.CommissionRepository = (*CommissionRepo)(nil)
)

// BrokerRepo implementación de BrokerRepository. Los tramos de comisión van en JSONB.
type BrokerRepo struct {
	q Querier
}

// NewBrokerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBrokerRepository(q Querier) *BrokerRepo {
	return &BrokerRepo{q: q}
}

// Create persiste un broker.
func (r *BrokerRepo) Create(ctx context.Context, b *entity.Broker) error {
	tiers := b.CommissionTiers
	if tiers == nil {
		tiers = []entity.CommissionTier{}
	}
	raw, err := json.Marshal(tiers)
	if err != nil {
		return wrapErr("encode commission tiers", err)
	}
	query := `
		INSERT INTO brokers (id, tenant_id, name, phone, active, commission_type, commission_rate, commission_tiers, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(ctx, query,
		b.ID, b.TenantID, b.Name, b.Phone, b.Active, string(b.CommissionType), b.CommissionRate, raw, b.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert broker", err)
	}
	return nil
}

// GetByID obtiene un broker; nil si no existe.
func (r *BrokerRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Broker, error) {
	query := `
		SELECT id, tenant_id, name, phone, active, commission_type, commission_rate, commission_tiers, created_at
		FROM brokers WHERE tenant_id = $1 AND id = $2`
	var b entity.Broker
	var typ string
	var raw []byte
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&b.ID, &b.TenantID, &b.Name, &b.Phone, &b.Active, &typ, &b.CommissionRate, &raw, &b.CreatedAt,
	)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get broker", err)
	}
	b.CommissionType = entity.CommissionType(typ)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &b.CommissionTiers); err != nil {
			return nil, wrapErr("decode commission tiers", err)
		}
	}
	return &b, nil
}

// BrokerLeadRepo implementación de BrokerLeadRepository.
type BrokerLeadRepo struct {
	q Querier
}

// NewBrokerLeadRepository construye el adaptador.
func NewBrokerLeadRepository(q Querier) *BrokerLeadRepo {
	return &BrokerLeadRepo{q: q}
}

const leadColumns = `id, tenant_id, broker_id, phone, COALESCE(customer_id, ''), status, ownership_expires_at, created_at, updated_at`

func (r *BrokerLeadRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.BrokerLead, error) {
	var l entity.BrokerLead
	var status string
	err := r.q.QueryRow(ctx, `SELECT `+leadColumns+` FROM broker_leads WHERE `+where, args...).Scan(
		&l.ID, &l.TenantID, &l.BrokerID, &l.Phone, &l.CustomerID, &status, &l.OwnershipExpiresAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	l.Status = entity.LeadStatus(status)
	return &l, nil
}

// Create persiste un lead; un cliente solo puede estar en un lead por tenant.
func (r *BrokerLeadRepo) Create(ctx context.Context, l *entity.BrokerLead) error {
	query := `
		INSERT INTO broker_leads (id, tenant_id, broker_id, phone, customer_id, status, ownership_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.TenantID, l.BrokerID, l.Phone, nullIfEmpty(l.CustomerID), string(l.Status), l.OwnershipExpiresAt, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert broker lead", err)
	}
	return nil
}

// GetByID obtiene un lead; nil si no existe.
func (r *BrokerLeadRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.BrokerLead, error) {
	return r.getOne(ctx, "get broker lead", `tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate bloquea la fila del lead.
func (r *BrokerLeadRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.BrokerLead, error) {
	return r.getOne(ctx, "get broker lead", `tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

// GetByCustomer lead vinculado al cliente.
func (r *BrokerLeadRepo) GetByCustomer(ctx context.Context, tenantID, customerID string) (*entity.BrokerLead, error) {
	return r.getOne(ctx, "get broker lead by customer", `tenant_id = $1 AND customer_id = $2`, tenantID, customerID)
}

// GetOwnerOfPhone lead no rechazado cuya propiedad sigue vigente en at.
func (r *BrokerLeadRepo) GetOwnerOfPhone(ctx context.Context, tenantID, phone string, at time.Time) (*entity.BrokerLead, error) {
	return r.getOne(ctx, "get phone owner",
		`tenant_id = $1 AND phone = $2 AND status <> $3 AND ownership_expires_at > $4 ORDER BY created_at LIMIT 1`,
		tenantID, phone, string(entity.LeadRejected), at)
}

// Update guarda estado, cliente y vencimiento de la propiedad.
func (r *BrokerLeadRepo) Update(ctx context.Context, l *entity.BrokerLead) error {
	query := `
		UPDATE broker_leads SET customer_id = $3, status = $4, ownership_expires_at = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2`
	_, err := r.q.Exec(ctx, query, l.TenantID, l.ID, nullIfEmpty(l.CustomerID), string(l.Status), l.OwnershipExpiresAt, l.UpdatedAt)
	if err != nil {
		return wrapErr("update broker lead", err)
	}
	return nil
}

// AppendHistory agrega una fila de auditoría.
func (r *BrokerLeadRepo) AppendHistory(ctx context.Context, h *entity.LeadHistory) error {
	query := `
		INSERT INTO lead_history (id, lead_id, old_status, new_status, changed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, h.ID, h.LeadID, string(h.OldStatus), string(h.NewStatus), h.ChangedBy, h.Notes, h.CreatedAt)
	if err != nil {
		return wrapErr("insert lead history", err)
	}
	return nil
}

// ListHistory historial del lead en orden cronológico.
func (r *BrokerLeadRepo) ListHistory(ctx context.Context, leadID string) ([]*entity.LeadHistory, error) {
	query := `
		SELECT id, lead_id, old_status, new_status, changed_by, notes, created_at
		FROM lead_history WHERE lead_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, leadID)
	if err != nil {
		return nil, wrapErr("list lead history", err)
	}
	defer rows.Close()
	var list []*entity.LeadHistory
	for rows.Next() {
		var h entity.LeadHistory
		var oldStatus, newStatus string
		if err := rows.Scan(&h.ID, &h.LeadID, &oldStatus, &newStatus, &h.ChangedBy, &h.Notes, &h.CreatedAt); err != nil {
			return nil, wrapErr("list lead history", err)
		}
		h.OldStatus = entity.LeadStatus(oldStatus)
		h.NewStatus = entity.LeadStatus(newStatus)
		list = append(list, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list lead history", err)
	}
	return list, nil
}

// CommissionRepo implementación de CommissionRepository.
type CommissionRepo struct {
	q Querier
}

// NewCommissionRepository construye el adaptador.
func NewCommissionRepository(q Querier) *CommissionRepo {
	return &CommissionRepo{q: q}
}

// Create persiste una comisión; lead_id es único.
func (r *CommissionRepo) Create(ctx context.Context, c *entity.Commission) error {
	query := `
		INSERT INTO commissions (id, tenant_id, broker_id, lead_id, sale_id, base_amount, rate, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.TenantID, c.BrokerID, c.LeadID, c.SaleID, c.BaseAmount, c.Rate, c.Amount, c.Currency, c.Status, c.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert commission", err)
	}
	return nil
}

// GetByLead comisión del lead; nil si aún no existe.
func (r *CommissionRepo) GetByLead(ctx context.Context, tenantID, leadID string) (*entity.Commission, error) {
	query := `
		SELECT id, tenant_id, broker_id, lead_id, sale_id, base_amount, rate, amount, currency, status, created_at
		FROM commissions WHERE tenant_id = $1 AND lead_id = $2`
	var c entity.Commission
	err := r.q.QueryRow(ctx, query, tenantID, leadID).Scan(
		&c.ID, &c.TenantID, &c.BrokerID, &c.LeadID, &c.SaleID, &c.BaseAmount, &c.Rate, &c.Amount, &c.Currency, &c.Status, &c.CreatedAt,
	)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get commission", err)
	}
	return &c, nil
}

// CountByBroker comisiones ya generadas para el broker.
func (r *CommissionRepo) CountByBroker(ctx context.Context, tenantID, brokerID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM commissions WHERE tenant_id = $1 AND broker_id = $2`, tenantID, brokerID).Scan(&n)
	if err != nil {
		return 0, wrapErr("count commissions", err)
	}
	return n, nil
}
