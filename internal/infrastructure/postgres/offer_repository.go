package postgres

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/repository"
)

var (
	_ repository.OfferRepository       = (*OfferRepo)(nil)
	_ repository.NegotiationRepository = (*NegotiationRepo)(nil)
)

// OfferRepo implementación de OfferRepository. El plan congelado se guarda como JSONB.
type OfferRepo struct {
	q Querier
}

// NewOfferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOfferRepository(q Querier) *OfferRepo {
	return &OfferRepo{q: q}
}

const offerColumns = `id, tenant_id, customer_id, unit_id, COALESCE(sale_id, ''), user_id, price, currency,
	status, valid_until, payment_plan, accepted_at, created_at, updated_at`

func scanOffer(row rowScanner) (*entity.Offer, error) {
	var o entity.Offer
	var status string
	var plan []byte
	err := row.Scan(
		&o.ID, &o.TenantID, &o.CustomerID, &o.UnitID, &o.SaleID, &o.UserID, &o.Price, &o.Currency,
		&status, &o.ValidUntil, &plan, &o.AcceptedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OfferStatus(status)
	if o.PaymentPlan, err = unmarshalNullable[entity.PlanSnapshot](plan); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste una oferta.
func (r *OfferRepo) Create(ctx context.Context, o *entity.Offer) error {
	plan, err := marshalNullable(o.PaymentPlan)
	if err != nil {
		return wrapErr("encode offer plan", err)
	}
	query := `
		INSERT INTO offers (id, tenant_id, customer_id, unit_id, sale_id, user_id, price, currency,
			status, valid_until, payment_plan, accepted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		o.ID, o.TenantID, o.CustomerID, o.UnitID, nullIfEmpty(o.SaleID), o.UserID, o.Price, o.Currency,
		string(o.Status), o.ValidUntil, plan, o.AcceptedAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert offer", err)
	}
	return nil
}

func (r *OfferRepo) get(ctx context.Context, tenantID, id, suffix string) (*entity.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE tenant_id = $1 AND id = $2` + suffix
	o, err := scanOffer(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get offer", err)
	}
	return o, nil
}

// GetByID obtiene una oferta; nil si no existe.
func (r *OfferRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Offer, error) {
	return r.get(ctx, tenantID, id, "")
}

// GetForUpdate bloquea la fila de la oferta.
func (r *OfferRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Offer, error) {
	return r.get(ctx, tenantID, id, " FOR UPDATE")
}

// Update guarda el estado completo de la oferta.
func (r *OfferRepo) Update(ctx context.Context, o *entity.Offer) error {
	plan, err := marshalNullable(o.PaymentPlan)
	if err != nil {
		return wrapErr("encode offer plan", err)
	}
	query := `
		UPDATE offers SET sale_id = $3, price = $4, currency = $5, status = $6, valid_until = $7,
			payment_plan = $8, accepted_at = $9, updated_at = $10
		WHERE tenant_id = $1 AND id = $2`
	_, err = r.q.Exec(ctx, query,
		o.TenantID, o.ID, nullIfEmpty(o.SaleID), o.Price, o.Currency, string(o.Status), o.ValidUntil,
		plan, o.AcceptedAt, o.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update offer", err)
	}
	return nil
}

// Delete elimina la oferta y sus contraofertas (ON DELETE CASCADE).
func (r *OfferRepo) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM offers WHERE tenant_id = $1 AND id = $2`, tenantID, id); err != nil {
		return wrapErr("delete offer", err)
	}
	return nil
}

// ListByCustomerAndUnit ofertas del par por orden de creación.
func (r *OfferRepo) ListByCustomerAndUnit(ctx context.Context, tenantID, customerID, unitID string) ([]*entity.Offer, error) {
	query := `
		SELECT ` + offerColumns + ` FROM offers
		WHERE tenant_id = $1 AND customer_id = $2 AND unit_id = $3
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, customerID, unitID)
	if err != nil {
		return nil, wrapErr("list offers", err)
	}
	defer rows.Close()
	var list []*entity.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, wrapErr("list offers", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list offers", err)
	}
	return list, nil
}

// NegotiationRepo implementación de NegotiationRepository.
type NegotiationRepo struct {
	q Querier
}

// NewNegotiationRepository construye el adaptador.
func NewNegotiationRepository(q Querier) *NegotiationRepo {
	return &NegotiationRepo{q: q}
}

const negotiationColumns = `id, tenant_id, offer_id, proposed_by, source, proposed_price, proposed_currency,
	proposed_valid_until, proposed_payment_plan, status, notes, decided_at, created_at`

func scanNegotiation(row rowScanner) (*entity.Negotiation, error) {
	var n entity.Negotiation
	var source, status string
	var plan []byte
	err := row.Scan(
		&n.ID, &n.TenantID, &n.OfferID, &n.ProposedBy, &source, &n.ProposedPrice, &n.ProposedCurrency,
		&n.ProposedValidUntil, &plan, &status, &n.Notes, &n.DecidedAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Source = entity.NegotiationSource(source)
	n.Status = entity.NegotiationStatus(status)
	if n.ProposedPaymentPlan, err = unmarshalNullable[entity.PlanSnapshot](plan); err != nil {
		return nil, err
	}
	return &n, nil
}

// Create persiste una contraoferta.
func (r *NegotiationRepo) Create(ctx context.Context, n *entity.Negotiation) error {
	plan, err := marshalNullable(n.ProposedPaymentPlan)
	if err != nil {
		return wrapErr("encode negotiation plan", err)
	}
	query := `
		INSERT INTO negotiations (id, tenant_id, offer_id, proposed_by, source, proposed_price, proposed_currency,
			proposed_valid_until, proposed_payment_plan, status, notes, decided_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		n.ID, n.TenantID, n.OfferID, n.ProposedBy, string(n.Source), n.ProposedPrice, n.ProposedCurrency,
		n.ProposedValidUntil, plan, string(n.Status), n.Notes, n.DecidedAt, n.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert negotiation", err)
	}
	return nil
}

// GetByID obtiene una contraoferta; nil si no existe.
func (r *NegotiationRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Negotiation, error) {
	query := `SELECT ` + negotiationColumns + ` FROM negotiations WHERE tenant_id = $1 AND id = $2`
	n, err := scanNegotiation(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get negotiation", err)
	}
	return n, nil
}

// Update guarda la decisión sobre la contraoferta.
func (r *NegotiationRepo) Update(ctx context.Context, n *entity.Negotiation) error {
	query := `UPDATE negotiations SET status = $3, notes = $4, decided_at = $5 WHERE tenant_id = $1 AND id = $2`
	if _, err := r.q.Exec(ctx, query, n.TenantID, n.ID, string(n.Status), n.Notes, n.DecidedAt); err != nil {
		return wrapErr("update negotiation", err)
	}
	return nil
}

// ListByOffer contraofertas de la oferta por orden de creación.
func (r *NegotiationRepo) ListByOffer(ctx context.Context, tenantID, offerID string) ([]*entity.Negotiation, error) {
	query := `
		SELECT ` + negotiationColumns + ` FROM negotiations
		WHERE tenant_id = $1 AND offer_id = $2
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, offerID)
	if err != nil {
		return nil, wrapErr("list negotiations", err)
	}
	defer rows.Close()
	var list []*entity.Negotiation
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, wrapErr("list negotiations", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list negotiations", err)
	}
	return list, nil
}
