package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/commission"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/pkg/logger"
)

// UseCase leads referidos por brokers: alta con propiedad del teléfono, vínculo con el cliente,
// cambios de estado con historial y comisión al firmarse el contrato.
type UseCase struct {
	tx        TxRunner
	locker    Locker
	metrics   Metrics
	log       *logger.Logger
	ownership time.Duration
	now       func() time.Time
}

// NewUseCase construye el caso de uso. ownership es la vigencia de la propiedad del teléfono.
func NewUseCase(tx TxRunner, locker Locker, metrics Metrics, log *logger.Logger, ownership time.Duration) *UseCase {
	if locker == nil {
		locker = nopLocker{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if ownership <= 0 {
		ownership = 90 * 24 * time.Hour
	}
	return &UseCase{tx: tx, locker: locker, metrics: metrics, log: log, ownership: ownership, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// LeadUpdate resultado de aplicar un estado al lead.
type LeadUpdate struct {
	Lead       *entity.BrokerLead
	Changed    bool
	Commission *entity.Commission
}

// CreateBroker da de alta un broker activo.
func (uc *UseCase) CreateBroker(ctx context.Context, tenantID string, in dto.CreateBrokerRequest) (*dto.BrokerResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validation("name es requerido")
	}
	b := &entity.Broker{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		Name:           strings.TrimSpace(in.Name),
		Active:         true,
		CommissionType: entity.CommissionType(in.CommissionType),
		CommissionRate: in.CommissionRate,
		CreatedAt:      uc.now(),
	}
	if in.Phone != "" {
		phone, err := NormalizePhone(in.Phone)
		if err != nil {
			return nil, err
		}
		b.Phone = phone
	}
	switch b.CommissionType {
	case entity.CommissionFlat:
		if b.CommissionRate.IsNegative() {
			return nil, domain.Validation("commission_rate no puede ser negativo")
		}
	case entity.CommissionTiered:
		if len(in.Tiers) == 0 {
			return nil, domain.Validation("tiers es requerido para comisión escalonada")
		}
		for _, t := range in.Tiers {
			if t.MinSuccesses < 1 || t.Rate.IsNegative() {
				return nil, domain.Validation("tramo inválido (%d, %s)", t.MinSuccesses, t.Rate)
			}
			b.CommissionTiers = append(b.CommissionTiers, entity.CommissionTier{MinSuccesses: t.MinSuccesses, Rate: t.Rate})
		}
	default:
		return nil, domain.Validation("commission_type inválido %q", in.CommissionType)
	}
	err := uc.tx.RunBroker(ctx, func(r Repos) error {
		return r.Brokers.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return toBrokerResponse(b), nil
}

// RegisterLead registra un teléfono referido. Falla con ErrPhoneOwned si otro lead conserva la propiedad.
func (uc *UseCase) RegisterLead(ctx context.Context, tenantID, actorID string, in dto.RegisterLeadRequest) (*dto.BrokerLeadResponse, error) {
	if in.BrokerID == "" {
		return nil, domain.Validation("broker_id es requerido")
	}
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	unlock, err := uc.locker.Lock(ctx, "phone:"+tenantID+":"+phone)
	if err != nil {
		return nil, fmt.Errorf("lock phone: %w", err)
	}
	defer unlock()

	var lead *entity.BrokerLead
	err = uc.tx.RunBroker(ctx, func(r Repos) error {
		b, err := r.Brokers.GetByID(ctx, tenantID, in.BrokerID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.NotFound("broker", in.BrokerID)
		}
		if !b.Active {
			return fmt.Errorf("%w: el broker %s está inactivo", domain.ErrConflict, b.ID)
		}
		now := uc.now()
		owner, err := r.Leads.GetOwnerOfPhone(ctx, tenantID, phone, now)
		if err != nil {
			return err
		}
		if owner != nil {
			return fmt.Errorf("%w: %s hasta %s", domain.ErrPhoneOwned, phone, owner.OwnershipExpiresAt.Format(dto.DateLayout))
		}
		lead = &entity.BrokerLead{
			ID:                 uuid.New().String(),
			TenantID:           tenantID,
			BrokerID:           b.ID,
			Phone:              phone,
			Status:             entity.LeadNew,
			OwnershipExpiresAt: now.Add(uc.ownership),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if in.CustomerID != "" {
			if err := uc.ensureCustomerFree(ctx, r, tenantID, in.CustomerID, ""); err != nil {
				return err
			}
			lead.CustomerID = in.CustomerID
		}
		if err := r.Leads.Create(ctx, lead); err != nil {
			return err
		}
		return r.Leads.AppendHistory(ctx, &entity.LeadHistory{
			ID:        uuid.New().String(),
			LeadID:    lead.ID,
			NewStatus: entity.LeadNew,
			ChangedBy: actorID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lead_id", lead.ID).Str("broker_id", lead.BrokerID).Msg("lead registrado")
	return toLeadResponse(lead), nil
}

func (uc *UseCase) ensureCustomerFree(ctx context.Context, r Repos, tenantID, customerID, leadID string) error {
	c, err := r.Customers.GetByID(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.NotFound("customer", customerID)
	}
	other, err := r.Leads.GetByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if other != nil && other.ID != leadID {
		return fmt.Errorf("%w: el cliente ya está vinculado al lead %s", domain.ErrConflict, other.ID)
	}
	return nil
}

// LinkCustomer vincula el lead con el cliente del CRM; un cliente pertenece a un solo lead.
func (uc *UseCase) LinkCustomer(ctx context.Context, tenantID, leadID, customerID string) (*dto.BrokerLeadResponse, error) {
	if customerID == "" {
		return nil, domain.Validation("customer_id es requerido")
	}
	var lead *entity.BrokerLead
	err := uc.tx.RunBroker(ctx, func(r Repos) error {
		l, err := uc.loadLead(ctx, r, tenantID, leadID)
		if err != nil {
			return err
		}
		if l.CustomerID == customerID {
			lead = l
			return nil
		}
		if err := uc.ensureCustomerFree(ctx, r, tenantID, customerID, l.ID); err != nil {
			return err
		}
		l.CustomerID = customerID
		l.UpdatedAt = uc.now()
		lead = l
		return r.Leads.Update(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return toLeadResponse(lead), nil
}

func (uc *UseCase) loadLead(ctx context.Context, r Repos, tenantID, leadID string) (*entity.BrokerLead, error) {
	l, err := r.Leads.GetForUpdate(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.NotFound("broker_lead", leadID)
	}
	return l, nil
}

// UpdateLeadStatus aplica un estado al lead. Mismo estado = no-op.
func (uc *UseCase) UpdateLeadStatus(ctx context.Context, tenantID, actorID, leadID string, in dto.UpdateLeadStatusRequest) (*dto.LeadUpdateResponse, error) {
	status := entity.LeadStatus(in.Status)
	if !validLeadStatus(status) {
		return nil, domain.Validation("estado de lead desconocido %q", in.Status)
	}
	var out *LeadUpdate
	err := uc.tx.RunBroker(ctx, func(r Repos) error {
		l, err := uc.loadLead(ctx, r, tenantID, leadID)
		if err != nil {
			return err
		}
		out, err = uc.apply(ctx, r, l, status, actorID, in.Notes, "", in.BaseAmount, in.Currency)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toLeadUpdateResponse(out), nil
}

// apply escribe historial y estado; en ContractSigned crea la comisión una sola vez por lead.
// Rejected libera la propiedad del teléfono.
func (uc *UseCase) apply(ctx context.Context, r Repos, l *entity.BrokerLead, status entity.LeadStatus, actorID, notes, saleID string, base decimal.Decimal, currency string) (*LeadUpdate, error) {
	out := &LeadUpdate{Lead: l}
	if l.Status == status {
		return out, nil
	}
	now := uc.now()
	if err := r.Leads.AppendHistory(ctx, &entity.LeadHistory{
		ID:        uuid.New().String(),
		LeadID:    l.ID,
		OldStatus: l.Status,
		NewStatus: status,
		ChangedBy: actorID,
		Notes:     notes,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	l.Status = status
	l.UpdatedAt = now
	if status == entity.LeadRejected && l.OwnershipExpiresAt.After(now) {
		l.OwnershipExpiresAt = now
	}
	if err := r.Leads.Update(ctx, l); err != nil {
		return nil, err
	}
	out.Changed = true

	if status != entity.LeadContractSigned {
		return out, nil
	}
	existing, err := r.Commissions.GetByLead(ctx, l.TenantID, l.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return out, nil
	}
	b, err := r.Brokers.GetByID(ctx, l.TenantID, l.BrokerID)
	if err != nil {
		return nil, err
	}
	prior, err := r.Commissions.CountByBroker(ctx, l.TenantID, l.BrokerID)
	if err != nil {
		return nil, err
	}
	dec := commission.Evaluate(b, prior, base)
	if !dec.Eligible {
		return out, nil
	}
	c := &entity.Commission{
		ID:         uuid.New().String(),
		TenantID:   l.TenantID,
		BrokerID:   l.BrokerID,
		LeadID:     l.ID,
		SaleID:     saleID,
		BaseAmount: base,
		Rate:       dec.Rate,
		Amount:     dec.Amount,
		Currency:   currency,
		Status:     "Pending",
		CreatedAt:  now,
	}
	if err := r.Commissions.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.metrics.CommissionCreated(l.BrokerID)
	out.Commission = c
	return out, nil
}

// GetLead consulta un lead.
func (uc *UseCase) GetLead(ctx context.Context, tenantID, leadID string) (*dto.BrokerLeadResponse, error) {
	var lead *entity.BrokerLead
	err := uc.tx.RunBroker(ctx, func(r Repos) error {
		l, err := r.Leads.GetByID(ctx, tenantID, leadID)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.NotFound("broker_lead", leadID)
		}
		lead = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toLeadResponse(lead), nil
}

// History historial de estados del lead en orden de alta.
func (uc *UseCase) History(ctx context.Context, tenantID, leadID string) ([]dto.LeadHistoryResponse, error) {
	var rows []*entity.LeadHistory
	err := uc.tx.RunBroker(ctx, func(r Repos) error {
		l, err := r.Leads.GetByID(ctx, tenantID, leadID)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.NotFound("broker_lead", leadID)
		}
		rows, err = r.Leads.ListHistory(ctx, l.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.LeadHistoryResponse, 0, len(rows))
	for _, h := range rows {
		out = append(out, dto.LeadHistoryResponse{
			OldStatus: string(h.OldStatus),
			NewStatus: string(h.NewStatus),
			ChangedBy: h.ChangedBy,
			Notes:     h.Notes,
			CreatedAt: h.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func validLeadStatus(s entity.LeadStatus) bool {
	switch s {
	case entity.LeadNew, entity.LeadQualified, entity.LeadReserved, entity.LeadOfferSent,
		entity.LeadContractSigned, entity.LeadRejected:
		return true
	}
	return false
}

func toBrokerResponse(b *entity.Broker) *dto.BrokerResponse {
	out := &dto.BrokerResponse{
		ID:             b.ID,
		Name:           b.Name,
		Phone:          b.Phone,
		Active:         b.Active,
		CommissionType: string(b.CommissionType),
		CommissionRate: b.CommissionRate,
	}
	for _, t := range b.CommissionTiers {
		out.Tiers = append(out.Tiers, dto.CommissionTierRequest{MinSuccesses: t.MinSuccesses, Rate: t.Rate})
	}
	return out
}

func toLeadResponse(l *entity.BrokerLead) *dto.BrokerLeadResponse {
	return &dto.BrokerLeadResponse{
		ID:                 l.ID,
		BrokerID:           l.BrokerID,
		Phone:              l.Phone,
		CustomerID:         l.CustomerID,
		Status:             string(l.Status),
		OwnershipExpiresAt: l.OwnershipExpiresAt.Format(time.RFC3339),
		CreatedAt:          l.CreatedAt.Format(time.RFC3339),
	}
}

func toLeadUpdateResponse(u *LeadUpdate) *dto.LeadUpdateResponse {
	out := &dto.LeadUpdateResponse{Lead: *toLeadResponse(u.Lead), Changed: u.Changed}
	if c := u.Commission; c != nil {
		out.Commission = &dto.CommissionResponse{
			ID:         c.ID,
			BrokerID:   c.BrokerID,
			LeadID:     c.LeadID,
			SaleID:     c.SaleID,
			BaseAmount: c.BaseAmount,
			Rate:       c.Rate,
			Amount:     c.Amount,
			Currency:   c.Currency,
			Status:     c.Status,
		}
	}
	return out
}
