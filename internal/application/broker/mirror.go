package broker

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/domain/pipeline"
)

// Mirror refleja el avance de las ventas en el lead del broker. Se suscribe al bus de eventos;
// sus errores no afectan al comando que originó el evento.
type Mirror struct {
	uc *UseCase
}

// NewMirror construye el espejo sobre el caso de uso de leads.
func NewMirror(uc *UseCase) *Mirror {
	return &Mirror{uc: uc}
}

var _ event.Handler = (*Mirror)(nil)

// HandleEvent atiende sale.status_changed y deposit.confirmed.
func (m *Mirror) HandleEvent(ctx context.Context, evt event.Event) error {
	if evt.Type != event.SaleStatusChanged && evt.Type != event.DepositConfirmed {
		return nil
	}
	p := evt.Payload
	_, err := m.uc.SyncBrokerLeadFromSale(ctx, evt.TenantID, evt.ActorID, p)
	if err != nil {
		m.uc.metrics.MirrorSync(SyncFailed)
		m.uc.log.Warn().Err(err).Str("event_id", evt.ID).Str("sale_id", p.SaleID).Msg("espejo: sincronización fallida")
		return err
	}
	return nil
}

// SyncBrokerLeadFromSale traduce el estado de la venta al vocabulario del broker y lo aplica al
// lead vinculado al cliente. Sin lead o sin estado traducible no hace nada (nil, nil).
func (uc *UseCase) SyncBrokerLeadFromSale(ctx context.Context, tenantID, actorID string, p event.SaleStatus) (*LeadUpdate, error) {
	to, ok := pipeline.LeadStatusFor(entity.SaleStatus(p.Status))
	if !ok || p.CustomerID == "" {
		uc.metrics.MirrorSync(SyncNoop)
		return nil, nil
	}
	var out *LeadUpdate
	err := uc.tx.RunBroker(ctx, func(r Repos) error {
		found, err := r.Leads.GetByCustomer(ctx, tenantID, p.CustomerID)
		if err != nil || found == nil {
			return err
		}
		l, err := uc.loadLead(ctx, r, tenantID, found.ID)
		if err != nil {
			return err
		}
		out, err = uc.apply(ctx, r, l, to, actorID, p.Notes, p.SaleID, p.FinalPrice, p.Currency)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil || !out.Changed {
		uc.metrics.MirrorSync(SyncNoop)
		return out, nil
	}
	uc.metrics.MirrorSync(SyncApplied)
	uc.log.Info().Str("lead_id", out.Lead.ID).Str("status", string(out.Lead.Status)).Str("sale_id", p.SaleID).Msg("espejo: lead actualizado")
	return out, nil
}
