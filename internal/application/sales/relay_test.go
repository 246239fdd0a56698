package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Emlak-api/internal/application/broker"
	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/application/sales"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/eventbus"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/memory"
)

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) HandleEvent(_ context.Context, evt event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recorder) statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, evt.Payload.Status)
	}
	return out
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, event.Event) error {
	return errors.New("broker caído")
}

func TestRelay_FlushPublicaEnOrdenYMarcaDespachados(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	saleID, _, _ := e.saleWithUnit(t)
	_, err := e.pipeline.UpdateSaleStatus(ctx, tenantID, actorID, saleID, "Proposal", "")
	require.NoError(t, err)

	rec := &recorder{}
	bus := eventbus.NewInline(nil)
	bus.Subscribe("rec", rec)
	relay := sales.NewRelay(e.store.Outbox(), bus, nil)

	n, err := relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Prospect", "Proposal"}, rec.statuses())

	// Caso 2: nada pendiente en la segunda pasada.
	n, err = relay.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelay_ErrorDePublicacionDejaPendiente(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	e.saleWithUnit(t)

	relay := sales.NewRelay(e.store.Outbox(), failingPublisher{}, nil)
	n, err := relay.Flush(ctx)
	require.Error(t, err)
	assert.Zero(t, n)

	pending, err := e.store.Outbox().ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRelay_ErrorDelSuscriptorDejaPendienteYReintenta(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	ctx := context.Background()
	e.saleWithUnit(t)

	fail := true
	rec := &recorder{}
	bus := eventbus.NewInline(nil)
	bus.Subscribe("mirror", event.HandlerFunc(func(context.Context, event.Event) error {
		if fail {
			return errors.New("espejo caído")
		}
		return nil
	}))
	bus.Subscribe("rec", rec)
	relay := sales.NewRelay(e.store.Outbox(), bus, nil)

	n, err := relay.Flush(ctx)
	require.Error(t, err)
	assert.Zero(t, n)
	pending, err := e.store.Outbox().ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	// Caso 2: el suscriptor se recupera y el evento sale en el siguiente intento.
	fail = false
	n, err = relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Prospect", "Prospect"}, rec.statuses())
	pending, err = e.store.Outbox().ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRelay_RunReintentaHastaCancelar(t *testing.T) {
	e := newEnv(t, sales.BestEffort)
	e.saleWithUnit(t)

	rec := &recorder{}
	bus := eventbus.NewInline(nil)
	bus.Subscribe("rec", rec)
	relay := sales.NewRelay(e.store.Outbox(), bus, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx, 10*time.Millisecond)
		close(done)
	}()
	assert.Eventually(t, func() bool { return len(rec.statuses()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

// ──────────────────────────────────────────────────────────────────────────────
// Espejo de brokers alimentado por el outbox
// ──────────────────────────────────────────────────────────────────────────────

func TestMirror_VentaActualizaLeadYGeneraComision(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	brokerUC := broker.NewUseCase(store, nil, nil, nil, 0).WithClock(func() time.Time { return now })
	bus := eventbus.NewInline(nil)
	bus.Subscribe("broker-mirror", broker.NewMirror(brokerUC))
	relay := sales.NewRelay(store.Outbox(), bus, nil)

	deps := sales.Deps{Tx: store, Notifier: relay, Now: func() time.Time { return now }}
	pipeline := sales.NewPipelineUseCase(deps)
	offers := sales.NewOfferUseCase(deps)

	e := &env{store: store, pipeline: pipeline, offers: offers, now: now}
	unitID := e.unit(t, e.project(t), "M-1", 2_000_000)
	customerID := e.customer(t, "Zeynep Arslan")

	b, err := brokerUC.CreateBroker(ctx, tenantID, dto.CreateBrokerRequest{
		Name:           "Ege Emlak",
		CommissionType: "flat",
		CommissionRate: decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	lead, err := brokerUC.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{
		BrokerID:   b.ID,
		Phone:      "0532 111 22 33",
		CustomerID: customerID,
	})
	require.NoError(t, err)

	// Caso 1: Prospect → Qualified.
	o, err := pipeline.CreateSale(ctx, tenantID, actorID, sales.CreateSaleInput{CustomerID: customerID, UnitID: unitID})
	require.NoError(t, err)
	got, err := brokerUC.GetLead(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.LeadQualified), got.Status)

	// Caso 2: Proposal → OfferSent.
	o, err = pipeline.UpdateSaleStatus(ctx, tenantID, actorID, o.Sale.ID, "Proposal", "")
	require.NoError(t, err)
	got, err = brokerUC.GetLead(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.LeadOfferSent), got.Status)

	// Caso 3: contrato → ContractSigned y comisión sobre el precio final.
	_, err = offers.FinalizeOffer(ctx, tenantID, actorID, o.Offer.ID)
	require.NoError(t, err)
	got, err = brokerUC.GetLead(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.LeadContractSigned), got.Status)

	c, err := store.Commissions().GetByLead(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Amount.Equal(decimal.NewFromInt(40_000)), c.Amount.String())
	assert.Equal(t, o.Sale.ID, c.SaleID)

	// Caso 4: el historial registra cada cambio una sola vez.
	history, err := brokerUC.History(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	statuses := make([]string, 0, len(history))
	for _, h := range history {
		statuses = append(statuses, h.NewStatus)
	}
	assert.Equal(t, []string{"New", "Qualified", "OfferSent", "ContractSigned"}, statuses)
}
