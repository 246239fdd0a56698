package broker_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Emlak-api/internal/application/broker"
	"github.com/jhoicas/Emlak-api/internal/application/dto"
	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
	"github.com/jhoicas/Emlak-api/internal/domain/event"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/memory"
	"github.com/jhoicas/Emlak-api/internal/infrastructure/metrics"
)

const (
	tenantID = "tenant-1"
	actorID  = "user-1"
)

type fixture struct {
	store   *memory.Store
	uc      *broker.UseCase
	metrics *metrics.Metrics
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   memory.NewStore(),
		metrics: metrics.New(),
		now:     time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	f.uc = broker.NewUseCase(f.store, nil, f.metrics, nil, 90*24*time.Hour).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) broker(t *testing.T, rate int64) string {
	t.Helper()
	b, err := f.uc.CreateBroker(context.Background(), tenantID, dto.CreateBrokerRequest{
		Name:           "Marmara Gayrimenkul",
		CommissionType: "flat",
		CommissionRate: decimal.NewFromInt(rate),
	})
	require.NoError(t, err)
	return b.ID
}

func (f *fixture) customer(t *testing.T) string {
	t.Helper()
	c := &entity.Customer{ID: uuid.NewString(), TenantID: tenantID, Name: "Mehmet Kaya", CreatedAt: f.now, UpdatedAt: f.now}
	require.NoError(t, f.store.Customers().Create(context.Background(), c))
	return c.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// NormalizePhone
// ──────────────────────────────────────────────────────────────────────────────

func TestNormalizePhone_Formatos(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"local con cero", "0532 111 22 33", "+905321112233"},
		{"móvil sin prefijo", "532-111-2233", "+905321112233"},
		{"internacional con más", "+90 (532) 111 22 33", "+905321112233"},
		{"internacional con doble cero", "0044 20 7946 0958", "+442079460958"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := broker.NormalizePhone(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := broker.NormalizePhone("12345")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedad del teléfono
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterLead_PropiedadDelTelefono(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1, b2 := f.broker(t, 2), f.broker(t, 3)

	lead, err := f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b1, Phone: "0532 111 22 33"})
	require.NoError(t, err)
	assert.Equal(t, "+905321112233", lead.Phone)
	assert.Equal(t, string(entity.LeadNew), lead.Status)

	// Caso 1: mismo número en otro formato → ErrPhoneOwned (y ErrConflict).
	_, err = f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b2, Phone: "+90 532 111 2233"})
	assert.ErrorIs(t, err, domain.ErrPhoneOwned)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Caso 2: Rejected libera la propiedad.
	_, err = f.uc.UpdateLeadStatus(ctx, tenantID, actorID, lead.ID, dto.UpdateLeadStatusRequest{Status: "Rejected"})
	require.NoError(t, err)
	_, err = f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b2, Phone: "05321112233"})
	assert.NoError(t, err)
}

func TestRegisterLead_PropiedadVence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1, b2 := f.broker(t, 2), f.broker(t, 2)

	_, err := f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b1, Phone: "5321112233"})
	require.NoError(t, err)

	f.now = f.now.Add(91 * 24 * time.Hour)
	_, err = f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b2, Phone: "5321112233"})
	assert.NoError(t, err)
}

func TestRegisterLead_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.broker(t, 2)

	// Caso 1: broker inexistente.
	_, err := f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: "nope", Phone: "5321112233"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Caso 2: cliente inexistente.
	_, err = f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b, Phone: "5321112233", CustomerID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Caso 3: sin broker_id.
	_, err = f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{Phone: "5321112233"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLinkCustomer_UnClientePorLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.broker(t, 2)
	customerID := f.customer(t)

	l1, err := f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b, Phone: "5321112233"})
	require.NoError(t, err)
	l2, err := f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b, Phone: "5329998877"})
	require.NoError(t, err)

	got, err := f.uc.LinkCustomer(ctx, tenantID, l1.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, customerID, got.CustomerID)

	// Caso 1: repetir el vínculo es no-op.
	_, err = f.uc.LinkCustomer(ctx, tenantID, l1.ID, customerID)
	assert.NoError(t, err)

	// Caso 2: el cliente ya pertenece a otro lead.
	_, err = f.uc.LinkCustomer(ctx, tenantID, l2.ID, customerID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estados y comisión
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateLeadStatus_ComisionUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.broker(t, 3)
	lead, err := f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b, Phone: "5321112233"})
	require.NoError(t, err)

	req := dto.UpdateLeadStatusRequest{Status: "ContractSigned", BaseAmount: decimal.NewFromInt(1_500_000), Currency: "TRY"}
	res, err := f.uc.UpdateLeadStatus(ctx, tenantID, actorID, lead.ID, req)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	require.NotNil(t, res.Commission)
	assert.True(t, res.Commission.Amount.Equal(decimal.NewFromInt(45_000)), res.Commission.Amount.String())

	// Caso 1: mismo estado → sin cambios ni comisión nueva.
	res, err = f.uc.UpdateLeadStatus(ctx, tenantID, actorID, lead.ID, req)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Nil(t, res.Commission)

	// Caso 2: salir y volver a ContractSigned no duplica la comisión.
	_, err = f.uc.UpdateLeadStatus(ctx, tenantID, actorID, lead.ID, dto.UpdateLeadStatusRequest{Status: "OfferSent"})
	require.NoError(t, err)
	res, err = f.uc.UpdateLeadStatus(ctx, tenantID, actorID, lead.ID, req)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Nil(t, res.Commission)
	n, err := f.store.Commissions().CountByBroker(ctx, tenantID, b)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	history, err := f.uc.History(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestUpdateLeadStatus_EstadoDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.UpdateLeadStatus(context.Background(), tenantID, actorID, "lead", dto.UpdateLeadStatusRequest{Status: "Archived"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Espejo
// ──────────────────────────────────────────────────────────────────────────────

func saleEvent(customerID, status string) event.Event {
	return event.Event{
		ID:       uuid.NewString(),
		Type:     event.SaleStatusChanged,
		TenantID: tenantID,
		ActorID:  actorID,
		Payload: event.SaleStatus{
			SaleID:     "sale-1",
			CustomerID: customerID,
			Status:     status,
			FinalPrice: decimal.NewFromInt(1_000_000),
			Currency:   "TRY",
		},
	}
}

func TestMirror_IdempotenteYSinLeadEsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.broker(t, 2)
	customerID := f.customer(t)
	lead, err := f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b, Phone: "5321112233", CustomerID: customerID})
	require.NoError(t, err)
	mirror := broker.NewMirror(f.uc)

	// Caso 1: el mismo evento dos veces deja una sola fila de historial.
	evt := saleEvent(customerID, "Reservation")
	require.NoError(t, mirror.HandleEvent(ctx, evt))
	require.NoError(t, mirror.HandleEvent(ctx, evt))
	got, err := f.uc.GetLead(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.LeadReserved), got.Status)
	history, err := f.uc.History(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// Caso 2: cliente sin lead → no-op.
	require.NoError(t, mirror.HandleEvent(ctx, saleEvent(f.customer(t), "Sold")))

	// Caso 3: estado sin equivalente → no-op.
	require.NoError(t, mirror.HandleEvent(ctx, saleEvent(customerID, "Contract")))
	got, err = f.uc.GetLead(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.LeadReserved), got.Status)

	// Caso 4: Lost → Rejected.
	require.NoError(t, mirror.HandleEvent(ctx, saleEvent(customerID, "Lost")))
	got, err = f.uc.GetLead(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.LeadRejected), got.Status)
}

func TestMirror_FalloDelStoreSeReporta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.broker(t, 2)
	customerID := f.customer(t)
	_, err := f.uc.RegisterLead(ctx, tenantID, actorID, dto.RegisterLeadRequest{BrokerID: b, Phone: "5321112233", CustomerID: customerID})
	require.NoError(t, err)

	f.store.InjectFault("leads.update", assert.AnError)
	err = broker.NewMirror(f.uc).HandleEvent(ctx, saleEvent(customerID, "Proposal"))
	assert.ErrorIs(t, err, domain.ErrStore)
}
